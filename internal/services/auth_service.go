package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"ewarranty/internal/domain"
	"ewarranty/internal/repos"
	"ewarranty/internal/validate"
)

var ErrBadCreds = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)

// AdminClaims is the payload of an admin bearer token. Subject carries the
// admin id.
type AdminClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthService struct {
	Admins *repos.AdminRepo
	Secret []byte
	TTL    time.Duration

	now func() time.Time
}

func NewAuthService(admins *repos.AdminRepo, secret string, ttl time.Duration) *AuthService {
	return &AuthService{Admins: admins, Secret: []byte(secret), TTL: ttl, now: time.Now}
}

func (s *AuthService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *AuthService) Login(ctx context.Context, email, password string) (Token, error) {
	u, err := s.Admins.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// equalize timing with the wrong-password path
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return Token{}, ErrBadCreds
		}
		return Token{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return Token{}, ErrBadCreds
	}
	return s.Issue(u)
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.MinCost)

func (s *AuthService) Issue(u *domain.AdminUser) (Token, error) {
	now := s.clock()
	exp := now.Add(s.TTL)
	claims := AdminClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			Issuer:    "ewarranty",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Token: signed, ExpiresAt: exp.UTC().Truncate(time.Second)}, nil
}

// Verify checks the token signature and expiry and resolves the admin it was
// issued to. A valid token for an admin that no longer exists is forbidden.
func (s *AuthService) Verify(ctx context.Context, raw string) (*domain.AdminUser, error) {
	claims := &AdminClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock))
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", domain.ErrUnauthorized)
	}
	u, err := s.Admins.ByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrForbidden
	}
	return u, err
}

// CreateAdmin adds an admin or resets the password of an existing one.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password string) (int64, error) {
	email, ok := validate.Email(email)
	if !ok {
		return 0, domain.Invalid("email", "Invalid email")
	}
	if !validate.Password(password) {
		return 0, domain.Invalid("password", "Password must be 8 to 72 characters")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	return s.Admins.Upsert(ctx, email, string(h))
}

package services

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"ewarranty/internal/domain"
	"ewarranty/internal/repos"
)

type RegisterRequest struct {
	Serial    string
	ProductID int64
	UserName  string
	UserEmail string
	UserPhone string
}

// WarrantyService drives serial validation, registration and the admin
// review of registrations. In strict mode a serial that already carries a
// pending or accepted registration is rejected.
type WarrantyService struct {
	DB       *sqlx.DB
	Warranty *repos.WarrantyRepo
	Strict   bool
}

func NewWarrantyService(db *sqlx.DB, strict bool) *WarrantyService {
	return &WarrantyService{DB: db, Warranty: repos.NewWarrantyRepo(db), Strict: strict}
}

func (s *WarrantyService) ValidateSerial(ctx context.Context, raw string) (domain.SerialInfo, error) {
	serial, err := domain.CheckSerial(raw)
	if err != nil {
		return domain.SerialInfo{}, err
	}
	return s.lookup(ctx, s.Warranty, serial)
}

func (s *WarrantyService) lookup(ctx context.Context, repo *repos.WarrantyRepo, serial string) (domain.SerialInfo, error) {
	info, err := repo.LookupSerial(ctx, serial)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return info, &domain.SerialError{Serial: serial, Err: domain.ErrNotFound}
		}
		return info, err
	}
	if s.Strict && info.Status == domain.SerialRegistered {
		return info, &domain.SerialError{Serial: serial, Err: domain.ErrAlreadyRegistered}
	}
	return info, nil
}

// Register records a pending registration for the serial and marks the
// serial as registered.
func (s *WarrantyService) Register(ctx context.Context, req RegisterRequest) (domain.WarrantyRegistration, error) {
	serial, err := domain.CheckSerial(req.Serial)
	if err != nil {
		return domain.WarrantyRegistration{}, err
	}
	var out domain.WarrantyRegistration
	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		w := s.Warranty.WithTx(tx)
		info, err := s.lookup(ctx, w, serial)
		if err != nil {
			return err
		}
		if info.ProductID != req.ProductID {
			return domain.Invalid("product_id", "Serial does not belong to this product")
		}
		if s.Strict {
			if err := w.ClaimSerial(ctx, serial); err != nil {
				if errors.Is(err, domain.ErrAlreadyRegistered) {
					return &domain.SerialError{Serial: serial, Err: err}
				}
				return err
			}
		} else if err := w.SetSerialStatus(ctx, serial, domain.SerialRegistered); err != nil {
			return err
		}
		id, err := w.Create(ctx, domain.WarrantyRegistration{
			Serial:    serial,
			ProductID: info.ProductID,
			UserName:  req.UserName,
			UserEmail: req.UserEmail,
			UserPhone: req.UserPhone,
		})
		if err != nil {
			return err
		}
		out, err = w.Get(ctx, id)
		return err
	})
	return out, err
}

func (s *WarrantyService) List(ctx context.Context, f repos.WarrantyFilter) ([]domain.WarrantyRegistration, error) {
	return s.Warranty.List(ctx, f)
}

func (s *WarrantyService) Get(ctx context.Context, id int64) (domain.WarrantyRegistration, error) {
	return s.Warranty.Get(ctx, id)
}

// UpdateStatus moves a pending registration to accepted or rejected.
// Rejecting releases the serial once nothing else holds it.
func (s *WarrantyService) UpdateStatus(ctx context.Context, id int64, status string) (domain.WarrantyRegistration, error) {
	var out domain.WarrantyRegistration
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		w := s.Warranty.WithTx(tx)
		cur, err := w.Get(ctx, id)
		if err != nil {
			return err
		}
		if !domain.CanTransition(cur.Status, status) {
			return domain.ErrInvalidTransition
		}
		if err := w.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		if !domain.HoldsSerial(status) {
			if err := release(ctx, w, cur.Serial); err != nil {
				return err
			}
		}
		out, err = w.Get(ctx, id)
		return err
	})
	return out, err
}

func (s *WarrantyService) Delete(ctx context.Context, id int64) error {
	return repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		w := s.Warranty.WithTx(tx)
		cur, err := w.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := w.Delete(ctx, id); err != nil {
			return err
		}
		if domain.HoldsSerial(cur.Status) {
			return release(ctx, w, cur.Serial)
		}
		return nil
	})
}

func release(ctx context.Context, w *repos.WarrantyRepo, serial string) error {
	n, err := w.ActiveCount(ctx, serial)
	if err != nil || n > 0 {
		return err
	}
	return w.SetSerialStatus(ctx, serial, domain.SerialAvailable)
}

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DevJWTSecret is used when JWT_SECRET is not configured. Load warns about it.
const DevJWTSecret = "ewarranty-dev-secret-change-me"

type Config struct {
	Port           string
	DBDriver       string
	DBDSN          string
	DBMaxOpenConns int
	MediaDir       string
	LogFile        string
	JWTSecret      string
	TokenTTL       time.Duration
	AdminEmail     string
	AdminPassword  string
	CORSOrigins    string
	BodyLimitMB    int
	WarrantyStrict bool
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "ewarranty.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("MEDIA_DIR", "./uploads")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "12h")
	v.SetDefault("ADMIN_EMAIL", "admin@ewarranty.test")
	v.SetDefault("ADMIN_PASSWORD", "Passw0rd!")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("BODY_LIMIT_MB", 20)
	v.SetDefault("WARRANTY_STRICT", true)
}

// Load reads defaults, an optional config file, a .env file in the working
// directory and finally the process environment (highest priority).
func Load(file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[config] ignoring .env: %v", err)
	}

	v := viper.New()
	defaults(v)
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	v.AutomaticEnv()

	cfg, err := fromViper(v)
	if err != nil {
		return Config{}, err
	}
	if cfg.JWTSecret == "" {
		log.Printf("[config] JWT_SECRET not set, using development secret")
		cfg.JWTSecret = DevJWTSecret
	}
	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_MAX_OPEN_CONNS=%d MEDIA_DIR=%s LOG_FILE=%s WARRANTY_STRICT=%t",
		cfg.Port, cfg.DBDriver, cfg.DBMaxOpenConns, cfg.MediaDir, cfg.LogFile, cfg.WarrantyStrict)
	return cfg, nil
}

func fromViper(v *viper.Viper) (Config, error) {
	driver := strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER")))
	if driver != "sqlite" && driver != "mysql" {
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q (sqlite|mysql)", driver)
	}
	ttl, err := time.ParseDuration(v.GetString("TOKEN_TTL"))
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("invalid TOKEN_TTL %q", v.GetString("TOKEN_TTL"))
	}
	conns := v.GetInt("DB_MAX_OPEN_CONNS")
	if conns <= 0 {
		conns = 10
	}
	body := v.GetInt("BODY_LIMIT_MB")
	if body <= 0 {
		body = 20
	}
	return Config{
		Port:           v.GetString("PORT"),
		DBDriver:       driver,
		DBDSN:          v.GetString("DB_DSN"),
		DBMaxOpenConns: conns,
		MediaDir:       v.GetString("MEDIA_DIR"),
		LogFile:        v.GetString("LOG_FILE"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		TokenTTL:       ttl,
		AdminEmail:     v.GetString("ADMIN_EMAIL"),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),
		CORSOrigins:    v.GetString("CORS_ORIGINS"),
		BodyLimitMB:    body,
		WarrantyStrict: v.GetBool("WARRANTY_STRICT"),
	}, nil
}

// Test returns a configuration backed by an in-memory SQLite database.
func Test() Config {
	return Config{
		Port:           "0",
		DBDriver:       "sqlite",
		DBDSN:          ":memory:",
		DBMaxOpenConns: 1,
		MediaDir:       os.TempDir(),
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		AdminEmail:     "admin@ewarranty.test",
		AdminPassword:  "Passw0rd!",
		CORSOrigins:    "*",
		BodyLimitMB:    20,
		WarrantyStrict: true,
	}
}

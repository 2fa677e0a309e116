// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
)

const (
	DevEnv = "dev"
	ProEnv = "pro"
)

type Config struct {
	Env           string
	Addr          string
	DBDriver      string
	DBURL         string
	MigrationsURL string
	JWTSecret     string
	EnableSignup  bool
	PageSize      int
	WhitelistHost string
}

// Load reads configuration from the environment. In dev an unset
// JWT_SECRET falls back to an unsecure default; in production it is a
// hard error.
func Load() (Config, error) {
	cfg := Config{
		Env:           getenv("ENV", ProEnv),
		Addr:          os.Getenv("ADDRESS_LISTEN"),
		DBDriver:      getenv("DB_DRIVER", "sqlite"),
		DBURL:         os.Getenv("DB_URL"),
		MigrationsURL: getenv("MIGRATIONS_URL", "file://db/migrations"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		EnableSignup:  os.Getenv("ENABLE_SIGNUP") == "true",
		WhitelistHost: os.Getenv("WHITELIST_HOST"),
	}

	if cfg.DBURL == "" && cfg.DBDriver == "sqlite" {
		cfg.DBURL = "./quill.db"
	}
	if cfg.Env == DevEnv {
		cfg.EnableSignup = true
		if cfg.Addr == "" {
			cfg.Addr = ":8080"
		}
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = "unsecure"
		}
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("no JWT secret defined")
	}

	cfg.PageSize = 10
	if v := os.Getenv("PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, errors.New("PAGE_SIZE must be a positive integer")
		}
		cfg.PageSize = n
	}

	return cfg, nil
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

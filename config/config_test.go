package config

import "testing"

func TestLoadDevDefaults(t *testing.T) {
	t.Setenv("ENV", DevEnv)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADDRESS_LISTEN", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PAGE_SIZE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.JWTSecret == "" {
		t.Error("dev should fall back to a default secret")
	}
	if !cfg.EnableSignup {
		t.Error("dev should enable signup")
	}
	if cfg.DBDriver != "sqlite" || cfg.DBURL == "" {
		t.Errorf("db defaults = %q %q", cfg.DBDriver, cfg.DBURL)
	}
	if cfg.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.PageSize)
	}
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", ProEnv)
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("production without JWT_SECRET should fail")
	}
}

func TestLoadRejectsBadPageSize(t *testing.T) {
	t.Setenv("ENV", DevEnv)
	t.Setenv("PAGE_SIZE", "-1")

	if _, err := Load(); err == nil {
		t.Error("negative PAGE_SIZE should fail")
	}
}

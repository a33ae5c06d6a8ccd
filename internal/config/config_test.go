package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadRequiresSigningKey(t *testing.T) {
	t.Setenv("SIGNING_KEY", "")

	if _, err := Load(); !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("expected ErrMissingEnv, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SIGNING_KEY", "k")
	for _, k := range []string{"DB_DRIVER", "ADDR", "SMTP_HOST", "SMTP_PORT", "CORS_ORIGINS", "ACCESS_TTL", "AUTO_MIGRATE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBDriver != "postgres" || cfg.Addr != ":8081" || cfg.AutoMigrate {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SMTPHost != "" || cfg.SMTPPort != 587 {
		t.Fatalf("unexpected smtp defaults: host=%q port=%d", cfg.SMTPHost, cfg.SMTPPort)
	}
	if cfg.AccessTTL != 15*time.Minute {
		t.Fatalf("access ttl = %v", cfg.AccessTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SIGNING_KEY", "k")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("ACCESS_TTL", "5m")
	t.Setenv("REFRESH_TTL", "not-a-duration")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBDriver != "sqlite" || !cfg.AutoMigrate {
		t.Fatalf("unexpected db config: %+v", cfg)
	}
	if cfg.AccessTTL != 5*time.Minute || cfg.RefreshTTL != 30*24*time.Hour {
		t.Fatalf("unexpected ttls: access=%v refresh=%v", cfg.AccessTTL, cfg.RefreshTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if cfg.SMTPPort != 2525 {
		t.Fatalf("smtp port = %d", cfg.SMTPPort)
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file must be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("BOOKING_DOTENV_PROBE=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BOOKING_DOTENV_PROBE", "")
	os.Unsetenv("BOOKING_DOTENV_PROBE")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("BOOKING_DOTENV_PROBE"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
}

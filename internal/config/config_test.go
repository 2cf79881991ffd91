package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadRequiresDatabaseAndSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected an error without DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/croowa")
	if _, err := Load(""); err == nil {
		t.Fatal("expected an error without JWT_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/croowa")
	t.Setenv("JWT_SECRET", "secret")
	for _, key := range []string{"TELEGRAM_TOKEN", "PORT", "CURRENCY", "TOKEN_TTL", "COACH_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Currency != "SEK" || cfg.MigrationsPath == "" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.TokenTTL != 720*time.Hour || cfg.CoachInterval != time.Hour {
		t.Errorf("durations = %v, %v", cfg.TokenTTL, cfg.CoachInterval)
	}
	if cfg.BotEnabled() {
		t.Error("bot should be disabled without a token")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/croowa")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("COACH_INTERVAL", "soon")

	if _, err := Load(""); err == nil {
		t.Fatal("expected an error for COACH_INTERVAL=soon")
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "from-env")
	os.Unsetenv("DATABASE_URL")
	t.Setenv("CURRENCY", "")
	os.Unsetenv("CURRENCY")

	path := filepath.Join(t.TempDir(), ".env")
	content := "DATABASE_URL=postgres://file/croowa\nJWT_SECRET=from-file\nCURRENCY=EUR\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://file/croowa" || cfg.Currency != "EUR" {
		t.Errorf("env file not applied: %+v", cfg)
	}
	if cfg.JWTSecret != "from-env" {
		t.Errorf("env file overrode an existing variable: %q", cfg.JWTSecret)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored: %v", err)
	}
}

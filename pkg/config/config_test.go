package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "HTTP_PORT", "HTTP_TIMEOUT", "CART_REPLICA_BACKEND", "DATABASE_URL"} {
		t.Setenv(k, "")
	}
	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	if cfg.AppEnv != "dev" || cfg.HTTPPort != 8080 || cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ReplicaBackend != "badger" || cfg.DatabaseURL != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "HTTP_PORT=9090\nCART_REPLICA_BACKEND=redis\nLOG_LEVEL=debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	unset(t, "HTTP_PORT", "CART_REPLICA_BACKEND")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := Load(path)
	if cfg.HTTPPort != 9090 || cfg.ReplicaBackend != "redis" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("environment should win over the file, got %q", cfg.LogLevel)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	t.Setenv("HTTP_TIMEOUT", "-3s")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))
	if cfg.HTTPPort != 8080 || cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("got %+v", cfg)
	}
}

// unset removes keys for the test; t.Setenv restores them afterwards.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatal(err)
		}
	}
}

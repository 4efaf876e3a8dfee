package config

import "testing"

func TestLoadMemoryDriverNeedsNoDSN(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_EXPIRES_MIN", "abc")

	cfg := Load()
	if cfg.StoreDriver != StoreMemory {
		t.Fatalf("expected memory driver, got %q", cfg.StoreDriver)
	}
	if cfg.JWTExpiresMin != 10080 {
		t.Fatalf("bad JWT_EXPIRES_MIN should fall back to the default, got %d", cfg.JWTExpiresMin)
	}
	if cfg.AppPort != "8080" {
		t.Fatalf("expected default port, got %q", cfg.AppPort)
	}
	if cfg.GoogleEnabled() {
		t.Fatal("google sign-in should be off without credentials")
	}
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("DB_DSN", "")

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for the missing DB_DSN")
		}
	}()
	Load()
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORE_DRIVER", "NOTIFY_TIMEOUT", "API_RATE_LIMIT_RPS", "MAX_UPLOAD_BYTES", "S3_PATH_STYLE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.StoreDriver != "postgres" {
		t.Fatalf("expected default store driver postgres, got %q", cfg.StoreDriver)
	}
	if cfg.NotifyTimeout != 5*time.Second {
		t.Fatalf("expected default notify timeout 5s, got %v", cfg.NotifyTimeout)
	}
	if cfg.APIRateLimitRPS != 50 {
		t.Fatalf("expected default rate limit 50, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.MaxUploadBytes != 25<<20 {
		t.Fatalf("expected default max upload 25MiB, got %d", cfg.MaxUploadBytes)
	}
	if cfg.S3PathStyle {
		t.Fatalf("expected path-style addressing to be off by default")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("NOTIFY_TIMEOUT", "1500ms")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("S3_PATH_STYLE", "true")

	cfg := Load()
	if cfg.StoreDriver != "memory" {
		t.Fatalf("expected store driver override, got %q", cfg.StoreDriver)
	}
	if cfg.NotifyTimeout != 1500*time.Millisecond {
		t.Fatalf("expected notify timeout 1.5s, got %v", cfg.NotifyTimeout)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.SMTPPort != 2525 {
		t.Fatalf("expected smtp port 2525, got %d", cfg.SMTPPort)
	}
	if !cfg.S3PathStyle {
		t.Fatalf("expected path-style addressing override")
	}
}

func TestLoadFallsBackOnMalformedValues(t *testing.T) {
	t.Setenv("NOTIFY_TIMEOUT", "soon")
	t.Setenv("SMTP_PORT", "twenty-five")
	t.Setenv("MIGRATE_ON_START", "maybe")

	cfg := Load()
	if cfg.NotifyTimeout != 5*time.Second {
		t.Fatalf("expected fallback notify timeout, got %v", cfg.NotifyTimeout)
	}
	if cfg.SMTPPort != 1025 {
		t.Fatalf("expected fallback smtp port, got %d", cfg.SMTPPort)
	}
	if !cfg.MigrateOnStart {
		t.Fatalf("expected fallback migrate on start")
	}
}

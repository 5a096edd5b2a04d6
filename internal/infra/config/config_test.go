package config

import (
	"strings"
	"testing"
	"time"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("UPS_JWT_SECRET", validSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Port != 8080 {
		t.Fatalf("unexpected default port %d", cfg.App.Port)
	}
	if cfg.JWT.AccessTokenTTL != 60*time.Minute {
		t.Fatalf("unexpected default token ttl %v", cfg.JWT.AccessTokenTTL)
	}
	if cfg.JWT.Leeway != 0 {
		t.Fatalf("leeway must default to zero, got %v", cfg.JWT.Leeway)
	}
	if cfg.Security.HashAlgo != "sha256" {
		t.Fatalf("unexpected default hash algo %q", cfg.Security.HashAlgo)
	}
	if cfg.Redis.Host != "" {
		t.Fatalf("redis must be disabled by default, got %q", cfg.Redis.Host)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Fatalf("kafka must be disabled by default, got %v", cfg.Kafka.Brokers)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("UPS_JWT_SECRET", validSecret)
	t.Setenv("UPS_APP_PORT", "9090")
	t.Setenv("UPS_JWT_ACCESS_TOKEN_TTL", "15m")
	t.Setenv("UPS_SECURITY_HASH_ALGO", "argon2id")
	t.Setenv("UPS_REDIS_HOST", "cache.internal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Port != 9090 {
		t.Fatalf("port override ignored, got %d", cfg.App.Port)
	}
	if cfg.JWT.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("ttl override ignored, got %v", cfg.JWT.AccessTokenTTL)
	}
	if cfg.Security.HashAlgo != "argon2id" {
		t.Fatalf("hash algo override ignored, got %q", cfg.Security.HashAlgo)
	}
	if cfg.Redis.Host != "cache.internal" {
		t.Fatalf("redis host override ignored, got %q", cfg.Redis.Host)
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("UPS_JWT_SECRET", "short")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for short secret")
	} else if !strings.Contains(err.Error(), "jwt.secret") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsUnknownHashAlgo(t *testing.T) {
	t.Setenv("UPS_JWT_SECRET", validSecret)
	t.Setenv("UPS_SECURITY_HASH_ALGO", "md5")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported hash algorithm")
	}
}

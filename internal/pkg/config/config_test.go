package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.JWT.ExpirationMs != 86400000 || cfg.JWT.TTL() != 24*time.Hour {
		t.Fatalf("expected 24h token TTL, got %d ms", cfg.JWT.ExpirationMs)
	}
	if cfg.Redis.PrincipalTTL != 5*time.Minute {
		t.Fatalf("expected 5m principal TTL, got %v", cfg.Redis.PrincipalTTL)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected 10s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Mongo.Transactions {
		t.Fatal("transactions should default to off")
	}
	if cfg.Admin.Enabled() {
		t.Fatal("admin bootstrap should be off without credentials")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":         "s3cret",
		"JWT_EXPIRATION_MS":  "60000",
		"PORT":               "9090",
		"MONGO_TRANSACTIONS": "true",
		"ADMIN_USERNAME":     "root",
		"ADMIN_PASSWORD":     "toor",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JWT.TTL() != time.Minute || cfg.Port != "9090" || !cfg.Mongo.Transactions {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !cfg.Admin.Enabled() {
		t.Fatal("expected admin bootstrap enabled")
	}
}

func TestLoadFrom_MissingSecret(t *testing.T) {
	if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoadFrom_NonPositiveExpiration(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":        "s3cret",
		"JWT_EXPIRATION_MS": "0",
	}))
	if err == nil {
		t.Fatal("expected error for zero expiration")
	}
}

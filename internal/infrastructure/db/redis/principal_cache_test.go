package redis

import (
	"testing"

	"github.com/cardigital/user-service/internal/core/domain"
)

func TestPrincipalEncoding_RoundTrip(t *testing.T) {
	in := &domain.Principal{UserID: 42, Username: "alice", Role: domain.RoleAdmin, Enabled: true}

	raw := encodePrincipal(in)
	data := make(map[string]string, len(raw))
	for k, v := range raw {
		data[k] = v.(string)
	}

	out, err := decodePrincipal("alice", data)
	if err != nil {
		t.Fatalf("decodePrincipal() unexpected error: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestDecodePrincipal_Corrupt(t *testing.T) {
	if _, err := decodePrincipal("alice", map[string]string{"user_id": "x", "enabled": "true"}); err == nil {
		t.Fatal("expected error for bad user_id")
	}
	if _, err := decodePrincipal("alice", map[string]string{"user_id": "1", "enabled": "maybe"}); err == nil {
		t.Fatal("expected error for bad enabled flag")
	}
}

func TestKey(t *testing.T) {
	if got := key("alice"); got != "principal:alice" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestNewPrincipalCache_DefaultTTL(t *testing.T) {
	if c := NewPrincipalCache(nil, 0); c.ttl != defaultPrincipalTTL {
		t.Fatalf("expected default ttl, got %v", c.ttl)
	}
}

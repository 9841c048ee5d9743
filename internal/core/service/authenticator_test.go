package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cardigital/user-service/internal/core/domain"
	"github.com/cardigital/user-service/internal/testutil"
)

func TestAuthenticator_Success(t *testing.T) {
	store := testutil.NewUserStore()
	user := seedUser(t, store, "alice", "secret123", domain.RoleAdmin)
	tokens := NewTokenService("secret", time.Hour)
	cache := testutil.NewPrincipalCache()
	auth := NewAuthenticator(store, tokens, cache, discardLogger)

	token, _, _ := tokens.Generate("alice")
	p, err := auth.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate() unexpected error: %v", err)
	}
	if p.UserID != user.ID || p.Username != "alice" || !p.HasRole(domain.RoleAdmin) {
		t.Fatalf("unexpected principal: %+v", p)
	}

	if cached, _ := cache.Get(context.Background(), "alice"); cached == nil {
		t.Fatal("principal was not cached")
	}
}

func TestAuthenticator_UsesCache(t *testing.T) {
	store := testutil.NewUserStore()
	tokens := NewTokenService("secret", time.Hour)
	cache := testutil.NewPrincipalCache()
	_ = cache.Set(context.Background(), &domain.Principal{UserID: 7, Username: "carol", Role: domain.RoleUser, Enabled: true})
	auth := NewAuthenticator(store, tokens, cache, discardLogger)

	token, _, _ := tokens.Generate("carol")
	p, err := auth.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate() unexpected error: %v", err)
	}
	if p.UserID != 7 {
		t.Fatalf("expected cached principal, got %+v", p)
	}
}

func TestAuthenticator_Rejections(t *testing.T) {
	store := testutil.NewUserStore()
	seedUser(t, store, "alice", "secret123", domain.RoleUser)
	disabled := seedUser(t, store, "bob", "secret123", domain.RoleUser)
	disabled.Enabled = false
	store.Seed(disabled)

	clock := &fakeClock{t: time.Now()}
	tokens := NewTokenService("secret", time.Hour).WithClock(clock.now)
	auth := NewAuthenticator(store, tokens, nil, discardLogger)

	expired, _, _ := tokens.Generate("alice")
	ghost, _, _ := tokens.Generate("ghost")
	bob, _, _ := tokens.Generate("bob")
	foreign, _, _ := NewTokenService("other", time.Hour).Generate("alice")

	// Past the expiry of every token minted above.
	clock.t = clock.t.Add(2 * time.Hour)

	cases := map[string]string{
		"garbage":      "garbage",
		"foreign key":  foreign,
		"expired":      expired,
		"unknown user": ghost,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := auth.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}

	clock.t = clock.t.Add(-2 * time.Hour)
	t.Run("disabled account", func(t *testing.T) {
		if _, err := auth.Authenticate(context.Background(), bob); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})
}

func TestAuthenticator_DeletedUser(t *testing.T) {
	store := testutil.NewUserStore()
	user := seedUser(t, store, "alice", "secret123", domain.RoleUser)
	tokens := NewTokenService("secret", time.Hour)
	cache := testutil.NewPrincipalCache()
	auth := NewAuthenticator(store, tokens, cache, discardLogger)
	users := NewUserService(store, store, testHasher, cache, discardLogger)

	token, _, _ := tokens.Generate("alice")
	if _, err := auth.Authenticate(context.Background(), token); err != nil {
		t.Fatalf("first Authenticate() failed: %v", err)
	}

	if err := users.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, err := auth.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after delete, got %v", err)
	}
}

func TestAuthenticator_StoreError(t *testing.T) {
	store := testutil.NewUserStore()
	store.FailWith = errors.New("db down")
	tokens := NewTokenService("secret", time.Hour)
	auth := NewAuthenticator(store, tokens, nil, discardLogger)

	token, _, _ := tokens.Generate("alice")
	_, err := auth.Authenticate(context.Background(), token)
	if err == nil || errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
}

// deleteAfterReadStore removes the user right after the first lookup, the way
// an admin delete can land between the authenticator's read and its cache write.
type deleteAfterReadStore struct {
	*testutil.UserStore
	cache *testutil.PrincipalCache
	done  bool
}

func (s *deleteAfterReadStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := s.UserStore.FindByUsername(ctx, username)
	if err == nil && !s.done {
		s.done = true
		_ = s.UserStore.Delete(ctx, u.ID)
		_ = s.cache.Evict(ctx, username)
	}
	return u, err
}

func TestAuthenticator_DeleteDuringCacheFill(t *testing.T) {
	base := testutil.NewUserStore()
	seedUser(t, base, "alice", "secret123", domain.RoleUser)
	cache := testutil.NewPrincipalCache()
	store := &deleteAfterReadStore{UserStore: base, cache: cache}
	tokens := NewTokenService("secret", time.Hour)
	auth := NewAuthenticator(store, tokens, cache, discardLogger)

	token, _, _ := tokens.Generate("alice")
	if _, err := auth.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if cached, _ := cache.Get(context.Background(), "alice"); cached != nil {
		t.Fatalf("deleted user left in cache: %+v", cached)
	}
}

func TestAuthenticator_RoleChangeDuringCacheFill(t *testing.T) {
	store := testutil.NewUserStore()
	user := seedUser(t, store, "alice", "secret123", domain.RoleUser)
	cache := testutil.NewPrincipalCache()
	tokens := NewTokenService("secret", time.Hour)

	racing := &disableAfterReadStore{UserStore: store, user: user}
	auth := NewAuthenticator(racing, tokens, cache, discardLogger)

	token, _, _ := tokens.Generate("alice")
	if _, err := auth.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for a user disabled mid-lookup, got %v", err)
	}
	if cached, _ := cache.Get(context.Background(), "alice"); cached != nil && cached.Enabled {
		t.Fatalf("stale enabled principal cached: %+v", cached)
	}
}

// disableAfterReadStore disables the user right after the first lookup.
type disableAfterReadStore struct {
	*testutil.UserStore
	user *domain.User
	done bool
}

func (s *disableAfterReadStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := s.UserStore.FindByUsername(ctx, username)
	if err == nil && !s.done {
		s.done = true
		disabled := *s.user
		disabled.Enabled = false
		s.UserStore.Seed(&disabled)
	}
	return u, err
}

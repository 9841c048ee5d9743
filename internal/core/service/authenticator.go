package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cardigital/user-service/internal/core/domain"
	"github.com/cardigital/user-service/internal/core/ports"
)

// Authenticator turns a raw session token into a principal, consulting the
// principal cache before the credential store.
type Authenticator struct {
	repo    ports.UserRepository
	tokens  ports.TokenService
	cache   ports.PrincipalCache
	caching bool
	log     zerolog.Logger
}

func NewAuthenticator(repo ports.UserRepository, tokens ports.TokenService, cache ports.PrincipalCache, log zerolog.Logger) *Authenticator {
	caching := cache != nil
	if !caching {
		cache = nopCache{}
	}
	return &Authenticator{repo: repo, tokens: tokens, cache: cache, caching: caching, log: log}
}

// Authenticate fails with domain.ErrUnauthenticated when the token is
// malformed, expired, or names a user that no longer exists or is disabled.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	username, err := a.tokens.ExtractSubject(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	principal, err := a.resolve(ctx, username)
	if err != nil {
		return nil, err
	}
	if !principal.Enabled {
		return nil, fmt.Errorf("%w: account disabled", domain.ErrUnauthenticated)
	}

	if !a.tokens.Validate(token, principal.Username) {
		return nil, fmt.Errorf("%w: token invalid or expired", domain.ErrUnauthenticated)
	}
	return principal, nil
}

func (a *Authenticator) resolve(ctx context.Context, username string) (*domain.Principal, error) {
	cached, err := a.cache.Get(ctx, username)
	if err != nil {
		a.log.Warn().Err(err).Str("username", username).Msg("principal cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	user, err := a.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", domain.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	principal := domain.PrincipalOf(user)
	if !a.caching {
		return principal, nil
	}
	if err := a.cache.Set(ctx, principal); err != nil {
		a.log.Warn().Err(err).Str("username", username).Msg("principal cache write failed")
		return principal, nil
	}
	return a.confirm(ctx, principal)
}

// confirm re-reads the store after a cache write. Writers evict after they
// commit, so an eviction that ran between the first read and the Set is
// caught here and the entry is dropped.
func (a *Authenticator) confirm(ctx context.Context, cached *domain.Principal) (*domain.Principal, error) {
	user, err := a.repo.FindByUsername(ctx, cached.Username)
	if err == nil && *domain.PrincipalOf(user) == *cached {
		return cached, nil
	}

	if evictErr := a.cache.Evict(ctx, cached.Username); evictErr != nil {
		a.log.Warn().Err(evictErr).Str("username", cached.Username).Msg("principal cache evict failed")
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", domain.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return domain.PrincipalOf(user), nil
}

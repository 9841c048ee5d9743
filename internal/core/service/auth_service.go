package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cardigital/user-service/internal/core/domain"
	"github.com/cardigital/user-service/internal/core/ports"
)

// AuthService implements login and logout.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenService
	cache  ports.PrincipalCache
	log    zerolog.Logger

	// dummyHash is compared against when the username is unknown so the
	// failure costs one hash comparison like a wrong password does.
	dummyHash string
}

func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	cache ports.PrincipalCache,
	log zerolog.Logger,
) *AuthService {
	if cache == nil {
		cache = nopCache{}
	}
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		log.Warn().Err(err).Msg("failed to prepare dummy password hash")
	}
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, cache: cache, log: log, dummyHash: dummy}
}

// Login verifies credentials and issues a session token. Unknown users, wrong
// passwords and disabled accounts all fail with the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, domain.ErrAuthenticationFailed
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.hasher.Compare(s.dummyHash, password)
			return nil, domain.ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) || !user.Enabled {
		return nil, domain.ErrAuthenticationFailed
	}

	token, exp, err := s.tokens.Generate(user.Username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user logged in")

	return &ports.Session{
		Token:     token,
		ExpiresAt: exp,
		MaxAge:    int(s.tokens.TTL().Seconds()),
	}, nil
}

// Logout drops whatever the server remembers about the principal. It never
// fails; a nil principal is a no-op.
func (s *AuthService) Logout(ctx context.Context, principal *domain.Principal) {
	if principal == nil {
		return
	}
	if err := s.cache.Evict(ctx, principal.Username); err != nil {
		s.log.Warn().Err(err).Str("username", principal.Username).Msg("failed to evict principal on logout")
	}
	s.log.Info().Int64("user_id", principal.UserID).Msg("user logged out")
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (*domain.Principal, error) { return nil, nil }
func (nopCache) Set(context.Context, *domain.Principal) error           { return nil }
func (nopCache) Evict(context.Context, string) error                    { return nil }

package ports

import (
	"context"
	"time"

	"github.com/cardigital/user-service/internal/core/domain"
)

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// TokenService encodes and decodes signed session tokens.
type TokenService interface {
	Generate(username string) (token string, expiresAt time.Time, err error)
	Validate(token, username string) bool
	ExtractSubject(token string) (string, error)
	TTL() time.Duration
}

// PrincipalCache keeps resolved principals so the authenticator does not hit
// the credential store on every request. A miss is (nil, nil).
type PrincipalCache interface {
	Get(ctx context.Context, username string) (*domain.Principal, error)
	Set(ctx context.Context, p *domain.Principal) error
	Evict(ctx context.Context, username string) error
}

package ports

import (
	"context"
	"time"

	"github.com/cardigital/user-service/internal/core/domain"
)

// Session is what a successful login hands back to the transport layer.
type Session struct {
	Token     string
	ExpiresAt time.Time
	// MaxAge is the cookie lifetime in seconds.
	MaxAge int
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	Logout(ctx context.Context, principal *domain.Principal)
}

// Authenticator resolves a raw token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
}

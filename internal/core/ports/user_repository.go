package ports

import (
	"context"

	"github.com/cardigital/user-service/internal/core/domain"
)

// ListUsersFilter carries the query parameters for listing users.
type ListUsersFilter struct {
	Search string // optional: case-insensitive substring of first or last name
	Page   int    // 0-based
	Size   int    // rows per page (capped by the service)
}

// UserRepository is the credential store. Lookups return domain.ErrNotFound
// when nothing matches; writes return domain.ErrAlreadyExists when a unique
// constraint is violated.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByPhoneNumber(ctx context.Context, phone string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns one page sorted by last name then birth date, plus the total match count.
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

// Transactor runs fn so that all repository writes made with the ctx it
// receives commit together or not at all.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

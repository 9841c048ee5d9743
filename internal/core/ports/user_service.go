package ports

import (
	"context"
	"time"

	"github.com/cardigital/user-service/internal/core/domain"
)

// CreateUserInput carries registration data.
type CreateUserInput struct {
	Username    string
	Password    string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	BirthDate   time.Time
}

// ListUsersResult is returned by UserService.List.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Size       int
	TotalPages int
}

// UserService defines use-case operations for user records.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, search string, page, size int) (*ListUsersResult, error)
	UpdateSelf(ctx context.Context, principal *domain.Principal, patch domain.UserPatch) (*domain.User, error)
	UpdateByID(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	ChangePassword(ctx context.Context, principal *domain.Principal, password, repeatPassword string) error
	Delete(ctx context.Context, id int64) error
}

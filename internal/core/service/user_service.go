package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cardigital/user-service/internal/core/domain"
	"github.com/cardigital/user-service/internal/core/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// UserService implements registration, lookup, listing, patching, password
// changes and deletion of users.
type UserService struct {
	repo   ports.UserRepository
	tx     ports.Transactor
	hasher ports.PasswordHasher
	cache  ports.PrincipalCache
	logger zerolog.Logger
}

func NewUserService(
	repo ports.UserRepository,
	tx ports.Transactor,
	hasher ports.PasswordHasher,
	cache ports.PrincipalCache,
	logger zerolog.Logger,
) *UserService {
	if cache == nil {
		cache = nopCache{}
	}
	return &UserService{repo: repo, tx: tx, hasher: hasher, cache: cache, logger: logger}
}

// Create registers a new USER. Uniqueness is checked username, then phone,
// then email; the storage unique indexes back this up under races.
func (s *UserService) Create(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	input.Username = normalizeUsername(input.Username)
	if input.Username == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidRequest)
	}

	if err := s.ensureFree(ctx, s.repo.FindByUsername, input.Username, 0, "username"); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.repo.FindByPhoneNumber, input.PhoneNumber, 0, "phone number"); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.repo.FindByEmail, input.Email, 0, "email"); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     input.Username,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		Email:        input.Email,
		BirthDate:    input.BirthDate,
		Enabled:      true,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrAlreadyExists) {
			s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		}
		return nil, err
	}

	s.logger.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user created")
	return created, nil
}

// EnsureAdmin creates the bootstrap administrator unless it already exists.
// It is safe to call on every start, but fails when the username belongs to
// an account without the ADMIN role.
func (s *UserService) EnsureAdmin(ctx context.Context, input ports.CreateUserInput) error {
	input.Username = normalizeUsername(input.Username)
	if existing, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		if existing.Role.Name != domain.RoleAdmin.Name {
			return fmt.Errorf("ensure admin: %q exists without the %s role", input.Username, domain.RoleAdmin.Name)
		}
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("ensure admin: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	now := time.Now().UTC()
	admin, err := s.repo.Create(ctx, &domain.User{
		Username:     input.Username,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		Email:        input.Email,
		BirthDate:    input.BirthDate,
		Enabled:      true,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	s.logger.Info().Int64("user_id", admin.ID).Str("username", admin.Username).Msg("bootstrap admin created")
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns one page of users. page is 0-based; size defaults to 10 and is
// capped at 100. A blank search means no filter.
func (s *UserService) List(ctx context.Context, search string, page, size int) (*ports.ListUsersResult, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if int64(page) > math.MaxInt64/int64(size) {
		return nil, fmt.Errorf("%w: page %d is out of range", domain.ErrInvalidRequest, page)
	}
	search = strings.TrimSpace(search)

	users, total, err := s.repo.List(ctx, ports.ListUsersFilter{Search: search, Page: page, Size: size})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &ports.ListUsersResult{
		Items:      users,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
	}, nil
}

// UpdateSelf patches the record of the authenticated principal.
func (s *UserService) UpdateSelf(ctx context.Context, principal *domain.Principal, patch domain.UserPatch) (*domain.User, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.UpdateByID(ctx, principal.UserID, patch)
}

// UpdateByID merges patch into the stored user inside one transaction.
func (s *UserService) UpdateByID(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	if err := checkPatch(patch); err != nil {
		return nil, err
	}

	var updated *domain.User
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if patch.PhoneNumber != nil && *patch.PhoneNumber != existing.PhoneNumber {
			if err := s.ensureFree(ctx, s.repo.FindByPhoneNumber, *patch.PhoneNumber, id, "phone number"); err != nil {
				return err
			}
		}
		if patch.Email != nil && *patch.Email != existing.Email {
			if err := s.ensureFree(ctx, s.repo.FindByEmail, *patch.Email, id, "email"); err != nil {
				return err
			}
		}

		merged, changed := MergeProfile(existing, patch)
		if !changed {
			updated = existing
			return nil
		}

		merged.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, merged); err != nil {
			return err
		}
		updated = merged
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.evict(ctx, updated.Username)
	s.logger.Info().Int64("user_id", id).Msg("user updated")
	return updated, nil
}

// ChangePassword replaces the principal's password after checking that both
// entries match.
func (s *UserService) ChangePassword(ctx context.Context, principal *domain.Principal, password, repeatPassword string) error {
	if principal == nil {
		return domain.ErrUnauthenticated
	}
	if password == "" || password != repeatPassword {
		return fmt.Errorf("%w: password and repeated password do not match", domain.ErrInvalidRequest)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, principal.UserID, hash); err != nil {
		return err
	}

	s.evict(ctx, principal.Username)
	s.logger.Info().Int64("user_id", principal.UserID).Msg("password changed")
	return nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.evict(ctx, user.Username)
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

// ensureFree fails with domain.ErrAlreadyExists when find returns a record
// other than selfID.
func (s *UserService) ensureFree(
	ctx context.Context,
	find func(context.Context, string) (*domain.User, error),
	value string,
	selfID int64,
	field string,
) error {
	if value == "" {
		return nil
	}
	other, err := find(ctx, value)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("check %s: %w", field, err)
	}
	if other.ID != selfID {
		return fmt.Errorf("%w: %s is already taken", domain.ErrAlreadyExists, field)
	}
	return nil
}

func (s *UserService) evict(ctx context.Context, username string) {
	if err := s.cache.Evict(ctx, username); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("failed to evict cached principal")
	}
}

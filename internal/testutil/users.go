// Package testutil holds in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cardigital/user-service/internal/core/domain"
	"github.com/cardigital/user-service/internal/core/ports"
)

// UserStore is an in-memory ports.UserRepository and ports.Transactor. It
// enforces the same unique constraints as the Mongo indexes.
type UserStore struct {
	mu     sync.Mutex
	users  map[int64]*domain.User
	nextID int64

	// FailWith, when set, is returned by every method.
	FailWith error
	// Updates counts successful Update calls.
	Updates int
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Seed inserts u as-is (ID is assigned when zero) and returns the stored copy.
func (s *UserStore) Seed(u *domain.User) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cloneUser(u)
	if c.ID == 0 {
		s.nextID++
		c.ID = s.nextID
	} else if c.ID > s.nextID {
		s.nextID = c.ID
	}
	s.users[c.ID] = c
	return cloneUser(c)
}

// Get returns the stored copy without going through the repository API.
func (s *UserStore) Get(id int64) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUser(s.users[id])
}

func (s *UserStore) conflict(u *domain.User) bool {
	for id, other := range s.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username || other.PhoneNumber == u.PhoneNumber || other.Email == u.Email {
			return true
		}
	}
	return false
}

func (s *UserStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	if s.conflict(user) {
		return nil, domain.ErrAlreadyExists
	}
	c := cloneUser(user)
	s.nextID++
	c.ID = s.nextID
	s.users[c.ID] = c
	return cloneUser(c), nil
}

func (s *UserStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *UserStore) findBy(match func(*domain.User) bool) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	for _, u := range s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return s.findBy(func(u *domain.User) bool { return u.Username == username })
}

func (s *UserStore) FindByPhoneNumber(_ context.Context, phone string) (*domain.User, error) {
	return s.findBy(func(u *domain.User) bool { return u.PhoneNumber == phone })
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return s.findBy(func(u *domain.User) bool { return u.Email == email })
}

// List mirrors the Mongo query: name search, sort by last name, birth date, id.
func (s *UserStore) List(_ context.Context, f ports.ListUsersFilter) ([]*domain.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, 0, s.FailWith
	}

	needle := strings.ToLower(strings.TrimSpace(f.Search))
	var matched []*domain.User
	for _, u := range s.users {
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.FirstName), needle) &&
			!strings.Contains(strings.ToLower(u.LastName), needle) {
			continue
		}
		matched = append(matched, cloneUser(u))
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if !a.BirthDate.Equal(b.BirthDate) {
			return a.BirthDate.Before(b.BirthDate)
		}
		return a.ID < b.ID
	})

	total := int64(len(matched))
	skip := int64(f.Page) * int64(f.Size)
	if f.Page < 0 || skip < 0 || skip >= total {
		return []*domain.User{}, total, nil
	}
	end := int(skip) + f.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[int(skip):end], total, nil
}

func (s *UserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	if s.conflict(user) {
		return domain.ErrAlreadyExists
	}
	s.users[user.ID] = cloneUser(user)
	s.Updates++
	return nil
}

func (s *UserStore) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	u, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *UserStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// WithTx snapshots the store and restores it when fn fails.
func (s *UserStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snapshot := make(map[int64]*domain.User, len(s.users))
	for id, u := range s.users {
		snapshot[id] = cloneUser(u)
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.users = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

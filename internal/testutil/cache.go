package testutil

import (
	"context"
	"sync"

	"github.com/cardigital/user-service/internal/core/domain"
)

// PrincipalCache is an in-memory ports.PrincipalCache that records evictions.
type PrincipalCache struct {
	mu      sync.Mutex
	entries map[string]*domain.Principal
	Evicted []string
}

func NewPrincipalCache() *PrincipalCache {
	return &PrincipalCache{entries: make(map[string]*domain.Principal)}
}

func (c *PrincipalCache) Get(_ context.Context, username string) (*domain.Principal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[username]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (c *PrincipalCache) Set(_ context.Context, p *domain.Principal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *p
	c.entries[p.Username] = &cp
	return nil
}

func (c *PrincipalCache) Evict(_ context.Context, username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, username)
	c.Evicted = append(c.Evicted, username)
	return nil
}

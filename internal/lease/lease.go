// Package lease serializes concurrent edits of shared editable resources
// (currently the prompt template) with an expiring token lease.
package lease

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrHeld is returned when another holder has a live lease on the resource.
var ErrHeld = errors.New("lease: resource is held")

// Store persists leases. Acquire must grant when the lease is free, expired,
// or already held by the same token.
type Store interface {
	AcquireLease(ctx context.Context, resource, token string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, resource, token string) error
}

type Manager struct {
	store Store
	ttl   time.Duration
}

func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Manager{store: store, ttl: ttl}
}

// Acquire grants a lease on resource and returns the holder token.
// Expired leases are replaced lazily at acquire time; there is no sweeper.
func (m *Manager) Acquire(ctx context.Context, resource string) (string, error) {
	token := uuid.NewString()
	ok, err := m.store.AcquireLease(ctx, resource, token, m.ttl)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrHeld
	}
	return token, nil
}

// Release gives the lease back. Releasing with a token that no longer holds
// the lease is a no-op.
func (m *Manager) Release(ctx context.Context, resource, token string) error {
	return m.store.ReleaseLease(ctx, resource, token)
}

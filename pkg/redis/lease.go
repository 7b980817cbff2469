package redis

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const defaultLeaseTTL = 55 * time.Minute

// LeaseStore is the subset of Client a Lease needs.
type LeaseStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(name string) string
}

// Lease is a SETNX lock tagged with the owner's identity. A Lease value is not
// safe for concurrent use; each worker loop holds its own.
type Lease struct {
	store LeaseStore
	key   string
	owner string
	ttl   time.Duration
	held  bool
}

// NewLease builds a lease on LockKey(name). A non-positive ttl means 55m.
func NewLease(store LeaseStore, name, owner string, ttl time.Duration) (*Lease, error) {
	if store == nil {
		return nil, errors.New("lease store is required")
	}
	if name == "" || owner == "" {
		return nil, errors.New("lease name and owner are required")
	}
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &Lease{store: store, key: store.LockKey(name), owner: owner, ttl: ttl}, nil
}

func (l *Lease) Key() string { return l.key }

func (l *Lease) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.store.SetNX(ctx, l.key, l.owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	l.held = ok
	return ok, nil
}

// Release deletes the key only while it still names this owner. Once the TTL
// lapses another replica may hold it.
func (l *Lease) Release(ctx context.Context) error {
	if !l.held {
		return nil
	}
	l.held = false

	current, err := l.store.Get(ctx, l.key)
	switch {
	case IsMiss(err):
		return nil
	case err != nil:
		return fmt.Errorf("read %s owner: %w", l.key, err)
	case current != l.owner:
		return nil
	}
	if err := l.store.Del(ctx, l.key); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}

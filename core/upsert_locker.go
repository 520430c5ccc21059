package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultUpsertLockTTL = 10 * time.Second

type LockHandle interface {
	Unlock(ctx context.Context) error
}

// UpsertLocker serializes find-then-write upserts per logical key, since the
// storage layer carries no unique index on (workspace, provider) or
// (user, workspace, provider). The in-memory implementation only protects a
// single process; multi-instance deployments need a distributed lock behind
// this same contract.
type UpsertLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (LockHandle, error)
}

// UpsertKey builds the lock key from its identity segments.
func UpsertKey(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		parts = append(parts, strings.TrimSpace(segment))
	}
	return strings.Join(parts, "::")
}

type MemoryUpsertLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time
	nowFn func() time.Time
}

func NewMemoryUpsertLocker() *MemoryUpsertLocker {
	return &MemoryUpsertLocker{
		locks: make(map[string]time.Time),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

func (l *MemoryUpsertLocker) Acquire(_ context.Context, key string, ttl time.Duration) (LockHandle, error) {
	if l == nil {
		return nil, fmt.Errorf("core: upsert locker is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("core: upsert key is required for lock acquisition")
	}
	if ttl <= 0 {
		ttl = defaultUpsertLockTTL
	}

	now := l.nowFn()
	l.mu.Lock()
	defer l.mu.Unlock()

	if until, ok := l.locks[key]; ok && now.Before(until) {
		return nil, fmt.Errorf("core: upsert lock already held for key %q", key)
	}
	l.locks[key] = now.Add(ttl)
	return &memoryLockHandle{locker: l, key: key}, nil
}

type memoryLockHandle struct {
	locker *MemoryUpsertLocker
	key    string
	once   sync.Once
}

func (h *memoryLockHandle) Unlock(_ context.Context) error {
	if h == nil || h.locker == nil {
		return nil
	}
	h.once.Do(func() {
		h.locker.mu.Lock()
		delete(h.locker.locks, h.key)
		h.locker.mu.Unlock()
	})
	return nil
}

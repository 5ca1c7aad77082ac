package service

import (
	"context"
	"sync"
	"time"
)

// OwnerCacheStore is a TTL-bounded cache in front of on-chain owner lookups.
// The chain remains the source of truth; the cache only bounds how stale a
// served owner may be.
type OwnerCacheStore interface {
	Get(ctx context.Context, tokenID string) (string, bool, error)
	Set(ctx context.Context, tokenID, owner string, ttl time.Duration) error
	Invalidate(ctx context.Context, tokenID string) error
}

type NoopOwnerCacheStore struct{}

func NewNoopOwnerCacheStore() *NoopOwnerCacheStore { return &NoopOwnerCacheStore{} }

func (s *NoopOwnerCacheStore) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (s *NoopOwnerCacheStore) Set(context.Context, string, string, time.Duration) error {
	return nil
}

func (s *NoopOwnerCacheStore) Invalidate(context.Context, string) error { return nil }

type ownerCacheEntry struct {
	owner     string
	expiresAt time.Time
}

type InMemoryOwnerCacheStore struct {
	mu    sync.RWMutex
	store map[string]ownerCacheEntry
}

func NewInMemoryOwnerCacheStore() *InMemoryOwnerCacheStore {
	return &InMemoryOwnerCacheStore{store: make(map[string]ownerCacheEntry)}
}

func (s *InMemoryOwnerCacheStore) Get(_ context.Context, tokenID string) (string, bool, error) {
	now := time.Now().UTC()
	s.mu.RLock()
	entry, ok := s.store[tokenID]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		if cur, stillThere := s.store[tokenID]; stillThere && now.After(cur.expiresAt) {
			delete(s.store, tokenID)
		}
		s.mu.Unlock()
		return "", false, nil
	}
	return entry.owner, true, nil
}

func (s *InMemoryOwnerCacheStore) Set(_ context.Context, tokenID, owner string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[tokenID] = ownerCacheEntry{owner: owner, expiresAt: time.Now().UTC().Add(ttl)}
	return nil
}

func (s *InMemoryOwnerCacheStore) Invalidate(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, tokenID)
	return nil
}

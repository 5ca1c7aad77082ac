package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisOwnerCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisOwnerCacheStore(client redis.UniversalClient, prefix string) *RedisOwnerCacheStore {
	if prefix == "" {
		prefix = "owner_cache"
	}
	return &RedisOwnerCacheStore{client: client, prefix: prefix}
}

func (s *RedisOwnerCacheStore) Get(ctx context.Context, tokenID string) (string, bool, error) {
	if s.client == nil {
		return "", false, nil
	}
	owner, err := s.client.Get(ctx, s.key(tokenID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return owner, true, nil
}

func (s *RedisOwnerCacheStore) Set(ctx context.Context, tokenID, owner string, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.key(tokenID), owner, ttl).Err()
}

func (s *RedisOwnerCacheStore) Invalidate(ctx context.Context, tokenID string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, s.key(tokenID)).Err()
}

func (s *RedisOwnerCacheStore) key(tokenID string) string {
	return fmt.Sprintf("%s:token:%s", s.prefix, tokenID)
}

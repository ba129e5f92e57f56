package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one hash per document under prefix:collection:{key}.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "fleetdesk:docs"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) hashKey(collection, key string) string {
	return fmt.Sprintf("%s:%s:{%s}", s.prefix, collection, key)
}

func (s *RedisStore) Get(ctx context.Context, collection, key string) (map[string]json.RawMessage, error) {
	res, err := s.client.HGetAll(ctx, s.hashKey(collection, key)).Result()
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, ErrNotFound
	}
	out := make(map[string]json.RawMessage, len(res))
	for field, value := range res {
		out[field] = json.RawMessage(value)
	}
	return out, nil
}

func (s *RedisStore) GetField(ctx context.Context, collection, key, field string, dst any) error {
	res, err := s.client.HGet(ctx, s.hashKey(collection, key), field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal([]byte(res), dst)
}

func (s *RedisStore) SetField(ctx context.Context, collection, key, field string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, s.hashKey(collection, key), field, b).Err()
}

func (s *RedisStore) DeleteField(ctx context.Context, collection, key, field string) error {
	return s.client.HDel(ctx, s.hashKey(collection, key), field).Err()
}

func (s *RedisStore) Delete(ctx context.Context, collection, key string) error {
	return s.client.Del(ctx, s.hashKey(collection, key)).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// defaultKeyPrefix namespaces the hash holding all entries.
	defaultKeyPrefix = "mediago:"
)

func init() {
	Register("redis", newRedisStore)
}

// redisStore implements the Store interface on a single Redis/Valkey hash
// ({prefix}kv), one field per key. It lets several machines share one
// download list.
type redisStore struct {
	client  *redis.Client
	logger  Logger
	dataKey string // hash key, e.g. "mediago:kv"
}

func newRedisStore(cfg ProviderConfig) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Verify connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &redisStore{
		client:  client,
		logger:  cfg.Logger,
		dataKey: defaultKeyPrefix + "kv",
	}, nil
}

func (r *redisStore) logError(msg string, err error) {
	if r.logger != nil {
		r.logger.Error(msg, err)
	}
}

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.HGet(ctx, r.dataKey, key).Bytes()
	if err != nil {
		// redis.Nil means the field does not exist, a normal miss.
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		r.logError("redis store Get failed", err)
		return nil, false, err
	}
	return val, true, nil
}

func (r *redisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.HSet(ctx, r.dataKey, key, value).Err(); err != nil {
		r.logError("redis store Set failed", err)
		return err
	}
	return nil
}

func (r *redisStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.client.HDel(ctx, r.dataKey, key).Result()
	if err != nil {
		r.logError("redis store Delete failed", err)
		return false, err
	}
	return n > 0, nil
}

func (r *redisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	all, err := r.client.HKeys(ctx, r.dataKey).Result()
	if err != nil {
		r.logError("redis store Keys failed", err)
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *redisStore) Close() error {
	return r.client.Close()
}

package runstate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"codeberg.org/pixelpress/server/internal/imagegen"
	"codeberg.org/pixelpress/server/internal/logger"
)

const (
	// runstate:{accountID}:{templateType} - JSON snapshot
	keyRunState = "runstate:%s:%s"

	keyRunStatePattern = "runstate:*"

	// runimages:{accountID}:{templateType} - hash of item ID to base64 image
	keyRunImages = "runimages:%s:%s"
)

// Store backed by Redis string keys
type RedisStore struct {
	client *redis.Client

	// expiry applied on every write so abandoned state eventually disappears
	ttl time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// connects to redisURL and verifies the connection
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on failed connect
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis")

	return client, nil
}

func redisKey(key Key) string {
	return fmt.Sprintf(keyRunState, key.AccountID, key.Template)
}

func redisImagesKey(key Key) string {
	return fmt.Sprintf(keyRunImages, key.AccountID, key.Template)
}

func parseRedisKey(raw string) (Key, bool) {
	rest, ok := strings.CutPrefix(raw, "runstate:")
	if !ok {
		return Key{}, false
	}

	idx := strings.LastIndex(rest, ":")
	if idx <= 0 {
		return Key{}, false
	}

	template, err := imagegen.ParseTemplateType(rest[idx+1:])
	if err != nil {
		return Key{}, false
	}

	return Key{AccountID: rest[:idx], Template: template}, true
}

func (s *RedisStore) Get(ctx context.Context, key Key) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get run state from redis: %w", err)
	}

	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key Key, data []byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKey(key), data, s.ttl)

		// images live as long as the snapshot they belong to
		if s.ttl > 0 {
			pipe.Expire(ctx, redisImagesKey(key), s.ttl)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set run state in redis: %w", err)
	}

	return nil
}

func (s *RedisStore) SetImage(ctx context.Context, key Key, itemID, image string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisImagesKey(key), itemID, image)

		if s.ttl > 0 {
			pipe.Expire(ctx, redisImagesKey(key), s.ttl)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store result image in redis: %w", err)
	}

	return nil
}

func (s *RedisStore) Images(ctx context.Context, key Key) (map[string]string, error) {
	images, err := s.client.HGetAll(ctx, redisImagesKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get result images from redis: %w", err)
	}

	return images, nil
}

func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := s.client.Del(ctx, redisKey(key), redisImagesKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete run state from redis: %w", err)
	}

	return nil
}

func (s *RedisStore) Keys(ctx context.Context) ([]Key, error) {
	var keys []Key

	iter := s.client.Scan(ctx, 0, keyRunStatePattern, 100).Iterator()
	for iter.Next(ctx) {
		if key, ok := parseRedisKey(iter.Val()); ok {
			keys = append(keys, key)
		}
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan run state keys: %w", err)
	}

	return keys, nil
}

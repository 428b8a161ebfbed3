package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const documentKeyPrefix = "documents:"

// RedisStore keeps raw documents in Redis, optionally expiring them after a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(addr string, ttl time.Duration, logger *zap.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb, ttl: ttl, logger: logger}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func documentKey(folder, name string) string {
	return fmt.Sprintf("%s%s/%s", documentKeyPrefix, folder, name)
}

// Store sets the document and records its name in the folder index.
func (s *RedisStore) Store(ctx context.Context, folder, name, text string) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, documentKey(folder, name), text, s.ttl)
	pipe.SAdd(ctx, documentKeyPrefix+folder, name)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Load(ctx context.Context, folder, name string) (string, error) {
	doc, err := s.client.Get(ctx, documentKey(folder, name)).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("document %s/%s not found", folder, name)
	}
	return doc, err
}

// List returns the stored document names in folder, dropping index entries whose document expired.
func (s *RedisStore) List(ctx context.Context, folder string) ([]string, error) {
	members, err := s.client.SMembers(ctx, documentKeyPrefix+folder).Result()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, name := range members {
		n, err := s.client.Exists(ctx, documentKey(folder, name)).Result()
		if err != nil {
			return nil, err
		}
		if n == 1 {
			names = append(names, name)
			continue
		}
		// Pruning is best effort; List still succeeds when it fails.
		if err := s.client.SRem(ctx, documentKeyPrefix+folder, name).Err(); err != nil {
			s.logger.Warn("failed to drop expired document from index",
				zap.String("folder", folder),
				zap.String("name", name),
				zap.Error(err),
			)
		}
	}
	sort.Strings(names)
	return names, nil
}

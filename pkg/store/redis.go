package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	rgio "github.com/matzehuels/roomgraph/pkg/io"
	"github.com/matzehuels/roomgraph/pkg/roomgraph"
)

const (
	redisKeyPrefix = "roomgraph:graph:"
	redisNamesSet  = "roomgraph:graphs"
)

// RedisStore keeps each graph as a JSON string under its own key and
// tracks the names in a set.
type RedisStore struct {
	client *redis.Client
	owned  bool
}

// NewRedisStore wraps an existing client. Close leaves the client open.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// OpenRedis connects to the server at url (redis://host:port/db) and
// verifies the connection. Close closes the client.
func OpenRedis(ctx context.Context, url string) (*RedisStore, error) {
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client, owned: true}, nil
}

func (s *RedisStore) key(name string) string {
	return redisKeyPrefix + name
}

func (s *RedisStore) Load(ctx context.Context, name string) (roomgraph.Snapshot, error) {
	if err := checkName(name); err != nil {
		return roomgraph.Snapshot{}, err
	}
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return roomgraph.Snapshot{}, notFound(name)
	}
	if err != nil {
		return roomgraph.Snapshot{}, fmt.Errorf("get %s: %w", name, err)
	}
	snap, err := rgio.DecodeSnapshot(data)
	if err != nil {
		return roomgraph.Snapshot{}, fmt.Errorf("graph %s: %w", name, err)
	}
	return snap, nil
}

func (s *RedisStore) Save(ctx context.Context, name string, snap roomgraph.Snapshot) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := rgio.EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("graph %s: %w", name, err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(name), data, 0)
		pipe.SAdd(ctx, redisNamesSet, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(name))
		pipe.SRem(ctx, redisNamesSet, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("del %s: %w", name, err)
	}
	if del.Val() == 0 {
		return notFound(name)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, redisNamesSet).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", redisNamesSet, err)
	}
	slices.Sort(names)
	return names, nil
}

// Close closes the client if the store opened it.
func (s *RedisStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

var _ Store = (*RedisStore)(nil)

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Gunvolt24/shoecart/internal/ports"
)

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// NewClient - клиент Redis с трассировкой команд и проверкой соединения (fail-fast).
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis tracing: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// SnapshotStore - слот снапшота как обычный строковый ключ Redis без TTL.
type SnapshotStore struct {
	rdb goredis.Cmdable
}

func NewSnapshotStore(rdb goredis.Cmdable) *SnapshotStore {
	return &SnapshotStore{rdb: rdb}
}

func (s *SnapshotStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get snapshot: %w", err)
	}
	return value, true, nil
}

func (s *SnapshotStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}
	return nil
}

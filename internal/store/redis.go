package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AloySobek/ft-gomoku/internal/config"
)

const boardKeyPrefix = "gomoku:board:"

type RedisBoardStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBoardStore connects and pings the server before returning.
func NewRedisBoardStore(ctx context.Context, cfg config.RedisConfig) (*RedisBoardStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctxPing).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", cfg.Addr, err)
	}
	return NewRedisBoardStoreWithClient(client, cfg.TTL), nil
}

func NewRedisBoardStoreWithClient(client *redis.Client, ttl time.Duration) *RedisBoardStore {
	return &RedisBoardStore{client: client, ttl: ttl}
}

func boardKey(id string) string {
	return boardKeyPrefix + id
}

func (s *RedisBoardStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, boardKey(snap.ID), data, s.ttl).Err()
}

func (s *RedisBoardStore) Load(ctx context.Context, id string) (Snapshot, error) {
	data, err := s.client.Get(ctx, boardKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, fmt.Errorf("board %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode board %s: %w", id, err)
	}
	return snap, nil
}

func (s *RedisBoardStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, boardKey(id)).Err()
}

func (s *RedisBoardStore) Close() error {
	return s.client.Close()
}

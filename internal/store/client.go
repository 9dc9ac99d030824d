// Package store persists conversations and messages in Redis.
//
// Key layout (stable, shared with any pre-existing data):
//
//	user:{id}                      profile hash
//	user:{id}:conversations       set of conversation ids
//	conversation:{a}:{b}          conversation hash (sorted pair)
//	conversation:{a}:{b}:messages sorted set, message id scored by timestamp
//	message:{timestamp}:{random}  message hash
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pairchat/dm-core/pkg/logger"
)

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Store wraps a Redis client with the chat core's persistence operations.
type Store struct {
	rdb    *redis.Client
	logger *logger.Logger
}

// Connect establishes a connection to Redis and verifies it with a ping.
func Connect(ctx context.Context, cfg Config, log *logger.Logger) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{rdb: rdb, logger: log}, nil
}

// New wraps an existing Redis client. Used by tests.
func New(rdb *redis.Client, log *logger.Logger) *Store {
	return &Store{rdb: rdb, logger: log}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

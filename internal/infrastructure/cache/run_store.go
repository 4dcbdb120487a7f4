// Package cache holds the Redis-backed stores.
package cache

import (
	"context"
	"credit-engine/internal/batch"
	"credit-engine/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const runKeyPrefix = "reconciliation:run:"

// RedisRunStore keeps reconciliation runs as JSON values that expire after ttl.
type RedisRunStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisRunStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisRunStore {
	return &RedisRunStore{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "RedisRunStore"),
	}
}

func runKey(runID string) string {
	return runKeyPrefix + runID
}

func (s *RedisRunStore) Save(ctx context.Context, run *batch.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode reconciliation run %s: %w", run.ID, err)
	}
	if err := s.client.Set(ctx, runKey(run.ID), string(data), s.ttl).Err(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to store reconciliation run", slog.String("runID", run.ID), slog.Any("error", err))
		return fmt.Errorf("%w: %w", apperrors.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisRunStore) Get(ctx context.Context, runID string) (*batch.Run, error) {
	data, err := s.client.Get(ctx, runKey(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: reconciliation run %s", apperrors.ErrNotFound, runID)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load reconciliation run", slog.String("runID", runID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnavailable, err)
	}

	var run batch.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode reconciliation run %s: %w", runID, err)
	}
	return &run, nil
}

var _ batch.RunStore = (*RedisRunStore)(nil)

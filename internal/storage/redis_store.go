package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stringlab/internal/config"
	"github.com/stringlab/internal/models"
)

const (
	recentRunsKey = "runs:recent"
	// maxRecentRuns caps the recent-runs index
	maxRecentRuns = 1000
)

// RedisStore implements RunRepository using Redis.
// Runs are stored as JSON with a TTL; ids are indexed in a capped list.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration // Time-to-live for runs (0 = no expiration)
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    cfg.RunTTL,
	}, nil
}

// CreateRun stores a run in Redis.
func (s *RedisStore) CreateRun(ctx context.Context, run *models.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	created, err := s.client.SetNX(ctx, runKey(run.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	if !created {
		return ErrRunExists
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, recentRunsKey, run.ID)
	pipe.LTrim(ctx, recentRunsKey, 0, maxRecentRuns-1)
	if _, err := pipe.Exec(ctx); err != nil {
		// An unindexed run would never be listed; drop it so the caller sees one failure.
		s.client.Del(context.WithoutCancel(ctx), runKey(run.ID))
		return fmt.Errorf("failed to index run: %w", err)
	}

	return nil
}

// GetRun retrieves a run from Redis.
func (s *RedisStore) GetRun(ctx context.Context, runID string) (*models.Run, error) {
	data, err := s.client.Get(ctx, runKey(runID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var run models.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}

	return &run, nil
}

// ListRuns returns the most recent runs. Ids whose run has expired are
// skipped and pruned from the index, and paging continues past them.
func (s *RedisStore) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	if limit <= 0 || limit > maxRecentRuns {
		limit = maxRecentRuns
	}

	runs := make([]*models.Run, 0, limit)
	for start := int64(0); len(runs) < limit; {
		// Fetch what is still missing; expired ids are removed before the next page.
		count := int64(limit - len(runs))
		ids, err := s.client.LRange(ctx, recentRunsKey, start, start+count-1).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		if len(ids) == 0 {
			break
		}

		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = runKey(id)
		}
		values, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to load runs: %w", err)
		}

		page, expired, err := decodeRuns(ids, values)
		if err != nil {
			return nil, err
		}
		runs = append(runs, page...)

		if len(expired) > 0 {
			pipe := s.client.Pipeline()
			for _, id := range expired {
				pipe.LRem(ctx, recentRunsKey, 1, id)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				return nil, fmt.Errorf("failed to prune expired runs: %w", err)
			}
		}
		// Pruning shifted the remaining ids left by len(expired).
		start += int64(len(page))

		if int64(len(ids)) < count {
			break
		}
	}

	return runs, nil
}

// decodeRuns pairs MGET values with their ids. Missing values are
// reported as expired.
func decodeRuns(ids []string, values []interface{}) ([]*models.Run, []string, error) {
	if len(ids) != len(values) {
		return nil, nil, fmt.Errorf("mismatched run lookup: %d ids, %d values", len(ids), len(values))
	}

	runs := make([]*models.Run, 0, len(values))
	var expired []string
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		var run models.Run
		if err := json.Unmarshal([]byte(raw), &run); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal run %s: %w", ids[i], err)
		}
		runs = append(runs, &run)
	}
	return runs, expired, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// runKey generates a Redis key for a run.
func runKey(id string) string {
	return fmt.Sprintf("run:%s", id)
}

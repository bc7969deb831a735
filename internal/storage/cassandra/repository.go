package cassandra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/stringlab/internal/models"
	"github.com/stringlab/internal/storage"
	"github.com/stringlab/pkg/logger"
)

const (
	// maxListLimit caps a single ListRuns call
	maxListLimit = 1000
	// listLookbackDays is how many day partitions ListRuns walks back from today
	listLookbackDays = 30
	dayLayout        = "2006-01-02"
)

const runColumns = `run_id, algorithm, pattern, direction, input_length, output_length,
	execution_time_ms, memory_usage_kb, created_at`

// Repository implements storage.RunRepository using Cassandra
type Repository struct {
	client  *Client
	logger  *logger.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewRepository creates a new Cassandra-based run repository
func NewRepository(client *Client, log *logger.Logger, timeout time.Duration) *Repository {
	return &Repository{
		client:  client,
		logger:  log,
		timeout: timeout,
		now:     time.Now,
	}
}

// CreateRun inserts a run
func (r *Repository) CreateRun(ctx context.Context, run *models.Run) error {
	query := fmt.Sprintf(`
		INSERT INTO %s.runs (run_id, algorithm, pattern, direction, input_length, output_length,
			execution_time_ms, memory_usage_kb, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		IF NOT EXISTS`, r.client.Keyspace())

	queryCtx, cancel := r.queryContext(ctx)
	defer cancel()
	if err := queryCtx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	applied, err := r.client.Session().Query(query,
		run.ID,
		run.Algorithm,
		run.Pattern,
		run.Direction,
		run.InputLength,
		run.OutputLength,
		run.ExecutionTimeMs,
		run.MemoryUsageKB,
		run.CreatedAt,
	).WithContext(queryCtx).MapScanCAS(make(map[string]interface{}))

	if err != nil {
		r.logger.Error("Failed to create run in Cassandra",
			logger.F("run_id", run.ID),
			logger.F("error", err.Error()))
		return fmt.Errorf("failed to create run: %w", err)
	}

	if !applied {
		return storage.ErrRunExists
	}

	if err := r.indexRun(queryCtx, run); err != nil {
		// Without the index row the run would never be listed.
		deleteQuery := fmt.Sprintf(`DELETE FROM %s.runs WHERE run_id = ?`, r.client.Keyspace())
		_ = r.client.Session().Query(deleteQuery, run.ID).WithContext(context.WithoutCancel(ctx)).Exec()
		r.logger.Error("Failed to index run in Cassandra",
			logger.F("run_id", run.ID),
			logger.F("error", err.Error()))
		return fmt.Errorf("failed to index run: %w", err)
	}

	r.logger.Debug("Run created", logger.F("run_id", run.ID))
	return nil
}

// indexRun writes the run into its day partition of runs_by_day
func (r *Repository) indexRun(ctx context.Context, run *models.Run) error {
	query := fmt.Sprintf(`
		INSERT INTO %s.runs_by_day (day, %s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, r.client.Keyspace(), runColumns)

	return r.client.Session().Query(query,
		dayBucket(run.CreatedAt),
		run.ID,
		run.Algorithm,
		run.Pattern,
		run.Direction,
		run.InputLength,
		run.OutputLength,
		run.ExecutionTimeMs,
		run.MemoryUsageKB,
		run.CreatedAt,
	).WithContext(ctx).Exec()
}

// GetRun retrieves a run by ID
func (r *Repository) GetRun(ctx context.Context, runID string) (*models.Run, error) {
	query := fmt.Sprintf(`
		SELECT run_id, algorithm, pattern, direction, input_length, output_length,
			execution_time_ms, memory_usage_kb, created_at
		FROM %s.runs
		WHERE run_id = ?`, r.client.Keyspace())

	queryCtx, cancel := r.queryContext(ctx)
	defer cancel()
	if err := queryCtx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	var run models.Run
	err := r.client.Session().Query(query, runID).WithContext(queryCtx).Scan(
		&run.ID,
		&run.Algorithm,
		&run.Pattern,
		&run.Direction,
		&run.InputLength,
		&run.OutputLength,
		&run.ExecutionTimeMs,
		&run.MemoryUsageKB,
		&run.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, storage.ErrRunNotFound
		}
		r.logger.Error("Failed to get run from Cassandra",
			logger.F("run_id", runID),
			logger.F("error", err.Error()))
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &run, nil
}

// ListRuns walks day partitions from today backwards, newest first,
// until limit runs are collected or listLookbackDays have been read.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.runs_by_day
		WHERE day = ?
		LIMIT ?`, runColumns, r.client.Keyspace())

	queryCtx, cancel := r.queryContext(ctx)
	defer cancel()

	runs := []*models.Run{}
	for _, day := range recentDays(r.now(), listLookbackDays) {
		if len(runs) >= limit {
			break
		}
		if err := queryCtx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled: %w", err)
		}

		iter := r.client.Session().Query(query, day, limit-len(runs)).WithContext(queryCtx).Iter()
		runs = append(runs, scanRuns(iter)...)
		if err := iter.Close(); err != nil {
			r.logger.Error("Failed to list runs from Cassandra",
				logger.F("day", day),
				logger.F("error", err.Error()))
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
	}

	return runs, nil
}

func scanRuns(iter *gocql.Iter) []*models.Run {
	var runs []*models.Run
	var run models.Run
	for iter.Scan(
		&run.ID,
		&run.Algorithm,
		&run.Pattern,
		&run.Direction,
		&run.InputLength,
		&run.OutputLength,
		&run.ExecutionTimeMs,
		&run.MemoryUsageKB,
		&run.CreatedAt,
	) {
		copied := run
		runs = append(runs, &copied)
	}
	return runs
}

// dayBucket is the runs_by_day partition key for t
func dayBucket(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// recentDays returns n day buckets ending at now, newest first
func recentDays(now time.Time, n int) []string {
	days := make([]string, 0, n)
	day := now.UTC()
	for i := 0; i < n; i++ {
		days = append(days, dayBucket(day))
		day = day.AddDate(0, 0, -1)
	}
	return days
}

// queryContext applies the configured timeout unless ctx already has a deadline
func (r *Repository) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

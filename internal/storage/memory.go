package storage

import (
	"context"
	"sync"

	"github.com/stringlab/internal/models"
)

// DefaultMemoryCapacity is the number of runs kept by NewMemoryStorage
const DefaultMemoryCapacity = 1000

// MemoryStorage keeps the most recent runs in memory
type MemoryStorage struct {
	mu       sync.RWMutex
	runs     map[string]*models.Run
	order    []string // insertion order, oldest first
	capacity int
}

// NewMemoryStorage creates a new in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return NewMemoryStorageWithCapacity(DefaultMemoryCapacity)
}

// NewMemoryStorageWithCapacity creates an in-memory storage that evicts the
// oldest run once capacity is reached
func NewMemoryStorageWithCapacity(capacity int) *MemoryStorage {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStorage{
		runs:     make(map[string]*models.Run),
		capacity: capacity,
	}
}

// CreateRun stores a run
func (s *MemoryStorage) CreateRun(ctx context.Context, run *models.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return ErrRunExists
	}

	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.runs, oldest)
	}

	stored := *run
	s.runs[run.ID] = &stored
	s.order = append(s.order, run.ID)
	return nil
}

// GetRun retrieves a run by ID
func (s *MemoryStorage) GetRun(ctx context.Context, runID string) (*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[runID]
	if !exists {
		return nil, ErrRunNotFound
	}

	copied := *run
	return &copied, nil
}

// ListRuns retrieves the most recent runs
func (s *MemoryStorage) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*models.Run, 0, len(s.runs))
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(runs) >= limit {
			break
		}
		copied := *s.runs[s.order[i]]
		runs = append(runs, &copied)
	}

	return runs, nil
}

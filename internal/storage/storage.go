package storage

import (
	"context"

	"github.com/stringlab/internal/models"
)

// RunRepository defines operations on analysis runs.
// Implemented by in-memory, Redis and Cassandra storage.
type RunRepository interface {
	CreateRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, runID string) (*models.Run, error)
	// ListRuns returns up to limit runs, newest first
	ListRuns(ctx context.Context, limit int) ([]*models.Run, error)
}

// Errors
var (
	ErrRunNotFound = &StorageError{Message: "run not found"}
	ErrRunExists   = &StorageError{Message: "run already exists"}
)

// StorageError represents a storage error
type StorageError struct {
	Message string
}

func (e *StorageError) Error() string {
	return e.Message
}

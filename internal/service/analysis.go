package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/stringlab/internal/convert"
	"github.com/stringlab/internal/models"
	"github.com/stringlab/internal/storage"
	"github.com/stringlab/internal/textgen"
	"github.com/stringlab/pkg/logger"
)

// DefaultLength is used when a generate request omits n
const DefaultLength = 100

// ValidationError is returned for requests the service refuses to run.
type ValidationError struct {
	Message              string
	MaxRecommendedLength int
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AnalysisService generates strings and measures conversion runs
type AnalysisService struct {
	generator *textgen.Generator
	converter *convert.Converter
	runs      storage.RunRepository
	maxLength int
	logger    *logger.Logger
	now       func() time.Time
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	generator *textgen.Generator,
	converter *convert.Converter,
	runs storage.RunRepository,
	maxLength int,
	log *logger.Logger,
) *AnalysisService {
	return &AnalysisService{
		generator: generator,
		converter: converter,
		runs:      runs,
		maxLength: maxLength,
		logger:    log,
		now:       time.Now,
	}
}

// Generate produces a string of n characters following pattern.
// A nil n selects DefaultLength and an empty pattern selects mixed.
// Unrecognised patterns draw from the mixed alphabet and are echoed back.
func (s *AnalysisService) Generate(ctx context.Context, n *int, pattern string) (*models.GenerateResponse, error) {
	length := DefaultLength
	if n != nil {
		length = *n
	}
	if pattern == "" {
		pattern = models.PatternMixed
	}

	if length < 1 {
		return nil, invalid("n must be greater than 0")
	}
	if s.maxLength > 0 && length > s.maxLength {
		return nil, invalid("n must not exceed %d", s.maxLength)
	}

	generated, err := s.generator.Generate(length, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to generate string: %w", err)
	}

	return &models.GenerateResponse{
		Success:   true,
		String:    generated,
		Length:    convert.Length(generated),
		Pattern:   pattern,
		Timestamp: s.now().Format(time.RFC3339Nano),
	}, nil
}

// Analyze runs the requested conversion over req.Text and measures it.
// The run is recorded; a storage failure is logged and does not fail the call.
func (s *AnalysisService) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	if req.Text == "" {
		return nil, invalid("Text is required")
	}

	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = models.AlgorithmIterative
	}
	if algorithm != models.AlgorithmIterative && algorithm != models.AlgorithmRecursive {
		return nil, invalid("Invalid algorithm")
	}

	pattern := req.Pattern
	if pattern == "" {
		pattern = models.PatternMixed
	}

	start := time.Now()
	output, err := s.converter.Convert(algorithm, req.Text, pattern, req.Direction)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, convert.ErrRecursionDepth) {
			return nil, &ValidationError{
				Message:              "Recursion depth exceeded. Try iterative algorithm.",
				MaxRecommendedLength: s.converter.MaxDepth,
			}
		}
		return nil, fmt.Errorf("failed to convert: %w", err)
	}

	executionMs := float64(elapsed.Nanoseconds()) / float64(time.Millisecond)
	now := s.now()

	run := &models.Run{
		ID:              uuid.New().String(),
		Algorithm:       algorithm,
		Pattern:         pattern,
		Direction:       req.Direction,
		InputLength:     convert.Length(req.Text),
		OutputLength:    convert.Length(output),
		ExecutionTimeMs: round(executionMs, 4),
		MemoryUsageKB:   round(convert.MemoryUsageKB(output), 2),
		CreatedAt:       now.UTC(),
	}

	runID := run.ID
	if err := s.runs.CreateRun(ctx, run); err != nil {
		s.logger.Error("Failed to record run", logger.F("run_id", run.ID), logger.F("error", err.Error()))
		runID = ""
	} else {
		s.logger.Debug("Run recorded",
			logger.F("run_id", run.ID),
			logger.F("algorithm", algorithm),
			logger.F("input_length", strconv.Itoa(run.InputLength)),
			logger.F("execution_time_ms", strconv.FormatFloat(run.ExecutionTimeMs, 'f', -1, 64)))
	}

	return &models.AnalyzeResponse{
		Success:         true,
		RunID:           runID,
		Input:           req.Text,
		Output:          output,
		Algorithm:       algorithm,
		ExecutionTimeMs: run.ExecutionTimeMs,
		MemoryUsageKB:   run.MemoryUsageKB,
		InputLength:     run.InputLength,
		OutputLength:    run.OutputLength,
		Timestamp:       now.Format(time.RFC3339Nano),
	}, nil
}

// GetRun retrieves a recorded run by ID
func (s *AnalysisService) GetRun(ctx context.Context, runID string) (*models.Run, error) {
	if runID == "" {
		return nil, invalid("run_id is required")
	}
	return s.runs.GetRun(ctx, runID)
}

// ListRuns returns up to limit recent runs
func (s *AnalysisService) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	runs, err := s.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

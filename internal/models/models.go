package models

import "time"

// Patterns select the alphabet a generated string is drawn from
const (
	PatternLower = "lower"
	PatternUpper = "upper"
	PatternMixed = "mixed"
)

// Algorithms select the conversion implementation
const (
	AlgorithmIterative = "iterative"
	AlgorithmRecursive = "recursive"
)

// Directions apply to mixed strings only
const (
	DirectionToUpper = "to_upper"
	DirectionToLower = "to_lower"
	DirectionSwap    = "swap"
)

// GenerateRequest represents the request to generate a string.
// Nil fields fall back to server defaults.
type GenerateRequest struct {
	N       *int   `json:"n,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

// GenerateResponse represents a generated string
type GenerateResponse struct {
	Success   bool   `json:"success"`
	String    string `json:"string"`
	Length    int    `json:"length"`
	Pattern   string `json:"pattern"`
	Timestamp string `json:"timestamp,omitempty"`
}

// AnalyzeRequest represents a conversion run request
type AnalyzeRequest struct {
	Text      string `json:"text"`
	Algorithm string `json:"algorithm,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Direction string `json:"direction,omitempty"` // only meaningful for mixed
}

// AnalyzeResponse represents the measured result of a conversion run
type AnalyzeResponse struct {
	Success         bool    `json:"success"`
	RunID           string  `json:"run_id,omitempty"`
	Input           string  `json:"input,omitempty"`
	Output          string  `json:"output"`
	Algorithm       string  `json:"algorithm,omitempty"`
	ExecutionTimeMs float64 `json:"execution_time_ms"`
	MemoryUsageKB   float64 `json:"memory_usage_kb"`
	InputLength     int     `json:"input_length,omitempty"`
	OutputLength    int     `json:"output_length"`
	Timestamp       string  `json:"timestamp"`
}

// Run is a persisted analysis measurement. Text bodies are not kept.
type Run struct {
	ID              string    `json:"id"`
	Algorithm       string    `json:"algorithm"`
	Pattern         string    `json:"pattern"`
	Direction       string    `json:"direction,omitempty"`
	InputLength     int       `json:"input_length"`
	OutputLength    int       `json:"output_length"`
	ExecutionTimeMs float64   `json:"execution_time_ms"`
	MemoryUsageKB   float64   `json:"memory_usage_kb"`
	CreatedAt       time.Time `json:"created_at"`
}

// RunsResponse lists recent runs
type RunsResponse struct {
	Runs  []*Run `json:"runs"`
	Count int    `json:"count"`
}

// StatusResponse is returned by the connectivity check
type StatusResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error                string `json:"error"`
	MaxRecommendedLength int    `json:"max_recommended_length,omitempty"`
}

// Package controller binds user input to the generate and analyze calls,
// keeps the generated string between them, and drives a View.
package controller

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stringlab/internal/client"
	"github.com/stringlab/internal/models"
)

// DisplayTimeLayout is used for rendering result timestamps
const DisplayTimeLayout = "2006-01-02 15:04:05"

// Errors
var (
	ErrInvalidCount = errors.New("enter a valid character count (minimum 1)")
	ErrNoString     = errors.New("generate a string first")
	ErrBusy         = errors.New("a request is already in progress")
)

const (
	generateFailed = "failed to generate string"
	analyzeFailed  = "failed to analyze"
)

var algorithmLabels = map[string][2]string{
	models.AlgorithmIterative: {"Iterative", "Uses a loop to convert the string character by character"},
	models.AlgorithmRecursive: {"Recursive", "Uses a recursive function to convert the string"},
}

// API is the subset of the service client the controller needs
type API interface {
	Generate(ctx context.Context, req models.GenerateRequest) (*models.GenerateResponse, error)
	Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResponse, error)
}

// Session is the client-side state set by a successful generate
type Session struct {
	String  string
	Pattern string
	Length  int
}

// Controller owns the session and issues one request at a time
type Controller struct {
	api      API
	view     View
	location *time.Location

	mu      sync.Mutex
	busy    bool
	session Session
}

// Option configures a Controller
type Option func(*Controller)

// WithLocation sets the zone result timestamps are rendered in
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		c.location = loc
	}
}

// New creates a controller
func New(api API, view View, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		view:     view,
		location: time.Local,
		session:  Session{Pattern: models.PatternMixed},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns a copy of the current session state
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Busy reports whether a request is in flight
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// SelectPattern shows direction options only for mixed strings
func (c *Controller) SelectPattern(pattern string) {
	c.view.SetDirectionVisible(pattern == models.PatternMixed)
}

// Generate validates countInput and requests a new string. On success the
// session is replaced and any shown analysis is hidden.
func (c *Controller) Generate(ctx context.Context, countInput, pattern string) error {
	n, err := ParseCount(countInput)
	if err != nil {
		c.view.ShowError(err.Error())
		return err
	}
	if pattern == "" {
		pattern = models.PatternMixed
	}

	if !c.begin() {
		return ErrBusy
	}
	defer c.end()

	resp, err := c.api.Generate(ctx, models.GenerateRequest{N: &n, Pattern: pattern})
	if err != nil {
		c.fail(err, generateFailed)
		return err
	}

	c.mu.Lock()
	c.session = Session{
		String:  resp.String,
		Pattern: resp.Pattern,
		Length:  resp.Length,
	}
	c.mu.Unlock()

	c.view.RenderGenerated(GeneratedString{
		Text:         resp.String,
		Length:       resp.Length,
		Pattern:      resp.Pattern,
		PatternLabel: capitalize(resp.Pattern),
	})
	c.view.HideResults()
	c.view.SetLoading(false)
	c.view.HideError()
	return nil
}

// Analyze runs the chosen algorithm over the session string.
func (c *Controller) Analyze(ctx context.Context, algorithm, direction string) error {
	session := c.Session()
	if session.String == "" {
		c.view.ShowError(ErrNoString.Error())
		return ErrNoString
	}

	if !c.begin() {
		return ErrBusy
	}
	defer c.end()

	resp, err := c.api.Analyze(ctx, models.AnalyzeRequest{
		Text:      session.String,
		Algorithm: algorithm,
		Pattern:   session.Pattern,
		Direction: direction,
	})
	if err != nil {
		c.fail(err, analyzeFailed)
		return err
	}

	result := AnalysisResult{
		Algorithm:       algorithm,
		ExecutionTimeMs: resp.ExecutionTimeMs,
		MemoryUsageKB:   resp.MemoryUsageKB,
		Output:          resp.Output,
		OutputLength:    resp.OutputLength,
		LocalTime:       resp.Timestamp,
	}
	if labels, ok := algorithmLabels[algorithm]; ok {
		result.AlgorithmLabel, result.AlgorithmDescription = labels[0], labels[1]
	} else {
		result.AlgorithmLabel = capitalize(algorithm)
	}
	if ts, err := ParseTimestamp(resp.Timestamp, c.location); err == nil {
		result.Timestamp = ts
		result.LocalTime = ts.Format(DisplayTimeLayout)
	}

	c.view.RenderAnalysis(result)
	c.view.SetLoading(false)
	c.view.HideError()
	return nil
}

// begin marks the controller busy and shows the loading state
func (c *Controller) begin() bool {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return false
	}
	c.busy = true
	c.mu.Unlock()

	c.view.SetLoading(true)
	c.view.HideError()
	return true
}

func (c *Controller) end() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *Controller) fail(err error, fallback string) {
	c.view.ShowError(ErrorMessage(err, fallback))
	c.view.SetLoading(false)
}

// ErrorMessage returns the service-provided message for err, or fallback
func ErrorMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// ParseCount parses a character count typed by the user
func ParseCount(input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 {
		return 0, ErrInvalidCount
	}
	return n, nil
}

// ParseTimestamp parses a service timestamp into loc. Timestamps without a
// zone offset are taken to be in loc already.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05.999999999", s, loc)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

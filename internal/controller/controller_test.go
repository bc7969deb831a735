package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stringlab/internal/client"
	"github.com/stringlab/internal/models"
)

type fakeAPI struct {
	mu            sync.Mutex
	generateCalls []models.GenerateRequest
	analyzeCalls  []models.AnalyzeRequest

	generateResp *models.GenerateResponse
	generateErr  error
	analyzeResp  *models.AnalyzeResponse
	analyzeErr   error

	// block, when set, holds calls until closed
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeAPI) Generate(ctx context.Context, req models.GenerateRequest) (*models.GenerateResponse, error) {
	f.mu.Lock()
	f.generateCalls = append(f.generateCalls, req)
	f.mu.Unlock()
	f.wait()
	return f.generateResp, f.generateErr
}

func (f *fakeAPI) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	f.mu.Lock()
	f.analyzeCalls = append(f.analyzeCalls, req)
	f.mu.Unlock()
	f.wait()
	return f.analyzeResp, f.analyzeErr
}

func (f *fakeAPI) wait() {
	if f.block == nil {
		return
	}
	if f.entered != nil {
		close(f.entered)
	}
	<-f.block
}

type recordingView struct {
	generated        *GeneratedString
	analysis         *AnalysisResult
	resultsVisible   bool
	errorMessage     string
	errorVisible     bool
	loading          bool
	loadingHistory   []bool
	directionVisible bool
}

func (v *recordingView) RenderGenerated(g GeneratedString) { v.generated = &g }
func (v *recordingView) RenderAnalysis(r AnalysisResult) {
	v.analysis = &r
	v.resultsVisible = true
}
func (v *recordingView) HideResults() { v.resultsVisible = false }
func (v *recordingView) ShowError(msg string) {
	v.errorMessage = msg
	v.errorVisible = true
}
func (v *recordingView) HideError() { v.errorVisible = false }
func (v *recordingView) SetLoading(loading bool) {
	v.loading = loading
	v.loadingHistory = append(v.loadingHistory, loading)
}
func (v *recordingView) SetDirectionVisible(visible bool) { v.directionVisible = visible }

func generated(s, pattern string) *models.GenerateResponse {
	return &models.GenerateResponse{Success: true, String: s, Length: len(s), Pattern: pattern}
}

func TestGenerate_InvalidCountSkipsNetwork(t *testing.T) {
	for _, input := range []string{"", "0", "-5", "abc", "1.5"} {
		t.Run(input, func(t *testing.T) {
			api := &fakeAPI{}
			view := &recordingView{}
			c := New(api, view)

			err := c.Generate(context.Background(), input, models.PatternMixed)

			assert.ErrorIs(t, err, ErrInvalidCount)
			assert.Empty(t, api.generateCalls)
			assert.True(t, view.errorVisible)
			assert.Equal(t, ErrInvalidCount.Error(), view.errorMessage)
			assert.False(t, view.loading)
		})
	}
}

func TestGenerate_ReplacesSessionAndHidesResults(t *testing.T) {
	api := &fakeAPI{generateResp: generated("aBcDe", models.PatternMixed)}
	view := &recordingView{resultsVisible: true}
	c := New(api, view)

	require.NoError(t, c.Generate(context.Background(), " 5 ", models.PatternMixed))

	require.Len(t, api.generateCalls, 1)
	require.NotNil(t, api.generateCalls[0].N)
	assert.Equal(t, 5, *api.generateCalls[0].N)
	assert.Equal(t, models.PatternMixed, api.generateCalls[0].Pattern)

	session := c.Session()
	assert.Equal(t, "aBcDe", session.String)
	assert.Equal(t, 5, session.Length)
	assert.Equal(t, models.PatternMixed, session.Pattern)

	require.NotNil(t, view.generated)
	assert.Equal(t, "Mixed", view.generated.PatternLabel)
	assert.False(t, view.resultsVisible)
	assert.False(t, view.errorVisible)
	assert.False(t, view.loading)
	assert.Equal(t, []bool{true, false}, view.loadingHistory)
}

func TestGenerate_SessionMatchesResponseFields(t *testing.T) {
	// The response, not the request, is the source of truth.
	api := &fakeAPI{generateResp: &models.GenerateResponse{String: "ABC", Length: 3, Pattern: models.PatternUpper}}
	c := New(api, &recordingView{})

	require.NoError(t, c.Generate(context.Background(), "10", models.PatternLower))

	assert.Equal(t, Session{String: "ABC", Pattern: models.PatternUpper, Length: 3}, c.Session())
}

func TestGenerate_ServiceError(t *testing.T) {
	api := &fakeAPI{generateErr: &client.APIError{StatusCode: 400, Message: "boom"}}
	view := &recordingView{}
	c := New(api, view)

	err := c.Generate(context.Background(), "3", models.PatternLower)

	require.Error(t, err)
	assert.Equal(t, "boom", view.errorMessage)
	assert.True(t, view.errorVisible)
	assert.False(t, view.loading)
	assert.False(t, c.Busy())
	assert.Empty(t, c.Session().String, "failed generate must not touch the session")
}

func TestGenerate_TransportErrorUsesGenericMessage(t *testing.T) {
	api := &fakeAPI{generateErr: errors.New("dial tcp: connection refused")}
	view := &recordingView{}
	c := New(api, view)

	require.Error(t, c.Generate(context.Background(), "3", models.PatternLower))
	assert.Equal(t, "failed to generate string", view.errorMessage)
	assert.False(t, view.loading)
}

func TestAnalyze_WithoutGenerateSkipsNetwork(t *testing.T) {
	api := &fakeAPI{}
	view := &recordingView{}
	c := New(api, view)

	err := c.Analyze(context.Background(), models.AlgorithmIterative, models.DirectionSwap)

	assert.ErrorIs(t, err, ErrNoString)
	assert.Empty(t, api.analyzeCalls)
	assert.Equal(t, ErrNoString.Error(), view.errorMessage)
	assert.False(t, view.loading)
}

func TestAnalyze_RendersResult(t *testing.T) {
	api := &fakeAPI{
		generateResp: generated("aBc", models.PatternMixed),
		analyzeResp: &models.AnalyzeResponse{
			Output:          "AbC",
			OutputLength:    3,
			ExecutionTimeMs: 0.0123,
			MemoryUsageKB:   0.06,
			Timestamp:       "2024-01-15T10:00:00.5Z",
		},
	}
	view := &recordingView{}
	tokyo := time.FixedZone("JST", 9*60*60)
	c := New(api, view, WithLocation(tokyo))
	ctx := context.Background()

	require.NoError(t, c.Generate(ctx, "3", models.PatternMixed))
	require.NoError(t, c.Analyze(ctx, models.AlgorithmRecursive, models.DirectionSwap))

	require.Len(t, api.analyzeCalls, 1)
	assert.Equal(t, models.AnalyzeRequest{
		Text:      "aBc",
		Algorithm: models.AlgorithmRecursive,
		Pattern:   models.PatternMixed,
		Direction: models.DirectionSwap,
	}, api.analyzeCalls[0])

	require.NotNil(t, view.analysis)
	assert.Equal(t, 3, view.analysis.OutputLength)
	assert.Equal(t, "AbC", view.analysis.Output)
	assert.Equal(t, "Recursive", view.analysis.AlgorithmLabel)
	assert.NotEmpty(t, view.analysis.AlgorithmDescription)
	assert.Equal(t, "2024-01-15 19:00:00", view.analysis.LocalTime)
	assert.Equal(t, tokyo, view.analysis.Timestamp.Location())
	assert.True(t, view.resultsVisible)
	assert.False(t, view.loading)
}

func TestAnalyze_ServiceError(t *testing.T) {
	api := &fakeAPI{
		generateResp: generated("abc", models.PatternLower),
		analyzeErr:   &client.APIError{StatusCode: 500, Message: "boom"},
	}
	view := &recordingView{}
	c := New(api, view)
	ctx := context.Background()

	require.NoError(t, c.Generate(ctx, "3", models.PatternLower))
	require.Error(t, c.Analyze(ctx, models.AlgorithmIterative, ""))

	assert.Equal(t, "boom", view.errorMessage)
	assert.True(t, view.errorVisible)
	assert.False(t, view.loading)
	assert.False(t, c.Busy())

	// A later successful call clears the error.
	api.analyzeErr = nil
	api.analyzeResp = &models.AnalyzeResponse{Output: "ABC", OutputLength: 3, Timestamp: "2024-01-15T10:00:00Z"}
	require.NoError(t, c.Analyze(ctx, models.AlgorithmIterative, ""))
	assert.False(t, view.errorVisible)
}

func TestAnalyze_EmptyErrorFallsBack(t *testing.T) {
	api := &fakeAPI{
		generateResp: generated("abc", models.PatternLower),
		analyzeErr:   &client.APIError{StatusCode: 502},
	}
	view := &recordingView{}
	c := New(api, view)
	ctx := context.Background()

	require.NoError(t, c.Generate(ctx, "3", models.PatternLower))
	require.Error(t, c.Analyze(ctx, models.AlgorithmIterative, ""))
	assert.Equal(t, "failed to analyze", view.errorMessage)
}

func TestBusyRejectsSecondCall(t *testing.T) {
	api := &fakeAPI{
		generateResp: generated("abc", models.PatternLower),
		block:        make(chan struct{}),
		entered:      make(chan struct{}),
	}
	c := New(api, NopView{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- c.Generate(ctx, "3", models.PatternLower)
	}()

	<-api.entered
	assert.True(t, c.Busy())
	assert.ErrorIs(t, c.Generate(ctx, "3", models.PatternLower), ErrBusy)

	close(api.block)
	require.NoError(t, <-done)
	assert.False(t, c.Busy())
	assert.Len(t, api.generateCalls, 1)
}

func TestSelectPattern(t *testing.T) {
	view := &recordingView{}
	c := New(&fakeAPI{}, view)

	c.SelectPattern(models.PatternMixed)
	assert.True(t, view.directionVisible)

	c.SelectPattern(models.PatternLower)
	assert.False(t, view.directionVisible)

	c.SelectPattern(models.PatternUpper)
	assert.False(t, view.directionVisible)

	c.SelectPattern(models.PatternMixed)
	assert.True(t, view.directionVisible)
}

func TestParseTimestamp(t *testing.T) {
	loc := time.FixedZone("X", -5*60*60)

	ts, err := ParseTimestamp("2024-01-15T10:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15 05:00:00", ts.Format(DisplayTimeLayout))

	// Naive timestamps are already local.
	ts, err = ParseTimestamp("2024-01-15T10:00:00.123456", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15 10:00:00", ts.Format(DisplayTimeLayout))
	assert.Equal(t, loc, ts.Location())

	_, err = ParseTimestamp("yesterday", loc)
	assert.Error(t, err)
}

func TestAnalyze_UnparseableTimestampShownRaw(t *testing.T) {
	api := &fakeAPI{
		generateResp: generated("abc", models.PatternLower),
		analyzeResp:  &models.AnalyzeResponse{Output: "ABC", OutputLength: 3, Timestamp: "soon"},
	}
	view := &recordingView{}
	c := New(api, view)
	ctx := context.Background()

	require.NoError(t, c.Generate(ctx, "3", models.PatternLower))
	require.NoError(t, c.Analyze(ctx, models.AlgorithmIterative, ""))
	assert.Equal(t, "soon", view.analysis.LocalTime)
	assert.True(t, view.analysis.Timestamp.IsZero())
}

package ui

import (
	"bytes"
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stringlab/internal/client"
	"github.com/stringlab/internal/controller"
	"github.com/stringlab/internal/models"
)

type stubAPI struct {
	generate *models.GenerateResponse
	analyze  *models.AnalyzeResponse
	err      error

	lastAnalyze models.AnalyzeRequest
}

func (s *stubAPI) Generate(ctx context.Context, req models.GenerateRequest) (*models.GenerateResponse, error) {
	return s.generate, s.err
}

func (s *stubAPI) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	s.lastAnalyze = req
	return s.analyze, s.err
}

func TestTextView(t *testing.T) {
	var buf bytes.Buffer
	view := NewTextView(&buf)

	view.RenderGenerated(controller.GeneratedString{Text: "aBc", Length: 3, Pattern: "mixed", PatternLabel: "Mixed"})
	view.RenderAnalysis(controller.AnalysisResult{
		Algorithm:       "iterative",
		AlgorithmLabel:  "Iterative",
		ExecutionTimeMs: 0.0123,
		MemoryUsageKB:   0.06,
		Output:          "AbC",
		OutputLength:    3,
		LocalTime:       "2024-01-15 10:00:00",
	})
	view.ShowError("boom")

	out := buf.String()
	assert.Contains(t, out, "aBc")
	assert.Contains(t, out, "Mixed")
	assert.Contains(t, out, "Iterative")
	assert.Contains(t, out, "0.0123 ms")
	assert.Contains(t, out, "0.06 KB")
	assert.Contains(t, out, "AbC")
	assert.Contains(t, out, "2024-01-15 10:00:00")
	assert.Contains(t, out, "error: boom")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "abc", preview("abc"))

	long := bytes.Repeat([]byte("x"), previewLimit+10)
	assert.Equal(t, string(long[:previewLimit])+"…", preview(string(long)))
}

func press(m Model, k tea.KeyType) Model {
	next, _ := m.Update(tea.KeyMsg{Type: k})
	return next.(Model)
}

func TestModel_DirectionFollowsPattern(t *testing.T) {
	m := NewModel(context.Background(), &stubAPI{})
	require.True(t, m.screen.snapshot().directionVisible, "mixed is the default pattern")
	assert.Contains(t, m.View(), "Direction")

	m = press(m, tea.KeyTab) // pattern
	assert.Equal(t, FieldPattern, m.focus)
	m = press(m, tea.KeyRight) // lower
	assert.Equal(t, models.PatternLower, patternChoices[m.pattern])
	assert.False(t, m.screen.snapshot().directionVisible)
	assert.NotContains(t, m.View(), "Direction")

	// Direction is skipped while hidden.
	m = press(m, tea.KeyTab)
	m = press(m, tea.KeyTab)
	assert.Equal(t, FieldCount, m.focus)
}

func TestModel_ArrowsMoveCountCursor(t *testing.T) {
	m := NewModel(context.Background(), &stubAPI{})
	require.Equal(t, FieldCount, m.focus)

	m = press(m, tea.KeyLeft)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'5'}})
	m = next.(Model)

	assert.Equal(t, "1050", m.count.Value())
	assert.Equal(t, 0, m.pattern, "pattern must not change while editing the count")

	m = press(m, tea.KeyRight)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	m = next.(Model)
	assert.Equal(t, "10501", m.count.Value())
}

func TestModel_GenerateThenAnalyze(t *testing.T) {
	api := &stubAPI{
		generate: &models.GenerateResponse{Success: true, String: "aBcDe", Length: 5, Pattern: models.PatternMixed},
		analyze: &models.AnalyzeResponse{
			Success:      true,
			Output:       "AbCdE",
			OutputLength: 5,
			Timestamp:    "2024-01-15T10:00:00Z",
		},
	}
	m := NewModel(context.Background(), api)

	msg := m.generate()()
	require.IsType(t, requestDoneMsg{}, msg)
	require.NoError(t, msg.(requestDoneMsg).err)
	assert.Contains(t, m.View(), "aBcDe")

	msg = m.analyze()()
	require.NoError(t, msg.(requestDoneMsg).err)
	assert.Equal(t, models.DirectionSwap, api.lastAnalyze.Direction)
	assert.Equal(t, "aBcDe", api.lastAnalyze.Text)
	assert.Contains(t, m.View(), "AbCdE")
}

func TestModel_ShowsServiceError(t *testing.T) {
	api := &stubAPI{err: &client.APIError{StatusCode: 400, Message: "n must be greater than 0"}}
	m := NewModel(context.Background(), api)

	msg := m.generate()()
	require.Error(t, msg.(requestDoneMsg).err)
	assert.Contains(t, m.View(), "n must be greater than 0")
}

func TestModel_AnalyzeBeforeGenerate(t *testing.T) {
	m := NewModel(context.Background(), &stubAPI{})

	msg := m.analyze()()
	assert.ErrorIs(t, msg.(requestDoneMsg).err, controller.ErrNoString)
	assert.Contains(t, m.View(), controller.ErrNoString.Error())
}

func TestTextView_RenderRuns(t *testing.T) {
	var buf bytes.Buffer
	view := NewTextView(&buf)

	view.RenderRuns(nil)
	assert.Contains(t, buf.String(), "no runs recorded")

	buf.Reset()
	view.RenderRuns([]*models.Run{{
		ID:              "run-1",
		Algorithm:       models.AlgorithmRecursive,
		Pattern:         models.PatternMixed,
		Direction:       models.DirectionSwap,
		InputLength:     42,
		ExecutionTimeMs: 0.5,
		MemoryUsageKB:   0.1,
	}})
	out := buf.String()
	assert.Contains(t, out, "ALGORITHM")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "recursive")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "0.5 ms")
}

package controller

import "time"

// View renders controller state. Implementations must not call back into
// the controller from these methods.
type View interface {
	RenderGenerated(GeneratedString)
	RenderAnalysis(AnalysisResult)
	HideResults()
	ShowError(message string)
	HideError()
	// SetLoading toggles the busy indicator; the run action is disabled while loading
	SetLoading(loading bool)
	SetDirectionVisible(visible bool)
}

// GeneratedString is what the view shows after a successful generate
type GeneratedString struct {
	Text         string
	Length       int
	Pattern      string
	PatternLabel string
}

// AnalysisResult is what the view shows after a successful analyze
type AnalysisResult struct {
	Algorithm            string
	AlgorithmLabel       string
	AlgorithmDescription string
	ExecutionTimeMs      float64
	MemoryUsageKB        float64
	Output               string
	OutputLength         int
	Timestamp            time.Time // zero when the service timestamp could not be parsed
	LocalTime            string
}

// NopView discards all rendering
type NopView struct{}

func (NopView) RenderGenerated(GeneratedString) {}
func (NopView) RenderAnalysis(AnalysisResult)   {}
func (NopView) HideResults()                    {}
func (NopView) ShowError(string)                {}
func (NopView) HideError()                      {}
func (NopView) SetLoading(bool)                 {}
func (NopView) SetDirectionVisible(bool)        {}

package ui

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/stringlab/internal/controller"
	"github.com/stringlab/internal/models"
)

// TextView renders controller output as lines on a writer
type TextView struct {
	w io.Writer
}

// NewTextView creates a view writing to w
func NewTextView(w io.Writer) *TextView {
	return &TextView{w: w}
}

func (v *TextView) RenderGenerated(g controller.GeneratedString) {
	body := row("String", preview(g.Text)) + "\n" +
		row("Length", strconv.Itoa(g.Length)) + "\n" +
		row("Pattern", g.PatternLabel)
	fmt.Fprintln(v.w, SectionStyle.Render(body))
}

func (v *TextView) RenderAnalysis(r controller.AnalysisResult) {
	body := badge(r.Algorithm, r.AlgorithmLabel) + "\n"
	if r.AlgorithmDescription != "" {
		body += LabelStyle.UnsetWidth().Render(r.AlgorithmDescription) + "\n"
	}
	body += row("Time", formatMs(r.ExecutionTimeMs)) + "\n" +
		row("Memory", formatKB(r.MemoryUsageKB)) + "\n" +
		row("Output", preview(r.Output)) + "\n" +
		row("Output length", strconv.Itoa(r.OutputLength)) + "\n" +
		row("Timestamp", r.LocalTime)
	fmt.Fprintln(v.w, ResultStyle.Render(body))
}

func (v *TextView) HideResults() {}

func (v *TextView) ShowError(message string) {
	fmt.Fprintln(v.w, ErrorStyle.Render("error: "+message))
}

func (v *TextView) HideError() {}

func (v *TextView) SetLoading(loading bool) {
	if loading {
		fmt.Fprintln(v.w, LabelStyle.UnsetWidth().Render("working..."))
	}
}

func (v *TextView) SetDirectionVisible(visible bool) {}

// RenderRuns prints run history as a table, newest first
func (v *TextView) RenderRuns(runs []*models.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(v.w, LabelStyle.UnsetWidth().Render("no runs recorded"))
		return
	}

	tw := tabwriter.NewWriter(v.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tALGORITHM\tPATTERN\tDIRECTION\tLENGTH\tTIME\tMEMORY\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.Algorithm, r.Pattern, r.Direction, r.InputLength,
			formatMs(r.ExecutionTimeMs), formatKB(r.MemoryUsageKB),
			r.CreatedAt.Local().Format(controller.DisplayTimeLayout))
	}
	_ = tw.Flush()
}

func formatMs(ms float64) string {
	return strconv.FormatFloat(ms, 'f', -1, 64) + " ms"
}

func formatKB(kb float64) string {
	return strconv.FormatFloat(kb, 'f', -1, 64) + " KB"
}

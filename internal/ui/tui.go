package ui

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stringlab/internal/controller"
	"github.com/stringlab/internal/models"
)

// Field identifies the focused form control
type Field int

const (
	FieldCount Field = iota
	FieldPattern
	FieldAlgorithm
	FieldDirection
)

var (
	patternChoices   = []string{models.PatternMixed, models.PatternLower, models.PatternUpper}
	algorithmChoices = []string{models.AlgorithmIterative, models.AlgorithmRecursive}
	directionChoices = []string{models.DirectionSwap, models.DirectionToUpper, models.DirectionToLower}
)

// screen is the controller.View the TUI renders from. Controller calls run
// inside tea.Cmd goroutines, so all access is locked.
type screen struct {
	mu               sync.Mutex
	generated        *controller.GeneratedString
	analysis         *controller.AnalysisResult
	resultsVisible   bool
	errMsg           string
	errVisible       bool
	loading          bool
	directionVisible bool
}

func (s *screen) RenderGenerated(g controller.GeneratedString) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generated = &g
}

func (s *screen) RenderAnalysis(r controller.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysis = &r
	s.resultsVisible = true
}

func (s *screen) HideResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resultsVisible = false
}

func (s *screen) ShowError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = message
	s.errVisible = true
}

func (s *screen) HideError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errVisible = false
}

func (s *screen) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

func (s *screen) SetDirectionVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.directionVisible = visible
}

type snapshot struct {
	generated        *controller.GeneratedString
	analysis         *controller.AnalysisResult
	resultsVisible   bool
	errMsg           string
	errVisible       bool
	loading          bool
	directionVisible bool
}

func (s *screen) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		generated:        s.generated,
		analysis:         s.analysis,
		resultsVisible:   s.resultsVisible,
		errMsg:           s.errMsg,
		errVisible:       s.errVisible,
		loading:          s.loading,
		directionVisible: s.directionVisible,
	}
}

// requestDoneMsg is sent when a controller call returns
type requestDoneMsg struct {
	err error
}

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Left     key.Binding
	Right    key.Binding
	Generate key.Binding
	Run      key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Right, k.Generate, k.Run, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Left, k.Right},
		{k.Generate, k.Run, k.Quit},
	}
}

func newKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "previous option"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("←/→", "change option"),
		),
		Generate: key.NewBinding(
			key.WithKeys("enter", "ctrl+g"),
			key.WithHelp("enter", "generate"),
		),
		Run: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "run analysis"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// Model is the interactive generate-and-analyze form
type Model struct {
	ctx    context.Context
	ctrl   *controller.Controller
	screen *screen

	count     textinput.Model
	focus     Field
	pattern   int
	algorithm int
	direction int

	spinner spinner.Model
	help    help.Model
	keys    keyMap
	width   int
}

// NewModel creates the form backed by api
func NewModel(ctx context.Context, api controller.API, opts ...controller.Option) Model {
	s := &screen{}
	ctrl := controller.New(api, s, opts...)
	ctrl.SelectPattern(patternChoices[0])

	ti := textinput.New()
	ti.Placeholder = strconv.Itoa(100)
	ti.SetValue("100")
	ti.CharLimit = 9
	ti.Width = 12
	ti.Prompt = ""
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = FocusedStyle

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		screen:  s,
		count:   ti,
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case requestDoneMsg:
		// Errors are already on screen via the view.
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)
		return m, nil
	case key.Matches(msg, m.keys.Generate):
		return m, m.generate()
	case key.Matches(msg, m.keys.Run):
		return m, m.analyze()
	case m.focus != FieldCount && key.Matches(msg, m.keys.Left):
		m.cycle(-1)
		return m, nil
	case m.focus != FieldCount && key.Matches(msg, m.keys.Right):
		m.cycle(1)
		return m, nil
	}

	if m.focus == FieldCount {
		var cmd tea.Cmd
		m.count, cmd = m.count.Update(msg)
		return m, cmd
	}
	return m, nil
}

// fields lists the focusable controls; direction only for mixed strings
func (m Model) fields() []Field {
	fields := []Field{FieldCount, FieldPattern, FieldAlgorithm}
	if m.screen.snapshot().directionVisible {
		fields = append(fields, FieldDirection)
	}
	return fields
}

func (m *Model) moveFocus(delta int) {
	fields := m.fields()
	idx := 0
	for i, f := range fields {
		if f == m.focus {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(fields)) % len(fields)
	m.focus = fields[idx]

	if m.focus == FieldCount {
		m.count.Focus()
	} else {
		m.count.Blur()
	}
}

func (m *Model) cycle(delta int) {
	switch m.focus {
	case FieldPattern:
		m.pattern = wrap(m.pattern+delta, len(patternChoices))
		m.ctrl.SelectPattern(patternChoices[m.pattern])
	case FieldAlgorithm:
		m.algorithm = wrap(m.algorithm+delta, len(algorithmChoices))
	case FieldDirection:
		m.direction = wrap(m.direction+delta, len(directionChoices))
	}
}

func wrap(i, n int) int {
	return (i%n + n) % n
}

func (m Model) generate() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	input, pattern := m.count.Value(), patternChoices[m.pattern]
	return func() tea.Msg {
		return requestDoneMsg{err: ctrl.Generate(ctx, input, pattern)}
	}
}

func (m Model) analyze() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	algorithm := algorithmChoices[m.algorithm]
	direction := ""
	if m.screen.snapshot().directionVisible {
		direction = directionChoices[m.direction]
	}
	return func() tea.Msg {
		return requestDoneMsg{err: ctrl.Analyze(ctx, algorithm, direction)}
	}
}

// View implements tea.Model
func (m Model) View() string {
	state := m.screen.snapshot()
	var b strings.Builder

	b.WriteString(TitleStyle.Render("String Lab"))
	b.WriteString("\n\n")

	b.WriteString(m.label("Characters", FieldCount) + m.count.View() + "\n")
	b.WriteString(m.label("Pattern", FieldPattern) + choice(patternChoices, m.pattern) + "\n")
	b.WriteString(m.label("Algorithm", FieldAlgorithm) + choice(algorithmChoices, m.algorithm) + "\n")
	if state.directionVisible {
		b.WriteString(m.label("Direction", FieldDirection) + choice(directionChoices, m.direction) + "\n")
	}
	b.WriteString("\n")

	if state.generated != nil {
		g := state.generated
		body := row("String", preview(g.Text)) + "\n" +
			row("Length", strconv.Itoa(g.Length)) + "\n" +
			row("Pattern", g.PatternLabel)
		b.WriteString(SectionStyle.Render(body) + "\n")
	}

	if state.resultsVisible && state.analysis != nil {
		r := state.analysis
		body := badge(r.Algorithm, r.AlgorithmLabel) + "\n" +
			row("Time", formatMs(r.ExecutionTimeMs)) + "\n" +
			row("Memory", formatKB(r.MemoryUsageKB)) + "\n" +
			row("Output", preview(r.Output)) + "\n" +
			row("Output length", strconv.Itoa(r.OutputLength)) + "\n" +
			row("Timestamp", r.LocalTime)
		b.WriteString(ResultStyle.Render(body) + "\n")
	}

	if state.loading {
		b.WriteString(m.spinner.View() + " working...\n")
	}
	if state.errVisible {
		b.WriteString(ErrorStyle.Render(state.errMsg) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m Model) label(text string, f Field) string {
	if m.focus == f {
		return FocusedStyle.Width(14).Render("> " + text)
	}
	return LabelStyle.Render("  " + text)
}

func choice(options []string, selected int) string {
	parts := make([]string, len(options))
	for i, opt := range options {
		if i == selected {
			parts[i] = FocusedStyle.Render("[" + opt + "]")
		} else {
			parts[i] = lipgloss.NewStyle().Foreground(MutedColor).Render(" " + opt + " ")
		}
	}
	return strings.Join(parts, " ")
}

// Run starts the interactive program and blocks until it exits
func Run(ctx context.Context, api controller.API, opts ...controller.Option) error {
	p := tea.NewProgram(NewModel(ctx, api, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

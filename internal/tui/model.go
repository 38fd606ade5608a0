// Package tui implements the interactive terminal dashboard.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/rxslot-cli/internal/pipeline"
	"github.com/KaramelBytes/rxslot-cli/internal/report"
)

// RunFunc executes one pipeline run for the given configuration.
type RunFunc func(ctx context.Context, cfg pipeline.Config) (*pipeline.Result, error)

// Pane is the section shown below the threshold sliders.
type Pane int

const (
	PaneData Pane = iota
	PaneRules
	PanePlan
	paneCount
)

// resultMsg carries a finished run. seq ties it to the threshold change
// that started it so stale runs are dropped.
type resultMsg struct {
	res *pipeline.Result
	err error
	seq int
}

// Model holds the dashboard state.
type Model struct {
	ctx     context.Context
	run     RunFunc
	result  *pipeline.Result
	err     error
	msg     report.Messages
	theme   Theme
	keymap  KeyMap
	help    help.Model
	rules   table.Model
	cfg     pipeline.Config
	seq     int
	width   int
	height  int
	pane    Pane
	running bool
}

// NewModel creates a dashboard. initial may be nil, in which case Init
// starts the first run.
func NewModel(ctx context.Context, cfg pipeline.Config, run RunFunc, msg report.Messages, initial *pipeline.Result) Model {
	m := Model{
		ctx:    ctx,
		run:    run,
		cfg:    cfg,
		msg:    msg,
		theme:  DefaultTheme,
		keymap: DefaultKeyMap(),
		help:   help.New(),
		width:  100,
		height: 30,
	}
	m.rules = newRuleTable(msg)
	if initial != nil {
		m.setResult(initial)
	} else {
		m.running = true
	}
	return m
}

func newRuleTable(msg report.Messages) table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: msg.Antecedents, Width: 28},
			{Title: msg.Consequents, Width: 28},
			{Title: msg.Support, Width: 9},
			{Title: msg.Confidence, Width: 11},
			{Title: msg.Lift, Width: 7},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(DefaultTheme.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#fafafa")).
		Background(DefaultTheme.Primary)
	t.SetStyles(s)
	return t
}

// Init starts the first run when no initial result was given.
func (m Model) Init() tea.Cmd {
	if m.result == nil {
		return m.runCmd()
	}
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.rules.SetHeight(max(5, m.height-16))
		return m, nil

	case resultMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.running = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.setResult(msg.res)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keymap.NextPane):
			m.pane = (m.pane + 1) % paneCount
			return m, nil
		case key.Matches(msg, m.keymap.SupportDown):
			return m.setThresholds(pipeline.SupportRange.Dec(m.cfg.MinSupport), m.cfg.MinConfidence)
		case key.Matches(msg, m.keymap.SupportUp):
			return m.setThresholds(pipeline.SupportRange.Inc(m.cfg.MinSupport), m.cfg.MinConfidence)
		case key.Matches(msg, m.keymap.ConfidenceDown):
			return m.setThresholds(m.cfg.MinSupport, pipeline.ConfidenceRange.Dec(m.cfg.MinConfidence))
		case key.Matches(msg, m.keymap.ConfidenceUp):
			return m.setThresholds(m.cfg.MinSupport, pipeline.ConfidenceRange.Inc(m.cfg.MinConfidence))
		case key.Matches(msg, m.keymap.Rerun):
			return m.rerun()
		}
	}

	if m.pane == PaneRules {
		var cmd tea.Cmd
		m.rules, cmd = m.rules.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) setThresholds(support, confidence float64) (tea.Model, tea.Cmd) {
	if support == m.cfg.MinSupport && confidence == m.cfg.MinConfidence {
		return m, nil
	}
	m.cfg.MinSupport = support
	m.cfg.MinConfidence = confidence
	return m.rerun()
}

func (m Model) rerun() (tea.Model, tea.Cmd) {
	m.seq++
	m.running = true
	return m, m.runCmd()
}

func (m Model) runCmd() tea.Cmd {
	ctx, run, cfg, seq := m.ctx, m.run, m.cfg, m.seq
	return func() tea.Msg {
		res, err := run(ctx, cfg)
		return resultMsg{res: res, err: err, seq: seq}
	}
}

func (m *Model) setResult(res *pipeline.Result) {
	m.result = res
	rows := ruleRows(res)
	trows := make([]table.Row, len(rows))
	for i, r := range rows {
		trows[i] = table.Row(r)
	}
	m.rules.SetRows(trows)
	m.rules.GotoTop()
}

// Thresholds returns the current slider values.
func (m Model) Thresholds() (support, confidence float64) {
	return m.cfg.MinSupport, m.cfg.MinConfidence
}

// Result returns the last successful run, if any.
func (m Model) Result() *pipeline.Result { return m.result }

// View renders the dashboard.
func (m Model) View() string {
	th := m.theme
	var b strings.Builder
	b.WriteString(th.Title.Render(m.msg.Title))
	b.WriteString("\n")
	b.WriteString(th.Subtitle.Render(m.msg.Subtitle))
	b.WriteString("\n\n")
	b.WriteString(m.slidersView())
	b.WriteString("\n")
	b.WriteString(m.tabsView())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(th.Error.Render("✗ Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	switch {
	case m.result == nil:
		b.WriteString(th.Muted.Render("…"))
	case m.pane == PaneData:
		b.WriteString(th.Heading.Render(m.msg.PreviewHeading))
		b.WriteString("\n")
		b.WriteString(previewView(m.result, th, m.width))
	case m.pane == PaneRules:
		b.WriteString(m.rulesPane())
	case m.pane == PanePlan:
		b.WriteString(th.Heading.Render(m.msg.PlanHeading))
		b.WriteString("\n")
		b.WriteString(planView(m.result, m.msg, th))
	}
	b.WriteString("\n\n")
	b.WriteString(th.Muted.Render(m.msg.Caption))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

func (m Model) slidersView() string {
	th := m.theme
	status := ""
	if m.running {
		status = th.Muted.Render(" running…")
	}
	line := func(label string, v float64, r pipeline.Range) string {
		return fmt.Sprintf("%s ◀ %s ▶ %s", padRight(label, 24), th.Value.Render(fmt.Sprintf("%.2f", v)), gauge(v, r, 20, th))
	}
	return line(m.msg.MinSupport, m.cfg.MinSupport, pipeline.SupportRange) + status + "\n" +
		line(m.msg.MinConfidence, m.cfg.MinConfidence, pipeline.ConfidenceRange)
}

func (m Model) tabsView() string {
	names := []string{m.msg.PreviewHeading, m.msg.RulesHeading, m.msg.PlanHeading}
	tabs := make([]string, len(names))
	for i, n := range names {
		if Pane(i) == m.pane {
			tabs[i] = m.theme.TabActive.Render(n)
		} else {
			tabs[i] = m.theme.Tab.Render(n)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) rulesPane() string {
	th := m.theme
	var b strings.Builder
	b.WriteString(th.Heading.Render(m.msg.RulesHeading))
	b.WriteString("\n")
	b.WriteString(ruleCountLine(m.result, m.msg, th))
	b.WriteString("\n")
	if m.result.Empty() {
		b.WriteString(th.Warning.Render("⚠ " + m.msg.NoRules))
		return b.String()
	}
	b.WriteString(m.rules.View())
	b.WriteString("\n")
	b.WriteString(th.Heading.Render(m.msg.HeatHeading))
	b.WriteString("\n")
	b.WriteString(barsView(m.result, th, min(m.width, 80)))
	return b.String()
}

package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/rxslot-cli/internal/mining"
	"github.com/KaramelBytes/rxslot-cli/internal/pipeline"
	"github.com/KaramelBytes/rxslot-cli/internal/report"
)

// pairConfig yields A 1.0, B 0.67, AB 0.67 and the rules A→B (0.67), B→A (1.0).
func pairConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Source = pipeline.Source{Name: "rx.csv", Data: []byte("處方內容\n\"A, B\"\n\"A, B\"\nA\n")}
	cfg.MinSupport = 0.3
	return cfg
}

// recordingRun runs the real pipeline and remembers the thresholds it saw.
type recordingRun struct {
	calls []pipeline.Config
	err   error
}

func (r *recordingRun) run(ctx context.Context, cfg pipeline.Config) (*pipeline.Result, error) {
	r.calls = append(r.calls, cfg)
	if r.err != nil {
		return nil, r.err
	}
	return pipeline.Run(ctx, cfg, &mining.Apriori{})
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive applies msg and feeds any returned command's message back in.
func drive(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			if _, ok := out.(resultMsg); ok {
				next, _ = m.Update(out)
				m = next.(Model)
			}
		}
	}
	return m
}

func TestInitRunsWhenNoInitialResult(t *testing.T) {
	rec := &recordingRun{}
	m := NewModel(context.Background(), pairConfig(), rec.run, report.For("en"), nil)
	cmd := m.Init()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	m = next.(Model)
	require.NotNil(t, m.Result())
	assert.Len(t, m.Result().Rules, 2)
	assert.False(t, m.running)
}

func TestThresholdKeysRerunPipeline(t *testing.T) {
	rec := &recordingRun{}
	cfg := pairConfig()
	res, err := rec.run(context.Background(), cfg)
	require.NoError(t, err)
	m := NewModel(context.Background(), cfg, rec.run, report.For("en"), res)
	assert.Nil(t, m.Init())

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyRight})
	s, c := m.Thresholds()
	assert.Equal(t, 0.31, s)
	assert.Equal(t, 0.5, c)

	m = drive(t, m, keyRunes("+"))
	m = drive(t, m, keyRunes("+"))
	_, c = m.Thresholds()
	assert.Equal(t, 0.6, c)
	assert.Len(t, m.Result().Rules, 2)

	m = drive(t, m, keyRunes("="))
	m = drive(t, m, keyRunes("+"))
	_, c = m.Thresholds()
	assert.Equal(t, 0.7, c)
	assert.Equal(t, 0.7, m.Result().MinConfidence)
	// only B→A (confidence 1.0) survives 0.7
	require.Len(t, m.Result().Rules, 1)
	assert.Equal(t, []string{"B"}, m.Result().Rules[0].Antecedents)

	m = drive(t, m, keyRunes("-"))
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	s, c = m.Thresholds()
	assert.Equal(t, 0.3, s)
	assert.Equal(t, 0.65, c)
	assert.Len(t, rec.calls, 8)
}

func TestThresholdsClampWithoutRerun(t *testing.T) {
	rec := &recordingRun{}
	cfg := pairConfig()
	cfg.MinConfidence = 1.0
	m := NewModel(context.Background(), cfg, rec.run, report.For("en"), &pipeline.Result{})
	m = drive(t, m, keyRunes("+"))
	_, c := m.Thresholds()
	assert.Equal(t, 1.0, c)
	assert.Empty(t, rec.calls, "no run when the slider is already at its max")
}

func TestStaleResultIsDropped(t *testing.T) {
	rec := &recordingRun{}
	m := NewModel(context.Background(), pairConfig(), rec.run, report.For("en"), &pipeline.Result{RunID: "first"})
	next, first := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(Model)
	next, second := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(Model)

	late := first()
	fresh := second()
	next, _ = m.Update(fresh)
	m = next.(Model)
	freshID := m.Result().RunID
	next, _ = m.Update(late)
	m = next.(Model)
	assert.Equal(t, freshID, m.Result().RunID)
	assert.Equal(t, 0.32, m.Result().MinSupport)
}

func TestRunErrorIsShown(t *testing.T) {
	rec := &recordingRun{err: errors.New("boom")}
	m := NewModel(context.Background(), pairConfig(), rec.run, report.For("en"), &pipeline.Result{})
	m = drive(t, m, keyRunes("r"))
	assert.Contains(t, m.View(), "✗ Error: boom")
	assert.False(t, m.running)
}

func TestPanesAndHelp(t *testing.T) {
	rec := &recordingRun{}
	cfg := pairConfig()
	res, err := rec.run(context.Background(), cfg)
	require.NoError(t, err)
	m := NewModel(context.Background(), cfg, rec.run, report.For("en"), res)
	m = drive(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	assert.Contains(t, view, "處方內容", "data pane shows the preview")
	assert.Contains(t, view, "A, B")

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyTab})
	view = m.View()
	assert.Contains(t, view, "Number of rules: 2")
	assert.Contains(t, view, "Drug usage frequency")

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Contains(t, m.View(), "Place B near A")

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, PaneData, m.pane)

	m = drive(t, m, keyRunes("?"))
	assert.True(t, m.help.ShowAll)

	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRenderEmptyResult(t *testing.T) {
	res, err := pipeline.Run(context.Background(), func() pipeline.Config {
		cfg := pairConfig()
		cfg.Source.Data = []byte("處方內容\n普拿疼\n普拿疼\n")
		return cfg
	}(), &mining.Apriori{})
	require.NoError(t, err)

	out := Render(res, report.For("zh-TW"), DefaultTheme, 80)
	assert.Contains(t, out, "沒有找到符合條件的關聯規則，請嘗試降低門檻。")
	assert.Contains(t, out, "無可提供之儲位建議。")
	assert.Contains(t, out, "本系統為展示用原型")
	assert.NotContains(t, out, "藥品使用熱度")
}

func TestRenderWithRules(t *testing.T) {
	cfg := pairConfig()
	res, err := pipeline.Run(context.Background(), cfg, &mining.Apriori{})
	require.NoError(t, err)
	out := Render(res, report.For("en"), DefaultTheme, 80)
	assert.Contains(t, out, "antecedents │ consequents")
	assert.Contains(t, out, "0.667")
	assert.Contains(t, out, "Place B near A")
	lines := strings.Split(out, "\n")
	var barLine string
	for _, l := range lines {
		if strings.HasPrefix(l, "A ") && strings.Contains(l, "█") {
			barLine = l
		}
	}
	require.NotEmpty(t, barLine, out)
	assert.True(t, strings.HasSuffix(barLine, " 3"))
}

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, "普拿…", fit("普拿疼止咳", 5))
	assert.Equal(t, "abc", fit("abc", 5))
	assert.Equal(t, "藥  ", padRight("藥", 4))
	assert.Equal(t, "  1.0", padLeft("1.0", 5))

	table := textTable([][]string{{"item", "n"}, {"普拿疼", "12"}}, 10, map[int]bool{1: true})
	assert.Equal(t, "item   │  n\n───────┼───\n普拿疼 │ 12", table)
}

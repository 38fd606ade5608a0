package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/rxslot-cli/internal/pipeline"
	"github.com/KaramelBytes/rxslot-cli/internal/report"
)

const (
	minBarWidth  = 10
	maxCellWidth = 32
)

// Render draws every dashboard section as plain terminal text.
func Render(res *pipeline.Result, msg report.Messages, th Theme, width int) string {
	if width <= 0 {
		width = 100
	}
	sections := []string{
		th.Title.Render(msg.Title),
		th.Subtitle.Render(msg.Subtitle),
		thresholdsLine(res, msg, th),
		th.Heading.Render(msg.PreviewHeading),
		previewView(res, th, width),
		th.Heading.Render(msg.RulesHeading),
		ruleCountLine(res, msg, th),
	}
	if res.Empty() {
		sections = append(sections, th.Warning.Render("⚠ "+msg.NoRules))
	} else {
		sections = append(sections,
			rulesTextView(res, msg),
			th.Heading.Render(msg.HeatHeading),
			barsView(res, th, width))
	}
	sections = append(sections,
		th.Heading.Render(msg.PlanHeading),
		planView(res, msg, th),
		"",
		th.Muted.Render(msg.Caption))
	return strings.Join(sections, "\n") + "\n"
}

func thresholdsLine(res *pipeline.Result, msg report.Messages, th Theme) string {
	return fmt.Sprintf("%s %s   %s %s   %s",
		th.Label.Render(msg.MinSupport), th.Value.Render(fmt.Sprintf("%.2f", res.MinSupport)),
		th.Label.Render(msg.MinConfidence), th.Value.Render(fmt.Sprintf("%.2f", res.MinConfidence)),
		th.Muted.Render(res.Source))
}

func ruleCountLine(res *pipeline.Result, msg report.Messages, th Theme) string {
	return th.Label.Render(msg.RuleCount) + " " + th.Value.Render(fmt.Sprint(len(res.Rules)))
}

func previewView(res *pipeline.Result, th Theme, width int) string {
	if len(res.Header) == 0 {
		return th.Muted.Render("(empty)")
	}
	cell := maxCellWidth
	if per := width/len(res.Header) - 3; per < cell {
		cell = max(per, 6)
	}
	rows := make([][]string, 0, len(res.Preview)+1)
	rows = append(rows, res.Header)
	rows = append(rows, res.Preview...)
	out := textTable(rows, cell, nil)
	for _, w := range res.Warnings {
		out += "\n" + th.Muted.Render(w)
	}
	return out
}

func rulesTextView(res *pipeline.Result, msg report.Messages) string {
	rows := [][]string{{msg.Antecedents, msg.Consequents, msg.Support, msg.Confidence, msg.Lift}}
	rows = append(rows, ruleRows(res)...)
	return textTable(rows, maxCellWidth, map[int]bool{2: true, 3: true, 4: true})
}

func ruleRows(res *pipeline.Result) [][]string {
	head := res.HeadRules()
	out := make([][]string, len(head))
	for i, r := range head {
		out[i] = []string{
			report.JoinItems(r.Antecedents),
			report.JoinItems(r.Consequents),
			fmt.Sprintf("%.3f", r.Support),
			fmt.Sprintf("%.3f", r.Confidence),
			fmt.Sprintf("%.3f", r.Lift),
		}
	}
	return out
}

func barsView(res *pipeline.Result, th Theme, width int) string {
	label := 0
	for _, it := range res.TopItems {
		label = max(label, lipgloss.Width(it.Item))
	}
	barW := max(width-label-10, minBarWidth)
	var b strings.Builder
	for i, bar := range report.Bars(res.TopItems, barW) {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s %d", padRight(bar.Item, label), th.Bar.Render(strings.Repeat("█", bar.Width)), bar.Count)
	}
	return b.String()
}

func planView(res *pipeline.Result, msg report.Messages, th Theme) string {
	if len(res.Suggestions) == 0 {
		return th.Info.Render("ℹ " + msg.NoSuggestions)
	}
	lines := make([]string, len(res.Suggestions))
	for i, s := range res.Suggestions {
		lines[i] = th.Success.Render(report.PlainSuggestion(msg, s))
	}
	return strings.Join(lines, "\n")
}

// textTable aligns rows into columns by display width. The first row is
// the header; right marks right-aligned columns.
func textTable(rows [][]string, cellMax int, right map[int]bool) string {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	widths := make([]int, cols)
	for _, r := range rows {
		for j, c := range r {
			widths[j] = max(widths[j], min(lipgloss.Width(flatten(c)), cellMax))
		}
	}
	var b strings.Builder
	for i, r := range rows {
		for j := 0; j < cols; j++ {
			if j > 0 {
				b.WriteString(" │ ")
			}
			c := ""
			if j < len(r) {
				c = fit(flatten(r[j]), cellMax)
			}
			if right[j] {
				b.WriteString(padLeft(c, widths[j]))
			} else {
				b.WriteString(padRight(c, widths[j]))
			}
		}
		b.WriteString("\n")
		if i == 0 {
			for j := 0; j < cols; j++ {
				if j > 0 {
					b.WriteString("─┼─")
				}
				b.WriteString(strings.Repeat("─", widths[j]))
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func flatten(s string) string { return strings.ReplaceAll(s, "\n", " ") }

// fit cuts s to at most w display cells, marking the cut with "…".
func fit(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	var b strings.Builder
	cur := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if cur+rw > w-1 {
			break
		}
		b.WriteRune(r)
		cur += rw
	}
	return b.String() + "…"
}

func padRight(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

// gauge draws v's position in r as a fixed-width track.
func gauge(v float64, r pipeline.Range, w int, th Theme) string {
	frac := (v - r.Min) / (r.Max - r.Min)
	filled := int(frac*float64(w) + 0.5)
	filled = max(0, min(w, filled))
	return th.Gauge.Render(strings.Repeat("━", filled)) + th.Muted.Render(strings.Repeat("─", w-filled))
}

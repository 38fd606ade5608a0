// Package report renders pipeline results as Markdown and JSON and shapes
// the data shared by the terminal and web dashboards.
package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/rxslot-cli/internal/analysis"
	"github.com/KaramelBytes/rxslot-cli/internal/basket"
	"github.com/KaramelBytes/rxslot-cli/internal/pipeline"
	"github.com/KaramelBytes/rxslot-cli/internal/utils"
)

// JoinItems formats an item set the way the rule table shows it.
func JoinItems(items []string) string { return strings.Join(items, ", ") }

var mdEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"|", "\\|",
	"*", "\\*",
	"_", "\\_",
	"`", "\\`",
	"[", "\\[",
	"]", "\\]",
	"<", "\\<",
	">", "\\>",
	"#", "\\#",
	"~", "\\~",
	"!", "\\!",
	"\r", " ",
	"\n", " ",
)

// EscapeMarkdown makes s safe as inline Markdown text and as a pipe-table
// cell: punctuation is backslash-escaped and line breaks become spaces.
func EscapeMarkdown(s string) string { return mdEscaper.Replace(s) }

// SuggestionText renders one storage suggestion as Markdown. Item names
// are escaped so they cannot alter the emphasis.
func SuggestionText(msg Messages, s pipeline.Suggestion) string {
	return fmt.Sprintf(msg.Suggest, EscapeMarkdown(JoinItems(s.Antecedents)), EscapeMarkdown(JoinItems(s.Consequents)))
}

// PlainSuggestion renders one storage suggestion as plain text.
func PlainSuggestion(msg Messages, s pipeline.Suggestion) string {
	return fmt.Sprintf(strings.ReplaceAll(msg.Suggest, "**", ""), JoinItems(s.Antecedents), JoinItems(s.Consequents))
}

// Bar is one row of the usage-frequency chart.
type Bar struct {
	Item  string
	Count int
	// Width is Count scaled against the largest count into [0, max width].
	Width int
	// Percent is Width relative to the max width, for CSS widths.
	Percent float64
}

// Bars scales item counts so the most frequent item spans maxWidth.
// Non-zero counts always get at least one cell.
func Bars(items []basket.ItemCount, maxWidth int) []Bar {
	top := 0
	for _, it := range items {
		if it.Count > top {
			top = it.Count
		}
	}
	out := make([]Bar, len(items))
	for i, it := range items {
		b := Bar{Item: it.Item, Count: it.Count}
		if top > 0 && maxWidth > 0 {
			b.Width = it.Count * maxWidth / top
			if b.Width == 0 && it.Count > 0 {
				b.Width = 1
			}
			b.Percent = float64(it.Count) * 100 / float64(top)
		}
		out[i] = b
	}
	return out
}

// Markdown renders the whole dashboard as a Markdown document.
func Markdown(res *pipeline.Result, msg Messages) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", msg.Title, msg.Subtitle)
	fmt.Fprintf(&b, "- source: %s\n- %s: %.2f\n- %s: %.2f\n- run: %s\n\n",
		EscapeMarkdown(res.Source), msg.MinSupport, res.MinSupport, msg.MinConfidence, res.MinConfidence, res.RunID)

	fmt.Fprintf(&b, "## %s\n\n", msg.PreviewHeading)
	if len(res.Header) > 0 {
		b.WriteString(analysis.MarkdownTable(res.Header, res.Preview))
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "\n> %s\n", w)
	}

	fmt.Fprintf(&b, "\n## %s\n\n%s %d\n\n", msg.RulesHeading, msg.RuleCount, len(res.Rules))
	if res.Empty() {
		fmt.Fprintf(&b, "> ⚠ %s\n", msg.NoRules)
	} else {
		b.WriteString(RulesMarkdown(res, msg))
		fmt.Fprintf(&b, "\n## %s\n\n", msg.HeatHeading)
		fmt.Fprintf(&b, "| item | %s | |\n| --- | ---: | --- |\n", msg.CountLabel)
		for _, bar := range Bars(res.TopItems, 30) {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", EscapeMarkdown(bar.Item), bar.Count, strings.Repeat("█", bar.Width))
		}
	}

	fmt.Fprintf(&b, "\n## %s\n\n", msg.PlanHeading)
	if len(res.Suggestions) == 0 {
		fmt.Fprintf(&b, "> ℹ %s\n", msg.NoSuggestions)
	} else {
		for _, s := range res.Suggestions {
			fmt.Fprintf(&b, "- %s\n", SuggestionText(msg, s))
		}
	}
	fmt.Fprintf(&b, "\n---\n\n_%s_\n", msg.Caption)
	return b.String()
}

// RulesMarkdown renders the head of the rule table.
func RulesMarkdown(res *pipeline.Result, msg Messages) string {
	var b strings.Builder
	fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", msg.Antecedents, msg.Consequents, msg.Support, msg.Confidence, msg.Lift)
	b.WriteString("| --- | --- | ---: | ---: | ---: |\n")
	for _, r := range res.HeadRules() {
		fmt.Fprintf(&b, "| %s | %s | %.3f | %.3f | %.3f |\n", EscapeMarkdown(JoinItems(r.Antecedents)), EscapeMarkdown(JoinItems(r.Consequents)), r.Support, r.Confidence, r.Lift)
	}
	return b.String()
}

// JSON encodes the result with indentation.
func JSON(res *pipeline.Result) ([]byte, error) {
	return utils.PrettyJSON(res)
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/KaramelBytes/rxslot-cli/internal/mining"
	"github.com/KaramelBytes/rxslot-cli/internal/pipeline"
	"github.com/KaramelBytes/rxslot-cli/internal/report"
)

// Run shows the dashboard until the user quits or ctx is cancelled.
// The first run happens before the screen switches so input errors
// surface as ordinary command errors.
func Run(ctx context.Context, cfg pipeline.Config, miner mining.Miner, msg report.Messages) error {
	run := func(ctx context.Context, cfg pipeline.Config) (*pipeline.Result, error) {
		return pipeline.Run(ctx, cfg, miner)
	}
	res, err := run(ctx, cfg)
	if err != nil {
		return err
	}

	// log lines would tear the alternate screen
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer slog.SetDefault(prev)

	p := tea.NewProgram(NewModel(ctx, cfg, run, msg, res), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

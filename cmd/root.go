package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/rxslot-cli/internal/config"
	"github.com/KaramelBytes/rxslot-cli/internal/utils"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global

	// Version is set at build time with -ldflags "-X .../cmd.Version=...".
	Version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "rxslot",
	Short: "rxslot: mine prescription co-occurrence rules and suggest drug placement",
	Long: `rxslot loads a prescription table, mines frequently co-prescribed drug
combinations with Apriori, derives association rules and shows them as a
report, a terminal dashboard or a browser dashboard, together with
storage-placement suggestions for the strongest rules.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.rxslot/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so commands still run
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	c := currentConfig()
	level, err := utils.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	return utils.SetupLoggerTo(cmd.ErrOrStderr(), level, c.LogFormat)
}

// currentConfig returns the loaded configuration, or defaults when
// loading was skipped.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Default()
	}
	return cfg
}

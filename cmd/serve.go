package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/rxslot-cli/internal/web"
)

var (
	serveFlags runFlags
	serveBind  string
	servePort  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser dashboard",
	Long: `Serve the browser dashboard with threshold sliders, table upload, the
rule table, a drug usage chart and placement suggestions. Also exposes
GET /report (Markdown report) and GET /api/result (JSON).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, miner, _, err := serveFlags.resolve(cmd)
		if err != nil {
			return err
		}
		c := currentConfig()
		bind, port := c.Bind, c.Port
		if cmd.Flags().Changed("bind") {
			bind = serveBind
		}
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		if port < 0 || port > 65535 {
			return fmt.Errorf("invalid --port: %d", port)
		}
		locale := c.Locale
		if cmd.Flags().Changed("locale") {
			locale = serveFlags.locale
		}

		srv := web.NewServer(web.Options{
			Base:    pc,
			Miner:   miner,
			Locale:  locale,
			Version: Version,
			Bind:    bind,
			Port:    port,
		})
		return web.Run(cmd.Context(), srv)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveFlags.register(serveCmd.Flags())
	serveCmd.Flags().StringVar(&serveBind, "bind", "127.0.0.1", "address to bind (overrides config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8501, "port to listen on (overrides config)")
}

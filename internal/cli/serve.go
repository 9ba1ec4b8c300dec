package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/mocktrade/broker"
	"github.com/rustyeddy/mocktrade/broker/sim"
	"github.com/rustyeddy/mocktrade/journal"
	"github.com/rustyeddy/mocktrade/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a stand-in order/trade backend",
		Long: `Serve the /order/ and /trade/ REST routes the desks talk to.

With --db the orders and trades live in a SQLite journal and survive
restarts; otherwise they are kept in memory.

Examples:
  mocktrade serve
  mocktrade serve --addr :9000 --db ./mocktrade.sqlite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("db") {
				a.cfg.Server.DBPath = dbPath
			}

			var backend broker.Broker
			if a.cfg.Server.DBPath != "" {
				j, err := journal.NewSQLite(a.cfg.Server.DBPath)
				if err != nil {
					return fmt.Errorf("open db: %w", err)
				}
				defer j.Close()
				backend = j
				a.log.Info("journal backend", zap.String("db", a.cfg.Server.DBPath))
			} else {
				backend = sim.NewEngine()
				a.log.Info("in-memory backend")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving on %s\n", a.cfg.Server.Addr)
			srv := server.New(backend, a.log, a.cfg.Server.AllowedOrigins)
			return srv.ListenAndServe(cmd.Context(), a.cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8000)")
	cmd.Flags().StringVarP(&dbPath, "db", "d", "", "SQLite journal path (default in-memory)")
	return cmd
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/mocktrade/journal"
)

func newJournalCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Read orders and trades straight from a SQLite journal",
		Long: `Print journal records as Org-mode entries.

Subcommands:
  order  - One order by ID
  trade  - One trade by ID
  trades - All trades in a status

Examples:
  mocktrade journal order <order-id> --db ./mocktrade.sqlite
  mocktrade journal trades --status CANCELLED`,
	}
	cmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "path to SQLite journal (default from config server.db_path)")

	open := func() (*journal.SQLite, error) {
		path := dbPath
		if path == "" {
			path = a.cfg.Server.DBPath
		}
		if path == "" {
			return nil, fmt.Errorf("no journal: pass --db or set server.db_path")
		}
		j, err := journal.NewSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		return j, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "order <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := open()
			if err != nil {
				return err
			}
			defer j.Close()

			o, err := j.GetOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), journal.FormatOrderOrg(o))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "trade <trade-id>",
		Short: "Show one trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := open()
			if err != nil {
				return err
			}
			defer j.Close()

			t, err := j.GetTrade(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), journal.FormatTradeOrg(t))
			return nil
		},
	})

	var status string
	trades := &cobra.Command{
		Use:   "trades",
		Short: "List trades in a status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := open()
			if err != nil {
				return err
			}
			defer j.Close()

			recs, err := j.ListTradesByStatus(cmd.Context(), strings.ToUpper(status))
			if err != nil {
				return fmt.Errorf("query trades: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
			return nil
		},
	}
	trades.Flags().StringVar(&status, "status", "BOOKED", "trade status")
	cmd.AddCommand(trades)

	return cmd
}

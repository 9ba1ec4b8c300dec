package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/mocktrade/blotter"
	"github.com/rustyeddy/mocktrade/screen"
)

func newTradesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Trade booking desk (interactive when run without a subcommand)",
		Long: `Book, amend and cancel trades and export the trade blotter.

Examples:
  mocktrade trades
  mocktrade trades list --broker nb
  mocktrade trades book --qty 3 --price 101.25
  mocktrade trades amend <trade-id> --qty 7
  mocktrade trades cancel <trade-id>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.tradeBooking()
			if err != nil {
				return err
			}
			s.Load(cmd.Context())
			sh := &tradeShell{s: s, loc: a.loc}
			sh.show(cmd.OutOrStdout())
			return runShell(cmd.Context(), "trades> ", "trades", sh, cmd.OutOrStdout())
		},
	}

	var filter blotter.TradeFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "Print the trade blotter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadedTrades(cmd.Context())
			if err != nil {
				return err
			}
			s.Filter = filter
			return blotter.WriteTrades(cmd.OutOrStdout(), s.Visible(), "", a.loc)
		},
	}
	addTradeFilterFlags(list, &filter)

	book := &cobra.Command{
		Use:   "book",
		Short: "Book a trade from the configured ticket and any flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.tradeBooking()
			if err != nil {
				return err
			}
			if err := applyFormFlags(cmd, screen.TradeFormFields, s.Form.Set); err != nil {
				return err
			}
			s.Book(cmd.Context())
			return result(cmd.OutOrStdout(), s.Message(), s.Err())
		},
	}
	addFormFlags(book, screen.TradeFormFields)

	amend := &cobra.Command{
		Use:   "amend <trade-id>",
		Short: "Amend a trade; unset flags keep the trade's current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.selectTrade(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s.EditSelected()
			if err := applyFormFlags(cmd, screen.TradeFormFields, s.Form.Set); err != nil {
				return err
			}
			s.Amend(cmd.Context())
			return result(cmd.OutOrStdout(), s.Message(), s.Err())
		},
	}
	addFormFlags(amend, screen.TradeFormFields)

	cancel := &cobra.Command{
		Use:   "cancel <trade-id>",
		Short: "Cancel a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.selectTrade(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s.Cancel(cmd.Context())
			return result(cmd.OutOrStdout(), s.Message(), s.Err())
		},
	}

	var exportFilter blotter.TradeFilter
	export := &cobra.Command{
		Use:   "export",
		Short: "Export the (filtered) trade blotter to trades.csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadedTrades(cmd.Context())
			if err != nil {
				return err
			}
			s.Filter = exportFilter
			if path := s.Export(); path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d trades to %s\n", len(s.Visible()), path)
				return nil
			}
			return result(cmd.OutOrStdout(), s.Message(), s.Err())
		},
	}
	addTradeFilterFlags(export, &exportFilter)

	cmd.AddCommand(list, book, amend, cancel, export)
	return cmd
}

func (a *app) tradeBooking() (*screen.TradeBooking, error) {
	b, err := a.backend()
	if err != nil {
		return nil, err
	}
	s := screen.NewTradeBooking(b, a.screenOptions()...)
	s.Form = a.cfg.Trades
	return s, nil
}

func (a *app) loadedTrades(ctx context.Context) (*screen.TradeBooking, error) {
	s, err := a.tradeBooking()
	if err != nil {
		return nil, err
	}
	s.Load(ctx)
	if s.Err() != nil {
		return nil, fmt.Errorf("%s: %w", s.Message(), s.Err())
	}
	return s, nil
}

func (a *app) selectTrade(ctx context.Context, id string) (*screen.TradeBooking, error) {
	s, err := a.loadedTrades(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Select(id) {
		return nil, fmt.Errorf("trade %q not found", id)
	}
	return s, nil
}

func addTradeFilterFlags(cmd *cobra.Command, f *blotter.TradeFilter) {
	cmd.Flags().StringVar(&f.Instrument, "instrument", "", "instrument contains (case-insensitive)")
	cmd.Flags().StringVar(&f.Broker, "broker", "", "broker contains (case-insensitive)")
	cmd.Flags().StringVar(&f.Status, "status", "", "exact status: BOOKED|CANCELLED")
	cmd.Flags().StringVar(&f.Date, "date", "", "executed on day YYYY-MM-DD (UTC)")
}

type tradeShell struct {
	s   *screen.TradeBooking
	loc *time.Location
}

func (sh *tradeShell) commands() []string {
	return []string{"help", "show", "set", "book", "amend", "edit", "select", "clear", "cancel",
		"filter", "refresh", "export", "exit"}
}

func (sh *tradeShell) exec(ctx context.Context, out io.Writer, args []string) error {
	s := sh.s
	switch strings.ToLower(args[0]) {
	case "help", "?":
		fmt.Fprint(out, tradeHelp)
	case "show", "ls":
		sh.show(out)
	case "set":
		if len(args) < 2 {
			return fmt.Errorf("usage: set <field> <value> (fields: %s)", strings.Join(screen.TradeFormFields, ", "))
		}
		if err := s.Form.Set(args[1], restOf(args, 2)); err != nil {
			return err
		}
		printBooking(out, s.Form)
	case "book":
		s.Book(ctx)
		printMessage(out, s.Message())
	case "amend":
		if s.Selected() == "" {
			return fmt.Errorf("select a trade first")
		}
		s.Amend(ctx)
		printMessage(out, s.Message())
	case "edit":
		if !s.EditSelected() {
			return fmt.Errorf("select a trade first")
		}
		printBooking(out, s.Form)
	case "select":
		if len(args) != 2 {
			return fmt.Errorf("usage: select <trade-id>")
		}
		if !s.Select(args[1]) {
			return fmt.Errorf("trade %q is not in the blotter", args[1])
		}
		fmt.Fprintf(out, "selected %s\n", args[1])
	case "clear":
		s.ClearSelection()
	case "cancel":
		if s.Selected() == "" {
			return fmt.Errorf("select a trade first")
		}
		s.Cancel(ctx)
		printMessage(out, s.Message())
	case "filter":
		if len(args) < 2 {
			return fmt.Errorf("usage: filter instrument|broker|status|date [value], or filter clear")
		}
		if err := setTradeFilter(&s.Filter, args[1], restOf(args, 2)); err != nil {
			return err
		}
		sh.show(out)
	case "refresh":
		s.Load(ctx)
		sh.show(out)
	case "export":
		if path := s.Export(); path != "" {
			fmt.Fprintf(out, "✓ Exported %d trades to %s\n", len(s.Visible()), path)
		} else {
			printMessage(out, s.Message())
		}
	case "exit", "quit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, type 'help'", args[0])
	}
	return nil
}

func (sh *tradeShell) show(out io.Writer) {
	s := sh.s
	_ = blotter.WriteTrades(out, s.Visible(), s.Selected(), sh.loc)
	if s.Filter.Active() {
		f := s.Filter
		fmt.Fprintf(out, "filter: instrument=%q broker=%q status=%q date=%q (%d of %d)\n",
			f.Instrument, f.Broker, f.Status, f.Date, len(s.Visible()), len(s.Trades()))
	}
	printBooking(out, s.Form)
	printMessage(out, s.Message())
}

func printBooking(out io.Writer, f screen.TradeForm) {
	exec := f.ExecTime
	if exec == "" {
		exec = "now"
	}
	fmt.Fprintf(out, "ticket: %s %s %s @ %s exec=%s broker=%s account=%s\n",
		f.Side, f.Qty, f.Instrument, f.Price, exec, f.Broker, f.Account)
}

func setTradeFilter(f *blotter.TradeFilter, field, value string) error {
	switch strings.ToLower(field) {
	case "instrument":
		f.Instrument = value
	case "broker":
		f.Broker = value
	case "status":
		f.Status = strings.ToUpper(value)
	case "date":
		f.Date = value
	case "clear":
		*f = blotter.TradeFilter{}
	default:
		return fmt.Errorf("unknown filter %q (instrument, broker, status, date, clear)", field)
	}
	return nil
}

const tradeHelp = `Commands:
  show                      blotter, ticket and status line
  set <field> <value>       edit the ticket (instrument side qty price exec_time broker account)
  book                      book the ticket as a new trade
  select <id> | clear       choose or drop the selected trade
  edit                      load the selected trade into the ticket
  amend                     replace the selected trade with the ticket
  cancel                    cancel the selected trade
  filter <field> [value]    instrument, broker, status, date (YYYY-MM-DD); "filter clear"
  refresh                   reload the blotter
  export                    write visible trades to trades.csv
  exit
`

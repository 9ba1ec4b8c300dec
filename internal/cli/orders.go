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

func newOrdersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Order entry desk (interactive when run without a subcommand)",
		Long: `Submit orders, watch the order blotter, simulate fills and cancels,
export visible rows to CSV and preview a FIX drop copy.

Examples:
  mocktrade orders
  mocktrade orders list --status FILLED
  mocktrade orders submit --side sell --qty 5 --type market
  mocktrade orders fill <order-id>
  mocktrade orders fix <order-id> --download`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.orderEntry()
			if err != nil {
				return err
			}
			s.Load(cmd.Context())
			sh := &orderShell{s: s, loc: a.loc}
			sh.show(cmd.OutOrStdout())
			return runShell(cmd.Context(), "orders> ", "orders", sh, cmd.OutOrStdout())
		},
	}

	var filter blotter.OrderFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "Print the order blotter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadedOrders(cmd.Context())
			if err != nil {
				return err
			}
			s.Filter = filter
			return blotter.WriteOrders(cmd.OutOrStdout(), s.Visible(), "", a.loc)
		},
	}
	addOrderFilterFlags(list, &filter)

	submit := &cobra.Command{
		Use:   "submit",
		Short: "Submit an order from the configured ticket and any flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.orderEntry()
			if err != nil {
				return err
			}
			if err := applyFormFlags(cmd, screen.OrderFormFields, s.Form.Set); err != nil {
				return err
			}
			s.Submit(cmd.Context())
			return result(cmd.OutOrStdout(), s.Message(), s.Err())
		},
	}
	addFormFlags(submit, screen.OrderFormFields)

	fill := &cobra.Command{
		Use:   "fill <order-id>",
		Short: "Simulate a fill on an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.selectOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s.SimulateFill(cmd.Context())
			return result(cmd.OutOrStdout(), s.Message(), s.Err())
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.selectOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s.Cancel(cmd.Context())
			return result(cmd.OutOrStdout(), s.Message(), s.Err())
		},
	}

	var exportFilter blotter.OrderFilter
	export := &cobra.Command{
		Use:   "export",
		Short: "Export the (filtered) order blotter to visible_orders.csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadedOrders(cmd.Context())
			if err != nil {
				return err
			}
			s.Filter = exportFilter
			if path := s.Export(); path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d orders to %s\n", len(s.Visible()), path)
				return nil
			}
			return result(cmd.OutOrStdout(), s.Message(), s.Err())
		},
	}
	addOrderFilterFlags(export, &exportFilter)

	var copyFix, downloadFix bool
	fixCmd := &cobra.Command{
		Use:   "fix <order-id>",
		Short: "Print the FIX drop copy for an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.selectOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s.Dropcopy()
			p, ok := s.Preview()
			if !ok {
				return fmt.Errorf("order %q not found", args[0])
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, p.Message)
			if copyFix {
				s.CopyFix()
				if err := result(out, s.Message(), s.Err()); err != nil {
					return err
				}
			}
			if downloadFix {
				if path := s.DownloadFix(); path != "" {
					fmt.Fprintf(out, "✓ Saved %s\n", path)
				} else {
					return result(out, s.Message(), s.Err())
				}
			}
			return nil
		},
	}
	fixCmd.Flags().BoolVar(&copyFix, "copy", false, "copy the message to the clipboard")
	fixCmd.Flags().BoolVar(&downloadFix, "download", false, "save the message to fix_message_<id>.txt")

	cmd.AddCommand(list, submit, fill, cancel, export, fixCmd)
	return cmd
}

func (a *app) orderEntry() (*screen.OrderEntry, error) {
	b, err := a.backend()
	if err != nil {
		return nil, err
	}
	s := screen.NewOrderEntry(b, a.screenOptions()...)
	s.Form = a.cfg.Orders
	return s, nil
}

func (a *app) loadedOrders(ctx context.Context) (*screen.OrderEntry, error) {
	s, err := a.orderEntry()
	if err != nil {
		return nil, err
	}
	s.Load(ctx)
	if s.Err() != nil {
		return nil, fmt.Errorf("%s: %w", s.Message(), s.Err())
	}
	return s, nil
}

func (a *app) selectOrder(ctx context.Context, id string) (*screen.OrderEntry, error) {
	s, err := a.loadedOrders(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Select(id) {
		return nil, fmt.Errorf("order %q not found", id)
	}
	return s, nil
}

func addOrderFilterFlags(cmd *cobra.Command, f *blotter.OrderFilter) {
	cmd.Flags().StringVar(&f.Instrument, "instrument", "", "instrument contains (case-insensitive)")
	cmd.Flags().StringVar(&f.Trader, "trader", "", "trader contains (case-insensitive)")
	cmd.Flags().StringVar(&f.Status, "status", "", "exact status: NEW|FILLED|CANCELLED")
	cmd.Flags().StringVar(&f.Date, "date", "", "created on day YYYY-MM-DD (UTC)")
}

// orderShell drives an OrderEntry from typed commands.
type orderShell struct {
	s   *screen.OrderEntry
	loc *time.Location
}

func (sh *orderShell) commands() []string {
	return []string{"help", "show", "set", "submit", "select", "clear", "fill", "cancel",
		"filter", "refresh", "export", "dropcopy", "copy", "download", "close", "exit"}
}

func (sh *orderShell) exec(ctx context.Context, out io.Writer, args []string) error {
	s := sh.s
	switch strings.ToLower(args[0]) {
	case "help", "?":
		fmt.Fprint(out, orderHelp)
	case "show", "ls":
		sh.show(out)
	case "set":
		if len(args) < 2 {
			return fmt.Errorf("usage: set <field> <value> (fields: %s)", strings.Join(screen.OrderFormFields, ", "))
		}
		if err := s.Form.Set(args[1], restOf(args, 2)); err != nil {
			return err
		}
		printTicket(out, s.Form)
	case "submit":
		s.Submit(ctx)
		printMessage(out, s.Message())
	case "select":
		if len(args) != 2 {
			return fmt.Errorf("usage: select <order-id>")
		}
		if !s.Select(args[1]) {
			return fmt.Errorf("order %q is not in the blotter", args[1])
		}
		fmt.Fprintf(out, "selected %s\n", args[1])
	case "clear":
		s.ClearSelection()
	case "fill":
		if s.Selected() == "" {
			return fmt.Errorf("select an order first")
		}
		s.SimulateFill(ctx)
		printMessage(out, s.Message())
	case "cancel":
		if s.Selected() == "" {
			return fmt.Errorf("select an order first")
		}
		s.Cancel(ctx)
		printMessage(out, s.Message())
	case "filter":
		if len(args) < 2 {
			return fmt.Errorf("usage: filter instrument|trader|status|date [value], or filter clear")
		}
		if err := setOrderFilter(&s.Filter, args[1], restOf(args, 2)); err != nil {
			return err
		}
		sh.show(out)
	case "refresh":
		s.Load(ctx)
		sh.show(out)
	case "export":
		if path := s.Export(); path != "" {
			fmt.Fprintf(out, "✓ Exported %d orders to %s\n", len(s.Visible()), path)
		} else {
			printMessage(out, s.Message())
		}
	case "dropcopy", "fix":
		if s.Selected() == "" {
			return fmt.Errorf("select an order first")
		}
		s.Dropcopy()
		if p, ok := s.Preview(); ok {
			fmt.Fprintf(out, "FIX drop copy for %s:\n%s\n", p.OrderID, p.Message)
		}
	case "copy":
		s.CopyFix()
		printMessage(out, s.Message())
	case "download":
		if path := s.DownloadFix(); path != "" {
			fmt.Fprintf(out, "✓ Saved %s\n", path)
		} else {
			printMessage(out, s.Message())
		}
	case "close":
		s.CloseFix()
	case "exit", "quit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, type 'help'", args[0])
	}
	return nil
}

func (sh *orderShell) show(out io.Writer) {
	s := sh.s
	_ = blotter.WriteOrders(out, s.Visible(), s.Selected(), sh.loc)
	if s.Filter.Active() {
		f := s.Filter
		fmt.Fprintf(out, "filter: instrument=%q trader=%q status=%q date=%q (%d of %d)\n",
			f.Instrument, f.Trader, f.Status, f.Date, len(s.Visible()), len(s.Orders()))
	}
	printTicket(out, s.Form)
	printMessage(out, s.Message())
}

func printTicket(out io.Writer, f screen.OrderForm) {
	price := f.Price
	if !strings.EqualFold(f.Type, "LIMIT") || price == "" {
		price = "-"
	}
	fmt.Fprintf(out, "ticket: %s %s %s @ %s %s %s trader=%s account=%s\n",
		f.Side, f.Qty, f.Instrument, price, f.Type, f.TIF, f.Trader, f.Account)
}

func setOrderFilter(f *blotter.OrderFilter, field, value string) error {
	switch strings.ToLower(field) {
	case "instrument":
		f.Instrument = value
	case "trader":
		f.Trader = value
	case "status":
		f.Status = strings.ToUpper(value)
	case "date":
		f.Date = value
	case "clear":
		*f = blotter.OrderFilter{}
	default:
		return fmt.Errorf("unknown filter %q (instrument, trader, status, date, clear)", field)
	}
	return nil
}

const orderHelp = `Commands:
  show                      blotter, ticket and status line
  set <field> <value>       edit the ticket (instrument side qty price type tif trader account)
  submit                    submit the ticket
  select <id> | clear       choose or drop the selected order
  fill | cancel             simulate a fill on / cancel the selected order
  filter <field> [value]    instrument, trader, status, date (YYYY-MM-DD); "filter clear"
  refresh                   reload the blotter
  export                    write visible rows to visible_orders.csv
  dropcopy                  FIX preview of the selected order
  copy | download | close   act on the open preview
  exit
`

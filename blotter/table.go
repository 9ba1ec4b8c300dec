package blotter

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/mocktrade/broker"
)

// WriteOrders prints orders as an aligned table. The row whose id equals
// selected is marked with '>'.
func WriteOrders(w io.Writer, orders []broker.Order, selected string, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tINSTRUMENT\tSIDE\tQTY\tPRICE\tTRADER\tSTATUS\tCREATED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			marker(o.ID, selected), o.ID, o.Instrument, o.Side, o.Qty,
			FormatPrice(o.Price), o.Trader, o.Status, FormatTime(o.CreatedAt, loc))
	}
	if len(orders) == 0 {
		fmt.Fprintln(tw, "\t(no orders)")
	}
	return tw.Flush()
}

func WriteTrades(w io.Writer, trades []broker.Trade, selected string, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tTRADE\tORDER\tINSTRUMENT\tSIDE\tQTY\tPRICE\tBROKER\tACCOUNT\tSTATUS\tEXEC TIME")
	for _, t := range trades {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			marker(t.ID, selected), t.ID, t.OrderID, t.Instrument, t.Side, strconv.Itoa(t.Qty),
			FormatPrice(t.Price), t.BrokerID, t.AccountID, t.Status, FormatTime(t.ExecTime, loc))
	}
	if len(trades) == 0 {
		fmt.Fprintln(tw, "\t(no trades)")
	}
	return tw.Flush()
}

func marker(id, selected string) string {
	if selected != "" && id == selected {
		return ">"
	}
	return ""
}

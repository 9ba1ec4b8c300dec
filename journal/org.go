package journal

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/mocktrade/blotter"
	"github.com/rustyeddy/mocktrade/broker"
)

// FormatOrderOrg renders an order as an Org-mode entry with its facts in a
// PROPERTIES drawer.
func FormatOrderOrg(o broker.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Order: %s %s %d %s (%s)\n", o.Side, o.Instrument, o.Qty, o.Status, shortID(o.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", o.ID)
	fmt.Fprintf(&b, ":INSTRUMENT: %s\n", o.Instrument)
	fmt.Fprintf(&b, ":SIDE: %s\n", o.Side)
	fmt.Fprintf(&b, ":QTY: %d\n", o.Qty)
	fmt.Fprintf(&b, ":PRICE: %s\n", blotter.FormatPrice(o.Price))
	fmt.Fprintf(&b, ":TYPE: %s\n", o.Type)
	fmt.Fprintf(&b, ":TIF: %s\n", o.TIF)
	fmt.Fprintf(&b, ":TRADER: %s\n", o.Trader)
	fmt.Fprintf(&b, ":ACCOUNT: %s\n", o.Account)
	fmt.Fprintf(&b, ":STATUS: %s\n", o.Status)
	fmt.Fprintf(&b, ":CREATED_AT: %s\n", o.CreatedAt)
	b.WriteString(":END:\n")
	return b.String()
}

// FormatTradeOrg renders a trade the same way, with an empty Notes section
// for the desk to fill in.
func FormatTradeOrg(t broker.Trade) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Trade: %s %s %d @ %s (%s)\n", t.Side, t.Instrument, t.Qty, blotter.FormatPrice(t.Price), shortID(t.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", t.ID)
	if t.OrderID != "" {
		fmt.Fprintf(&b, ":ORDER_ID: %s\n", t.OrderID)
	}
	fmt.Fprintf(&b, ":INSTRUMENT: %s\n", t.Instrument)
	fmt.Fprintf(&b, ":SIDE: %s\n", t.Side)
	fmt.Fprintf(&b, ":QTY: %d\n", t.Qty)
	fmt.Fprintf(&b, ":PRICE: %s\n", blotter.FormatPrice(t.Price))
	fmt.Fprintf(&b, ":EXEC_TIME: %s\n", t.ExecTime)
	fmt.Fprintf(&b, ":BROKER: %s\n", t.BrokerID)
	fmt.Fprintf(&b, ":ACCOUNT: %s\n", t.AccountID)
	fmt.Fprintf(&b, ":STATUS: %s\n", t.Status)
	b.WriteString(":END:\n")
	b.WriteString("\n*** Notes\n- \n")
	return b.String()
}

// FormatOrdersOrg renders multiple orders separated by blank lines.
func FormatOrdersOrg(orders []broker.Order) string {
	parts := make([]string, len(orders))
	for i, o := range orders {
		parts[i] = FormatOrderOrg(o)
	}
	return strings.Join(parts, "\n")
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []broker.Trade) string {
	parts := make([]string, len(trades))
	for i, t := range trades {
		parts[i] = FormatTradeOrg(t)
	}
	return strings.Join(parts, "\n")
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}

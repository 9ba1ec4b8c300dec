package blotter

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/mocktrade/broker"
)

const (
	OrdersFile = "visible_orders.csv"
	TradesFile = "trades.csv"

	// DisplayLayout is how blotters and exports show a timestamp.
	DisplayLayout = "1/2/2006, 3:04:05 PM"
)

var (
	OrderColumns = []string{"ID", "Instrument", "Side", "Qty", "Price", "Trader", "Status", "Created"}
	TradeColumns = []string{"TradeId", "OrderId", "Instrument", "Side", "Qty", "Price", "Status", "ExecTime"}
)

// CSV is an export that has not been rendered yet. Nothing is formatted
// until WriteTo or String is called.
//
// Every field is written as "value" with no escaping of embedded quotes or
// commas. Readers downstream depend on that exact byte layout.
type CSV struct {
	header []string
	n      int
	row    func(i int) []string
}

// OrdersCSV prepares an export of orders with timestamps shown in loc.
func OrdersCSV(orders []broker.Order, loc *time.Location) *CSV {
	return &CSV{
		header: OrderColumns,
		n:      len(orders),
		row: func(i int) []string {
			o := orders[i]
			return []string{
				o.ID,
				o.Instrument,
				o.Side,
				strconv.Itoa(o.Qty),
				FormatPrice(o.Price),
				o.Trader,
				o.Status,
				FormatTime(o.CreatedAt, loc),
			}
		},
	}
}

func TradesCSV(trades []broker.Trade, loc *time.Location) *CSV {
	return &CSV{
		header: TradeColumns,
		n:      len(trades),
		row: func(i int) []string {
			t := trades[i]
			return []string{
				t.ID,
				t.OrderID,
				t.Instrument,
				t.Side,
				strconv.Itoa(t.Qty),
				FormatPrice(t.Price),
				t.Status,
				FormatTime(t.ExecTime, loc),
			}
		},
	}
}

// Len is the number of data rows, excluding the header.
func (c *CSV) Len() int {
	return c.n
}

func (c *CSV) WriteTo(w io.Writer) (int64, error) {
	var total int64
	write := func(s string) error {
		n, err := io.WriteString(w, s)
		total += int64(n)
		return err
	}

	if err := write(line(c.header)); err != nil {
		return total, err
	}
	for i := 0; i < c.n; i++ {
		if err := write("\n" + line(c.row(i))); err != nil {
			return total, err
		}
	}
	return total, nil
}

func (c *CSV) String() string {
	var b strings.Builder
	_, _ = c.WriteTo(&b)
	return b.String()
}

func line(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + f + `"`
	}
	return strings.Join(quoted, ",")
}

// FormatPrice renders a price with the shortest exact decimal form; a null
// price is empty.
func FormatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

// FormatTime renders a backend timestamp in loc for display. Values that do
// not parse render empty.
func FormatTime(ts string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t, err := broker.ParseTime(ts, loc)
	if err != nil {
		return ""
	}
	return t.In(loc).Format(DisplayLayout)
}

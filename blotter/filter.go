package blotter

import (
	"strings"
	"time"

	"github.com/rustyeddy/mocktrade/broker"
)

// OrderFilter holds the column filters of the order blotter. An empty field
// is inactive and lets every row through.
type OrderFilter struct {
	Instrument string `json:"instrument,omitempty" yaml:"instrument,omitempty"`
	Trader     string `json:"trader,omitempty" yaml:"trader,omitempty"`
	Status     string `json:"status,omitempty" yaml:"status,omitempty"`
	Date       string `json:"date,omitempty" yaml:"date,omitempty"` // YYYY-MM-DD of created_at
}

// TradeFilter holds the column filters of the trade blotter.
type TradeFilter struct {
	Instrument string `json:"instrument,omitempty" yaml:"instrument,omitempty"`
	Broker     string `json:"broker,omitempty" yaml:"broker,omitempty"`
	Status     string `json:"status,omitempty" yaml:"status,omitempty"`
	Date       string `json:"date,omitempty" yaml:"date,omitempty"` // YYYY-MM-DD of exec_time
}

func (f OrderFilter) Active() bool {
	return f.Instrument != "" || f.Trader != "" || f.Status != "" || f.Date != ""
}

func (f TradeFilter) Active() bool {
	return f.Instrument != "" || f.Broker != "" || f.Status != "" || f.Date != ""
}

// Match reports whether o passes every active filter. Timestamps without a
// zone are read in loc.
func (f OrderFilter) Match(o broker.Order, loc *time.Location) bool {
	if !contains(o.Instrument, f.Instrument) {
		return false
	}
	if !contains(o.Trader, f.Trader) {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return sameDay(o.CreatedAt, f.Date, loc)
}

func (f TradeFilter) Match(t broker.Trade, loc *time.Location) bool {
	if !contains(t.Instrument, f.Instrument) {
		return false
	}
	if !contains(t.BrokerID, f.Broker) {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return sameDay(t.ExecTime, f.Date, loc)
}

// FilterOrders returns the rows of orders that pass f, in their original
// order. orders itself is left untouched.
func FilterOrders(orders []broker.Order, f OrderFilter, loc *time.Location) []broker.Order {
	out := make([]broker.Order, 0, len(orders))
	for _, o := range orders {
		if f.Match(o, loc) {
			out = append(out, o)
		}
	}
	return out
}

func FilterTrades(trades []broker.Trade, f TradeFilter, loc *time.Location) []broker.Trade {
	out := make([]broker.Trade, 0, len(trades))
	for _, t := range trades {
		if f.Match(t, loc) {
			out = append(out, t)
		}
	}
	return out
}

// contains is a case-insensitive substring test. An empty needle always
// matches; an empty field never matches a non-empty needle.
func contains(field, needle string) bool {
	if needle == "" {
		return true
	}
	if field == "" {
		return false
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(needle))
}

// sameDay compares the UTC calendar day of ts to day (YYYY-MM-DD).
func sameDay(ts, day string, loc *time.Location) bool {
	if day == "" {
		return true
	}
	t, err := broker.ParseTime(ts, loc)
	if err != nil {
		return false
	}
	return t.UTC().Format(time.DateOnly) == day
}

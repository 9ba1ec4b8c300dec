package broker

import (
	"fmt"
	"strings"
)

const (
	Buy  = "BUY"
	Sell = "SELL"

	Limit  = "LIMIT"
	Market = "MARKET"

	Day = "DAY"
	IOC = "IOC"

	StatusNew       = "NEW"
	StatusFilled    = "FILLED"
	StatusCancelled = "CANCELLED"
	StatusBooked    = "BOOKED"
)

// Order is a backend order record. The desk never edits one in place; it
// always replaces the whole list with a fresh fetch.
type Order struct {
	ID         string   `json:"id"`
	Instrument string   `json:"instrument"`
	Side       string   `json:"side"`
	Qty        int      `json:"qty"`
	Price      *float64 `json:"price"`
	Type       string   `json:"type"`
	TIF        string   `json:"tif"`
	Trader     string   `json:"trader"`
	Account    string   `json:"account"`
	Status     string   `json:"status"`
	CreatedAt  string   `json:"created_at"`
}

// Normalize upper-cases the enumerated fields the way the backend stores them.
func (r OrderRequest) Normalize() OrderRequest {
	r.Side = strings.ToUpper(strings.TrimSpace(r.Side))
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
	r.TIF = strings.ToUpper(strings.TrimSpace(r.TIF))
	return r
}

// Validate reports the first structural problem with the request.
func (r OrderRequest) Validate() error {
	switch {
	case r.Instrument == "":
		return fmt.Errorf("%w: instrument is required", ErrInvalidRequest)
	case r.Qty <= 0:
		return fmt.Errorf("%w: qty must be positive", ErrInvalidRequest)
	case r.Trader == "":
		return fmt.Errorf("%w: trader is required", ErrInvalidRequest)
	}
	if r.Side != Buy && r.Side != Sell {
		return fmt.Errorf("%w: side must be BUY or SELL, got %q", ErrInvalidRequest, r.Side)
	}
	if r.Type != Limit && r.Type != Market {
		return fmt.Errorf("%w: type must be LIMIT or MARKET, got %q", ErrInvalidRequest, r.Type)
	}
	if r.TIF != Day && r.TIF != IOC {
		return fmt.Errorf("%w: tif must be DAY or IOC, got %q", ErrInvalidRequest, r.TIF)
	}
	return nil
}

// Float returns a pointer to f, for optional prices.
func Float(f float64) *float64 {
	return &f
}

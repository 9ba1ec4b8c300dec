package broker

import (
	"context"
	"errors"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrTradeNotFound  = errors.New("trade not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// Orders is the order side of the backend contract.
type Orders interface {
	ListOrders(ctx context.Context) ([]Order, error)
	SubmitOrder(ctx context.Context, req OrderRequest) (Order, error)
	SimulateFill(ctx context.Context, orderID string) error
	CancelOrder(ctx context.Context, orderID string) error
}

// Trades is the trade booking side of the backend contract.
type Trades interface {
	ListTrades(ctx context.Context) ([]Trade, error)
	BookTrade(ctx context.Context, req BookingRequest) (Trade, error)
	AmendTrade(ctx context.Context, tradeID string, req BookingRequest) (Trade, error)
	CancelTrade(ctx context.Context, tradeID string) error
}

// Broker is everything a desk can ask of the backend. The REST client and
// both stand-in backends implement it.
type Broker interface {
	Orders
	Trades
}

// OrderRequest is the POST /order/ payload.
type OrderRequest struct {
	Instrument string   `json:"instrument"`
	Side       string   `json:"side"`
	Qty        int      `json:"qty"`
	Price      *float64 `json:"price"`
	Type       string   `json:"type"`
	TIF        string   `json:"tif"`
	Trader     string   `json:"trader"`
	Account    string   `json:"account"`
}

// BookingRequest is the POST /trade/ and /trade/{id}/amend payload.
type BookingRequest struct {
	InstrumentID string  `json:"instrument_id"`
	Side         string  `json:"side"`
	Qty          int     `json:"qty"`
	Price        float64 `json:"price"`
	ExecTime     string  `json:"exec_time"`
	BrokerID     string  `json:"broker_id"`
	AccountID    string  `json:"account_id"`
}

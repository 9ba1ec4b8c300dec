package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/mocktrade/broker"
	"github.com/rustyeddy/mocktrade/pkg/id"
)

// Engine is an in-memory stand-in for the order and trade backend. It applies
// the backend's status transitions and nothing more: no matching, no
// validation of state changes (a cancelled order can still be filled).
type Engine struct {
	mu sync.Mutex

	orders   map[string]*broker.Order
	orderIDs []string
	trades   map[string]*broker.Trade
	tradeIDs []string
	now      func() time.Time
}

var _ broker.Broker = (*Engine)(nil)

func NewEngine() *Engine {
	return &Engine{
		orders: make(map[string]*broker.Order),
		trades: make(map[string]*broker.Trade),
		now:    time.Now,
	}
}

// SetClock replaces the engine's time source.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

func (e *Engine) ListOrders(ctx context.Context) ([]broker.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]broker.Order, 0, len(e.orderIDs))
	for _, oid := range e.orderIDs {
		out = append(out, copyOrder(e.orders[oid]))
	}
	return out, nil
}

func (e *Engine) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	if err := ctx.Err(); err != nil {
		return broker.Order{}, err
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return broker.Order{}, fmt.Errorf("submit order: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	o := &broker.Order{
		ID:         id.NewAt(now),
		Instrument: req.Instrument,
		Side:       req.Side,
		Qty:        req.Qty,
		Price:      copyPrice(req.Price),
		Type:       req.Type,
		TIF:        req.TIF,
		Trader:     req.Trader,
		Account:    req.Account,
		Status:     broker.StatusNew,
		CreatedAt:  now.UTC().Format(time.RFC3339Nano),
	}
	e.orders[o.ID] = o
	e.orderIDs = append(e.orderIDs, o.ID)
	return copyOrder(o), nil
}

func (e *Engine) SimulateFill(ctx context.Context, orderID string) error {
	return e.setOrderStatus(ctx, "simulate fill", orderID, broker.StatusFilled)
}

func (e *Engine) CancelOrder(ctx context.Context, orderID string) error {
	return e.setOrderStatus(ctx, "cancel order", orderID, broker.StatusCancelled)
}

func (e *Engine) setOrderStatus(ctx context.Context, op, orderID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.orders[orderID]
	if !ok {
		return fmt.Errorf("%s: %w: %q", op, broker.ErrOrderNotFound, orderID)
	}
	o.Status = status
	return nil
}

func (e *Engine) ListTrades(ctx context.Context) ([]broker.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]broker.Trade, 0, len(e.tradeIDs))
	for _, tid := range e.tradeIDs {
		out = append(out, copyTrade(e.trades[tid]))
	}
	return out, nil
}

func (e *Engine) BookTrade(ctx context.Context, req broker.BookingRequest) (broker.Trade, error) {
	if err := ctx.Err(); err != nil {
		return broker.Trade{}, err
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return broker.Trade{}, fmt.Errorf("book trade: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	t := &broker.Trade{
		ID:        id.NewAt(now),
		Status:    broker.StatusBooked,
		CreatedAt: now.UTC().Format(time.RFC3339Nano),
	}
	applyBooking(t, req, now)
	e.trades[t.ID] = t
	e.tradeIDs = append(e.tradeIDs, t.ID)
	return copyTrade(t), nil
}

// AmendTrade replaces the booked fields of a trade. Status is left alone.
func (e *Engine) AmendTrade(ctx context.Context, tradeID string, req broker.BookingRequest) (broker.Trade, error) {
	if err := ctx.Err(); err != nil {
		return broker.Trade{}, err
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return broker.Trade{}, fmt.Errorf("amend trade: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.trades[tradeID]
	if !ok {
		return broker.Trade{}, fmt.Errorf("amend trade: %w: %q", broker.ErrTradeNotFound, tradeID)
	}
	applyBooking(t, req, e.now())
	return copyTrade(t), nil
}

func (e *Engine) CancelTrade(ctx context.Context, tradeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.trades[tradeID]
	if !ok {
		return fmt.Errorf("cancel trade: %w: %q", broker.ErrTradeNotFound, tradeID)
	}
	t.Status = broker.StatusCancelled
	return nil
}

func applyBooking(t *broker.Trade, req broker.BookingRequest, now time.Time) {
	t.Instrument = req.InstrumentID
	t.Side = req.Side
	t.Qty = req.Qty
	t.Price = broker.Float(req.Price)
	t.ExecTime = req.ExecTime
	if t.ExecTime == "" {
		t.ExecTime = broker.ISOTime(now)
	}
	t.BrokerID = req.BrokerID
	t.AccountID = req.AccountID
}

func copyOrder(o *broker.Order) broker.Order {
	c := *o
	c.Price = copyPrice(o.Price)
	return c
}

func copyTrade(t *broker.Trade) broker.Trade {
	c := *t
	c.Price = copyPrice(t.Price)
	return c
}

func copyPrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

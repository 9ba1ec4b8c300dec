package screen

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/rustyeddy/mocktrade/broker"
)

// fakeBackend records every call and serves whatever lists it holds.
type fakeBackend struct {
	mu sync.Mutex

	calls  []string
	orders []broker.Order
	trades []broker.Trade

	submitted []broker.OrderRequest
	booked    []broker.BookingRequest

	failList   error
	failAction error
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) ListOrders(ctx context.Context) ([]broker.Order, error) {
	f.record("list orders")
	if f.failList != nil {
		return nil, f.failList
	}
	return append([]broker.Order(nil), f.orders...), nil
}

func (f *fakeBackend) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	f.record("submit")
	if f.failAction != nil {
		return broker.Order{}, f.failAction
	}
	f.submitted = append(f.submitted, req)
	o := broker.Order{ID: "NEW1", Instrument: req.Instrument, Side: req.Side, Qty: req.Qty, Price: req.Price,
		Type: req.Type, TIF: req.TIF, Trader: req.Trader, Account: req.Account, Status: broker.StatusNew}
	f.orders = append(f.orders, o)
	return o, nil
}

func (f *fakeBackend) setOrder(id, status string) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
		}
	}
}

func (f *fakeBackend) SimulateFill(ctx context.Context, id string) error {
	f.record("fill " + id)
	if f.failAction != nil {
		return f.failAction
	}
	f.setOrder(id, broker.StatusFilled)
	return nil
}

func (f *fakeBackend) CancelOrder(ctx context.Context, id string) error {
	f.record("cancel " + id)
	if f.failAction != nil {
		return f.failAction
	}
	f.setOrder(id, broker.StatusCancelled)
	return nil
}

func (f *fakeBackend) ListTrades(ctx context.Context) ([]broker.Trade, error) {
	f.record("list trades")
	if f.failList != nil {
		return nil, f.failList
	}
	return append([]broker.Trade(nil), f.trades...), nil
}

func (f *fakeBackend) BookTrade(ctx context.Context, req broker.BookingRequest) (broker.Trade, error) {
	f.record("book")
	if f.failAction != nil {
		return broker.Trade{}, f.failAction
	}
	f.booked = append(f.booked, req)
	t := broker.Trade{ID: "T-NEW", Instrument: req.InstrumentID, Side: req.Side, Qty: req.Qty,
		Price: broker.Float(req.Price), ExecTime: req.ExecTime, BrokerID: req.BrokerID,
		AccountID: req.AccountID, Status: broker.StatusBooked}
	f.trades = append(f.trades, t)
	return t, nil
}

func (f *fakeBackend) AmendTrade(ctx context.Context, id string, req broker.BookingRequest) (broker.Trade, error) {
	f.record("amend " + id)
	if f.failAction != nil {
		return broker.Trade{}, f.failAction
	}
	f.booked = append(f.booked, req)
	for i := range f.trades {
		if f.trades[i].ID == id {
			f.trades[i].Qty = req.Qty
			f.trades[i].Price = broker.Float(req.Price)
			return f.trades[i], nil
		}
	}
	return broker.Trade{}, broker.ErrTradeNotFound
}

func (f *fakeBackend) CancelTrade(ctx context.Context, id string) error {
	f.record("cancel trade " + id)
	if f.failAction != nil {
		return f.failAction
	}
	for i := range f.trades {
		if f.trades[i].ID == id {
			f.trades[i].Status = broker.StatusCancelled
		}
	}
	return nil
}

// memSink keeps saved files in memory.
type memSink struct {
	files map[string]string
	err   error
}

func (m *memSink) Save(name string, src io.WriterTo) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	var b bytes.Buffer
	if _, err := src.WriteTo(&b); err != nil {
		return "", err
	}
	if m.files == nil {
		m.files = map[string]string{}
	}
	m.files[name] = b.String()
	return "mem/" + name, nil
}

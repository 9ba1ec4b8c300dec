package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/mocktrade/broker"
)

var fixed = time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)

func newTestEngine() *Engine {
	e := NewEngine()
	e.SetClock(func() time.Time { return fixed })
	return e
}

func govOrder() broker.OrderRequest {
	return broker.OrderRequest{
		Instrument: "INS-GOV5Y-SEP25",
		Side:       "buy",
		Qty:        10,
		Price:      broker.Float(101.55),
		Type:       "limit",
		TIF:        "day",
		Trader:     "TRDR01",
		Account:    "ACC-TRAIN",
	}
}

func TestSubmitOrder(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	ctx := context.Background()

	o, err := e.SubmitOrder(ctx, govOrder())
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, broker.StatusNew, o.Status)
	assert.Equal(t, broker.Buy, o.Side)
	assert.Equal(t, broker.Limit, o.Type)
	assert.Equal(t, broker.Day, o.TIF)
	assert.Equal(t, "2025-07-01T09:30:00Z", o.CreatedAt)

	orders, err := e.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o, orders[0])
}

func TestSubmitOrderInvalid(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	req := govOrder()
	req.Trader = ""

	_, err := e.SubmitOrder(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, broker.ErrInvalidRequest))
}

func TestOrderTransitions(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	ctx := context.Background()

	a, err := e.SubmitOrder(ctx, govOrder())
	require.NoError(t, err)
	b, err := e.SubmitOrder(ctx, govOrder())
	require.NoError(t, err)

	require.NoError(t, e.SimulateFill(ctx, a.ID))
	require.NoError(t, e.CancelOrder(ctx, b.ID))

	orders, err := e.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, a.ID, orders[0].ID, "insertion order")
	assert.Equal(t, broker.StatusFilled, orders[0].Status)
	assert.Equal(t, broker.StatusCancelled, orders[1].Status)

	err = e.SimulateFill(ctx, "missing")
	assert.True(t, errors.Is(err, broker.ErrOrderNotFound))
	err = e.CancelOrder(ctx, "missing")
	assert.True(t, errors.Is(err, broker.ErrOrderNotFound))
}

func TestListReturnsCopies(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	ctx := context.Background()
	_, err := e.SubmitOrder(ctx, govOrder())
	require.NoError(t, err)

	orders, _ := e.ListOrders(ctx)
	*orders[0].Price = 1
	orders[0].Status = "HACKED"

	again, _ := e.ListOrders(ctx)
	assert.Equal(t, 101.55, *again[0].Price)
	assert.Equal(t, broker.StatusNew, again[0].Status)
}

func booking() broker.BookingRequest {
	return broker.BookingRequest{
		InstrumentID: "GOVT10Y FUT SEP25",
		Side:         "sell",
		Qty:          5,
		Price:        101.60,
		BrokerID:     "BRK-NB",
		AccountID:    "ACC-TRAIN",
	}
}

func TestTradeLifecycle(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	ctx := context.Background()

	tr, err := e.BookTrade(ctx, booking())
	require.NoError(t, err)
	assert.Equal(t, broker.StatusBooked, tr.Status)
	assert.Equal(t, broker.Sell, tr.Side)
	assert.Equal(t, "2025-07-01T09:30:00.000Z", tr.ExecTime, "defaults to now")

	amend := booking()
	amend.Qty = 7
	amend.Price = 101.7
	amend.ExecTime = "2025-07-01T08:00:00.000Z"
	amended, err := e.AmendTrade(ctx, tr.ID, amend)
	require.NoError(t, err)
	assert.Equal(t, 7, amended.Qty)
	assert.Equal(t, 101.7, *amended.Price)
	assert.Equal(t, "2025-07-01T08:00:00.000Z", amended.ExecTime)
	assert.Equal(t, broker.StatusBooked, amended.Status)

	require.NoError(t, e.CancelTrade(ctx, tr.ID))
	trades, err := e.ListTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, broker.StatusCancelled, trades[0].Status)
	assert.Equal(t, 7, trades[0].Qty)

	_, err = e.AmendTrade(ctx, "missing", amend)
	assert.True(t, errors.Is(err, broker.ErrTradeNotFound))
	assert.True(t, errors.Is(e.CancelTrade(ctx, "missing"), broker.ErrTradeNotFound))
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ListOrders(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = e.BookTrade(ctx, booking())
	assert.ErrorIs(t, err, context.Canceled)
}

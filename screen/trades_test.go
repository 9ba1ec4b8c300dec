package screen

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/mocktrade/blotter"
	"github.com/rustyeddy/mocktrade/broker"
	"github.com/rustyeddy/mocktrade/broker/rest"
)

var clock = time.Date(2025, 7, 1, 14, 5, 6, 789000000, time.UTC)

func newTestBooking(f *fakeBackend) (*TradeBooking, *memSink) {
	sink := &memSink{}
	return NewTradeBooking(f,
		WithSink(sink),
		WithLocation(time.UTC),
		WithClock(func() time.Time { return clock }),
	), sink
}

func twoTrades() []broker.Trade {
	return []broker.Trade{
		{ID: "T1", OrderID: "O1", Instrument: "GOVT10Y FUT SEP25", Side: "SELL", Qty: 5,
			Price: broker.Float(101.6), Status: "BOOKED", ExecTime: "2025-07-01T10:00:00.000Z",
			BrokerID: "BRK-NB", AccountID: "ACC-TRAIN"},
		{ID: "T2", Instrument: "UST2Y", Side: "BUY", Qty: 3,
			Price: broker.Float(99.5), Status: "CANCELLED", ExecTime: "2025-07-03T10:00:00.000Z",
			BrokerID: "BRK-GS", AccountID: "ACC-TRAIN"},
	}
}

func TestBookTradeDefaults(t *testing.T) {
	t.Parallel()

	f := &fakeBackend{}
	s, _ := newTestBooking(f)

	s.Book(context.Background())
	assert.Equal(t, "Trade booked successfully.", s.Message())
	assert.Equal(t, []string{"book", "list trades"}, f.Calls())

	require.Len(t, f.booked, 1)
	assert.Equal(t, broker.BookingRequest{
		InstrumentID: "GOVT10Y FUT SEP25", Side: "SELL", Qty: 5, Price: 101.6,
		ExecTime: "2025-07-01T14:05:06.789Z", BrokerID: "BRK-NB", AccountID: "ACC-TRAIN",
	}, f.booked[0])
	require.Len(t, s.Trades(), 1)
}

func TestBookExplicitExecTime(t *testing.T) {
	t.Parallel()

	f := &fakeBackend{}
	s, _ := newTestBooking(f)
	require.NoError(t, s.Form.Set("exec_time", "2025-06-30T08:00:00.000Z"))

	s.Book(context.Background())
	require.Len(t, f.booked, 1)
	assert.Equal(t, "2025-06-30T08:00:00.000Z", f.booked[0].ExecTime)
}

func TestBookRequiredFields(t *testing.T) {
	t.Parallel()

	for _, field := range []string{"instrument", "qty", "price"} {
		f := &fakeBackend{}
		s, _ := newTestBooking(f)
		require.NoError(t, s.Form.Set(field, ""))

		s.Book(context.Background())
		assert.Equal(t, "Instrument, Qty, and Price are required.", s.Message(), field)
		assert.Empty(t, f.Calls())
	}
}

func TestBookFailure(t *testing.T) {
	t.Parallel()

	f := &fakeBackend{failAction: &rest.StatusError{Code: 503}}
	s, _ := newTestBooking(f)

	s.Book(context.Background())
	assert.Equal(t, "Booking failed: HTTP 503", s.Message())
	assert.Empty(t, s.Trades())
}

func TestAmendKeepsSelection(t *testing.T) {
	t.Parallel()

	f := &fakeBackend{trades: twoTrades()}
	s, _ := newTestBooking(f)
	ctx := context.Background()

	s.Amend(ctx)
	assert.Empty(t, f.Calls(), "no selection, no request")

	s.Load(ctx)
	require.True(t, s.Select("T1"))
	require.True(t, s.EditSelected())
	assert.Equal(t, "101.6", s.Form.Price)
	assert.Equal(t, "2025-07-01T10:00:00.000Z", s.Form.ExecTime)

	require.NoError(t, s.Form.Set("qty", "8"))
	s.Amend(ctx)
	assert.Equal(t, "Trade amended successfully.", s.Message())
	assert.Equal(t, "T1", s.Selected())
	assert.Equal(t, 8, s.Trades()[0].Qty)
	assert.Equal(t, []string{"list trades", "amend T1", "list trades"}, f.Calls())
}

func TestAmendFailure(t *testing.T) {
	t.Parallel()

	f := &fakeBackend{trades: twoTrades()}
	s, _ := newTestBooking(f)
	ctx := context.Background()
	s.Load(ctx)
	require.True(t, s.Select("T1"))

	f.failAction = &rest.StatusError{Code: 404, Body: `{"detail":"not found"}`}
	s.Amend(ctx)
	assert.Equal(t, `Amend failed: {"detail":"not found"} HTTP 404`, s.Message())
}

func TestCancelTrade(t *testing.T) {
	t.Parallel()

	f := &fakeBackend{trades: twoTrades()}
	s, _ := newTestBooking(f)
	ctx := context.Background()

	s.Cancel(ctx)
	assert.Empty(t, f.Calls())

	s.Load(ctx)
	require.True(t, s.Select("T1"))
	s.Cancel(ctx)
	assert.Equal(t, "Trade cancelled.", s.Message())
	assert.Empty(t, s.Selected())
	assert.Equal(t, "CANCELLED", s.Trades()[0].Status)

	require.True(t, s.Select("T2"))
	f.failAction = &rest.StatusError{Code: 500, Body: "db locked"}
	s.Cancel(ctx)
	assert.Equal(t, "Cancel failed: db locked HTTP 500", s.Message())
	assert.Equal(t, "T2", s.Selected())
}

func TestTradeFiltersAndExport(t *testing.T) {
	t.Parallel()

	f := &fakeBackend{trades: twoTrades()}
	s, sink := newTestBooking(f)
	s.Load(context.Background())

	s.Filter = blotter.TradeFilter{Broker: "nb"}
	require.Len(t, s.Visible(), 1)

	assert.Equal(t, "mem/trades.csv", s.Export())
	lines := strings.Split(sink.files["trades.csv"], "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"TradeId","OrderId","Instrument","Side","Qty","Price","Status","ExecTime"`, lines[0])
	assert.Equal(t, `"T1","O1","GOVT10Y FUT SEP25","SELL","5","101.6","BOOKED","7/1/2025, 10:00:00 AM"`, lines[1])

	s.Filter = blotter.TradeFilter{Date: "2025-07-03"}
	require.Len(t, s.Visible(), 1)
	assert.Equal(t, "T2", s.Visible()[0].ID)

	s.Filter = blotter.TradeFilter{Status: "PENDING"}
	assert.Empty(t, s.Export())
	assert.Equal(t, "No trades to export.", s.Message())
}

func TestTradeFormSet(t *testing.T) {
	t.Parallel()

	f := DefaultTradeForm()
	require.NoError(t, f.Set("broker", "BRK-JP"))
	assert.Equal(t, "BRK-JP", f.Broker)
	assert.Error(t, f.Set("side", "x"))
	assert.Error(t, f.Set("trader", "x"))

	f.Price = "abc"
	_, err := f.Request("now")
	assert.EqualError(t, err, `Price must be a number, got "abc".`)
}

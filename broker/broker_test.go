package broker

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339 utc", "2025-07-01T10:15:30Z", time.Date(2025, 7, 1, 10, 15, 30, 0, time.UTC)},
		{"rfc3339 millis", "2025-07-01T10:15:30.123Z", time.Date(2025, 7, 1, 10, 15, 30, 123e6, time.UTC)},
		{"rfc3339 offset", "2025-07-01T10:15:30+02:00", time.Date(2025, 7, 1, 8, 15, 30, 0, time.UTC)},
		{"python str", "2025-07-01 10:15:30.123456", time.Date(2025, 7, 1, 10, 15, 30, 123456e3, ny)},
		{"python str with zone", "2025-07-01 10:15:30.5+00:00", time.Date(2025, 7, 1, 10, 15, 30, 5e8, time.UTC)},
		{"iso without zone", "2025-07-01T23:30:00", time.Date(2025, 7, 1, 23, 30, 0, 0, ny)},
		{"date only is utc", "2025-07-01", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTime(tt.in, ny)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestParseTimeRejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "yesterday", "07/01/2025"} {
		_, err := ParseTime(in, time.UTC)
		assert.Error(t, err, in)
	}
}

func TestISOTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 7, 1, 12, 0, 0, 7e6, time.FixedZone("X", 3600))
	assert.Equal(t, "2025-07-01T11:00:00.007Z", ISOTime(ts))
}

func TestTradeUnmarshalAliases(t *testing.T) {
	t.Parallel()

	var tr Trade
	err := json.Unmarshal([]byte(`{
		"id": "T1", "order_id": null, "instrument": "GOVT10Y FUT SEP25",
		"side": "SELL", "qty": 5, "price": 101.6, "status": "BOOKED",
		"exec_time": "2025-07-01 10:00:00", "broker": "BRK-NB", "account": "ACC-TRAIN"
	}`), &tr)
	require.NoError(t, err)

	assert.Equal(t, "T1", tr.ID)
	assert.Equal(t, "", tr.OrderID)
	assert.Equal(t, "BRK-NB", tr.BrokerID)
	assert.Equal(t, "ACC-TRAIN", tr.AccountID)
	require.NotNil(t, tr.Price)
	assert.Equal(t, 101.6, *tr.Price)

	var canonical Trade
	err = json.Unmarshal([]byte(`{"id":"T2","order_id":"O9","broker_id":"B","account_id":"A"}`), &canonical)
	require.NoError(t, err)
	assert.Equal(t, "O9", canonical.OrderID)
	assert.Equal(t, "B", canonical.BrokerID)
	assert.Equal(t, "A", canonical.AccountID)
}

func TestOrderPriceNull(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(OrderRequest{Instrument: "X", Side: Buy, Qty: 1, Type: Market, TIF: Day, Trader: "T"})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"price":null`)
}

func TestOrderRequestValidate(t *testing.T) {
	t.Parallel()

	valid := OrderRequest{Instrument: "INS", Side: "buy", Qty: 10, Type: "limit", TIF: "day", Trader: "TRDR01"}.Normalize()
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*OrderRequest)
		errMsg string
	}{
		{"missing instrument", func(r *OrderRequest) { r.Instrument = "" }, "instrument is required"},
		{"zero qty", func(r *OrderRequest) { r.Qty = 0 }, "qty must be positive"},
		{"missing trader", func(r *OrderRequest) { r.Trader = "" }, "trader is required"},
		{"bad side", func(r *OrderRequest) { r.Side = "HOLD" }, "side must be"},
		{"bad type", func(r *OrderRequest) { r.Type = "STOP" }, "type must be"},
		{"bad tif", func(r *OrderRequest) { r.TIF = "GTC" }, "tif must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRequest))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestBookingRequestValidate(t *testing.T) {
	t.Parallel()

	req := BookingRequest{InstrumentID: "GOVT10Y", Side: "sell", Qty: 5, Price: 101.6}.Normalize()
	assert.NoError(t, req.Validate())

	req.Qty = 0
	assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)
}

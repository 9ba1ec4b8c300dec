package broker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Trade is a booked execution as reported by the backend.
type Trade struct {
	ID         string   `json:"id"`
	OrderID    string   `json:"order_id"`
	Instrument string   `json:"instrument"`
	Side       string   `json:"side"`
	Qty        int      `json:"qty"`
	Price      *float64 `json:"price"`
	Status     string   `json:"status"`
	ExecTime   string   `json:"exec_time"`
	BrokerID   string   `json:"broker_id"`
	AccountID  string   `json:"account_id"`
	CreatedAt  string   `json:"created_at,omitempty"`
}

// UnmarshalJSON also accepts the "broker" and "account" keys some backends
// use for the counterparty fields.
func (t *Trade) UnmarshalJSON(data []byte) error {
	type plain Trade
	var aux struct {
		plain
		OrderID *string `json:"order_id"`
		Broker  string  `json:"broker"`
		Account string  `json:"account"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Trade(aux.plain)
	if aux.OrderID != nil {
		t.OrderID = *aux.OrderID
	}
	if t.BrokerID == "" {
		t.BrokerID = aux.Broker
	}
	if t.AccountID == "" {
		t.AccountID = aux.Account
	}
	return nil
}

func (r BookingRequest) Normalize() BookingRequest {
	r.Side = strings.ToUpper(strings.TrimSpace(r.Side))
	return r
}

func (r BookingRequest) Validate() error {
	switch {
	case r.InstrumentID == "":
		return fmt.Errorf("%w: instrument_id is required", ErrInvalidRequest)
	case r.Qty <= 0:
		return fmt.Errorf("%w: qty must be positive", ErrInvalidRequest)
	case r.Side != Buy && r.Side != Sell:
		return fmt.Errorf("%w: side must be BUY or SELL, got %q", ErrInvalidRequest, r.Side)
	}
	return nil
}

package screen

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/rustyeddy/mocktrade/blotter"
	"github.com/rustyeddy/mocktrade/broker"
)

const (
	msgTradeBooked    = "Trade booked successfully."
	msgTradeAmended   = "Trade amended successfully."
	msgTradeCancelled = "Trade cancelled."
	msgTradesLoad     = "Could not load trades from server."
	msgNoTrades       = "No trades to export."
)

// TradeBooking is the booking ticket and the trade blotter.
type TradeBooking struct {
	status

	Form   TradeForm
	Filter blotter.TradeFilter

	backend  broker.Trades
	env      env
	trades   []broker.Trade
	selected string
}

func NewTradeBooking(backend broker.Trades, opts ...Option) *TradeBooking {
	return &TradeBooking{
		Form:    DefaultTradeForm(),
		backend: backend,
		env:     newEnv(opts),
	}
}

func (s *TradeBooking) Trades() []broker.Trade {
	return append([]broker.Trade(nil), s.trades...)
}

func (s *TradeBooking) Visible() []broker.Trade {
	return blotter.FilterTrades(s.trades, s.Filter, s.env.loc)
}

func (s *TradeBooking) Select(id string) bool {
	for _, t := range s.Visible() {
		if t.ID == id {
			s.selected = id
			return true
		}
	}
	return false
}

func (s *TradeBooking) Selected() string { return s.selected }

func (s *TradeBooking) ClearSelection() { s.selected = "" }

// EditSelected copies the selected trade into the ticket so it can be
// amended.
func (s *TradeBooking) EditSelected() bool {
	if s.selected == "" {
		return false
	}
	for _, t := range s.trades {
		if t.ID != s.selected {
			continue
		}
		s.Form = TradeForm{
			Instrument: t.Instrument,
			Side:       t.Side,
			Qty:        strconv.Itoa(t.Qty),
			Price:      blotter.FormatPrice(t.Price),
			ExecTime:   t.ExecTime,
			Broker:     t.BrokerID,
			Account:    t.AccountID,
		}
		return true
	}
	return false
}

func (s *TradeBooking) Load(ctx context.Context) {
	if err := s.refresh(ctx); err != nil {
		s.set(msgTradesLoad, err)
	}
}

func (s *TradeBooking) refresh(ctx context.Context) error {
	trades, err := s.backend.ListTrades(ctx)
	if err != nil {
		s.env.log.Warn("fetch trades", zap.Error(err))
		return err
	}
	s.trades = trades
	return nil
}

func (s *TradeBooking) request() (broker.BookingRequest, bool) {
	req, err := s.Form.Request(broker.ISOTime(s.env.now()))
	if err != nil {
		s.set(err.Error(), err)
		return broker.BookingRequest{}, false
	}
	return req, true
}

// Book books the ticket as a new trade.
func (s *TradeBooking) Book(ctx context.Context) {
	s.set("", nil)

	req, ok := s.request()
	if !ok {
		return
	}
	t, err := s.backend.BookTrade(ctx, req)
	if err != nil {
		s.env.log.Warn("book trade", zap.String("instrument", req.InstrumentID), zap.Error(err))
		s.set("Booking failed: "+err.Error(), err)
		return
	}
	s.env.log.Info("trade booked", zap.String("id", t.ID), zap.String("instrument", t.Instrument))

	s.refresh(ctx)
	s.set(msgTradeBooked, nil)
}

// Amend replaces the selected trade's fields with the ticket. The selection
// is kept.
func (s *TradeBooking) Amend(ctx context.Context) {
	if s.selected == "" {
		return
	}
	req, ok := s.request()
	if !ok {
		return
	}
	id := s.selected
	if _, err := s.backend.AmendTrade(ctx, id, req); err != nil {
		s.env.log.Warn("amend trade", zap.String("id", id), zap.Error(err))
		s.set("Amend failed: "+err.Error(), err)
		return
	}
	s.refresh(ctx)
	s.set(msgTradeAmended, nil)
}

func (s *TradeBooking) Cancel(ctx context.Context) {
	if s.selected == "" {
		return
	}
	id := s.selected
	if err := s.backend.CancelTrade(ctx, id); err != nil {
		s.env.log.Warn("cancel trade", zap.String("id", id), zap.Error(err))
		s.set("Cancel failed: "+err.Error(), err)
		return
	}
	s.refresh(ctx)
	s.set(msgTradeCancelled, nil)
	s.selected = ""
}

// Export writes the visible trades to trades.csv.
func (s *TradeBooking) Export() string {
	rows := s.Visible()
	if len(rows) == 0 {
		s.set(msgNoTrades, nil)
		return ""
	}
	path, err := s.env.sink.Save(blotter.TradesFile, blotter.TradesCSV(rows, s.env.loc))
	if err != nil {
		s.env.log.Warn("export trades", zap.Error(err))
		s.set("Export failed: "+err.Error(), err)
		return ""
	}
	return path
}

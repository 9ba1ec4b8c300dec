package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/mocktrade/broker"
	"github.com/rustyeddy/mocktrade/pkg/id"
)

// SQLite is a persistent stand-in backend. It keeps orders and trades in a
// SQLite file and applies the same transitions as the in-memory simulator.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ broker.Broker = (*SQLite)(nil)

const (
	orderColumns = `order_id, instrument_id, side, qty, limit_price, type, tif, trader_id, account_id, status, created_at`
	tradeColumns = `trade_id, order_id, instrument_id, side, qty, price, exec_time, broker_id, account_id, status, created_at`
)

// NewSQLite opens (creating if needed) the journal at path. ":memory:" gives
// a private in-memory database.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// One connection: an in-memory database is per-connection, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// SetClock replaces the time source used for ids and creation stamps.
func (j *SQLite) SetClock(now func() time.Time) {
	j.now = now
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func (j *SQLite) ListOrders(ctx context.Context) ([]broker.Order, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []broker.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

func (j *SQLite) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return broker.Order{}, fmt.Errorf("submit order: %w", err)
	}

	now := j.now()
	o := broker.Order{
		ID:         id.NewAt(now),
		Instrument: req.Instrument,
		Side:       req.Side,
		Qty:        req.Qty,
		Price:      req.Price,
		Type:       req.Type,
		TIF:        req.TIF,
		Trader:     req.Trader,
		Account:    req.Account,
		Status:     broker.StatusNew,
		CreatedAt:  now.UTC().Format(time.RFC3339Nano),
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Instrument, o.Side, o.Qty, nullFloat(o.Price), o.Type, o.TIF,
		o.Trader, o.Account, o.Status, o.CreatedAt,
	)
	if err != nil {
		return broker.Order{}, fmt.Errorf("submit order: %w", err)
	}
	return o, nil
}

func (j *SQLite) SimulateFill(ctx context.Context, orderID string) error {
	return j.setStatus(ctx, "simulate fill", "orders", "order_id", orderID, broker.StatusFilled, broker.ErrOrderNotFound)
}

func (j *SQLite) CancelOrder(ctx context.Context, orderID string) error {
	return j.setStatus(ctx, "cancel order", "orders", "order_id", orderID, broker.StatusCancelled, broker.ErrOrderNotFound)
}

func (j *SQLite) ListTrades(ctx context.Context) ([]broker.Trade, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+tradeColumns+` FROM trades ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()

	out := []broker.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("list trades: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return out, nil
}

func (j *SQLite) BookTrade(ctx context.Context, req broker.BookingRequest) (broker.Trade, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return broker.Trade{}, fmt.Errorf("book trade: %w", err)
	}

	now := j.now()
	execTime := req.ExecTime
	if execTime == "" {
		execTime = broker.ISOTime(now)
	}
	t := broker.Trade{
		ID:         id.NewAt(now),
		Instrument: req.InstrumentID,
		Side:       req.Side,
		Qty:        req.Qty,
		Price:      broker.Float(req.Price),
		Status:     broker.StatusBooked,
		ExecTime:   execTime,
		BrokerID:   req.BrokerID,
		AccountID:  req.AccountID,
		CreatedAt:  now.UTC().Format(time.RFC3339Nano),
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Instrument, t.Side, t.Qty, req.Price, t.ExecTime,
		t.BrokerID, t.AccountID, t.Status, t.CreatedAt,
	)
	if err != nil {
		return broker.Trade{}, fmt.Errorf("book trade: %w", err)
	}
	return t, nil
}

func (j *SQLite) AmendTrade(ctx context.Context, tradeID string, req broker.BookingRequest) (broker.Trade, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return broker.Trade{}, fmt.Errorf("amend trade: %w", err)
	}
	execTime := req.ExecTime
	if execTime == "" {
		execTime = broker.ISOTime(j.now())
	}

	res, err := j.db.ExecContext(ctx, `
		UPDATE trades
		SET instrument_id = ?, side = ?, qty = ?, price = ?, exec_time = ?, broker_id = ?, account_id = ?
		WHERE trade_id = ?`,
		req.InstrumentID, req.Side, req.Qty, req.Price, execTime, req.BrokerID, req.AccountID, tradeID,
	)
	if err != nil {
		return broker.Trade{}, fmt.Errorf("amend trade: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return broker.Trade{}, fmt.Errorf("amend trade: %w: %q", broker.ErrTradeNotFound, tradeID)
	}
	return j.GetTrade(ctx, tradeID)
}

func (j *SQLite) CancelTrade(ctx context.Context, tradeID string) error {
	return j.setStatus(ctx, "cancel trade", "trades", "trade_id", tradeID, broker.StatusCancelled, broker.ErrTradeNotFound)
}

func (j *SQLite) setStatus(ctx context.Context, op, table, key, id, status string, notFound error) error {
	res, err := j.db.ExecContext(ctx, `UPDATE `+table+` SET status = ? WHERE `+key+` = ?`, status, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w: %q", op, notFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (broker.Order, error) {
	var (
		o     broker.Order
		price sql.NullFloat64
	)
	err := s.Scan(&o.ID, &o.Instrument, &o.Side, &o.Qty, &price, &o.Type, &o.TIF,
		&o.Trader, &o.Account, &o.Status, &o.CreatedAt)
	if err != nil {
		return broker.Order{}, err
	}
	if price.Valid {
		o.Price = broker.Float(price.Float64)
	}
	return o, nil
}

func scanTrade(s scanner) (broker.Trade, error) {
	var (
		t       broker.Trade
		orderID sql.NullString
		price   float64
	)
	err := s.Scan(&t.ID, &orderID, &t.Instrument, &t.Side, &t.Qty, &price, &t.ExecTime,
		&t.BrokerID, &t.AccountID, &t.Status, &t.CreatedAt)
	if err != nil {
		return broker.Trade{}, err
	}
	t.OrderID = orderID.String
	t.Price = broker.Float(price)
	return t, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

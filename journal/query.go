package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rustyeddy/mocktrade/broker"
)

// GetOrder returns a single order by ID.
func (j *SQLite) GetOrder(ctx context.Context, orderID string) (broker.Order, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, orderID)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return broker.Order{}, fmt.Errorf("get order: %w: %q", broker.ErrOrderNotFound, orderID)
		}
		return broker.Order{}, err
	}
	return o, nil
}

// GetTrade returns a single trade by ID.
func (j *SQLite) GetTrade(ctx context.Context, tradeID string) (broker.Trade, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)
	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return broker.Trade{}, fmt.Errorf("get trade: %w: %q", broker.ErrTradeNotFound, tradeID)
		}
		return broker.Trade{}, err
	}
	return t, nil
}

// ListTradesByStatus returns trades in the given status, oldest booking first.
func (j *SQLite) ListTradesByStatus(ctx context.Context, status string) ([]broker.Trade, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE status = ?
		ORDER BY rowid ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []broker.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

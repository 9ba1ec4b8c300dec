// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	order_id TEXT PRIMARY KEY,
	instrument_id TEXT NOT NULL,
	side TEXT NOT NULL,
	qty INTEGER NOT NULL,
	limit_price REAL,
	type TEXT NOT NULL,
	tif TEXT NOT NULL,
	trader_id TEXT NOT NULL,
	account_id TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	order_id TEXT,
	instrument_id TEXT NOT NULL,
	side TEXT NOT NULL,
	qty INTEGER NOT NULL,
	price REAL NOT NULL,
	exec_time TEXT NOT NULL,
	broker_id TEXT NOT NULL,
	account_id TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at);
CREATE INDEX IF NOT EXISTS idx_trades_exec ON trades(exec_time);
`

package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/mocktrade/broker"
	"github.com/rustyeddy/mocktrade/broker/sim"
	"github.com/rustyeddy/mocktrade/journal"
	"github.com/rustyeddy/mocktrade/screen"
	"github.com/rustyeddy/mocktrade/server"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newBackend(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(server.New(sim.NewEngine(), nil, nil).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "mocktrade dev\n", out)
}

func TestOrdersOneShot(t *testing.T) {
	url := newBackend(t)
	exportDir := t.TempDir()
	t.Setenv("MOCKTRADE_EXPORT_DIR", exportDir)
	t.Setenv("MOCKTRADE_TIMEZONE", "UTC")

	out, err := run(t, "--base-url", url, "orders", "submit")
	require.NoError(t, err)
	assert.Equal(t, "✓ Order submitted successfully.\n", out)

	out, err = run(t, "--base-url", url, "orders", "submit", "--side", "sell", "--type", "market", "--qty", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Order submitted successfully.")

	out, err = run(t, "--base-url", url, "orders", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "INS-GOV5Y-SEP25")
	assert.Contains(t, out, "MARKET")

	out, err = run(t, "--base-url", url, "orders", "list", "--status", "FILLED")
	require.NoError(t, err)
	assert.Contains(t, out, "(no orders)")

	_, err = run(t, "--base-url", url, "orders", "fill", "nope")
	assert.EqualError(t, err, `order "nope" not found`)

	out, err = run(t, "--base-url", url, "orders", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 orders")

	data, err := os.ReadFile(filepath.Join(exportDir, "visible_orders.csv"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(data), "\n"), 3)
}

func TestOrdersSubmitValidation(t *testing.T) {
	url := newBackend(t)

	_, err := run(t, "--base-url", url, "orders", "submit", "--trader", "")
	assert.EqualError(t, err, "Instrument, Qty, and Trader are required.")

	_, err = run(t, "--base-url", url, "orders", "submit", "--side", "short")
	assert.Error(t, err)
}

func TestOrdersBackendDown(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	_, err := run(t, "--base-url", url, "orders", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not load orders from server.")
}

func TestTradesOneShot(t *testing.T) {
	url := newBackend(t)

	out, err := run(t, "--base-url", url, "trades", "book", "--exec-time", "2025-07-01T10:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, "✓ Trade booked successfully.\n", out)

	out, err = run(t, "--base-url", url, "trades", "book", "--price", "")
	assert.EqualError(t, err, "Instrument, Qty, and Price are required.")
	assert.Empty(t, out)

	out, err = run(t, "--base-url", url, "trades", "list", "--broker", "nb")
	require.NoError(t, err)
	assert.Contains(t, out, "GOVT10Y FUT SEP25")
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mocktrade.yaml")

	out, err := run(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Created default configuration")

	out, err = run(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Backend: http://localhost:8000")

	_, err = run(t, "--config", path, "version")
	assert.NoError(t, err)
}

func TestJournalCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.sqlite")
	j, err := journal.NewSQLite(dbPath)
	require.NoError(t, err)
	tr, err := j.BookTrade(context.Background(), broker.BookingRequest{
		InstrumentID: "GOVT10Y FUT SEP25", Side: "SELL", Qty: 5, Price: 101.6,
		BrokerID: "BRK-NB", AccountID: "ACC-TRAIN",
	})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	out, err := run(t, "journal", "trade", tr.ID, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, ":ID: "+tr.ID)

	out, err = run(t, "journal", "trades", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "** Trade: SELL GOVT10Y FUT SEP25")

	_, err = run(t, "journal", "order", "missing", "--db", dbPath)
	assert.ErrorIs(t, err, broker.ErrOrderNotFound)

	_, err = run(t, "journal", "trades")
	assert.Error(t, err)
}

func newOrderShell() (*orderShell, *sim.Engine) {
	e := sim.NewEngine()
	s := screen.NewOrderEntry(e, screen.WithLocation(time.UTC), screen.WithSink(&discard{}))
	return &orderShell{s: s, loc: time.UTC}, e
}

type discard struct{}

func (discard) Save(name string, src io.WriterTo) (string, error) {
	return name, nil
}

func TestOrderShell(t *testing.T) {
	t.Parallel()

	sh, e := newOrderShell()
	ctx := context.Background()
	var out bytes.Buffer

	exec := func(line string) error {
		out.Reset()
		return sh.exec(ctx, &out, strings.Fields(line))
	}

	require.NoError(t, exec("set instrument UST 2Y"))
	assert.Contains(t, out.String(), "UST 2Y")
	require.NoError(t, exec("submit"))
	assert.Contains(t, out.String(), "Order submitted successfully.")

	orders, err := e.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	id := orders[0].ID

	assert.EqualError(t, exec("fill"), "select an order first")
	require.NoError(t, exec("select "+id))

	require.NoError(t, exec("dropcopy"))
	assert.Contains(t, out.String(), "35=D")
	assert.Contains(t, out.String(), "|55=UST 2Y|")

	require.NoError(t, exec("download"))
	assert.Contains(t, out.String(), "fix_message_"+id+".txt")
	require.NoError(t, exec("close"))

	require.NoError(t, exec("fill"))
	assert.Contains(t, out.String(), "Simulated fill")
	assert.Empty(t, sh.s.Selected())

	require.NoError(t, exec("filter status filled"))
	assert.Contains(t, out.String(), "(1 of 1)")
	require.NoError(t, exec("filter status new"))
	assert.Contains(t, out.String(), "(no orders)")

	require.NoError(t, exec("export"))
	assert.Contains(t, out.String(), "No rows to export.")

	assert.Error(t, exec("set colour red"))
	assert.Error(t, exec("bogus"))
	assert.ErrorIs(t, exec("exit"), errQuit)
}

func TestTradeShell(t *testing.T) {
	t.Parallel()

	e := sim.NewEngine()
	sh := &tradeShell{s: screen.NewTradeBooking(e, screen.WithLocation(time.UTC)), loc: time.UTC}
	ctx := context.Background()
	var out bytes.Buffer

	exec := func(line string) error {
		out.Reset()
		return sh.exec(ctx, &out, strings.Fields(line))
	}

	require.NoError(t, exec("book"))
	assert.Contains(t, out.String(), "Trade booked successfully.")

	trades, err := e.ListTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	id := trades[0].ID

	assert.EqualError(t, exec("amend"), "select a trade first")
	require.NoError(t, exec("select "+id))
	require.NoError(t, exec("edit"))
	require.NoError(t, exec("set qty 9"))
	require.NoError(t, exec("amend"))
	assert.Contains(t, out.String(), "Trade amended successfully.")

	trades, err = e.ListTrades(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, trades[0].Qty)

	require.NoError(t, exec("cancel"))
	assert.Contains(t, out.String(), "Trade cancelled.")
	require.NoError(t, exec("filter status cancelled"))
	assert.Contains(t, out.String(), "CANCELLED")

	assert.ErrorIs(t, exec("quit"), errQuit)
}

package screen

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/rustyeddy/mocktrade/blotter"
	"github.com/rustyeddy/mocktrade/broker"
	"github.com/rustyeddy/mocktrade/fix"
)

const (
	msgOrderSubmitted = "Order submitted successfully."
	msgOrderFilled    = "Simulated fill"
	msgOrderCancelled = "Order cancelled"
	msgOrdersLoad     = "Could not load orders from server."
	msgNoRows         = "No rows to export."
	msgFixCopied      = "FIX message copied to clipboard!"
)

// FixPreview is an open drop-copy preview for one order.
type FixPreview struct {
	OrderID string
	Message string
}

// OrderEntry is the order ticket, the order blotter and its FIX preview.
type OrderEntry struct {
	status

	Form   OrderForm
	Filter blotter.OrderFilter

	backend  broker.Orders
	env      env
	orders   []broker.Order
	selected string
	preview  *FixPreview
}

func NewOrderEntry(backend broker.Orders, opts ...Option) *OrderEntry {
	return &OrderEntry{
		Form:    DefaultOrderForm(),
		backend: backend,
		env:     newEnv(opts),
	}
}

// Orders is the last fetched list, unfiltered.
func (s *OrderEntry) Orders() []broker.Order {
	return append([]broker.Order(nil), s.orders...)
}

// Visible applies the current filter to the last fetched list.
func (s *OrderEntry) Visible() []broker.Order {
	return blotter.FilterOrders(s.orders, s.Filter, s.env.loc)
}

// Select marks a visible order. It reports false, leaving the selection
// alone, when id is not on screen.
func (s *OrderEntry) Select(id string) bool {
	for _, o := range s.Visible() {
		if o.ID == id {
			s.selected = id
			return true
		}
	}
	return false
}

func (s *OrderEntry) Selected() string { return s.selected }

func (s *OrderEntry) ClearSelection() { s.selected = "" }

// Load replaces the list with the backend's.
func (s *OrderEntry) Load(ctx context.Context) {
	if err := s.refresh(ctx); err != nil {
		s.set(msgOrdersLoad, err)
	}
}

func (s *OrderEntry) refresh(ctx context.Context) error {
	orders, err := s.backend.ListOrders(ctx)
	if err != nil {
		s.env.log.Warn("fetch orders", zap.Error(err))
		return err
	}
	s.orders = orders
	return nil
}

// Submit sends the ticket. Missing required fields stop it before any
// request goes out.
func (s *OrderEntry) Submit(ctx context.Context) {
	s.set("", nil)

	req, err := s.Form.Request()
	if err != nil {
		s.set(err.Error(), err)
		return
	}

	o, err := s.backend.SubmitOrder(ctx, req)
	if err != nil {
		s.env.log.Warn("submit order", zap.String("instrument", req.Instrument), zap.Error(err))
		s.set("Submit failed: "+err.Error(), err)
		return
	}
	s.env.log.Info("order submitted", zap.String("id", o.ID), zap.String("instrument", o.Instrument))

	s.refresh(ctx)
	s.set(msgOrderSubmitted, nil)
}

// SimulateFill asks the backend to fill the selected order. Without a
// selection it does nothing.
func (s *OrderEntry) SimulateFill(ctx context.Context) {
	if s.selected == "" {
		return
	}
	id := s.selected
	if err := s.backend.SimulateFill(ctx, id); err != nil {
		s.env.log.Warn("simulate fill", zap.String("id", id), zap.Error(err))
		s.set("Simulate Fill failed: "+err.Error(), err)
		return
	}
	s.refresh(ctx)
	s.set(msgOrderFilled, nil)
	s.selected = ""
}

// Cancel cancels the selected order. Without a selection it does nothing.
func (s *OrderEntry) Cancel(ctx context.Context) {
	if s.selected == "" {
		return
	}
	id := s.selected
	if err := s.backend.CancelOrder(ctx, id); err != nil {
		s.env.log.Warn("cancel order", zap.String("id", id), zap.Error(err))
		s.set("Cancel failed: "+err.Error(), err)
		return
	}
	s.refresh(ctx)
	s.set(msgOrderCancelled, nil)
	s.selected = ""
}

// Export writes the visible rows to visible_orders.csv and returns the
// path. Nothing is written when no rows are visible.
func (s *OrderEntry) Export() string {
	rows := s.Visible()
	if len(rows) == 0 {
		s.set(msgNoRows, nil)
		return ""
	}
	path, err := s.env.sink.Save(blotter.OrdersFile, blotter.OrdersCSV(rows, s.env.loc))
	if err != nil {
		s.env.log.Warn("export orders", zap.Error(err))
		s.set("Export failed: "+err.Error(), err)
		return ""
	}
	return path
}

// Dropcopy opens the FIX preview for the selected order.
func (s *OrderEntry) Dropcopy() {
	if s.selected == "" {
		return
	}
	for _, o := range s.orders {
		if o.ID == s.selected {
			s.preview = &FixPreview{OrderID: o.ID, Message: fix.NewOrderSingle(o, s.env.loc)}
			return
		}
	}
}

// Preview returns the open FIX preview, if any.
func (s *OrderEntry) Preview() (FixPreview, bool) {
	if s.preview == nil {
		return FixPreview{}, false
	}
	return *s.preview, true
}

func (s *OrderEntry) CopyFix() {
	if s.preview == nil {
		return
	}
	if err := s.env.copy(s.preview.Message); err != nil {
		s.env.log.Warn("copy fix message", zap.Error(err))
		s.set("Copy failed: "+err.Error(), err)
		return
	}
	s.set(msgFixCopied, nil)
}

// DownloadFix saves the preview as fix_message_<id>.txt and returns the path.
func (s *OrderEntry) DownloadFix() string {
	if s.preview == nil {
		return ""
	}
	path, err := s.env.sink.Save(fix.FileName(s.preview.OrderID), strings.NewReader(s.preview.Message))
	if err != nil {
		s.env.log.Warn("download fix message", zap.Error(err))
		s.set("Download failed: "+err.Error(), err)
		return ""
	}
	return path
}

func (s *OrderEntry) CloseFix() { s.preview = nil }

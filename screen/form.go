package screen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rustyeddy/mocktrade/broker"
)

var (
	errOrderRequired = errors.New("Instrument, Qty, and Trader are required.")
	errTradeRequired = errors.New("Instrument, Qty, and Price are required.")
)

// OrderFormFields lists the names accepted by OrderForm.Set.
var OrderFormFields = []string{"instrument", "side", "qty", "price", "type", "tif", "trader", "account"}

// TradeFormFields lists the names accepted by TradeForm.Set.
var TradeFormFields = []string{"instrument", "side", "qty", "price", "exec_time", "broker", "account"}

// OrderForm is the order ticket as typed. Values stay strings until submit.
type OrderForm struct {
	Instrument string `yaml:"instrument" json:"instrument"`
	Side       string `yaml:"side" json:"side"`
	Qty        string `yaml:"qty" json:"qty"`
	Price      string `yaml:"price" json:"price"`
	Type       string `yaml:"type" json:"type"`
	TIF        string `yaml:"tif" json:"tif"`
	Trader     string `yaml:"trader" json:"trader"`
	Account    string `yaml:"account" json:"account"`
}

func DefaultOrderForm() OrderForm {
	return OrderForm{
		Instrument: "INS-GOV5Y-SEP25",
		Side:       broker.Buy,
		Qty:        "10",
		Price:      "101.55",
		Type:       broker.Limit,
		TIF:        broker.Day,
		Trader:     "TRDR01",
		Account:    "ACC-TRAIN",
	}
}

// Set changes one field by name. Side, type and tif only take their
// enumerated values.
func (f *OrderForm) Set(field, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(field) {
	case "instrument":
		f.Instrument = value
	case "side":
		v, err := oneOf(field, value, broker.Buy, broker.Sell)
		if err != nil {
			return err
		}
		f.Side = v
	case "qty":
		f.Qty = value
	case "price":
		f.Price = value
	case "type":
		v, err := oneOf(field, value, broker.Limit, broker.Market)
		if err != nil {
			return err
		}
		f.Type = v
	case "tif":
		v, err := oneOf(field, value, broker.Day, broker.IOC)
		if err != nil {
			return err
		}
		f.TIF = v
	case "trader":
		f.Trader = value
	case "account":
		f.Account = value
	default:
		return fmt.Errorf("unknown order field %q (want one of %s)", field, strings.Join(OrderFormFields, ", "))
	}
	return nil
}

// Request turns the ticket into a submission. Price is sent only for a
// LIMIT order with a price filled in.
func (f OrderForm) Request() (broker.OrderRequest, error) {
	if f.Instrument == "" || f.Qty == "" || f.Trader == "" {
		return broker.OrderRequest{}, errOrderRequired
	}
	qty, err := strconv.Atoi(f.Qty)
	if err != nil {
		return broker.OrderRequest{}, fmt.Errorf("Qty must be a whole number, got %q.", f.Qty)
	}

	req := broker.OrderRequest{
		Instrument: f.Instrument,
		Side:       strings.ToUpper(f.Side),
		Qty:        qty,
		Type:       strings.ToUpper(f.Type),
		TIF:        strings.ToUpper(f.TIF),
		Trader:     f.Trader,
		Account:    f.Account,
	}
	if req.Type == broker.Limit && f.Price != "" {
		p, err := strconv.ParseFloat(f.Price, 64)
		if err != nil {
			return broker.OrderRequest{}, fmt.Errorf("Price must be a number, got %q.", f.Price)
		}
		req.Price = &p
	}
	return req, nil
}

// TradeForm is the booking ticket as typed. An empty ExecTime books at the
// current instant.
type TradeForm struct {
	Instrument string `yaml:"instrument" json:"instrument"`
	Side       string `yaml:"side" json:"side"`
	Qty        string `yaml:"qty" json:"qty"`
	Price      string `yaml:"price" json:"price"`
	ExecTime   string `yaml:"exec_time" json:"exec_time"`
	Broker     string `yaml:"broker" json:"broker"`
	Account    string `yaml:"account" json:"account"`
}

func DefaultTradeForm() TradeForm {
	return TradeForm{
		Instrument: "GOVT10Y FUT SEP25",
		Side:       broker.Sell,
		Qty:        "5",
		Price:      "101.60",
		Broker:     "BRK-NB",
		Account:    "ACC-TRAIN",
	}
}

func (f *TradeForm) Set(field, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(field) {
	case "instrument":
		f.Instrument = value
	case "side":
		v, err := oneOf(field, value, broker.Buy, broker.Sell)
		if err != nil {
			return err
		}
		f.Side = v
	case "qty":
		f.Qty = value
	case "price":
		f.Price = value
	case "exec_time", "exectime":
		f.ExecTime = value
	case "broker":
		f.Broker = value
	case "account":
		f.Account = value
	default:
		return fmt.Errorf("unknown trade field %q (want one of %s)", field, strings.Join(TradeFormFields, ", "))
	}
	return nil
}

// Request builds the booking payload. execTime fills in when the form
// leaves it empty.
func (f TradeForm) Request(execTime string) (broker.BookingRequest, error) {
	if f.Instrument == "" || f.Qty == "" || f.Price == "" {
		return broker.BookingRequest{}, errTradeRequired
	}
	qty, err := strconv.Atoi(f.Qty)
	if err != nil {
		return broker.BookingRequest{}, fmt.Errorf("Qty must be a whole number, got %q.", f.Qty)
	}
	price, err := strconv.ParseFloat(f.Price, 64)
	if err != nil {
		return broker.BookingRequest{}, fmt.Errorf("Price must be a number, got %q.", f.Price)
	}
	if f.ExecTime != "" {
		execTime = f.ExecTime
	}

	return broker.BookingRequest{
		InstrumentID: f.Instrument,
		Side:         strings.ToUpper(f.Side),
		Qty:          qty,
		Price:        price,
		ExecTime:     execTime,
		BrokerID:     f.Broker,
		AccountID:    f.Account,
	}, nil
}

func oneOf(field, value string, allowed ...string) (string, error) {
	v := strings.ToUpper(value)
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(allowed, ", "), value)
}

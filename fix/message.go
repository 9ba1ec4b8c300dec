// Package fix renders orders as FIX 4.4 style tag=value text for people to
// read. The output is not a valid FIX message: BodyLength and CheckSum are
// fixed placeholders and fields are separated by '|' rather than SOH.
package fix

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/mocktrade/broker"
)

const (
	Delimiter = "|"

	BeginString = "FIX.4.4"
	bodyLength  = "0000"
	checkSum    = "000"
	msgSeqNum   = "2"

	MsgTypeNewOrderSingle = "D"

	timeLayout = "20060102-150405"
)

// Tags used in the preview.
const (
	TagBeginString  = 8
	TagBodyLength   = 9
	TagMsgType      = 35
	TagSenderCompID = 49
	TagTargetCompID = 56
	TagMsgSeqNum    = 34
	TagSendingTime  = 52
	TagClOrdID      = 11
	TagSymbol       = 55
	TagSide         = 54
	TagOrderQty     = 38
	TagOrdType      = 40
	TagPrice        = 44
	TagTimeInForce  = 59
	TagHandlInst    = 21
	TagTransactTime = 60
	TagExecType     = 150
	TagOrdStatus    = 39
	TagCheckSum     = 10
)

// Field is one tag=value pair.
type Field struct {
	Tag   int
	Value string
}

func (f Field) String() string {
	return strconv.Itoa(f.Tag) + "=" + f.Value
}

// NewOrderSingle builds the dropcopy preview for o. A creation time without
// a zone is read in loc.
func NewOrderSingle(o broker.Order, loc *time.Location) string {
	return Join(OrderFields(o, loc))
}

// OrderFields lists the preview fields for o in display order. Price (44)
// is present only when the order carries one.
func OrderFields(o broker.Order, loc *time.Location) []Field {
	ts := stamp(o.CreatedAt, loc)
	status := statusCode(o.Status)

	fields := []Field{
		{TagBeginString, BeginString},
		{TagBodyLength, bodyLength},
		{TagMsgType, MsgTypeNewOrderSingle},
		{TagSenderCompID, o.Trader},
		{TagTargetCompID, o.Account},
		{TagMsgSeqNum, msgSeqNum},
		{TagSendingTime, ts},
		{TagClOrdID, o.ID},
		{TagSymbol, o.Instrument},
		{TagSide, sideCode(o.Side)},
		{TagOrderQty, strconv.Itoa(o.Qty)},
		{TagOrdType, ordTypeCode(o.Type)},
	}
	if o.Price != nil {
		fields = append(fields, Field{TagPrice, strconv.FormatFloat(*o.Price, 'f', -1, 64)})
	}
	return append(fields,
		Field{TagTimeInForce, tifCode(o.TIF)},
		Field{TagHandlInst, "1"},
		Field{TagTransactTime, ts},
		Field{TagExecType, status},
		Field{TagOrdStatus, status},
		Field{TagCheckSum, checkSum},
	)
}

func Join(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, Delimiter)
}

// Fields splits a preview back into its pairs, for display and tests.
func Fields(msg string) ([]Field, error) {
	if msg == "" {
		return nil, nil
	}
	parts := strings.Split(msg, Delimiter)
	out := make([]Field, 0, len(parts))
	for _, p := range parts {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("field %q has no '='", p)
		}
		tag, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("field %q: bad tag: %w", p, err)
		}
		out = append(out, Field{Tag: tag, Value: v})
	}
	return out, nil
}

// Lookup returns the first value for tag.
func Lookup(fields []Field, tag int) (string, bool) {
	for _, f := range fields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return "", false
}

// FileName is the download name for the preview of orderID.
func FileName(orderID string) string {
	return "fix_message_" + orderID + ".txt"
}

func stamp(createdAt string, loc *time.Location) string {
	t, err := broker.ParseTime(createdAt, loc)
	if err != nil {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func sideCode(side string) string {
	if side == broker.Buy {
		return "1"
	}
	return "2"
}

func ordTypeCode(typ string) string {
	if typ == broker.Limit {
		return "2"
	}
	return "1"
}

func tifCode(tif string) string {
	if tif == broker.IOC {
		return "3"
	}
	return "0"
}

// statusCode serves both ExecType and OrdStatus.
func statusCode(status string) string {
	switch status {
	case broker.StatusNew:
		return "0"
	case broker.StatusFilled:
		return "2"
	default:
		return "4"
	}
}

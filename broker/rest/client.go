package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rustyeddy/mocktrade/broker"
)

// DefaultBaseURL is where the mock trade API listens in development.
const DefaultBaseURL = "http://localhost:8000"

// maxErrorBody caps how much of a failed response is kept for the message.
const maxErrorBody = 64 * 1024

// Client talks to the order and trade REST backend. It does not retry and,
// unless Timeout is set, does not time out; cancel the context instead.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ broker.Broker = (*Client)(nil)

// NewClient returns a client rooted at baseURL. A zero timeout means none.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// StatusError is a non-2xx response. Its text is the response body followed
// by the status, which is what the desks show the user.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("%s HTTP %d", e.Body, e.Code)
}

func (c *Client) ListOrders(ctx context.Context) ([]broker.Order, error) {
	var orders []broker.Order
	if err := c.list(ctx, "/order/", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	var o broker.Order
	err := c.do(ctx, http.MethodPost, "/order/", req, &o)
	return o, err
}

func (c *Client) SimulateFill(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPost, "/order/"+url.PathEscape(orderID)+"/simulate_fill", nil, nil)
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPost, "/order/"+url.PathEscape(orderID)+"/cancel", nil, nil)
}

func (c *Client) ListTrades(ctx context.Context) ([]broker.Trade, error) {
	var trades []broker.Trade
	if err := c.list(ctx, "/trade/", &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

func (c *Client) BookTrade(ctx context.Context, req broker.BookingRequest) (broker.Trade, error) {
	var t broker.Trade
	err := c.do(ctx, http.MethodPost, "/trade/", req, &t)
	return t, err
}

func (c *Client) AmendTrade(ctx context.Context, tradeID string, req broker.BookingRequest) (broker.Trade, error) {
	var t broker.Trade
	err := c.do(ctx, http.MethodPost, "/trade/"+url.PathEscape(tradeID)+"/amend", req, &t)
	return t, err
}

func (c *Client) CancelTrade(ctx context.Context, tradeID string) error {
	return c.do(ctx, http.MethodPost, "/trade/"+url.PathEscape(tradeID)+"/cancel", nil, nil)
}

// list fetches a collection. Anything other than a JSON array is read as an
// empty list.
func (c *Client) list(ctx context.Context, path string, out any) error {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// do sends one request. in is encoded as the JSON body when non-nil; out
// receives the decoded response when non-nil and the body is not empty.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(b)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

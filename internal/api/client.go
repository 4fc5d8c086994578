// Package api is the HTTP client for the ledger backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNetwork means the request never got an HTTP answer.
	ErrNetwork = errors.New("network failure")
	// ErrRejected means the backend answered but refused or garbled the call.
	ErrRejected = errors.New("rejected")
	// ErrExport means the CSV download was refused.
	ErrExport = errors.New("export failed")
)

type Client struct {
	base string
	http *http.Client
}

// New returns a client for baseURL. A zero timeout means no client timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// NewWithHTTP uses the given http.Client, as tests do with httptest.
func NewWithHTTP(baseURL string, hc *http.Client) *Client {
	c := New(baseURL, 0)
	if hc != nil {
		c.http = hc
	}
	return c
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.base }

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	return resp, nil
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		var e ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error != "" {
			return fmt.Errorf("%w: %s: http %d: %s", ErrRejected, path, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%w: %s: http %d", ErrRejected, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode: %v", ErrRejected, path, err)
	}
	return nil
}

// Update sends one field edit and returns the stored value as display text.
// Transport errors wrap ErrNetwork; non-2xx, ok:false and malformed bodies
// wrap ErrRejected.
func (c *Client) Update(ctx context.Context, endpoint, id, field, value string) (string, error) {
	var out UpdateResponse
	if err := c.call(ctx, http.MethodPost, endpoint, nil, UpdateRequest{ID: id, Field: field, Value: value}, &out); err != nil {
		return "", err
	}
	if !out.OK {
		if out.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrRejected, out.Error)
		}
		return "", ErrRejected
	}
	v, ok := ValueText(out.Value)
	if !ok {
		return "", fmt.Errorf("%w: value %s", ErrRejected, out.Value)
	}
	return v, nil
}

// OrderQuery filters the order list. Empty fields are not sent.
type OrderQuery struct {
	Search string
	From   string
	To     string
}

func (c *Client) Orders(ctx context.Context, q OrderQuery) ([]Order, error) {
	v := url.Values{}
	setNonEmpty(v, "q", q.Search)
	setNonEmpty(v, "from", q.From)
	setNonEmpty(v, "to", q.To)
	var out []Order
	if err := c.call(ctx, http.MethodGet, "/api/orders", v, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateOrder(ctx context.Context, o Order) (Order, error) {
	var out Order
	err := c.call(ctx, http.MethodPost, "/api/orders", nil, o, &out)
	return out, err
}

func (c *Client) DeleteOrders(ctx context.Context, ids []string) (int, error) {
	return c.deleteIDs(ctx, "/api/orders/delete", ids)
}

// ExpenseQuery filters the expense list by period and text.
type ExpenseQuery struct {
	Mode   string
	Date   string
	Search string
}

func (c *Client) Expenses(ctx context.Context, q ExpenseQuery) ([]Expense, error) {
	v := url.Values{}
	setNonEmpty(v, "mode", q.Mode)
	setNonEmpty(v, "dt", q.Date)
	setNonEmpty(v, "q", q.Search)
	var out []Expense
	if err := c.call(ctx, http.MethodGet, "/api/expenses", v, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateExpense(ctx context.Context, e Expense) (Expense, error) {
	var out Expense
	err := c.call(ctx, http.MethodPost, "/api/expenses", nil, e, &out)
	return out, err
}

func (c *Client) DeleteExpenses(ctx context.Context, ids []string) (int, error) {
	return c.deleteIDs(ctx, "/api/expenses/delete", ids)
}

func (c *Client) deleteIDs(ctx context.Context, path string, ids []string) (int, error) {
	var out DeleteResponse
	if err := c.call(ctx, http.MethodPost, path, nil, DeleteRequest{IDs: ids}, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

func (c *Client) KPI(ctx context.Context, mode, date string) (KPI, error) {
	v := url.Values{}
	setNonEmpty(v, "mode", mode)
	setNonEmpty(v, "dt", date)
	var out KPI
	err := c.call(ctx, http.MethodGet, "/api/kpi", v, nil, &out)
	return out, err
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out CategoriesResponse
	if err := c.call(ctx, http.MethodGet, "/api/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// Download is an export stream. The caller closes Body.
type Download struct {
	Filename string
	Body     io.ReadCloser
}

// Export fetches /export/{kind}.csv. Non-2xx answers wrap ErrExport.
func (c *Client) Export(ctx context.Context, kind, scope, base string) (*Download, error) {
	v := url.Values{}
	setNonEmpty(v, "scope", scope)
	setNonEmpty(v, "base", base)
	path := "/export/" + url.PathEscape(kind) + ".csv"
	resp, err := c.do(ctx, http.MethodGet, path, v, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: http %d", ErrExport, kind, resp.StatusCode)
	}
	return &Download{Filename: filenameOf(resp.Header.Get("Content-Disposition")), Body: resp.Body}, nil
}

func filenameOf(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// Healthy reports whether the backend answers /healthz.
func (c *Client) Healthy(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/healthz", nil, nil, nil)
}

func setNonEmpty(v url.Values, key, val string) {
	if val = strings.TrimSpace(val); val != "" {
		v.Set(key, val)
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewWithHTTP(srv.URL, srv.Client())
}

func TestUpdateReturnsServerValue(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, OrdersUpdatePath, r.URL.Path)
		var req UpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, UpdateRequest{ID: "o1", Field: "amount", Value: "1500"}, req)
		_, _ = io.WriteString(w, `{"ok":true,"value":1500}`)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := c.Update(ctx, OrdersUpdatePath, "o1", "amount", "1500")
	require.NoError(t, err)
	require.Equal(t, "1500", v)
}

func TestUpdateStringValue(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true,"value":"Evening"}`)
	})
	v, err := c.Update(context.Background(), OrdersUpdatePath, "o1", "shift", "eve")
	require.NoError(t, err)
	require.Equal(t, "Evening", v)
}

func TestUpdateFailuresAreRejected(t *testing.T) {
	t.Parallel()
	cases := map[string]http.HandlerFunc{
		"ok false": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"ok":false,"error":"unknown field"}`)
		},
		"non 2xx": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"ok":tru`)
		},
		"object value": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"ok":true,"value":{"a":1}}`)
		},
	}
	for name, h := range cases {
		c := newTestClient(t, h)
		_, err := c.Update(context.Background(), OrdersUpdatePath, "o1", "amount", "1")
		require.Error(t, err, name)
		require.True(t, errors.Is(err, ErrRejected), "%s: %v", name, err)
	}
}

func TestUpdateNetworkFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := New(url, time.Second)
	_, err := c.Update(context.Background(), OrdersUpdatePath, "o1", "amount", "1")
	require.ErrorIs(t, err, ErrNetwork)
}

func TestListsSendFilters(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/orders":
			require.Equal(t, "A-1", r.URL.Query().Get("q"))
			require.Equal(t, "", r.URL.Query().Get("from"))
			_, _ = io.WriteString(w, `[{"id":"o1","date":"2026-01-02","shift":"Morning","order_no":"A-1","amount":1500}]`)
		case "/api/expenses":
			require.Equal(t, "month", r.URL.Query().Get("mode"))
			require.Equal(t, "2026-01-02", r.URL.Query().Get("dt"))
			_, _ = io.WriteString(w, `[{"id":"e1","date":"2026-01-02","category":"Rent","memo":"","amount":"12.5"}]`)
		case "/api/kpi":
			_, _ = io.WriteString(w, `{"mode":"day","from":"2026-01-02","to":"2026-01-02","morning":10,"evening":5,"total":15,"expense":3,"net":12,"orders":2}`)
		case "/api/categories":
			_, _ = io.WriteString(w, `{"categories":["Rent","Other"]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()
	orders, err := c.Orders(ctx, OrderQuery{Search: "A-1"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, json.Number("1500"), orders[0].Amount)

	exps, err := c.Expenses(ctx, ExpenseQuery{Mode: "month", Date: "2026-01-02"})
	require.NoError(t, err)
	require.Equal(t, "Rent", exps[0].Category)

	k, err := c.KPI(ctx, "day", "2026-01-02")
	require.NoError(t, err)
	require.Equal(t, json.Number("12"), k.Net)

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Rent", "Other"}, cats)
}

func TestExportFailureWrapsErrExport(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	})
	_, err := c.Export(context.Background(), "orders", "day", "2026-01-02")
	require.ErrorIs(t, err, ErrExport)
}

func TestExportReadsFilename(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/export/orders.csv", r.URL.Path)
		w.Header().Set("Content-Disposition", `attachment; filename="orders_day_2026-01-02.csv"`)
		_, _ = io.WriteString(w, "a,b\r\n")
	})
	d, err := c.Export(context.Background(), "orders", "day", "2026-01-02")
	require.NoError(t, err)
	defer d.Body.Close()
	require.Equal(t, "orders_day_2026-01-02.csv", d.Filename)
}

func TestValueText(t *testing.T) {
	for raw, want := range map[string]string{`"x"`: "x", `12.50`: "12.50", `null`: "", `true`: "true"} {
		got, ok := ValueText(json.RawMessage(raw))
		require.True(t, ok, raw)
		require.Equal(t, want, got)
	}
	_, ok := ValueText(json.RawMessage(`[1]`))
	require.False(t, ok)
}

package api

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Update endpoints, one per entity.
const (
	OrdersUpdatePath   = "/orders/update-json"
	ExpensesUpdatePath = "/expenses/update-json"
)

// UpdateRequest is the body of an update call. Every value travels as a string.
type UpdateRequest struct {
	ID    string `json:"id"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// UpdateResponse carries the stored value, a string or a number.
type UpdateResponse struct {
	OK    bool            `json:"ok"`
	Value json.RawMessage `json:"value,omitempty"`
	Error string          `json:"error,omitempty"`
}

// ValueText renders a raw JSON scalar as text: strings are unquoted, numbers
// and booleans keep their literal form, null is empty.
func ValueText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", true
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case json.Number:
		return t.String(), true
	case bool:
		return strings.TrimSpace(string(raw)), true
	}
	return "", false
}

// Order is one sales order.
type Order struct {
	ID      string      `json:"id"`
	Date    string      `json:"date"`
	Shift   string      `json:"shift"`
	OrderNo string      `json:"order_no"`
	Amount  json.Number `json:"amount"`
}

// Expense is one expense line.
type Expense struct {
	ID       string      `json:"id"`
	Date     string      `json:"date"`
	Category string      `json:"category"`
	Memo     string      `json:"memo"`
	Amount   json.Number `json:"amount"`
}

// KPI summarises a period.
type KPI struct {
	Mode    string      `json:"mode"`
	From    string      `json:"from"`
	To      string      `json:"to"`
	Morning json.Number `json:"morning"`
	Evening json.Number `json:"evening"`
	Total   json.Number `json:"total"`
	Expense json.Number `json:"expense"`
	Net     json.Number `json:"net"`
	Orders  int         `json:"orders"`
}

// DeleteRequest lists ids to remove.
type DeleteRequest struct {
	IDs []string `json:"ids"`
}

// DeleteResponse reports how many rows went away.
type DeleteResponse struct {
	OK      bool `json:"ok"`
	Deleted int  `json:"deleted"`
}

// CategoriesResponse lists expense categories in display order.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// ErrorResponse is the body of a non-2xx answer.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

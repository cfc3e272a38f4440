package jsonutil

import (
	"encoding/json"
	"testing"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"hello"`, "hello"},
		{`42`, "42"},
		{`3.14`, "3.14"},
		{`true`, "true"},
		{`null`, ""},
		{``, ""},
	}

	for _, tt := range tests {
		if got := FlexibleStringValue(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("FlexibleStringValue(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"TABLE_NAME", "tablename"},
		{"tableName", "tablename"},
		{"table-name", "tablename"},
		{"table name", "tablename"},
		{"WAREHOUSE_NAME", "warehousename"},
	}

	for _, tt := range tests {
		if got := CanonicalKey(tt.in); got != tt.want {
			t.Errorf("CanonicalKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLookupAcrossCasings(t *testing.T) {
	m := map[string]any{"TABLE_NAME": "ORDERS", "rowCount": float64(10)}

	for _, key := range []string{"TABLE_NAME", "tableName", "table_name"} {
		v, ok := Lookup(m, key)
		if !ok || v != "ORDERS" {
			t.Errorf("Lookup(%q) = (%v, %v)", key, v, ok)
		}
	}

	if _, ok := Lookup(m, "missing"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestLookupStringCoercions(t *testing.T) {
	m := map[string]any{
		"count":  float64(12),
		"ratio":  1.5,
		"active": true,
		"name":   "x",
	}

	tests := map[string]string{
		"COUNT":  "12",
		"ratio":  "1.5",
		"ACTIVE": "true",
		"NAME":   "x",
		"absent": "",
	}
	for key, want := range tests {
		if got := LookupString(m, key); got != want {
			t.Errorf("LookupString(%q) = %q, want %q", key, got, want)
		}
	}
}

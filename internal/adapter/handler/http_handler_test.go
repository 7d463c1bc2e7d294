package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestHTTP_Products(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.Add(context.Background(), "Widget", decimal.RequireFromString("9.99"), 3)
	routes := NewHTTPHandler(env.catalog).Routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var products []ProductHTTPResponse
	if err := json.NewDecoder(rec.Body).Decode(&products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	want := ProductHTTPResponse{ID: 1, Name: "Widget", Price: "9.99", Quantity: 3}
	if products[0] != want {
		t.Errorf("expected %+v, got %+v", want, products[0])
	}
}

func TestHTTP_ProductsMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	routes := NewHTTPHandler(env.catalog).Routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHTTP_Availability(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.Add(context.Background(), "Widget", decimal.NewFromInt(1), 7)
	routes := NewHTTPHandler(env.catalog).Routes()

	tests := []struct {
		query     string
		status    int
		available int
	}{
		{"?name=widget", http.StatusOK, 7},
		{"?name=ghost", http.StatusOK, 0},
		{"", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/availability"+tt.query, nil))

		if rec.Code != tt.status {
			t.Errorf("%q: expected %d, got %d", tt.query, tt.status, rec.Code)
			continue
		}
		if tt.status != http.StatusOK {
			continue
		}
		var res AvailabilityHTTPResponse
		json.NewDecoder(rec.Body).Decode(&res)
		if res.Available != tt.available {
			t.Errorf("%q: expected %d available, got %d", tt.query, tt.available, res.Available)
		}
	}
}

func TestHTTP_Health(t *testing.T) {
	env := newTestEnv(t)
	routes := NewHTTPHandler(env.catalog).Routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
}

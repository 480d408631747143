package vendors

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skillsenselab/offerhub/internal/models"
)

func TestVendorOne_FetchNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/ABC123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"product_id": "ABC123",
			"quantity": 10,
			"unit_price": 99.99,
			"availability_status": "IN_STOCK",
			"last_updated": "2026-08-28T10:00:00Z"
		}`))
	}))
	defer srv.Close()

	c := NewVendorOne(srv.URL, time.Second)
	q, err := c.Fetch(context.Background(), "ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.VendorID != models.VendorOne || q.Price != 99.99 || q.Stock != 10 {
		t.Errorf("unexpected quote %+v", q)
	}
	if q.Status != models.StatusInStock {
		t.Errorf("expected IN_STOCK, got %s", q.Status)
	}
}

func TestVendorOne_NullQuantityWithStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"product_id": "XYZ789",
			"quantity": null,
			"unit_price": 149.50,
			"availability_status": "IN_STOCK",
			"last_updated": "2026-08-28T10:00:00Z"
		}`))
	}))
	defer srv.Close()

	c := NewVendorOne(srv.URL, time.Second)
	q, err := c.Fetch(context.Background(), "XYZ789")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Stock != 5 {
		t.Errorf("expected inferred stock 5, got %d", q.Stock)
	}
}

func TestVendorTwo_BooleanAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/items/DEF456" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"sku": "DEF456",
			"stock_count": null,
			"price_amount": 72.50,
			"in_stock": true,
			"response_timestamp": "2026-08-28T10:00:00Z"
		}`))
	}))
	defer srv.Close()

	c := NewVendorTwo(srv.URL, time.Second)
	q, err := c.Fetch(context.Background(), "DEF456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Stock != 5 || q.Status != models.StatusInStock {
		t.Errorf("expected inferred 5/IN_STOCK, got %d/%s", q.Stock, q.Status)
	}
}

func TestVendorThree_NumericStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inventory/ABC123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"item_code": "ABC123",
			"available_units": 30,
			"cost": 98.75,
			"status_code": 1,
			"data_timestamp": "2026-08-28T10:00:00Z"
		}`))
	}))
	defer srv.Close()

	c := NewVendorThree(srv.URL, time.Second)
	q, err := c.Fetch(context.Background(), "ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.VendorID != models.VendorThree || q.Stock != 30 || q.Price != 98.75 {
		t.Errorf("unexpected quote %+v", q)
	}
}

func TestFetch_NotFoundIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewVendorOne(srv.URL, time.Second)
	q, err := c.Fetch(context.Background(), "NOPE42")
	if err != nil {
		t.Fatalf("a vendor not carrying the SKU must not error, got %v", err)
	}
	if q != nil {
		t.Errorf("expected nil quote, got %+v", q)
	}
}

func TestFetch_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewVendorTwo(srv.URL, time.Second)
	_, err := c.Fetch(context.Background(), "ABC123")
	if !errors.Is(err, ErrVendorUnavailable) {
		t.Errorf("expected ErrVendorUnavailable, got %v", err)
	}
}

func TestFetch_TimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewVendorThree(srv.URL, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Fetch(ctx, "ABC123")
	if !errors.Is(err, ErrVendorUnavailable) {
		t.Errorf("expected ErrVendorUnavailable on timeout, got %v", err)
	}
}

func TestFetch_MalformedBodyIsInvalidData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"product_id": "ABC123", "unit_price": "not-a-number"}`))
	}))
	defer srv.Close()

	c := NewVendorOne(srv.URL, time.Second)
	_, err := c.Fetch(context.Background(), "ABC123")
	if !errors.Is(err, ErrInvalidVendorData) {
		t.Errorf("expected ErrInvalidVendorData, got %v", err)
	}
}

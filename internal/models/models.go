// Package models holds the canonical data types shared across the
// aggregation pipeline.
package models

import "time"

// Status is a product availability status.
type Status string

const (
	// StatusInStock marks a product as purchasable.
	StatusInStock Status = "IN_STOCK"
	// StatusOutOfStock marks a product as not purchasable.
	StatusOutOfStock Status = "OUT_OF_STOCK"
)

// Known vendor identifiers, in decision-engine priority order.
const (
	VendorOne   = "vendor-one"
	VendorTwo   = "vendor-two"
	VendorThree = "vendor-three"
)

// VendorPriority is the fixed tie-break order used by the decision engine
// when price and stock are equal.
var VendorPriority = []string{VendorOne, VendorTwo, VendorThree}

// Quote is one vendor's normalized answer for a SKU. Quotes are created per
// request per vendor and never mutated.
type Quote struct {
	VendorID   string    `json:"vendor_id"`
	SKU        string    `json:"sku"`
	Price      float64   `json:"price"`
	Stock      int       `json:"stock"`
	Status     Status    `json:"status"`
	ObservedAt time.Time `json:"observed_at"`

	// Latency is how long the vendor call took. Informational only;
	// the decision engine never reads it.
	Latency time.Duration `json:"-"`
}

// InStock reports whether the quote is a purchase candidate.
func (q Quote) InStock() bool {
	return q.Status == StatusInStock && q.Stock > 0
}

// Result is the object returned to callers and stored in the cache.
// Either the vendor fields are set (IN_STOCK) or Message explains an
// OUT_OF_STOCK outcome. Immutable once created.
type Result struct {
	SKU       string     `json:"sku"`
	Vendor    string     `json:"vendor,omitempty"`
	Price     float64    `json:"price,omitempty"`
	Stock     int        `json:"stock,omitempty"`
	Status    Status     `json:"status"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// ResultFromQuote builds an IN_STOCK Result from the winning quote.
func ResultFromQuote(q Quote) Result {
	ts := q.ObservedAt
	return Result{
		SKU:       q.SKU,
		Vendor:    q.VendorID,
		Price:     q.Price,
		Stock:     q.Stock,
		Status:    q.Status,
		Timestamp: &ts,
	}
}

// OutOfStockResult builds the Result used when no vendor can serve the SKU.
// The message never carries vendor-identifying detail.
func OutOfStockResult(sku string) Result {
	return Result{
		SKU:     sku,
		Status:  StatusOutOfStock,
		Message: "Product not available from any vendor",
	}
}

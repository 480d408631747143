package vendors

import (
	"fmt"
	"time"

	"github.com/skillsenselab/offerhub/internal/models"
)

// RawQuote is the vendor-neutral view of a raw response after field lookup.
// Adapters translate their wire format into this struct; every rule below
// applies identically to all vendors.
type RawQuote struct {
	SKU string
	// Inventory is nil when the vendor reported no numeric inventory.
	Inventory *int
	// Price is nil when the price field was missing. Non-numeric prices
	// never reach here: JSON decoding already fails them.
	Price *float64
	// InStock is the vendor's availability signal, whatever its wire form.
	InStock bool
	// Timestamp is the vendor-reported data timestamp (RFC 3339), may be
	// empty.
	Timestamp string
}

// Normalize converts a raw vendor response into a canonical Quote.
//
// Stock inference: a nil inventory with an in-stock signal becomes stock 5;
// a nil inventory otherwise becomes stock 0 / OUT_OF_STOCK. A reported
// inventory is used as-is, with zero forcing OUT_OF_STOCK.
//
// Price validation: a missing or non-positive price invalidates the whole
// response. Prices pass through unchanged otherwise.
func Normalize(vendorID string, raw RawQuote) (*models.Quote, error) {
	if raw.Price == nil {
		return nil, fmt.Errorf("%w: %s: missing price", ErrInvalidVendorData, vendorID)
	}
	if *raw.Price <= 0 {
		return nil, fmt.Errorf("%w: %s: non-positive price %v", ErrInvalidVendorData, vendorID, *raw.Price)
	}

	var stock int
	var status models.Status
	switch {
	case raw.Inventory == nil && raw.InStock:
		stock = 5
		status = models.StatusInStock
	case raw.Inventory == nil:
		stock = 0
		status = models.StatusOutOfStock
	case *raw.Inventory < 0:
		return nil, fmt.Errorf("%w: %s: negative inventory %d", ErrInvalidVendorData, vendorID, *raw.Inventory)
	case *raw.Inventory > 0:
		stock = *raw.Inventory
		status = models.StatusInStock
	default:
		stock = 0
		status = models.StatusOutOfStock
	}

	observedAt := time.Now().UTC()
	if raw.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, raw.Timestamp); err == nil {
			observedAt = ts
		}
	}

	return &models.Quote{
		VendorID:   vendorID,
		SKU:        raw.SKU,
		Price:      *raw.Price,
		Stock:      stock,
		Status:     status,
		ObservedAt: observedAt,
	}, nil
}

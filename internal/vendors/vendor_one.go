package vendors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skillsenselab/offerhub/internal/models"
)

// VendorOneClient talks to vendor one, which reports quantity, unit_price
// and a string availability_status.
type VendorOneClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Adapter = (*VendorOneClient)(nil)

// NewVendorOne creates the vendor-one adapter with a fixed per-call timeout.
func NewVendorOne(baseURL string, timeout time.Duration) *VendorOneClient {
	return &VendorOneClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the vendor identifier.
func (c *VendorOneClient) Name() string { return models.VendorOne }

// Fetch performs one call against vendor one and normalizes the response.
func (c *VendorOneClient) Fetch(ctx context.Context, sku string) (*models.Quote, error) {
	start := time.Now()

	body, err := doGet(ctx, c.httpClient, fmt.Sprintf("%s/products/%s", c.baseURL, sku))
	if err == errProductNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var raw vendorOneResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: parse response: %v", ErrInvalidVendorData, models.VendorOne, err)
	}

	quote, err := Normalize(models.VendorOne, RawQuote{
		SKU:       raw.ProductID,
		Inventory: raw.Quantity,
		Price:     raw.UnitPrice,
		InStock:   raw.AvailabilityStatus == "IN_STOCK",
		Timestamp: raw.LastUpdated,
	})
	if err != nil {
		return nil, err
	}
	quote.Latency = time.Since(start)
	return quote, nil
}

// vendorOneResponse is vendor one's wire format.
type vendorOneResponse struct {
	ProductID          string   `json:"product_id"`
	Quantity           *int     `json:"quantity"`
	UnitPrice          *float64 `json:"unit_price"`
	AvailabilityStatus string   `json:"availability_status"`
	LastUpdated        string   `json:"last_updated"`
}

package vendors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skillsenselab/offerhub/internal/models"
)

// VendorTwoClient talks to vendor two, which reports stock_count,
// price_amount and a boolean in_stock flag.
type VendorTwoClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Adapter = (*VendorTwoClient)(nil)

// NewVendorTwo creates the vendor-two adapter with a fixed per-call timeout.
func NewVendorTwo(baseURL string, timeout time.Duration) *VendorTwoClient {
	return &VendorTwoClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the vendor identifier.
func (c *VendorTwoClient) Name() string { return models.VendorTwo }

// Fetch performs one call against vendor two and normalizes the response.
func (c *VendorTwoClient) Fetch(ctx context.Context, sku string) (*models.Quote, error) {
	start := time.Now()

	body, err := doGet(ctx, c.httpClient, fmt.Sprintf("%s/items/%s", c.baseURL, sku))
	if err == errProductNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var raw vendorTwoResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: parse response: %v", ErrInvalidVendorData, models.VendorTwo, err)
	}

	quote, err := Normalize(models.VendorTwo, RawQuote{
		SKU:       raw.SKU,
		Inventory: raw.StockCount,
		Price:     raw.PriceAmount,
		InStock:   raw.InStock,
		Timestamp: raw.ResponseTimestamp,
	})
	if err != nil {
		return nil, err
	}
	quote.Latency = time.Since(start)
	return quote, nil
}

// vendorTwoResponse is vendor two's wire format.
type vendorTwoResponse struct {
	SKU               string   `json:"sku"`
	StockCount        *int     `json:"stock_count"`
	PriceAmount       *float64 `json:"price_amount"`
	InStock           bool     `json:"in_stock"`
	ResponseTimestamp string   `json:"response_timestamp"`
}

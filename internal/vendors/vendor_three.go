package vendors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skillsenselab/offerhub/internal/models"
)

// VendorThreeClient talks to vendor three, which reports available_units,
// cost and a numeric status_code (1 = in stock, 0 = out of stock).
type VendorThreeClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Adapter = (*VendorThreeClient)(nil)

// NewVendorThree creates the vendor-three adapter with a fixed per-call
// timeout.
func NewVendorThree(baseURL string, timeout time.Duration) *VendorThreeClient {
	return &VendorThreeClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the vendor identifier.
func (c *VendorThreeClient) Name() string { return models.VendorThree }

// Fetch performs one call against vendor three and normalizes the response.
func (c *VendorThreeClient) Fetch(ctx context.Context, sku string) (*models.Quote, error) {
	start := time.Now()

	body, err := doGet(ctx, c.httpClient, fmt.Sprintf("%s/inventory/%s", c.baseURL, sku))
	if err == errProductNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var raw vendorThreeResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: parse response: %v", ErrInvalidVendorData, models.VendorThree, err)
	}

	quote, err := Normalize(models.VendorThree, RawQuote{
		SKU:       raw.ItemCode,
		Inventory: raw.AvailableUnits,
		Price:     raw.Cost,
		InStock:   raw.StatusCode == 1,
		Timestamp: raw.DataTimestamp,
	})
	if err != nil {
		return nil, err
	}
	quote.Latency = time.Since(start)
	return quote, nil
}

// vendorThreeResponse is vendor three's wire format.
type vendorThreeResponse struct {
	ItemCode       string   `json:"item_code"`
	AvailableUnits *int     `json:"available_units"`
	Cost           *float64 `json:"cost"`
	StatusCode     int      `json:"status_code"`
	DataTimestamp  string   `json:"data_timestamp"`
}

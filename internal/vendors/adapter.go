// Package vendors contains the vendor adapter contract, the shared response
// normalizer, and one HTTP client per vendor. Each client is the only place
// that understands its vendor's wire format.
package vendors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/skillsenselab/offerhub/internal/models"
)

// Sentinel errors for a single adapter call. Callers treat both the same
// way: the vendor produced no usable quote for this request.
var (
	// ErrVendorUnavailable indicates a timeout or transport failure.
	ErrVendorUnavailable = errors.New("vendor unavailable")
	// ErrInvalidVendorData indicates a response that failed schema or
	// price validation.
	ErrInvalidVendorData = errors.New("invalid vendor data")
)

// errProductNotFound is internal to the package: a vendor not carrying the
// SKU is a successful call that yields no quote.
var errProductNotFound = errors.New("product not found")

// Adapter fetches one vendor's quote for a SKU. A single attempt, no
// internal retry; the SKU is validated upstream.
type Adapter interface {
	// Name returns the vendor identifier.
	Name() string
	// Fetch performs one outbound call. It returns (nil, nil) when the
	// vendor does not carry the SKU and the call itself succeeded.
	Fetch(ctx context.Context, sku string) (*models.Quote, error)
}

// doGet performs one GET and maps failures to the adapter error taxonomy.
func doGet(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrVendorUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVendorUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrVendorUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, errProductNotFound
	default:
		return nil, fmt.Errorf("%w: HTTP %d", ErrVendorUnavailable, resp.StatusCode)
	}
}

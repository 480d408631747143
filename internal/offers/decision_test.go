package offers

import (
	"testing"
	"time"

	"github.com/skillsenselab/offerhub/internal/models"
)

func quote(vendor string, price float64, stock int) models.Quote {
	status := models.StatusInStock
	if stock == 0 {
		status = models.StatusOutOfStock
	}
	return models.Quote{
		VendorID:   vendor,
		SKU:        "ABC123",
		Price:      price,
		Stock:      stock,
		Status:     status,
		ObservedAt: time.Now().UTC(),
	}
}

func TestDecide_NoCandidates(t *testing.T) {
	if got := Decide(nil); got != nil {
		t.Errorf("expected nil for empty input, got %+v", got)
	}
	if got := Decide([]models.Quote{quote(models.VendorOne, 10, 0)}); got != nil {
		t.Errorf("out-of-stock quotes are not candidates, got %+v", got)
	}
}

func TestDecide_SingleCandidateWins(t *testing.T) {
	got := Decide([]models.Quote{quote(models.VendorTwo, 50, 3)})
	if got == nil || got.VendorID != models.VendorTwo {
		t.Errorf("expected vendor-two, got %+v", got)
	}
}

func TestDecide_BetterStockWithinToleranceWins(t *testing.T) {
	// 9% above the cheapest with ten times the stock.
	got := Decide([]models.Quote{
		quote(models.VendorOne, 100.00, 5),
		quote(models.VendorTwo, 109.00, 50),
	})
	if got == nil || got.VendorID != models.VendorTwo {
		t.Errorf("expected vendor-two to displace the cheapest, got %+v", got)
	}
}

func TestDecide_OutsideToleranceCheapestWins(t *testing.T) {
	// 11% above the cheapest; stock advantage does not matter.
	got := Decide([]models.Quote{
		quote(models.VendorOne, 100.00, 5),
		quote(models.VendorTwo, 111.00, 50),
	})
	if got == nil || got.VendorID != models.VendorOne {
		t.Errorf("expected the cheapest vendor, got %+v", got)
	}
}

func TestDecide_ExactlyAtToleranceBoundary(t *testing.T) {
	// Exactly 10% above still competes.
	got := Decide([]models.Quote{
		quote(models.VendorOne, 100.00, 5),
		quote(models.VendorTwo, 110.00, 50),
	})
	if got == nil || got.VendorID != models.VendorTwo {
		t.Errorf("a price at the band edge must still compete, got %+v", got)
	}
}

func TestDecide_EqualStockKeepsCheapest(t *testing.T) {
	got := Decide([]models.Quote{
		quote(models.VendorOne, 100.00, 10),
		quote(models.VendorTwo, 105.00, 10),
	})
	if got == nil || got.VendorID != models.VendorOne {
		t.Errorf("equal stock must not displace the cheapest, got %+v", got)
	}
}

func TestDecide_HighestStockAmongChallengers(t *testing.T) {
	got := Decide([]models.Quote{
		quote(models.VendorOne, 100.00, 5),
		quote(models.VendorTwo, 104.00, 30),
		quote(models.VendorThree, 108.00, 60),
	})
	if got == nil || got.VendorID != models.VendorThree {
		t.Errorf("expected the best-stocked challenger, got %+v", got)
	}
}

func TestDecide_TieBrokenByLowerPrice(t *testing.T) {
	got := Decide([]models.Quote{
		quote(models.VendorOne, 100.00, 5),
		quote(models.VendorTwo, 108.00, 40),
		quote(models.VendorThree, 104.00, 40),
	})
	if got == nil || got.VendorID != models.VendorThree {
		t.Errorf("stock tie must fall to the cheaper vendor, got %+v", got)
	}
}

func TestDecide_TieBrokenByVendorPriority(t *testing.T) {
	got := Decide([]models.Quote{
		quote(models.VendorThree, 100.00, 10),
		quote(models.VendorOne, 100.00, 10),
	})
	if got == nil || got.VendorID != models.VendorOne {
		t.Errorf("full tie must fall to vendor priority order, got %+v", got)
	}
}

func TestFilterFresh_DropsStaleQuotes(t *testing.T) {
	now := time.Now().UTC()
	fresh := quote(models.VendorOne, 100, 10)
	fresh.ObservedAt = now.Add(-time.Minute)
	stale := quote(models.VendorTwo, 90, 50)
	stale.ObservedAt = now.Add(-11 * time.Minute)

	got := FilterFresh([]models.Quote{fresh, stale}, now, 10*time.Minute)
	if len(got) != 1 || got[0].VendorID != models.VendorOne {
		t.Errorf("expected only the fresh quote, got %+v", got)
	}
}

func TestFilterFresh_BoundaryAgeKept(t *testing.T) {
	now := time.Now().UTC()
	q := quote(models.VendorOne, 100, 10)
	q.ObservedAt = now.Add(-10 * time.Minute)

	got := FilterFresh([]models.Quote{q}, now, 10*time.Minute)
	if len(got) != 1 {
		t.Errorf("a quote exactly at the age limit is still fresh, got %+v", got)
	}
}

package offers

import (
	"time"

	"github.com/skillsenselab/offerhub/internal/models"
)

// priceTolerance is the relative band above the cheapest price within which
// a better-stocked vendor may still win.
const priceTolerance = 0.10

// tolerance slack for float comparison; a price at exactly the band edge
// still competes.
const epsilon = 1e-9

// FilterFresh drops quotes observed more than maxAge before now.
func FilterFresh(quotes []models.Quote, now time.Time, maxAge time.Duration) []models.Quote {
	cutoff := now.Add(-maxAge)
	fresh := quotes[:0:0]
	for _, q := range quotes {
		if !q.ObservedAt.Before(cutoff) {
			fresh = append(fresh, q)
		}
	}
	return fresh
}

// Decide picks the winning quote. Only in-stock quotes are candidates. The
// cheapest candidate anchors the decision; any candidate priced within the
// tolerance band of the cheapest AND holding strictly more stock than it
// displaces it. Among competing quotes the highest stock wins, with ties
// broken by lower price and then by fixed vendor priority.
//
// Returns nil when no candidate exists.
func Decide(quotes []models.Quote) *models.Quote {
	var candidates []models.Quote
	for _, q := range quotes {
		if q.InStock() {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	cheapest := candidates[0]
	for _, q := range candidates[1:] {
		if q.Price < cheapest.Price || (q.Price == cheapest.Price && preferred(q, cheapest)) {
			cheapest = q
		}
	}

	winner := cheapest
	for _, q := range candidates {
		if q.VendorID == cheapest.VendorID {
			continue
		}
		if (q.Price-cheapest.Price)/cheapest.Price > priceTolerance+epsilon {
			continue
		}
		if q.Stock <= cheapest.Stock {
			continue
		}
		if q.Stock > winner.Stock || (q.Stock == winner.Stock && preferred(q, winner)) {
			winner = q
		}
	}
	return &winner
}

// preferred reports whether a beats b on the tie-break chain of lower price
// then vendor priority. Stock equality is assumed.
func preferred(a, b models.Quote) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return priorityRank(a.VendorID) < priorityRank(b.VendorID)
}

func priorityRank(vendorID string) int {
	for i, v := range models.VendorPriority {
		if v == vendorID {
			return i
		}
	}
	return len(models.VendorPriority)
}

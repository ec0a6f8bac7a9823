package processor

import (
	"sort"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/models"
)

// Normalize deduplicates the filtered quotes down to one per contract and
// orders them deterministically. When several quotes share a contract id
// within one poll the last-encountered one wins. The returned order is
// ascending by (expiry, observed_at, contract_id); contract ids are unique
// after dedup, so the ordering is total.
func Normalize(quotes []models.ContractQuote) []models.ContractQuote {
	byID := make(map[string]models.ContractQuote, len(quotes))
	for _, q := range quotes {
		byID[q.ContractID] = q
	}

	out := make([]models.ContractQuote, 0, len(byID))
	for _, q := range byID {
		out = append(out, q)
	}
	sortQuotes(out)
	return out
}

func sortQuotes(quotes []models.ContractQuote) {
	sort.Slice(quotes, func(i, j int) bool {
		a, b := quotes[i], quotes[j]

		ae, be := models.DateOnly(a.Expiry), models.DateOnly(b.Expiry)
		if !ae.Equal(be) {
			return ae.Before(be)
		}

		if !a.ObservedAt.Equal(b.ObservedAt) {
			return a.ObservedAt.Before(b.ObservedAt)
		}

		return a.ContractID < b.ContractID
	})
}

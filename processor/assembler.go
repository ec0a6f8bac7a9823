package processor

import (
	"math"
	"sort"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/models"
)

// SnapshotColumns is the fixed column order the store persists. The parquet
// codec in the writer package follows this order field for field.
var SnapshotColumns = []string{
	"symbol",
	"date",
	"time",
	"future_price",
	"expiry_date",
	"strike",
	"option_type",
	"close",
	"oi",
	"open",
	"oi_change",
}

// AssembleBatch finalizes the rows for persistence: it scrubs any non-finite
// numeric back to the unknown sentinel and re-sorts by
// (expiry, observed_at, contract_id) in case the delta join disturbed the
// normalizer's ordering. The result is what gets appended, unmodified.
func AssembleBatch(rows []models.SnapshotRow) []models.SnapshotRow {
	out := make([]models.SnapshotRow, len(rows))
	copy(out, rows)

	for i := range out {
		// The store must never see NaN or infinity; the unknown sentinel
		// covers anything that slipped through.
		if out[i].PreviousPrice != nil && !finite(*out[i].PreviousPrice) {
			out[i].PreviousPrice = nil
			out[i].OpenInterestChange = nil
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		ae, be := models.DateOnly(a.Expiry), models.DateOnly(b.Expiry)
		if !ae.Equal(be) {
			return ae.Before(be)
		}
		if !a.ObservedAt.Equal(b.ObservedAt) {
			return a.ObservedAt.Before(b.ObservedAt)
		}
		return a.ContractID < b.ContractID
	})
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

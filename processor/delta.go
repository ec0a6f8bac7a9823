package processor

import (
	"math"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/models"
)

// BuildPriorIndex condenses the most recent persisted rows into a
// per-contract lookup for delta computation. Rows arrive oldest first, so a
// later row for the same contract overrides an earlier one. Rows whose
// stored price or open interest is not a finite number are treated as absent
// rather than propagated.
func BuildPriorIndex(rows []models.SnapshotRow) map[string]models.PriorEntry {
	index := make(map[string]models.PriorEntry, len(rows))
	for _, r := range rows {
		if r.ContractID == "" {
			continue
		}
		if math.IsNaN(r.LastPrice) || math.IsInf(r.LastPrice, 0) {
			continue
		}
		index[r.ContractID] = models.PriorEntry{
			Price:        r.LastPrice,
			OpenInterest: r.OpenInterest,
		}
	}
	return index
}

// ApplyDeltas joins the normalized current-poll quotes against the prior
// index. A contract present in the index gets its previous price and signed
// open-interest change; a contract with no prior history keeps both fields
// unknown (nil), never a zero dressed as real data.
func ApplyDeltas(quotes []models.ContractQuote, prior map[string]models.PriorEntry) []models.SnapshotRow {
	rows := make([]models.SnapshotRow, 0, len(quotes))
	for _, q := range quotes {
		row := models.SnapshotRow{ContractQuote: q}
		if entry, ok := prior[q.ContractID]; ok {
			prev := entry.Price
			change := q.OpenInterest - entry.OpenInterest
			row.PreviousPrice = &prev
			row.OpenInterestChange = &change
		}
		rows = append(rows, row)
	}
	return rows
}

package processor

import (
	"math"
	"testing"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/models"
)

func priorRow(id string, price float64, oi int64) models.SnapshotRow {
	q := quote(id, friday1, price)
	q.OpenInterest = oi
	return models.SnapshotRow{ContractQuote: q}
}

func TestBuildPriorIndex(t *testing.T) {
	rows := []models.SnapshotRow{
		priorRow("A-1", 10, 100),
		priorRow("B-2", 20, 200),
		priorRow("A-1", 12, 110), // later row overrides
	}
	index := BuildPriorIndex(rows)
	if len(index) != 2 {
		t.Fatalf("got %d entries, want 2", len(index))
	}
	if e := index["A-1"]; e.Price != 12 || e.OpenInterest != 110 {
		t.Errorf("A-1 entry = %+v, want latest row", e)
	}
}

func TestBuildPriorIndexSkipsBadRows(t *testing.T) {
	rows := []models.SnapshotRow{
		priorRow("", 10, 100),
		priorRow("N-1", math.NaN(), 100),
		priorRow("I-1", math.Inf(1), 100),
		priorRow("OK-1", 5, 50),
	}
	index := BuildPriorIndex(rows)
	if len(index) != 1 {
		t.Fatalf("got %d entries, want 1: %v", len(index), index)
	}
	if _, ok := index["OK-1"]; !ok {
		t.Error("expected OK-1 in index")
	}
}

func TestApplyDeltasKnownContract(t *testing.T) {
	prior := map[string]models.PriorEntry{
		"A-1": {Price: 10, OpenInterest: 100},
	}
	q := quote("A-1", friday1, 15)
	q.OpenInterest = 130

	rows := ApplyDeltas([]models.ContractQuote{q}, prior)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.PreviousPrice == nil || *r.PreviousPrice != 10 {
		t.Errorf("previous price = %v, want 10", r.PreviousPrice)
	}
	if r.OpenInterestChange == nil || *r.OpenInterestChange != 30 {
		t.Errorf("oi change = %v, want 30", r.OpenInterestChange)
	}
}

func TestApplyDeltasNegativeChange(t *testing.T) {
	prior := map[string]models.PriorEntry{"A-1": {Price: 10, OpenInterest: 100}}
	q := quote("A-1", friday1, 8)
	q.OpenInterest = 40

	rows := ApplyDeltas([]models.ContractQuote{q}, prior)
	if rows[0].OpenInterestChange == nil || *rows[0].OpenInterestChange != -60 {
		t.Errorf("oi change = %v, want -60", rows[0].OpenInterestChange)
	}
}

func TestApplyDeltasUnknownContract(t *testing.T) {
	rows := ApplyDeltas([]models.ContractQuote{quote("NEW-1", friday1, 5)}, nil)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].PreviousPrice != nil {
		t.Errorf("previous price should be unknown, got %v", *rows[0].PreviousPrice)
	}
	if rows[0].OpenInterestChange != nil {
		t.Errorf("oi change should be unknown, got %v", *rows[0].OpenInterestChange)
	}
}

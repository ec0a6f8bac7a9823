package processor

import (
	"testing"
	"time"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/models"
)

func quote(id string, expiry time.Time, price float64) models.ContractQuote {
	return models.ContractQuote{
		ContractID:     id,
		UnderlyingSpot: 2000,
		Expiry:         expiry,
		Strike:         2000,
		Kind:           models.Call,
		LastPrice:      price,
		OpenInterest:   10,
		ObservedAt:     testObserved,
	}
}

func TestNormalizeLastWins(t *testing.T) {
	out := Normalize([]models.ContractQuote{
		quote("C-ETH-2000-031025", friday1, 10),
		quote("C-ETH-2000-031025", friday1, 12),
	})
	if len(out) != 1 {
		t.Fatalf("got %d quotes, want 1", len(out))
	}
	if out[0].LastPrice != 12 {
		t.Errorf("last-wins violated: price = %v, want 12", out[0].LastPrice)
	}
}

func TestNormalizeOrdering(t *testing.T) {
	later := testObserved.Add(time.Second)
	in := []models.ContractQuote{
		quote("C-ETH-2100-101025", friday2, 5),
		quote("P-ETH-1900-031025", friday1, 7),
		quote("C-ETH-2000-031025", friday1, 9),
	}
	in[2].ObservedAt = later

	out := Normalize(in)
	wantIDs := []string{"P-ETH-1900-031025", "C-ETH-2000-031025", "C-ETH-2100-101025"}
	if len(out) != len(wantIDs) {
		t.Fatalf("got %d quotes, want %d", len(out), len(wantIDs))
	}
	for i, id := range wantIDs {
		if out[i].ContractID != id {
			t.Errorf("position %d: got %s, want %s", i, out[i].ContractID, id)
		}
	}
}

func TestNormalizeInputOrderIrrelevant(t *testing.T) {
	a := []models.ContractQuote{
		quote("A-1", friday1, 1),
		quote("B-2", friday2, 2),
		quote("C-3", friday1, 3),
	}
	b := []models.ContractQuote{a[2], a[0], a[1]}

	outA, outB := Normalize(a), Normalize(b)
	if len(outA) != len(outB) {
		t.Fatalf("lengths differ: %d vs %d", len(outA), len(outB))
	}
	for i := range outA {
		if outA[i].ContractID != outB[i].ContractID {
			t.Errorf("position %d differs: %s vs %s", i, outA[i].ContractID, outB[i].ContractID)
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if out := Normalize(nil); len(out) != 0 {
		t.Errorf("expected empty output, got %d quotes", len(out))
	}
}

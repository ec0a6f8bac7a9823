package writer

import (
	"testing"
	"time"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/models"
)

func sampleRow(symbol string, prev *float64, oiChange *int64) models.SnapshotRow {
	return models.SnapshotRow{
		ContractQuote: models.ContractQuote{
			ContractID:     symbol,
			UnderlyingSpot: 2000,
			Expiry:         time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC),
			Strike:         1900,
			Kind:           models.Call,
			LastPrice:      42.5,
			OpenInterest:   120,
			ObservedAt:     time.Date(2025, 9, 29, 10, 15, 30, 0, time.UTC),
		},
		PreviousPrice:      prev,
		OpenInterestChange: oiChange,
	}
}

func TestParquetRoundTripPreservesUnknown(t *testing.T) {
	prev := 40.0
	change := int64(-5)
	rows := []models.SnapshotRow{
		sampleRow("C-ETH-1900-031025", nil, nil),
		sampleRow("P-ETH-1900-031025", &prev, &change),
	}

	data, err := encodeRows(rows, "snappy")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := decodeRows(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(decoded))
	}

	fresh := decoded[0]
	if fresh.PreviousPrice != nil || fresh.OpenInterestChange != nil {
		t.Fatalf("unknown sentinel not preserved: %+v", fresh)
	}

	seen := decoded[1]
	if seen.PreviousPrice == nil || *seen.PreviousPrice != prev {
		t.Fatalf("previous price lost: %+v", seen.PreviousPrice)
	}
	if seen.OpenInterestChange == nil || *seen.OpenInterestChange != change {
		t.Fatalf("oi change lost: %+v", seen.OpenInterestChange)
	}

	if !fresh.ObservedAt.Equal(rows[0].ObservedAt) {
		t.Fatalf("observed_at mismatch: got %v want %v", fresh.ObservedAt, rows[0].ObservedAt)
	}
	if !models.DateOnly(fresh.Expiry).Equal(rows[0].Expiry) {
		t.Fatalf("expiry mismatch: got %v want %v", fresh.Expiry, rows[0].Expiry)
	}
	if fresh.Kind != models.Call {
		t.Fatalf("kind mismatch: %v", fresh.Kind)
	}
}

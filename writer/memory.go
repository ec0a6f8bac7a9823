package writer

import (
	"context"
	"sync"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/models"
)

// MemoryStore is an in-memory SnapshotStore used by tests and dry runs. It
// keeps the same append-only semantics as the S3 store: rows go in as
// immutable copies and are returned as copies.
type MemoryStore struct {
	mu   sync.Mutex
	rows []models.SnapshotRow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// ReadRecent returns up to n of the most recently appended rows, oldest first.
func (m *MemoryStore) ReadRecent(ctx context.Context, n int) ([]models.SnapshotRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.rows
	if n > 0 && len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	out := make([]models.SnapshotRow, len(rows))
	for i, r := range rows {
		out[i] = copyRow(r)
	}
	return out, nil
}

// Append stores copies of the batch rows.
func (m *MemoryStore) Append(ctx context.Context, rows []models.SnapshotRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range rows {
		m.rows = append(m.rows, copyRow(r))
	}
	return nil
}

// Len reports the total number of rows appended so far.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// copyRow clones a row including its sentinel pointers so callers cannot
// mutate stored state through shared pointers.
func copyRow(r models.SnapshotRow) models.SnapshotRow {
	out := r
	if r.PreviousPrice != nil {
		v := *r.PreviousPrice
		out.PreviousPrice = &v
	}
	if r.OpenInterestChange != nil {
		v := *r.OpenInterestChange
		out.OpenInterestChange = &v
	}
	return out
}

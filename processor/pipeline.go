package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/config"
	"github.com/113rajababu113-wq/eth-options-data-pipeline/logger"
	"github.com/113rajababu113-wq/eth-options-data-pipeline/models"
)

// QuoteFeed is the boundary to the raw quote source: one blocking bulk fetch
// of the full options chain per poll.
type QuoteFeed interface {
	FetchChain(ctx context.Context) (models.ChainSnapshot, error)
}

// SnapshotStore is the boundary to the persisted snapshot table. ReadRecent
// returns up to n of the most recently appended rows, oldest first; Append
// persists a batch atomically.
type SnapshotStore interface {
	ReadRecent(ctx context.Context, n int) ([]models.SnapshotRow, error)
	Append(ctx context.Context, rows []models.SnapshotRow) error
}

// PollResult summarizes one completed poll for logging and metrics.
type PollResult struct {
	TickersFetched   int
	Malformed        int
	FilteredByStrike int
	FilteredByExpiry int
	RowsAppended     int
	NewContracts     int
	Window           models.ExpiryWindow
	Duration         time.Duration
}

// Pipeline runs one poll: fetch the chain, adapt and filter quotes, compute
// deltas against the prior snapshot and append the batch. It holds no state
// across polls; everything is re-derived per invocation.
type Pipeline struct {
	config *config.Config
	feed   QuoteFeed
	store  SnapshotStore
	log    *logger.Log
}

func NewPipeline(cfg *config.Config, feed QuoteFeed, store SnapshotStore) *Pipeline {
	return &Pipeline{
		config: cfg,
		feed:   feed,
		store:  store,
		log:    logger.GetLogger(),
	}
}

// Run executes a single poll. It returns ErrFeedUnavailable when the chain
// fetch fails, ErrEmptyExpirySet when no target expiry exists (nothing to
// do) and ErrStoreUnavailable when the final append fails. A failed prior
// read only degrades the delta fields; it never aborts the poll.
func (p *Pipeline) Run(ctx context.Context) (PollResult, error) {
	start := time.Now()
	log := p.log.WithComponent("pipeline")
	result := PollResult{}

	chain, err := p.feed.FetchChain(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	result.TickersFetched = len(chain.Tickers)

	observedAt := chain.FetchedAt
	if observedAt.IsZero() {
		observedAt = time.Now().UTC()
	}

	quotes := make([]models.ContractQuote, 0, len(chain.Tickers))
	for _, ticker := range chain.Tickers {
		quote, err := AdaptTicker(ticker, observedAt)
		if err != nil {
			result.Malformed++
			var malformed *MalformedQuoteError
			if errors.As(err, &malformed) {
				log.WithFields(logger.Fields{
					"symbol": malformed.Symbol,
					"reason": malformed.Reason,
				}).Debug("skipping malformed quote")
			}
			continue
		}
		quotes = append(quotes, quote)
	}

	log.WithFields(logger.Fields{
		"tickers":   result.TickersFetched,
		"adapted":   len(quotes),
		"malformed": result.Malformed,
		"spot":      chain.Spot,
	}).Info("chain adapted")

	expiries := make([]time.Time, 0, len(quotes))
	for _, q := range quotes {
		expiries = append(expiries, q.Expiry)
	}

	policy := ExpiryPolicy(p.config.Snapshot.ExpiryPolicy)
	window, err := SelectWindow(policy, models.DateOnly(observedAt), expiries)
	if err != nil {
		return result, err
	}
	result.Window = window
	if window.Empty() {
		return result, ErrEmptyExpirySet
	}

	log.WithFields(logger.Fields{"targets": formatWindow(window)}).Info("expiry window selected")

	band := p.config.Snapshot.BandPercent
	inScope := make([]models.ContractQuote, 0, len(quotes))
	for _, q := range quotes {
		if !InBand(q.UnderlyingSpot, q.Strike, band) {
			result.FilteredByStrike++
			continue
		}
		if !window.Contains(q.Expiry) {
			result.FilteredByExpiry++
			continue
		}
		inScope = append(inScope, q)
	}

	normalized := Normalize(inScope)
	if len(normalized) == 0 {
		log.WithFields(logger.Fields{
			"filtered_by_strike": result.FilteredByStrike,
			"filtered_by_expiry": result.FilteredByExpiry,
		}).Warn("no contracts in scope, nothing to append")
		result.Duration = time.Since(start)
		return result, nil
	}

	prior := map[string]models.PriorEntry{}
	lookback := p.config.Snapshot.PriorLookback
	priorRows, err := p.store.ReadRecent(ctx, lookback)
	if err != nil {
		// A missing prior snapshot degrades to "every contract is new".
		log.WithError(err).Warn("prior snapshot read failed, treating all contracts as new")
	} else {
		prior = BuildPriorIndex(priorRows)
	}

	rows := AssembleBatch(ApplyDeltas(normalized, prior))
	for _, r := range rows {
		if r.PreviousPrice == nil {
			result.NewContracts++
		}
	}

	if err := p.store.Append(ctx, rows); err != nil {
		return result, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	result.RowsAppended = len(rows)
	result.Duration = time.Since(start)

	minStrike, maxStrike := strikeRange(rows)
	log.WithFields(logger.Fields{
		"rows":          result.RowsAppended,
		"new_contracts": result.NewContracts,
		"targets":       formatWindow(window),
		"strike_min":    minStrike,
		"strike_max":    maxStrike,
		"duration_ms":   result.Duration.Milliseconds(),
	}).Info("snapshot appended")

	return result, nil
}

func formatWindow(w models.ExpiryWindow) []string {
	out := make([]string, 0, len(w.Targets))
	for _, t := range w.Targets {
		out = append(out, t.Format("2006-01-02"))
	}
	return out
}

func strikeRange(rows []models.SnapshotRow) (float64, float64) {
	if len(rows) == 0 {
		return 0, 0
	}
	minStrike, maxStrike := rows[0].Strike, rows[0].Strike
	for _, r := range rows[1:] {
		if r.Strike < minStrike {
			minStrike = r.Strike
		}
		if r.Strike > maxStrike {
			maxStrike = r.Strike
		}
	}
	return minStrike, maxStrike
}

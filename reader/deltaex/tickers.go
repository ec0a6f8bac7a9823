package deltaex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/config"
	"github.com/113rajababu113-wq/eth-options-data-pipeline/logger"
	"github.com/113rajababu113-wq/eth-options-data-pipeline/models"
)

// Client fetches the bulk options-chain listing from the Delta Exchange
// tickers endpoint. One FetchChain call is one poll's worth of feed I/O.
type Client struct {
	config  *config.Config
	http    *http.Client
	limiter *rate.Limiter
	log     *logger.Log
}

// NewClient creates a Client with a pooled transport and a request rate
// limiter sized from configuration.
func NewClient(cfg *config.Config) *Client {
	pool := cfg.Feed.ConnectionPool
	maxIdle := pool.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 10
	}
	maxPerHost := pool.MaxConnsPerHost
	if maxPerHost <= 0 {
		maxPerHost = 10
	}
	idleTimeout := pool.IdleConnTimeout
	if idleTimeout <= 0 {
		idleTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        maxIdle,
		MaxIdleConnsPerHost: maxIdle,
		MaxConnsPerHost:     maxPerHost,
		IdleConnTimeout:     idleTimeout,
		DisableCompression:  false,
	}

	rl := cfg.Feed.RateLimit
	rps := rl.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := rl.BurstSize
	if burst <= 0 {
		burst = 1
	}

	log := logger.GetLogger()
	log.WithComponent("deltaex_reader").WithFields(logger.Fields{
		"url":     cfg.Feed.URL,
		"timeout": cfg.Feed.Timeout,
	}).Info("delta exchange reader initialized")

	return &Client{
		config: cfg,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Feed.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		log:     log,
	}
}

type tickersResponse struct {
	Success bool               `json:"success"`
	Result  []models.RawTicker `json:"result"`
}

// FetchChain performs one bulk listing of option tickers for the configured
// underlying and resolves the underlying spot price from the response. A
// transport failure or non-success status means the feed is unavailable for
// this poll.
func (c *Client) FetchChain(ctx context.Context) (models.ChainSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return models.ChainSnapshot{}, err
	}

	endpoint, err := url.Parse(c.config.Feed.URL)
	if err != nil {
		return models.ChainSnapshot{}, fmt.Errorf("invalid feed url: %w", err)
	}
	query := endpoint.Query()
	query.Set("contract_types", strings.Join(c.config.Feed.ContractTypes, ","))
	query.Set("underlying_asset_symbols", c.config.Feed.UnderlyingSymbol)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return models.ChainSnapshot{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.ChainSnapshot{}, fmt.Errorf("tickers request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.ChainSnapshot{}, fmt.Errorf("tickers request returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload tickersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.ChainSnapshot{}, fmt.Errorf("failed to decode tickers response: %w", err)
	}

	snapshot := models.ChainSnapshot{
		Tickers:   payload.Result,
		Spot:      resolveSpot(payload.Result),
		FetchedAt: time.Now().UTC(),
	}

	c.log.WithComponent("deltaex_reader").WithFields(logger.Fields{
		"tickers": len(snapshot.Tickers),
		"spot":    snapshot.Spot,
	}).Info("fetched options chain")

	return snapshot, nil
}

// resolveSpot picks the underlying spot price from the first ticker that
// carries a parsable spot_price value.
func resolveSpot(tickers []models.RawTicker) float64 {
	for _, t := range tickers {
		v, ok := t["spot_price"]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case float64:
			if s > 0 {
				return s
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && f > 0 {
				return f
			}
		}
	}
	return 0
}

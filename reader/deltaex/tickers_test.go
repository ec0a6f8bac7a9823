package deltaex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/config"
	"github.com/113rajababu113-wq/eth-options-data-pipeline/models"
)

func testConfig(url string) *config.Config {
	return &config.Config{
		Feed: config.FeedConfig{
			URL:              url,
			UnderlyingSymbol: "ETH",
			ContractTypes:    []string{"call_options", "put_options"},
			Timeout:          2 * time.Second,
		},
	}
}

func TestFetchChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("underlying_asset_symbols"); got != "ETH" {
			t.Errorf("unexpected underlying filter: %s", got)
		}
		if got := r.URL.Query().Get("contract_types"); got != "call_options,put_options" {
			t.Errorf("unexpected contract types: %s", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"result": []map[string]interface{}{
				{"symbol": "C-ETH-2000-031025", "spot_price": "2000.5"},
				{"symbol": "P-ETH-1900-031025", "spot_price": "2000.5"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	chain, err := c.FetchChain(context.Background())
	if err != nil {
		t.Fatalf("FetchChain: %v", err)
	}
	if len(chain.Tickers) != 2 {
		t.Fatalf("expected 2 tickers, got %d", len(chain.Tickers))
	}
	if chain.Spot != 2000.5 {
		t.Fatalf("expected spot 2000.5, got %v", chain.Spot)
	}
	if chain.FetchedAt.IsZero() {
		t.Fatalf("expected FetchedAt to be set")
	}
}

func TestFetchChainServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	if _, err := c.FetchChain(context.Background()); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestResolveSpotSkipsUnparsable(t *testing.T) {
	tickers := []models.RawTicker{
		{"symbol": "a"},
		{"symbol": "b", "spot_price": "not-a-number"},
		{"symbol": "c", "spot_price": "1850.25"},
	}
	if got := resolveSpot(tickers); got != 1850.25 {
		t.Fatalf("expected 1850.25, got %v", got)
	}
	if got := resolveSpot(nil); got != 0 {
		t.Fatalf("expected 0 for empty chain, got %v", got)
	}
}

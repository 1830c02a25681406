// Package yahoo provides bond fund quote fetching from the Yahoo Finance
// quote API, with persistent caching and stale-cache fallback.
package yahoo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/jraitt/FinancialLadder/internal/clientdata"
)

// Quote holds the time-varying metrics of a single fund as reported by the
// API. Fields the payload lacks stay nil; the metrics service fills those
// from static fallback constants.
type Quote struct {
	Symbol       string   `json:"symbol"`
	Price        *float64 `json:"price"`
	YieldPct     *float64 `json:"yield_pct"`
	ExpenseRatio *float64 `json:"expense_ratio"`
}

// Origin tells the caller where a quote came from.
type Origin string

const (
	OriginLive  Origin = "live"
	OriginCache Origin = "cache"
	OriginStale Origin = "stale"
)

// Client for the Yahoo Finance quote API.
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
	cacheTTL  time.Duration
}

// NewClient creates a new Yahoo Finance client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(cacheRepo *clientdata.Repository, cacheTTL time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   "https://query1.finance.yahoo.com/v7/finance/quote",
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log.With().Str("client", "yahoo").Logger(),
		cacheRepo: cacheRepo,
		cacheTTL:  cacheTTL,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// GetQuote fetches the quote for a symbol, cache-first. If the API fails,
// a stale cached quote is returned if available (stale data > no data);
// otherwise the error propagates and the caller falls back to static
// constants.
func (c *Client) GetQuote(symbol string) (*Quote, Origin, error) {
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh(symbol)
		if err == nil && data != nil {
			var cached Quote
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("symbol", symbol).Msg("Cache hit")
				return &cached, OriginCache, nil
			}
		}
	}

	quote, err := c.fetch(symbol)
	if err != nil {
		if stale, ok := c.getStaleFromCache(symbol); ok {
			c.log.Warn().
				Err(err).
				Str("symbol", symbol).
				Msg("API failed, using stale cached quote")
			return stale, OriginStale, nil
		}
		return nil, "", err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(symbol, quote, c.cacheTTL); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache quote")
		}
	}

	return quote, OriginLive, nil
}

// fetch performs the API request for one symbol.
func (c *Client) fetch(symbol string) (*Quote, error) {
	reqURL := fmt.Sprintf("%s?symbols=%s", c.baseURL, url.QueryEscape(symbol))
	c.log.Debug().Str("url", reqURL).Msg("Fetching quote")

	resp, err := c.client.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result struct {
		QuoteResponse struct {
			Result []struct {
				Symbol                      string   `json:"symbol"`
				RegularMarketPrice          *float64 `json:"regularMarketPrice"`
				TrailingAnnualDividendYield *float64 `json:"trailingAnnualDividendYield"`
				NetExpenseRatio             *float64 `json:"netExpenseRatio"`
			} `json:"result"`
		} `json:"quoteResponse"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote in response for %s", symbol)
	}

	raw := result.QuoteResponse.Result[0]
	quote := &Quote{
		Symbol:       symbol,
		Price:        raw.RegularMarketPrice,
		ExpenseRatio: raw.NetExpenseRatio,
	}
	// The API reports yield as a fraction; the planner works in percent.
	if raw.TrailingAnnualDividendYield != nil {
		pct := *raw.TrailingAnnualDividendYield * 100
		quote.YieldPct = &pct
	}

	return quote, nil
}

// getStaleFromCache retrieves an expired cached quote.
func (c *Client) getStaleFromCache(symbol string) (*Quote, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	data, err := c.cacheRepo.Get(symbol)
	if err != nil || data == nil {
		return nil, false
	}
	var stale Quote
	if err := json.Unmarshal(data, &stale); err != nil {
		return nil, false
	}
	return &stale, true
}

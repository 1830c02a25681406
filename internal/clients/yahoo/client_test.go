package yahoo

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/jraitt/FinancialLadder/internal/clientdata"
)

func setupCacheRepo(t *testing.T) *clientdata.Repository {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE fund_quotes (
			symbol     TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`)
	require.NoError(t, err)
	return clientdata.NewRepository(db)
}

func quoteServer(t *testing.T, price, yieldFrac float64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbols")
		fmt.Fprintf(w, `{"quoteResponse":{"result":[{"symbol":%q,"regularMarketPrice":%f,"trailingAnnualDividendYield":%f}]}}`,
			symbol, price, yieldFrac)
	}))
}

func TestGetQuoteLive(t *testing.T) {
	srv := quoteServer(t, 72.50, 0.042)
	defer srv.Close()

	client := NewClient(nil, time.Hour, zerolog.Nop())
	client.SetBaseURL(srv.URL)

	quote, origin, err := client.GetQuote("BND")
	require.NoError(t, err)
	assert.Equal(t, OriginLive, origin)
	require.NotNil(t, quote.Price)
	assert.InDelta(t, 72.50, *quote.Price, 1e-9)
	require.NotNil(t, quote.YieldPct)
	assert.InDelta(t, 4.2, *quote.YieldPct, 1e-9)
	assert.Nil(t, quote.ExpenseRatio)
}

func TestGetQuoteCacheFirst(t *testing.T) {
	srv := quoteServer(t, 72.50, 0.042)
	defer srv.Close()

	repo := setupCacheRepo(t)
	client := NewClient(repo, time.Hour, zerolog.Nop())
	client.SetBaseURL(srv.URL)

	_, origin, err := client.GetQuote("BND")
	require.NoError(t, err)
	assert.Equal(t, OriginLive, origin)

	// Second call is served from the fresh cache without hitting the API.
	srv.Close()
	quote, origin, err := client.GetQuote("BND")
	require.NoError(t, err)
	assert.Equal(t, OriginCache, origin)
	assert.InDelta(t, 72.50, *quote.Price, 1e-9)
}

func TestGetQuoteStaleFallback(t *testing.T) {
	repo := setupCacheRepo(t)

	// Seed an expired cache row directly.
	require.NoError(t, repo.Store("BNDX", Quote{Symbol: "BNDX", Price: floatPtr(48.75)}, -time.Minute))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(repo, time.Hour, zerolog.Nop())
	client.SetBaseURL(srv.URL)

	quote, origin, err := client.GetQuote("BNDX")
	require.NoError(t, err)
	assert.Equal(t, OriginStale, origin)
	assert.InDelta(t, 48.75, *quote.Price, 1e-9)
}

func TestGetQuoteFailsWithoutFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(nil, time.Hour, zerolog.Nop())
	client.SetBaseURL(srv.URL)

	_, _, err := client.GetQuote("VBIL")
	assert.Error(t, err)
}

func TestGetQuoteEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[]}}`)
	}))
	defer srv.Close()

	client := NewClient(nil, time.Hour, zerolog.Nop())
	client.SetBaseURL(srv.URL)

	_, _, err := client.GetQuote("VGUS")
	assert.Error(t, err)
}

func floatPtr(v float64) *float64 { return &v }

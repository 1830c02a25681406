package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jraitt/FinancialLadder/internal/domain"
	"github.com/jraitt/FinancialLadder/internal/modules/charts"
	"github.com/jraitt/FinancialLadder/internal/modules/ladder"
)

func floatPtr(v float64) *float64 { return &v }

// stubMetrics serves a fixed fallback table.
type stubMetrics struct{}

func (s *stubMetrics) FundMetrics(universe domain.Universe) (ladder.MetricsTable, ladder.MetricsSource) {
	table := make(ladder.MetricsTable, len(universe.Funds))
	for _, f := range universe.Funds {
		table[f] = ladder.FundMetrics{Price: floatPtr(50.0), YieldPct: 4.0}
	}
	return table, ladder.SourceFallback
}

func setupRouter(t *testing.T) *chi.Mux {
	log := zerolog.Nop()
	service := ladder.NewService(domain.CoreUniverse(), &stubMetrics{}, charts.NewService(log), log)
	handler := NewHandler(service, log)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	return router
}

func doRequest(t *testing.T, router *chi.Mux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleBuildPlan(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/ladder/plan", `{
		"investment_amount": 100000,
		"age": 40,
		"investment_horizon": 10,
		"risk_tolerance": "Moderate",
		"include_international": true
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan struct {
		PlanID            string                     `json:"plan_id"`
		MetricsSource     string                     `json:"metrics_source"`
		Allocation        map[string]float64         `json:"allocation"`
		WeightedYieldPct  float64                    `json:"weighted_yield_pct"`
		AgeRecommendation *map[string]int            `json:"age_recommendation"`
		Charts            map[string]json.RawMessage `json:"charts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))

	assert.NotEmpty(t, plan.PlanID)
	assert.Equal(t, "fallback", plan.MetricsSource)
	require.NotNil(t, plan.AgeRecommendation)
	assert.Equal(t, 40, (*plan.AgeRecommendation)["short"])

	total := 0.0
	for _, frac := range plan.Allocation {
		total += frac
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.InDelta(t, 4.0, plan.WeightedYieldPct, 1e-9)
	assert.Contains(t, plan.Charts, "pie")
	assert.Contains(t, plan.Charts, "ladder")
}

func TestHandleBuildPlanExcludesInternational(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/ladder/plan", `{
		"investment_amount": 50000,
		"investment_horizon": 10,
		"risk_tolerance": "Moderate",
		"include_international": false
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan struct {
		Allocation map[string]float64 `json:"allocation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.NotContains(t, plan.Allocation, "BNDX")
}

func TestHandleBuildPlanRejectsBadInput(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "bad risk tolerance", body: `{"investment_amount":1000,"investment_horizon":10,"risk_tolerance":"Reckless","include_international":true}`},
		{name: "non-positive amount", body: `{"investment_amount":0,"investment_horizon":10,"risk_tolerance":"Moderate","include_international":true}`},
		{name: "malformed json", body: `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/ladder/plan", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestHandleManualPlan(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/ladder/manual", `{
		"investment_amount": 10000,
		"allocations": {"BND": 50, "VBIL": 50}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan struct {
		Allocation map[string]float64 `json:"allocation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.InDelta(t, 0.5, plan.Allocation["BND"], 1e-9)
}

func TestHandleManualPlanRejectsBadTotal(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/ladder/manual", `{
		"investment_amount": 10000,
		"allocations": {"BND": 50, "VBIL": 40}
	}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "100")
}

func TestHandleGetFunds(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/funds", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Funds []struct {
			Symbol   string  `json:"symbol"`
			Name     string  `json:"name"`
			YieldPct float64 `json:"yield_pct"`
		} `json:"funds"`
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "fallback", resp.Source)
	require.Len(t, resp.Funds, 6)
	assert.Equal(t, "BND", resp.Funds[0].Symbol)
}

func TestHandleGetAgeAllocation(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/age-allocation?age=40", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 40, resp["short"])
	assert.Equal(t, 36, resp["intermediate"])
	assert.Equal(t, 24, resp["long"])
}

func TestHandleGetAgeAllocationRejectsBadAge(t *testing.T) {
	router := setupRouter(t)

	for _, q := range []string{"", "abc", "-5", "200"} {
		rec := doRequest(t, router, http.MethodGet, "/api/age-allocation?age="+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "age %q", q)
	}
}

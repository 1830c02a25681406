// Package handlers provides HTTP handlers for bond ladder planning.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jraitt/FinancialLadder/internal/domain"
	"github.com/jraitt/FinancialLadder/internal/modules/ladder"
)

// Handler handles ladder planning HTTP requests.
type Handler struct {
	service *ladder.Service
	log     zerolog.Logger
}

// NewHandler creates a new ladder handler.
func NewHandler(service *ladder.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "ladder").Logger(),
	}
}

// RegisterRoutes registers all ladder routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/funds", h.HandleGetFunds)
	r.Get("/age-allocation", h.HandleGetAgeAllocation)
	r.Post("/ladder/plan", h.HandleBuildPlan)
	r.Post("/ladder/manual", h.HandleManualPlan)
}

// planRequest is the JSON body of a plan request.
type planRequest struct {
	InvestmentAmount     float64 `json:"investment_amount"`
	Age                  *int    `json:"age"`
	InvestmentHorizon    int     `json:"investment_horizon"`
	RiskTolerance        string  `json:"risk_tolerance"`
	IncludeInternational bool    `json:"include_international"`
}

// manualRequest is the JSON body of a manual-allocation request.
type manualRequest struct {
	InvestmentAmount float64            `json:"investment_amount"`
	Allocations      map[string]float64 `json:"allocations"` // fund -> percentage
}

// HandleBuildPlan computes a full ladder plan from investor parameters.
// POST /api/ladder/plan
func (h *Handler) HandleBuildPlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	riskTolerance, err := ladder.ParseRiskTolerance(req.RiskTolerance)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := ladder.InvestorParameters{
		InvestmentAmount:     req.InvestmentAmount,
		Age:                  req.Age,
		InvestmentHorizon:    req.InvestmentHorizon,
		RiskTolerance:        riskTolerance,
		IncludeInternational: req.IncludeInternational,
	}

	plan, err := h.service.BuildPlan(params)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, plan)
}

// HandleManualPlan computes a plan from user-entered percentages. The
// percentages must total 100; anything else is rejected before any
// computation happens.
// POST /api/ladder/manual
func (h *Handler) HandleManualPlan(w http.ResponseWriter, r *http.Request) {
	var req manualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	percents := make(map[domain.FundSymbol]float64, len(req.Allocations))
	for sym, pct := range req.Allocations {
		percents[domain.FundSymbol(sym)] = pct
	}

	plan, err := h.service.BuildManualPlan(req.InvestmentAmount, percents)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, plan)
}

// HandleGetFunds returns the current fund information table.
// GET /api/funds
func (h *Handler) HandleGetFunds(w http.ResponseWriter, r *http.Request) {
	rows, source := h.service.FundTable()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"funds":  rows,
		"source": source,
	})
}

// HandleGetAgeAllocation returns the informational age-bucket display.
// GET /api/age-allocation?age=N
func (h *Handler) HandleGetAgeAllocation(w http.ResponseWriter, r *http.Request) {
	ageStr := r.URL.Query().Get("age")
	age, err := strconv.Atoi(ageStr)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "age must be an integer")
		return
	}
	if age < 18 || age > 110 {
		h.writeError(w, http.StatusBadRequest, "age out of supported range")
		return
	}

	h.writeJSON(w, http.StatusOK, ladder.AgeBasedAllocation(age))
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

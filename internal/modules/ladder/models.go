// Package ladder implements the bond ladder allocation engine: the pure
// computation that turns investor parameters and current fund metrics into a
// normalized per-fund allocation, plus the derived presentation data
// (maturity ordering, weighted yield, ladder rows) consumed by the charts.
package ladder

import (
	"fmt"

	"github.com/jraitt/FinancialLadder/internal/domain"
)

// RiskTolerance is one of five ordered comfort levels.
type RiskTolerance string

const (
	VeryConservative RiskTolerance = "Very Conservative"
	Conservative     RiskTolerance = "Conservative"
	Moderate         RiskTolerance = "Moderate"
	Aggressive       RiskTolerance = "Aggressive"
	VeryAggressive   RiskTolerance = "Very Aggressive"
)

// riskMultipliers scales long vs short weighting per tolerance level.
var riskMultipliers = map[RiskTolerance]float64{
	VeryConservative: 0.7,
	Conservative:     0.85,
	Moderate:         1.0,
	Aggressive:       1.15,
	VeryAggressive:   1.3,
}

// ParseRiskTolerance validates a user-supplied tolerance string.
// An unrecognized level is a caller error, rejected at the boundary so the
// engine never sees it.
func ParseRiskTolerance(s string) (RiskTolerance, error) {
	rt := RiskTolerance(s)
	if _, ok := riskMultipliers[rt]; !ok {
		return "", fmt.Errorf("unrecognized risk tolerance: %q", s)
	}
	return rt, nil
}

// Multiplier returns the long/short scaling factor for the level.
func (rt RiskTolerance) Multiplier() float64 {
	return riskMultipliers[rt]
}

// InvestorParameters are the validated inputs the engine computes from.
// Age is optional; nil disables the age adjustment stage.
type InvestorParameters struct {
	InvestmentAmount     float64
	Age                  *int
	InvestmentHorizon    int // years
	RiskTolerance        RiskTolerance
	IncludeInternational bool
}

// Validate checks the scalar constraints the form is expected to enforce.
func (p InvestorParameters) Validate() error {
	if p.InvestmentAmount <= 0 {
		return fmt.Errorf("investment amount must be positive, got %.2f", p.InvestmentAmount)
	}
	if p.InvestmentHorizon <= 0 {
		return fmt.Errorf("investment horizon must be a positive number of years, got %d", p.InvestmentHorizon)
	}
	if p.Age != nil && (*p.Age < 18 || *p.Age > 110) {
		return fmt.Errorf("age %d out of supported range", *p.Age)
	}
	if _, err := ParseRiskTolerance(string(p.RiskTolerance)); err != nil {
		return err
	}
	return nil
}

// FundMetrics holds the time-varying metrics of a single fund.
// Price and ExpenseRatio may be absent from a live payload; YieldPct is
// always populated, falling back to static constants when needed.
type FundMetrics struct {
	Price        *float64
	ExpenseRatio *float64
	YieldPct     float64
}

// MetricsTable maps each fund in the active universe to its metrics.
// Produced fresh per plan, immutable once produced.
type MetricsTable map[domain.FundSymbol]FundMetrics

// Allocation maps funds to fractions in [0,1] summing to 1.0.
type Allocation map[domain.FundSymbol]float64

// Sum returns the total of all fractions.
func (a Allocation) Sum() float64 {
	total := 0.0
	for _, v := range a {
		total += v
	}
	return total
}

// AgeAllocation is the per-term-bucket target derived from age.
// The three integer percentages always sum to exactly 100.
type AgeAllocation struct {
	Short        int `json:"short"`
	Intermediate int `json:"intermediate"`
	Long         int `json:"long"`
}

// Diagnostics records degenerate cases the engine encountered. The stages
// involved leave the affected mass to the final normalization instead of
// guessing, and flag it here so callers and tests can detect the condition.
type Diagnostics struct {
	// ZeroTermBuckets lists age-adjustment buckets whose base total was
	// zero; their funds were assigned zero allocation.
	ZeroTermBuckets []domain.TermCategory
	// LostInternationalMass is the international fraction that could not be
	// redistributed because every remaining fund was at zero.
	LostInternationalMass float64
}

// Degenerate reports whether any degenerate case occurred.
func (d Diagnostics) Degenerate() bool {
	return len(d.ZeroTermBuckets) > 0 || d.LostInternationalMass > 0
}

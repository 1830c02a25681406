package ladder

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/jraitt/FinancialLadder/internal/domain"
)

// MaturityRow is one entry of the maturity-sorted allocation view consumed
// by the bar chart.
type MaturityRow struct {
	Fund          domain.FundSymbol `json:"fund"`
	AllocationPct float64           `json:"allocation_pct"`
	MaturityRange string            `json:"maturity_range"`
	Maturity      float64           `json:"maturity"`
}

// LadderRow is one rung of the bond ladder, the structure the ladder chart
// consumes directly.
type LadderRow struct {
	Fund         domain.FundSymbol `json:"fund"`
	Maturity     float64           `json:"maturity"`
	Amount       float64           `json:"amount"`
	YieldPct     float64           `json:"yield_pct"`
	AnnualIncome float64           `json:"annual_income"`
}

// MaturityMidpoint parses a "low-high" maturity range and returns the
// average of the two bounds; a single bare number returns itself.
func MaturityMidpoint(maturityRange string) (float64, error) {
	parts := strings.Split(maturityRange, "-")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid maturity range %q: %w", maturityRange, err)
		}
		return v, nil
	case 2:
		lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid maturity range %q: %w", maturityRange, err)
		}
		hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid maturity range %q: %w", maturityRange, err)
		}
		return (lo + hi) / 2, nil
	default:
		return 0, fmt.Errorf("invalid maturity range %q", maturityRange)
	}
}

// SortByMaturity returns (fund, allocation%, maturity range) rows sorted
// ascending by maturity midpoint. Ties keep the universe's fund order
// (stable sort). Funds absent from the allocation are skipped.
func SortByMaturity(alloc Allocation, universe domain.Universe) ([]MaturityRow, error) {
	rows := make([]MaturityRow, 0, len(alloc))
	for _, f := range universe.Funds {
		frac, ok := alloc[f]
		if !ok {
			continue
		}
		info, _ := universe.Info(f)
		midpoint, err := MaturityMidpoint(info.MaturityRange)
		if err != nil {
			return nil, err
		}
		rows = append(rows, MaturityRow{
			Fund:          f,
			AllocationPct: frac * 100,
			MaturityRange: info.MaturityRange,
			Maturity:      midpoint,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Maturity < rows[j].Maturity
	})
	return rows, nil
}

// WeightedYield computes the allocation-weighted average yield percentage.
// Funds with zero allocation or missing metrics are excluded from the sum.
func WeightedYield(alloc Allocation, metrics MetricsTable) float64 {
	weights := make([]float64, 0, len(alloc))
	yields := make([]float64, 0, len(alloc))
	for f, frac := range alloc {
		if frac <= 0 {
			continue
		}
		m, ok := metrics[f]
		if !ok {
			continue
		}
		weights = append(weights, frac)
		yields = append(yields, m.YieldPct)
	}
	if len(weights) == 0 {
		return 0
	}
	return floats.Dot(weights, yields)
}

// LadderRows builds the per-fund dollar ladder for a given investment
// amount: funds with positive allocation only, sorted ascending by maturity
// midpoint.
func LadderRows(alloc Allocation, universe domain.Universe, metrics MetricsTable, investmentAmount float64) ([]LadderRow, error) {
	rows := make([]LadderRow, 0, len(alloc))
	for _, f := range universe.Funds {
		frac := alloc[f]
		if frac <= 0 {
			continue
		}
		info, _ := universe.Info(f)
		midpoint, err := MaturityMidpoint(info.MaturityRange)
		if err != nil {
			return nil, err
		}
		amount := frac * investmentAmount
		yieldPct := metrics[f].YieldPct
		rows = append(rows, LadderRow{
			Fund:         f,
			Maturity:     midpoint,
			Amount:       amount,
			YieldPct:     yieldPct,
			AnnualIncome: amount * yieldPct / 100,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Maturity < rows[j].Maturity
	})
	return rows, nil
}

// Package charts builds the chart payloads the browser-side renderers
// consume: pie (fund allocation), bar (allocation by maturity) and the
// ladder structure chart. Rendering itself happens client-side; this
// package owns only the data contracts.
package charts

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jraitt/FinancialLadder/internal/domain"
	"github.com/jraitt/FinancialLadder/internal/modules/ladder"
)

// PieChart is the allocation pie payload. Labels carry the percentage
// embedded ("BND (25.0%)"); values are the numeric percentages. Funds with
// zero allocation are excluded.
type PieChart struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// BarChart is the allocation-by-maturity payload, one bar per fund in
// ascending maturity order.
type BarChart struct {
	Rows []BarRow `json:"rows"`
}

// BarRow is a single maturity-ordered bar.
type BarRow struct {
	Fund          domain.FundSymbol `json:"fund"`
	Label         string            `json:"label"`
	AllocationPct float64           `json:"allocation_pct"`
}

// LadderChart is the ladder-structure payload: one bar per rung plus the
// connecting line through the rung tops.
type LadderChart struct {
	Rows []ladder.LadderRow `json:"rows"`
	Line LadderLine         `json:"line"`
}

// LadderLine traces the ladder shape across maturities.
type LadderLine struct {
	Maturities []float64 `json:"maturities"`
	Amounts    []float64 `json:"amounts"`
}

// Service builds chart payloads from allocations and fund metrics.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new charts service.
func NewService(log zerolog.Logger) *Service {
	return &Service{log: log.With().Str("service", "charts").Logger()}
}

// Pie builds the allocation pie payload. Iterates in universe order so the
// output is deterministic.
func (s *Service) Pie(alloc ladder.Allocation, universe domain.Universe) PieChart {
	pie := PieChart{
		Labels: make([]string, 0, len(alloc)),
		Values: make([]float64, 0, len(alloc)),
	}
	for _, f := range universe.Funds {
		frac := alloc[f]
		if frac <= 0 {
			continue
		}
		pct := frac * 100
		pie.Labels = append(pie.Labels, fmt.Sprintf("%s (%.1f%%)", f, pct))
		pie.Values = append(pie.Values, pct)
	}
	return pie
}

// Bar builds the allocation-by-maturity payload.
func (s *Service) Bar(alloc ladder.Allocation, universe domain.Universe) (BarChart, error) {
	rows, err := ladder.SortByMaturity(alloc, universe)
	if err != nil {
		return BarChart{}, fmt.Errorf("failed to sort allocation by maturity: %w", err)
	}

	chart := BarChart{Rows: make([]BarRow, 0, len(rows))}
	for _, r := range rows {
		chart.Rows = append(chart.Rows, BarRow{
			Fund:          r.Fund,
			Label:         fmt.Sprintf("%s (%s years)", r.Fund, r.MaturityRange),
			AllocationPct: r.AllocationPct,
		})
	}
	return chart, nil
}

// BuildCharts assembles the full chart set for a plan. Satisfies the
// ladder module's ChartBuilder interface.
func (s *Service) BuildCharts(alloc ladder.Allocation, universe domain.Universe, metrics ladder.MetricsTable, investmentAmount float64) (ladder.ChartSet, error) {
	bar, err := s.Bar(alloc, universe)
	if err != nil {
		return ladder.ChartSet{}, err
	}
	lad, err := s.Ladder(alloc, universe, metrics, investmentAmount)
	if err != nil {
		return ladder.ChartSet{}, err
	}
	return ladder.ChartSet{
		Pie:    s.Pie(alloc, universe),
		Bar:    bar,
		Ladder: lad,
	}, nil
}

// Ladder builds the ladder-structure payload for a given investment amount.
func (s *Service) Ladder(alloc ladder.Allocation, universe domain.Universe, metrics ladder.MetricsTable, investmentAmount float64) (LadderChart, error) {
	rows, err := ladder.LadderRows(alloc, universe, metrics, investmentAmount)
	if err != nil {
		return LadderChart{}, fmt.Errorf("failed to build ladder rows: %w", err)
	}

	line := LadderLine{
		Maturities: make([]float64, 0, len(rows)),
		Amounts:    make([]float64, 0, len(rows)),
	}
	for _, r := range rows {
		line.Maturities = append(line.Maturities, r.Maturity)
		line.Amounts = append(line.Amounts, r.Amount)
	}

	return LadderChart{Rows: rows, Line: line}, nil
}

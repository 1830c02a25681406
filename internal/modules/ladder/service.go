package ladder

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jraitt/FinancialLadder/internal/domain"
)

// MetricsSource tells callers where a metrics table came from, so live data
// can be distinguished from fallback without inspecting logs.
type MetricsSource string

const (
	SourceLive     MetricsSource = "live"
	SourceCache    MetricsSource = "cache"
	SourceFallback MetricsSource = "fallback"
)

// MetricsProvider supplies the current metrics table for a universe. The
// provider never fails: on any fetch problem it substitutes cached or
// static fallback values and reports that through the source indicator.
type MetricsProvider interface {
	FundMetrics(universe domain.Universe) (MetricsTable, MetricsSource)
}

// ChartBuilder renders allocation and metrics into the chart payloads; the
// concrete implementation lives in the charts module.
type ChartBuilder interface {
	BuildCharts(alloc Allocation, universe domain.Universe, metrics MetricsTable, investmentAmount float64) (ChartSet, error)
}

// ChartSet bundles the three chart payloads of a plan. The concrete
// payload types are owned by the charts module; the service treats them as
// opaque JSON-marshalable values.
type ChartSet struct {
	Pie    interface{} `json:"pie"`
	Bar    interface{} `json:"bar"`
	Ladder interface{} `json:"ladder"`
}

// AllocationRow is one line of the detailed allocation table.
type AllocationRow struct {
	Fund          domain.FundSymbol `json:"fund"`
	Name          string            `json:"name"`
	AllocationPct float64           `json:"allocation_pct"`
	Amount        float64           `json:"amount"`
}

// FundRow is one line of the fund information table.
type FundRow struct {
	Symbol        domain.FundSymbol `json:"symbol"`
	Name          string            `json:"name"`
	MaturityRange string            `json:"maturity_range"`
	CreditQuality string            `json:"credit_quality"`
	Price         *float64          `json:"price"`         // null when not available
	ExpenseRatio  *float64          `json:"expense_ratio"` // null when not available
	YieldPct      float64           `json:"yield_pct"`
}

// Plan is the full response of one planning run.
type Plan struct {
	PlanID                string          `json:"plan_id"`
	GeneratedAt           time.Time       `json:"generated_at"`
	MetricsSource         MetricsSource   `json:"metrics_source"`
	Funds                 []FundRow       `json:"funds"`
	Allocation            Allocation      `json:"allocation"`
	AllocationTable       []AllocationRow `json:"allocation_table"`
	WeightedYieldPct      float64         `json:"weighted_yield_pct"`
	EstimatedAnnualIncome float64         `json:"estimated_annual_income"`
	AgeRecommendation     *AgeAllocation  `json:"age_recommendation,omitempty"`
	Charts                ChartSet        `json:"charts"`
}

// Service orchestrates one planning run: fetch metrics, compute the
// allocation, derive the presentation data and chart payloads.
type Service struct {
	universe domain.Universe
	metrics  MetricsProvider
	charts   ChartBuilder
	log      zerolog.Logger
}

// NewService creates a new ladder planning service.
func NewService(universe domain.Universe, metrics MetricsProvider, charts ChartBuilder, log zerolog.Logger) *Service {
	return &Service{
		universe: universe,
		metrics:  metrics,
		charts:   charts,
		log:      log.With().Str("service", "ladder").Logger(),
	}
}

// Universe returns the fund universe the service plans over.
func (s *Service) Universe() domain.Universe {
	return s.universe
}

// BuildPlan computes a full plan from investor parameters.
func (s *Service) BuildPlan(params InvestorParameters) (*Plan, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	metrics, source := s.metrics.FundMetrics(s.universe)

	alloc, diag := ComputeAllocation(params, s.universe)
	if diag.Degenerate() {
		s.log.Warn().
			Interface("zero_term_buckets", diag.ZeroTermBuckets).
			Float64("lost_international_mass", diag.LostInternationalMass).
			Msg("Degenerate redistribution during allocation")
	}

	plan, err := s.assemblePlan(alloc, metrics, source, params.InvestmentAmount)
	if err != nil {
		return nil, err
	}

	if params.Age != nil {
		rec := AgeBasedAllocation(*params.Age)
		plan.AgeRecommendation = &rec
	}
	return plan, nil
}

// BuildManualPlan computes a plan from user-entered percentages, bypassing
// the adjustment pipeline. A total away from 100 is a validation error and
// nothing is computed.
func (s *Service) BuildManualPlan(investmentAmount float64, percents map[domain.FundSymbol]float64) (*Plan, error) {
	if investmentAmount <= 0 {
		return nil, fmt.Errorf("investment amount must be positive, got %.2f", investmentAmount)
	}

	alloc, err := ManualAllocation(percents, s.universe)
	if err != nil {
		return nil, err
	}

	metrics, source := s.metrics.FundMetrics(s.universe)
	return s.assemblePlan(alloc, metrics, source, investmentAmount)
}

// FundTable returns the current fund information table.
func (s *Service) FundTable() ([]FundRow, MetricsSource) {
	metrics, source := s.metrics.FundMetrics(s.universe)
	return s.fundRows(metrics), source
}

func (s *Service) assemblePlan(alloc Allocation, metrics MetricsTable, source MetricsSource, investmentAmount float64) (*Plan, error) {
	chartSet, err := s.charts.BuildCharts(alloc, s.universe, metrics, investmentAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart payloads: %w", err)
	}

	table := make([]AllocationRow, 0, len(alloc))
	for _, f := range s.universe.Funds {
		frac, ok := alloc[f]
		if !ok {
			continue
		}
		info, _ := s.universe.Info(f)
		table = append(table, AllocationRow{
			Fund:          f,
			Name:          info.Name,
			AllocationPct: frac * 100,
			Amount:        frac * investmentAmount,
		})
	}

	weightedYield := WeightedYield(alloc, metrics)

	return &Plan{
		PlanID:                uuid.New().String(),
		GeneratedAt:           time.Now().UTC(),
		MetricsSource:         source,
		Funds:                 s.fundRows(metrics),
		Allocation:            alloc,
		AllocationTable:       table,
		WeightedYieldPct:      weightedYield,
		EstimatedAnnualIncome: weightedYield / 100 * investmentAmount,
		Charts:                chartSet,
	}, nil
}

func (s *Service) fundRows(metrics MetricsTable) []FundRow {
	rows := make([]FundRow, 0, len(s.universe.Funds))
	for _, f := range s.universe.Funds {
		info, _ := s.universe.Info(f)
		m := metrics[f]
		rows = append(rows, FundRow{
			Symbol:        f,
			Name:          info.Name,
			MaturityRange: info.MaturityRange,
			CreditQuality: info.CreditQuality,
			Price:         m.Price,
			ExpenseRatio:  m.ExpenseRatio,
			YieldPct:      m.YieldPct,
		})
	}
	return rows
}

// Package marketdata supplies current fund metrics to the planner. It
// resolves each fund from the live quote API (through its cache), filling
// gaps from static fallback constants. The planner never sees a fetch
// failure: the worst case is a fully static table, reported through the
// metrics source indicator.
package marketdata

import (
	"github.com/rs/zerolog"

	"github.com/jraitt/FinancialLadder/internal/clients/yahoo"
	"github.com/jraitt/FinancialLadder/internal/domain"
	"github.com/jraitt/FinancialLadder/internal/modules/ladder"
)

// Fallback constants per fund, used whenever live and cached data are both
// unavailable, or when a live payload lacks a field.
var (
	fallbackPrices = map[domain.FundSymbol]float64{
		domain.BND:   72.50,
		domain.BNDX:  48.75,
		domain.VFIDX: 9.40,
		domain.VFSUX: 9.60,
		domain.VGUS:  60.25,
		domain.VBIL:  50.80,
		domain.VCORX: 9.01,
	}
	fallbackYields = map[domain.FundSymbol]float64{
		domain.BND:   4.2,
		domain.BNDX:  3.8,
		domain.VFIDX: 4.8,
		domain.VFSUX: 4.5,
		domain.VGUS:  4.3,
		domain.VBIL:  4.0,
		domain.VCORX: 4.62,
	}
	fallbackExpenseRatios = map[domain.FundSymbol]float64{
		domain.BND:   0.03,
		domain.BNDX:  0.07,
		domain.VFIDX: 0.10,
		domain.VFSUX: 0.10,
		domain.VGUS:  0.07,
		domain.VBIL:  0.07,
		domain.VCORX: 0.20,
	}
)

// QuoteGetter is the slice of the Yahoo client the service depends on.
type QuoteGetter interface {
	GetQuote(symbol string) (*yahoo.Quote, yahoo.Origin, error)
}

// Service builds metrics tables for the planner.
type Service struct {
	quotes QuoteGetter
	log    zerolog.Logger
}

// NewService creates a new market data service.
func NewService(quotes QuoteGetter, log zerolog.Logger) *Service {
	return &Service{
		quotes: quotes,
		log:    log.With().Str("service", "marketdata").Logger(),
	}
}

// FundMetrics returns a metrics table covering every fund of the universe.
// Each fund resolves live quote -> cached quote -> static constants, with
// per-field constant fill for fields the live payload lacks. The source
// indicator summarizes the table: fallback when any fund needed static
// constants for its price, cache when any quote was served from cache,
// live otherwise.
func (s *Service) FundMetrics(universe domain.Universe) (ladder.MetricsTable, ladder.MetricsSource) {
	table := make(ladder.MetricsTable, len(universe.Funds))
	source := ladder.SourceLive

	for _, f := range universe.Funds {
		quote, origin, err := s.quotes.GetQuote(string(f))
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", string(f)).Msg("Quote unavailable, using fallback constants")
			table[f] = fallbackMetrics(f)
			source = ladder.SourceFallback
			continue
		}

		if origin != yahoo.OriginLive && source == ladder.SourceLive {
			source = ladder.SourceCache
		}
		table[f] = mergeQuote(f, quote)
	}

	return table, source
}

// mergeQuote fills the gaps of a live or cached quote from the constants.
func mergeQuote(f domain.FundSymbol, quote *yahoo.Quote) ladder.FundMetrics {
	m := ladder.FundMetrics{
		Price:        quote.Price,
		ExpenseRatio: quote.ExpenseRatio,
	}
	if quote.YieldPct != nil {
		m.YieldPct = *quote.YieldPct
	} else {
		m.YieldPct = fallbackYields[f]
	}
	if m.Price == nil {
		if p, ok := fallbackPrices[f]; ok {
			price := p
			m.Price = &price
		}
	}
	if m.ExpenseRatio == nil {
		if er, ok := fallbackExpenseRatios[f]; ok {
			ratio := er
			m.ExpenseRatio = &ratio
		}
	}
	return m
}

// fallbackMetrics builds a fully static metrics row.
func fallbackMetrics(f domain.FundSymbol) ladder.FundMetrics {
	price := fallbackPrices[f]
	ratio := fallbackExpenseRatios[f]
	return ladder.FundMetrics{
		Price:        &price,
		ExpenseRatio: &ratio,
		YieldPct:     fallbackYields[f],
	}
}

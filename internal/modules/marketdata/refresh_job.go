package marketdata

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/jraitt/FinancialLadder/internal/clientdata"
	"github.com/jraitt/FinancialLadder/internal/domain"
)

// purgeGrace keeps recently-expired quotes around as stale fallback data.
const purgeGrace = 48 * time.Hour

// RefreshJob keeps the quote cache warm so page renders rarely block on the
// upstream API. Implements the scheduler Job interface.
type RefreshJob struct {
	quotes   QuoteGetter
	cache    *clientdata.Repository
	universe domain.Universe
	log      zerolog.Logger
}

// NewRefreshJob creates a new quote refresh job.
func NewRefreshJob(quotes QuoteGetter, cache *clientdata.Repository, universe domain.Universe, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		quotes:   quotes,
		cache:    cache,
		universe: universe,
		log:      log.With().Str("job", "quote_refresh").Logger(),
	}
}

// Name returns the job name.
func (j *RefreshJob) Name() string {
	return "quote_refresh"
}

// Run fetches every fund's quote (populating the cache as a side effect)
// and purges long-expired rows. Individual fetch failures are logged and
// skipped; the static fallback constants cover them at plan time.
func (j *RefreshJob) Run() error {
	for _, f := range j.universe.Funds {
		if _, _, err := j.quotes.GetQuote(string(f)); err != nil {
			j.log.Warn().Err(err).Str("symbol", string(f)).Msg("Quote refresh failed")
		}
	}

	if j.cache != nil {
		removed, err := j.cache.PurgeOlderThan(purgeGrace)
		if err != nil {
			return err
		}
		if removed > 0 {
			j.log.Debug().Int64("removed", removed).Msg("Purged expired quotes")
		}
	}
	return nil
}

package ladder

import (
	"fmt"
	"math"

	"github.com/jraitt/FinancialLadder/internal/domain"
)

// manualTotalTolerance is how far a manual percentage total may drift from
// 100 before it is rejected.
const manualTotalTolerance = 0.01

// AgeBasedAllocation converts an age into target percentages across the
// three maturity buckets. The aggressive portion (intermediate + long) is
// 100-age with a floor of 20, so even very old investors retain some
// intermediate/long exposure. Short absorbs the rounding remainder, which
// guarantees the three buckets sum to exactly 100.
func AgeBasedAllocation(age int) AgeAllocation {
	aggressive := 100 - age
	if aggressive < 20 {
		aggressive = 20
	}

	long := int(math.Floor(float64(aggressive) * 0.4))
	intermediate := int(math.Floor(float64(aggressive) * 0.6))
	short := 100 - long - intermediate

	return AgeAllocation{
		Short:        short,
		Intermediate: intermediate,
		Long:         long,
	}
}

// ComputeAllocation runs the full adjustment pipeline over the universe's
// base allocation and returns a normalized per-fund allocation summing to
// 1.0. It is deterministic and performs no I/O; the metrics table is part
// of the contract for downstream derivations but the allocation itself
// depends only on the parameters and the universe.
//
// Stages, in order: base, optional age adjustment, horizon scaling, risk
// scaling, optional international exclusion, normalization. Intermediate
// stages may transiently violate the sum-to-one invariant; only the final
// normalization guarantees it.
func ComputeAllocation(params InvestorParameters, universe domain.Universe) (Allocation, Diagnostics) {
	var diag Diagnostics

	alloc := Allocation(universe.BaseAllocation())

	if params.Age != nil {
		alloc, diag = applyAgeAdjustment(alloc, AgeBasedAllocation(*params.Age), universe, diag)
	}

	horizonFactor := clamp(float64(params.InvestmentHorizon)/10.0, 0.5, 1.5)
	alloc = scaleLongShort(alloc, universe, horizonFactor)
	alloc = scaleLongShort(alloc, universe, params.RiskTolerance.Multiplier())

	if !params.IncludeInternational {
		alloc, diag = excludeInternational(alloc, universe.International, diag)
	}

	return normalize(alloc), diag
}

// ManualAllocation builds an allocation directly from user-entered
// percentages, bypassing the adjustment pipeline. The percentages must be
// non-negative and total 100; anything else is a validation error and no
// allocation is produced.
func ManualAllocation(percents map[domain.FundSymbol]float64, universe domain.Universe) (Allocation, error) {
	total := 0.0
	for f, pct := range percents {
		if !universe.Contains(f) {
			return nil, fmt.Errorf("fund %s is not part of the %s universe", f, universe.Name)
		}
		if pct < 0 {
			return nil, fmt.Errorf("allocation for %s is negative (%.2f%%)", f, pct)
		}
		total += pct
	}
	if math.Abs(total-100) > manualTotalTolerance {
		return nil, fmt.Errorf("allocations must total 100%%, got %.2f%%", total)
	}

	alloc := make(Allocation, len(percents))
	for f, pct := range percents {
		alloc[f] = pct / 100.0
	}
	return alloc, nil
}

// applyAgeAdjustment redistributes each term bucket's age target across the
// bucket's funds in the same relative proportions as the current fractions.
// A bucket whose funds total zero gets zero for all of them; that case is
// recorded in the diagnostics rather than silently repaired.
func applyAgeAdjustment(alloc Allocation, ageAlloc AgeAllocation, universe domain.Universe, diag Diagnostics) (Allocation, Diagnostics) {
	termTargets := map[domain.TermCategory]float64{
		domain.TermShort:        float64(ageAlloc.Short) / 100.0,
		domain.TermIntermediate: float64(ageAlloc.Intermediate) / 100.0,
		domain.TermLong:         float64(ageAlloc.Long) / 100.0,
	}

	termTotals := make(map[domain.TermCategory]float64)
	for f, frac := range alloc {
		termTotals[universe.Term(f)] += frac
	}

	adjusted := make(Allocation, len(alloc))
	for f, frac := range alloc {
		term := universe.Term(f)
		if termTotals[term] == 0 {
			adjusted[f] = 0
			continue
		}
		adjusted[f] = termTargets[term] * (frac / termTotals[term])
	}

	for _, term := range []domain.TermCategory{domain.TermShort, domain.TermIntermediate, domain.TermLong} {
		if termTotals[term] == 0 && termTargets[term] > 0 {
			diag.ZeroTermBuckets = append(diag.ZeroTermBuckets, term)
		}
	}

	return adjusted, diag
}

// scaleLongShort applies the asymmetric long/short scaling shared by the
// horizon and risk stages: long funds are multiplied by the factor, short
// funds by (2 - factor), intermediate funds are untouched. No
// renormalization happens here.
func scaleLongShort(alloc Allocation, universe domain.Universe, factor float64) Allocation {
	scaled := make(Allocation, len(alloc))
	for f, frac := range alloc {
		switch universe.Term(f) {
		case domain.TermLong:
			scaled[f] = frac * factor
		case domain.TermShort:
			scaled[f] = frac * (2 - factor)
		default:
			scaled[f] = frac
		}
	}
	return scaled
}

// excludeInternational removes the international fund and redistributes its
// mass across the remaining funds in proportion to their current fractions.
// When every remaining fund is at zero there is nothing to scale, so the
// mass is dropped and recorded in the diagnostics; the final normalization
// then operates on whatever is left.
func excludeInternational(alloc Allocation, international domain.FundSymbol, diag Diagnostics) (Allocation, Diagnostics) {
	removed, ok := alloc[international]
	if !ok {
		return alloc, diag
	}

	remaining := make(Allocation, len(alloc)-1)
	remainingSum := 0.0
	for f, frac := range alloc {
		if f == international {
			continue
		}
		remaining[f] = frac
		remainingSum += frac
	}

	if remainingSum == 0 {
		diag.LostInternationalMass = removed
		return remaining, diag
	}

	for f, frac := range remaining {
		remaining[f] = frac + removed*frac/remainingSum
	}
	return remaining, diag
}

// normalize divides every fraction by the current total so the final map
// sums to exactly 1.0. This is the only stage that guarantees the
// sum-to-one invariant.
func normalize(alloc Allocation) Allocation {
	total := alloc.Sum()
	if total == 0 {
		return alloc
	}
	normalized := make(Allocation, len(alloc))
	for f, frac := range alloc {
		normalized[f] = frac / total
	}
	return normalized
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

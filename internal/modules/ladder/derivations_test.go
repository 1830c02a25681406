package ladder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jraitt/FinancialLadder/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func testMetrics() MetricsTable {
	return MetricsTable{
		domain.BND:   {Price: floatPtr(72.50), ExpenseRatio: floatPtr(0.03), YieldPct: 4.2},
		domain.BNDX:  {Price: floatPtr(48.75), ExpenseRatio: floatPtr(0.07), YieldPct: 3.8},
		domain.VFIDX: {Price: floatPtr(9.40), ExpenseRatio: floatPtr(0.10), YieldPct: 4.8},
		domain.VFSUX: {Price: floatPtr(9.60), ExpenseRatio: floatPtr(0.10), YieldPct: 4.5},
		domain.VGUS:  {Price: floatPtr(60.25), ExpenseRatio: floatPtr(0.07), YieldPct: 4.3},
		domain.VBIL:  {Price: floatPtr(50.80), ExpenseRatio: floatPtr(0.07), YieldPct: 4.0},
	}
}

func TestMaturityMidpoint(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{in: "7-8", want: 7.5},
		{in: "8-9", want: 8.5},
		{in: "0-0.25", want: 0.125},
		{in: "0-1", want: 0.5},
		{in: "5", want: 5.0},
		{in: "8-10", want: 9.0},
	}
	for _, tt := range tests {
		got, err := MaturityMidpoint(tt.in)
		require.NoError(t, err, "range %q", tt.in)
		assert.InDelta(t, tt.want, got, 1e-12, "range %q", tt.in)
	}
}

func TestMaturityMidpointInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1-2-3", "x-7"} {
		_, err := MaturityMidpoint(in)
		assert.Error(t, err, "range %q", in)
	}
}

func TestSortByMaturity(t *testing.T) {
	u := domain.CoreUniverse()
	alloc := Allocation(u.BaseAllocation())

	rows, err := SortByMaturity(alloc, u)
	require.NoError(t, err)
	require.Len(t, rows, len(u.Funds))

	// VBIL (0.125) first, BNDX (8.5) last.
	assert.Equal(t, domain.VBIL, rows[0].Fund)
	assert.Equal(t, domain.BNDX, rows[len(rows)-1].Fund)
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i-1].Maturity, rows[i].Maturity)
	}
	assert.InDelta(t, 10.0, rows[0].AllocationPct, 1e-9)
	assert.Equal(t, "0-0.25", rows[0].MaturityRange)
}

func TestWeightedYield(t *testing.T) {
	u := domain.CoreUniverse()
	metrics := testMetrics()

	alloc := Allocation(u.BaseAllocation())
	got := WeightedYield(alloc, metrics)

	want := 0.25*4.2 + 0.15*3.8 + 0.20*4.8 + 0.15*4.5 + 0.15*4.3 + 0.10*4.0
	assert.InDelta(t, want, got, 1e-9)
}

func TestWeightedYieldSkipsZeroAndMissing(t *testing.T) {
	metrics := testMetrics()
	delete(metrics, domain.VGUS)

	alloc := Allocation{
		domain.BND:  0.5,
		domain.VGUS: 0.3, // no metrics row, excluded
		domain.VBIL: 0.0, // zero allocation, excluded
		domain.BNDX: 0.2,
	}

	got := WeightedYield(alloc, metrics)
	assert.InDelta(t, 0.5*4.2+0.2*3.8, got, 1e-9)
}

func TestWeightedYieldEmpty(t *testing.T) {
	assert.Zero(t, WeightedYield(Allocation{}, testMetrics()))
}

func TestLadderRows(t *testing.T) {
	u := domain.CoreUniverse()
	alloc := Allocation(u.BaseAllocation())

	rows, err := LadderRows(alloc, u, testMetrics(), 100000)
	require.NoError(t, err)
	require.Len(t, rows, len(u.Funds))

	// Sorted ascending by maturity midpoint.
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i-1].Maturity, rows[i].Maturity)
	}

	// First rung is VBIL: 10% of 100k at 4.0% yield.
	first := rows[0]
	assert.Equal(t, domain.VBIL, first.Fund)
	assert.InDelta(t, 10000, first.Amount, 1e-6)
	assert.InDelta(t, 4.0, first.YieldPct, 1e-12)
	assert.InDelta(t, 400, first.AnnualIncome, 1e-6)

	// Amounts cover the full investment.
	total := 0.0
	for _, r := range rows {
		total += r.Amount
	}
	assert.InDelta(t, 100000, total, 1e-6)
}

func TestLadderRowsExcludesZeroAllocations(t *testing.T) {
	u := domain.CoreUniverse()
	alloc := Allocation{domain.BND: 1.0, domain.VBIL: 0.0}

	rows, err := LadderRows(alloc, u, testMetrics(), 5000)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.BND, rows[0].Fund)
	assert.InDelta(t, 5000, rows[0].Amount, 1e-9)
}

// Package domain defines the bond fund universe: typed fund symbols, term
// categories, and the static descriptive tables the planner builds on.
// Everything here is immutable configuration - universes are constructed
// once and passed into the engine, never mutated.
package domain

import "fmt"

// FundSymbol identifies a bond fund in the universe.
type FundSymbol string

const (
	BND   FundSymbol = "BND"   // Vanguard Total Bond Market ETF
	BNDX  FundSymbol = "BNDX"  // Vanguard Total International Bond ETF
	VCORX FundSymbol = "VCORX" // Vanguard Core Bond Fund Investor Shares
	VFIDX FundSymbol = "VFIDX" // Vanguard Intermediate-Term Investment-Grade Fund
	VFSUX FundSymbol = "VFSUX" // Vanguard Short-Term Investment-Grade Fund
	VGUS  FundSymbol = "VGUS"  // Vanguard Ultra-Short Treasury ETF (1-12 months)
	VBIL  FundSymbol = "VBIL"  // Vanguard Ultra-Short Treasury Bills ETF (0-3 months)
)

// TermCategory buckets funds by maturity for the age/horizon/risk scaling.
type TermCategory string

const (
	TermShort        TermCategory = "short"
	TermIntermediate TermCategory = "intermediate"
	TermLong         TermCategory = "long"
)

// FundInfo holds the static descriptive attributes of a fund.
// MaturityRange is "low-high" in years, or a single bare number.
type FundInfo struct {
	Name          string
	MaturityRange string
	CreditQuality string
	Term          TermCategory
}

// fundInfo is the full static table covering every known symbol.
var fundInfo = map[FundSymbol]FundInfo{
	BND:   {Name: "Vanguard Total Bond Market ETF", MaturityRange: "7-8", CreditQuality: "Mixed Investment Grade", Term: TermIntermediate},
	BNDX:  {Name: "Vanguard Total International Bond ETF", MaturityRange: "8-9", CreditQuality: "Mixed Investment Grade", Term: TermLong},
	VCORX: {Name: "Vanguard Core Bond Fund Investor Shares", MaturityRange: "8-10", CreditQuality: "Mixed Investment Grade", Term: TermLong},
	VFIDX: {Name: "Vanguard Intermediate-Term Investment-Grade Fund", MaturityRange: "5-6", CreditQuality: "Investment Grade", Term: TermIntermediate},
	VFSUX: {Name: "Vanguard Short-Term Investment-Grade Fund", MaturityRange: "2-3", CreditQuality: "Investment Grade", Term: TermShort},
	VGUS:  {Name: "Vanguard Ultra-Short Treasury ETF", MaturityRange: "0-1", CreditQuality: "U.S. Treasury", Term: TermShort},
	VBIL:  {Name: "Vanguard Ultra-Short Treasury Bills ETF", MaturityRange: "0-0.25", CreditQuality: "U.S. Treasury Bills", Term: TermShort},
}

// Universe is the immutable configuration the allocation engine operates on:
// an ordered fund list, their static info, and the base allocation fractions.
type Universe struct {
	Name          string
	Funds         []FundSymbol
	International FundSymbol // zero value means no international fund
	base          map[FundSymbol]float64
	info          map[FundSymbol]FundInfo
}

// CoreUniverse returns the 6-fund universe.
// Base fractions sum to 1.0.
func CoreUniverse() Universe {
	return newUniverse("core",
		[]FundSymbol{BND, BNDX, VFIDX, VFSUX, VGUS, VBIL},
		map[FundSymbol]float64{
			BND:   0.25,
			BNDX:  0.15,
			VFIDX: 0.20,
			VFSUX: 0.15,
			VGUS:  0.15,
			VBIL:  0.10,
		})
}

// ExtendedUniverse returns the 7-fund universe, adding VCORX.
// Base fractions sum to 1.0.
func ExtendedUniverse() Universe {
	return newUniverse("extended",
		[]FundSymbol{BND, BNDX, VCORX, VFIDX, VFSUX, VGUS, VBIL},
		map[FundSymbol]float64{
			BND:   0.20,
			BNDX:  0.15,
			VCORX: 0.10,
			VFIDX: 0.15,
			VFSUX: 0.15,
			VGUS:  0.15,
			VBIL:  0.10,
		})
}

// UniverseByName resolves a configured variant name to a universe.
func UniverseByName(name string) (Universe, error) {
	switch name {
	case "core", "":
		return CoreUniverse(), nil
	case "extended":
		return ExtendedUniverse(), nil
	default:
		return Universe{}, fmt.Errorf("unknown fund universe variant: %q", name)
	}
}

// NewUniverse builds a universe over a subset of the known funds with a
// custom base allocation. Every listed fund must exist in the static info
// table and have a base fraction.
func NewUniverse(name string, funds []FundSymbol, base map[FundSymbol]float64, international FundSymbol) (Universe, error) {
	info := make(map[FundSymbol]FundInfo, len(funds))
	for _, f := range funds {
		fi, ok := fundInfo[f]
		if !ok {
			return Universe{}, fmt.Errorf("unknown fund symbol: %s", f)
		}
		if _, ok := base[f]; !ok {
			return Universe{}, fmt.Errorf("fund %s has no base allocation", f)
		}
		info[f] = fi
	}
	return Universe{
		Name:          name,
		Funds:         funds,
		International: international,
		base:          base,
		info:          info,
	}, nil
}

func newUniverse(name string, funds []FundSymbol, base map[FundSymbol]float64) Universe {
	u, err := NewUniverse(name, funds, base, BNDX)
	if err != nil {
		panic(err)
	}
	return u
}

// Info returns the static info for a fund in this universe.
func (u Universe) Info(f FundSymbol) (FundInfo, bool) {
	fi, ok := u.info[f]
	return fi, ok
}

// Term returns the term category of a fund in this universe.
func (u Universe) Term(f FundSymbol) TermCategory {
	return u.info[f].Term
}

// BaseAllocation returns a copy of the base fractions so callers can
// transform freely without touching the universe.
func (u Universe) BaseAllocation() map[FundSymbol]float64 {
	out := make(map[FundSymbol]float64, len(u.base))
	for f, v := range u.base {
		out[f] = v
	}
	return out
}

// Contains reports whether the fund is part of this universe.
func (u Universe) Contains(f FundSymbol) bool {
	_, ok := u.info[f]
	return ok
}

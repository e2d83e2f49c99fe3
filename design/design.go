// Package design generates the one-dimensional point sets that the
// sparse-grid combination is assembled from.
//
// Both built-in families place dyadic points: exact rational multiples of
// powers of two mapped affinely onto the requested interval. Dyadic placement
// makes refinement levels nest exactly, with the degree-k point set a strict
// superset of the degree-(k-1) set and shared points bit-identical, which is
// what allows the sparse-grid combination to deduplicate by exact
// floating-point equality.
package design

import (
	"fmt"
	"sort"
)

// Family selects a one-dimensional design family.
type Family int

const (
	// FamilyHyperbolicCross places nested dyadic points in hierarchical
	// order: level by level, coarse to fine.
	FamilyHyperbolicCross Family = iota

	// FamilyDyadic places the same nested dyadic points in ascending
	// coordinate order.
	FamilyDyadic
)

// String returns a string representation of the Family.
func (f Family) String() string {
	switch f {
	case FamilyHyperbolicCross:
		return "HyperbolicCross"
	case FamilyDyadic:
		return "Dyadic"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// FamilyByName returns a built-in family by its stable name.
//
// This is used for self-describing snapshot formats that store the family
// name in their header.
func FamilyByName(name string) (Family, bool) {
	switch name {
	case "HyperbolicCross":
		return FamilyHyperbolicCross, true
	case "Dyadic":
		return FamilyDyadic, true
	default:
		return 0, false
	}
}

// ErrInvalidParameters is a named error type for a bad degree or bounds.
type ErrInvalidParameters struct {
	Degree int     // Requested degree
	Lower  float64 // Lower input bound
	Upper  float64 // Upper input bound
}

// Error returns the error message for invalid design parameters.
func (e *ErrInvalidParameters) Error() string {
	return fmt.Sprintf("invalid design parameters: degree=%d, bounds=[%g, %g]", e.Degree, e.Lower, e.Upper)
}

// ErrUnsupportedFamily is a named error type for an unknown family selector.
type ErrUnsupportedFamily struct {
	Family Family
}

// Error returns the error message for an unsupported family.
func (e *ErrUnsupportedFamily) Error() string {
	return fmt.Sprintf("unsupported design family: %v", e.Family)
}

// Options configure a Designer.
type Options struct {
	// DyadicSort keeps points in the family's canonical hierarchical order
	// and reports the ascending permutation in SortIndex. When false, points
	// are returned pre-sorted ascending and SortIndex is the identity.
	DyadicSort bool

	// Neighbors computes per-point Lefts/Rights metadata against the points
	// of strictly coarser refinement levels.
	Neighbors bool
}

// DefaultOptions are the options used when no overrides are supplied.
var DefaultOptions = Options{
	DyadicSort: true,
	Neighbors:  false,
}

// Designer produces one-dimensional designs of a requested degree.
//
// Implementations are stateless and safe for concurrent use.
type Designer interface {
	// Design generates the point set of the given degree on [lower, upper].
	Design(degree int, lower, upper float64) (*Design, error)

	// Family returns the family this designer implements.
	Family() Family
}

// New returns the Designer for the given family.
func New(f Family, optFns ...func(*Options)) (Designer, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	switch f {
	case FamilyHyperbolicCross:
		return &hyperbolicCross{opts: opts}, nil
	case FamilyDyadic:
		return &dyadic{opts: opts}, nil
	default:
		return nil, &ErrUnsupportedFamily{Family: f}
	}
}

// Design is one generated one-dimensional point set.
//
// All slices are parallel: entry i describes the i-th point in the design's
// canonical order. A Design is immutable after generation and may be shared
// across grid partitions.
type Design struct {
	// Family is the generating family.
	Family Family

	// Degree is the requested degree; the design holds 2^Degree - 1 points.
	Degree int

	// Lower and Upper are the input bounds.
	Lower, Upper float64

	// Points holds the distinct points in (Lower, Upper).
	Points []float64

	// Levels[i] is the dyadic refinement level of Points[i], starting at 1.
	Levels []int

	// Ranks[i] is the 1-based position of Points[i] in the hierarchical
	// (level-major) numbering. Because the families nest, a point keeps the
	// same rank in every design that contains it, regardless of degree.
	Ranks []int

	// Lefts and Rights hold, per point, the nearest neighbor coordinate
	// among points of strictly coarser levels; the interval bounds act as
	// level-0 sentinels. Nil unless Options.Neighbors was set.
	Lefts, Rights []float64

	// SortIndex is the permutation that orders Points ascending:
	// Points[SortIndex[0]] <= Points[SortIndex[1]] <= ...
	SortIndex []int
}

// Len returns the number of points in the design.
func (d *Design) Len() int { return len(d.Points) }

func validate(degree int, lower, upper float64) error {
	if degree < 0 || lower >= upper {
		return &ErrInvalidParameters{Degree: degree, Lower: lower, Upper: upper}
	}
	return nil
}

// dyadicPoint returns (2j-1)/2^level mapped onto [lower, upper].
//
// Both operands of the division are exact integers and the divisor is a power
// of two, so the unit-interval coordinate is exact; the affine map is then
// evaluated identically for every degree, which keeps shared points
// bit-identical across refinement levels.
func dyadicPoint(level, j int, lower, upper float64) float64 {
	u := float64(2*j-1) / float64(uint64(1)<<uint(level))
	return lower + (upper-lower)*u
}

// hierarchicalRank returns the level-major position of the j-th point of the
// given level, starting at 1: level 1 holds rank 1, level l holds ranks
// 2^(l-1) .. 2^l - 1.
func hierarchicalRank(level, j int) int {
	return (1 << uint(level-1)) + j - 1
}

// neighbors computes, for every point, the nearest left/right coordinate
// among points of strictly coarser levels, falling back to the bounds.
func neighbors(points []float64, levels []int, lower, upper float64) (lefts, rights []float64) {
	lefts = make([]float64, len(points))
	rights = make([]float64, len(points))
	for i, p := range points {
		left, right := lower, upper
		for j, q := range points {
			if levels[j] >= levels[i] {
				continue
			}
			if q < p && q > left {
				left = q
			}
			if q > p && q < right {
				right = q
			}
		}
		lefts[i] = left
		rights[i] = right
	}
	return lefts, rights
}

// sortAscending reorders the design in place into ascending point order and
// sets SortIndex to the identity.
func (d *Design) sortAscending() {
	perm := argsort(d.Points)
	d.Points = permuteFloats(d.Points, perm)
	d.Levels = permuteInts(d.Levels, perm)
	d.Ranks = permuteInts(d.Ranks, perm)
	if d.Lefts != nil {
		d.Lefts = permuteFloats(d.Lefts, perm)
		d.Rights = permuteFloats(d.Rights, perm)
	}
	for i := range d.SortIndex {
		d.SortIndex[i] = i
	}
}

// argsort returns the permutation that orders xs ascending.
func argsort(xs []float64) []int {
	perm := make([]int, len(xs))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool { return xs[perm[a]] < xs[perm[b]] })
	return perm
}

func permuteFloats(xs []float64, perm []int) []float64 {
	out := make([]float64, len(xs))
	for i, p := range perm {
		out[i] = xs[p]
	}
	return out
}

func permuteInts(xs []int, perm []int) []int {
	out := make([]int, len(xs))
	for i, p := range perm {
		out[i] = xs[p]
	}
	return out
}

// Package multiindex enumerates the integer compositions that drive the
// Smolyak sparse-grid combination.
//
// The core primitive is NSumK, the stars-and-bars enumeration of all
// fixed-length tuples of non-negative integers with a given sum. Admissible
// layers positive compositions on top of it: for a grid of dimension d and
// resolution level eta it yields, total by total, every multi-index inside
// the Smolyak cone d <= sum(index) <= d + eta - 1.
//
// Enumeration order is lexicographic and therefore reproducible: downstream
// partition keys (total, position) are stable across runs for identical
// inputs.
package multiindex

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat/combin"
)

// ErrInvalidTupleArgs is returned when NSumK is called with a tuple length
// below one or a negative total.
var ErrInvalidTupleArgs = errors.New("tuple length must be >= 1 and total must be >= 0")

// ErrInvalidGridParameters is a named error type for out-of-range grid
// parameters.
type ErrInvalidGridParameters struct {
	Dim   int // Requested dimension d
	Level int // Requested resolution level eta
}

// Error returns the error message for invalid grid parameters.
func (e *ErrInvalidGridParameters) Error() string {
	return fmt.Sprintf("invalid grid parameters: d=%d, eta=%d (both must be >= 1)", e.Dim, e.Level)
}

// Count returns the number of tuples NSumK(k, n) produces, C(n+k-1, k-1).
func Count(k, n int) int {
	return combin.Binomial(n+k-1, k-1)
}

// NSumK returns every length-k tuple of non-negative integers summing to n,
// in ascending lexicographic order.
//
// The enumeration is combinatorial (stars and bars), never a search over an
// exponential value range, so it stays tractable for larger k.
func NSumK(k, n int) ([][]int, error) {
	if k < 1 || n < 0 {
		return nil, fmt.Errorf("n_sum_k(%d, %d): %w", k, n, ErrInvalidTupleArgs)
	}

	out := make([][]int, 0, Count(k, n))
	tuple := make([]int, k)

	var rec func(pos, remaining int)
	rec = func(pos, remaining int) {
		if pos == k-1 {
			tuple[pos] = remaining
			out = append(out, slices.Clone(tuple))
			return
		}
		for v := 0; v <= remaining; v++ {
			tuple[pos] = v
			rec(pos+1, remaining-v)
		}
	}
	rec(0, n)

	return out, nil
}

// Set groups the admissible multi-indices that share one total.
type Set struct {
	// Total is the common sum of every tuple in Indices (t_sum).
	Total int

	// Indices holds the positive compositions of Total into d parts, in
	// ascending lexicographic order. The position of a tuple within this
	// slice is its partition id.
	Indices [][]int
}

// Admissible enumerates, for each total t in [d, d+eta-1], the multi-indices
// admissible at resolution level eta: the compositions of t into d parts,
// each part >= 1.
//
// The sets are ordered by ascending total; tuples within a set are ordered
// lexicographically.
func Admissible(d, eta int) ([]Set, error) {
	if d < 1 || eta < 1 {
		return nil, &ErrInvalidGridParameters{Dim: d, Level: eta}
	}

	sets := make([]Set, 0, eta)
	for t := d; t <= d+eta-1; t++ {
		// Positive compositions of t are the non-negative compositions of
		// t-d shifted up by one per entry.
		base, err := NSumK(d, t-d)
		if err != nil {
			return nil, err
		}

		indices := make([][]int, len(base))
		for i, tup := range base {
			row := make([]int, d)
			for j, v := range tup {
				row[j] = v + 1
			}
			indices[i] = row
		}

		sets = append(sets, Set{Total: t, Indices: indices})
	}

	return sets, nil
}

// IsAdmissible reports whether index lies inside the Smolyak cone for a grid
// of dimension d at resolution level eta.
func IsAdmissible(index []int, d, eta int) bool {
	if len(index) != d {
		return false
	}
	sum := 0
	for _, v := range index {
		if v < 1 {
			return false
		}
		sum += v
	}
	return sum >= d && sum <= d+eta-1
}

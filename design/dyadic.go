package design

import "math/bits"

// dyadic generates the same nested dyadic point sets as the hyperbolic-cross
// family, but in ascending coordinate order.
type dyadic struct {
	opts Options
}

// Family implements Designer.
func (dd *dyadic) Family() Family { return FamilyDyadic }

// Design implements Designer.
//
// The points are i/2^degree for i = 1 .. 2^degree - 1, mapped onto
// [lower, upper]. Even numerators reduce to coarser dyadic fractions, so the
// set nests across degrees; the division is by a power of two, so reduced and
// unreduced forms of the same point are bit-identical and coincide with the
// hyperbolic-cross placement.
func (dd *dyadic) Design(degree int, lower, upper float64) (*Design, error) {
	if err := validate(degree, lower, upper); err != nil {
		return nil, err
	}

	n := (1 << uint(degree)) - 1
	d := &Design{
		Family:    FamilyDyadic,
		Degree:    degree,
		Lower:     lower,
		Upper:     upper,
		Points:    make([]float64, n),
		Levels:    make([]int, n),
		Ranks:     make([]int, n),
		SortIndex: make([]int, n),
	}

	for i := 1; i <= n; i++ {
		// Reduce i/2^degree: the dyadic level drops by one for every factor
		// of two in the numerator.
		tz := bits.TrailingZeros(uint(i))
		level := degree - tz
		j := (i>>uint(tz) + 1) / 2

		d.Points[i-1] = dyadicPoint(level, j, lower, upper)
		d.Levels[i-1] = level
		d.Ranks[i-1] = hierarchicalRank(level, j)
		d.SortIndex[i-1] = i - 1
	}

	if dd.opts.Neighbors {
		d.Lefts, d.Rights = neighbors(d.Points, d.Levels, lower, upper)
	}

	return d, nil
}

package design

// hyperbolicCross generates nested dyadic designs in hierarchical order.
type hyperbolicCross struct {
	opts Options
}

// Family implements Designer.
func (h *hyperbolicCross) Family() Family { return FamilyHyperbolicCross }

// Design implements Designer.
//
// The canonical order is level-major: the single level-1 midpoint first, then
// the two level-2 points, and so on. Prefixes of this sequence are exactly
// the lower-degree designs, so refining a design appends points without
// disturbing existing ones.
func (h *hyperbolicCross) Design(degree int, lower, upper float64) (*Design, error) {
	if err := validate(degree, lower, upper); err != nil {
		return nil, err
	}

	n := (1 << uint(degree)) - 1
	d := &Design{
		Family: FamilyHyperbolicCross,
		Degree: degree,
		Lower:  lower,
		Upper:  upper,
		Points: make([]float64, 0, n),
		Levels: make([]int, 0, n),
		Ranks:  make([]int, 0, n),
	}

	for level := 1; level <= degree; level++ {
		for j := 1; j <= 1<<uint(level-1); j++ {
			d.Points = append(d.Points, dyadicPoint(level, j, lower, upper))
			d.Levels = append(d.Levels, level)
			d.Ranks = append(d.Ranks, hierarchicalRank(level, j))
		}
	}

	if h.opts.Neighbors {
		d.Lefts, d.Rights = neighbors(d.Points, d.Levels, lower, upper)
	}

	d.SortIndex = argsort(d.Points)
	if !h.opts.DyadicSort {
		d.sortAscending()
	}

	return d, nil
}

package sparsegrid

import (
	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/sparsegrid/design"
)

// PartitionKey identifies one tensor-product component of the sparse grid.
type PartitionKey struct {
	// Total is the sum of the partition's multi-index (t_sum).
	Total int

	// ID is the partition's position within the lexicographic enumeration of
	// its total.
	ID int
}

// Partition is the tensor-product grid of one admissible multi-index.
//
// Points, Indices, PointIDs and IndexIDs are parallel: row r of Points is the
// r-th grid point, row r of Indices is its per-axis rank tuple, PointIDs[r]
// and IndexIDs[r] are the positions of those rows in the deduplicated global
// collections of the owning Design.
type Partition struct {
	// Key is the (total, id) pair the partition is registered under.
	Key PartitionKey

	// Index is the admissible multi-index: per-axis design degrees, each
	// >= 1, summing to Key.Total.
	Index []int

	// Axes holds the one-dimensional design used on each axis; Axes[a] has
	// degree Index[a]. Designs are shared across partitions of equal degree.
	Axes []*design.Design

	// Points holds the full Cartesian product of the per-axis point
	// sequences, one d-dimensional row per grid point.
	Points [][]float64

	// Indices holds the parallel Cartesian product of the per-axis rank
	// sequences.
	Indices [][]int

	// PointIDs maps each row of Points to its position in Design.Points.
	PointIDs []int

	// IndexIDs maps each row of Indices to its position in Design.Indices.
	IndexIDs []int

	// Coverage is the set of global point IDs this partition contains.
	Coverage *roaring.Bitmap
}

// Len returns the number of grid points in the partition.
func (p *Partition) Len() int { return len(p.Points) }

// Design is the immutable result of a sparse-grid generation.
//
// Points and Indices are parallel: row i of Indices is the per-axis rank
// tuple of the point in row i of Points. Because the design families nest
// exactly, a rank tuple identifies a point uniquely, so the two collections
// deduplicate in lockstep.
type Design struct {
	// Dim and Level are the generating configuration (d, eta).
	Dim   int
	Level int

	// Lower and Upper are the input bounds.
	Lower float64
	Upper float64

	// Family is the one-dimensional design family used on every axis.
	Family design.Family

	// Partitions holds every tensor-product component, ordered by ascending
	// (Total, ID).
	Partitions []*Partition

	// Points is the union of all partition points with duplicates removed,
	// in first-seen order.
	Points [][]float64

	// Indices is the union of all partition rank tuples with duplicates
	// removed. Under exact dedup (the default) row i corresponds to Points
	// row i; a nonzero match tolerance can merge points faster than rank
	// tuples.
	Indices [][]int

	// NumPoints is len(Points).
	NumPoints int

	byKey  map[PartitionKey]*Partition
	lookup map[string]int
}

// Partition returns the partition registered under (total, id).
func (d *Design) Partition(total, id int) (*Partition, bool) {
	p, ok := d.byKey[PartitionKey{Total: total, ID: id}]
	return p, ok
}

// Lookup returns the global point position for a per-axis rank tuple.
//
// This is the stable index-to-position mapping consumers previously had to
// rebuild from the partition mappings by hand.
func (d *Design) Lookup(index []int) (int, bool) {
	if len(index) != d.Dim {
		return 0, false
	}
	id, ok := d.lookup[indexKey(index)]
	return id, ok
}

// PointMatrix returns the deduplicated points as an n_pts x d dense matrix.
func (d *Design) PointMatrix() *mat.Dense {
	data := make([]float64, 0, d.NumPoints*d.Dim)
	for _, pt := range d.Points {
		data = append(data, pt...)
	}
	return mat.NewDense(d.NumPoints, d.Dim, data)
}

// Covered returns the union of the coverage bitmaps of the given partitions,
// i.e. the set of global point IDs spanned by that subset of the
// combination. With no arguments it covers every partition.
func (d *Design) Covered(keys ...PartitionKey) *roaring.Bitmap {
	out := roaring.New()
	if len(keys) == 0 {
		for _, p := range d.Partitions {
			out.Or(p.Coverage)
		}
		return out
	}
	for _, k := range keys {
		if p, ok := d.byKey[k]; ok {
			out.Or(p.Coverage)
		}
	}
	return out
}

// finish (re)builds the derived structures: key map, rank-tuple lookup and
// coverage bitmaps. Called at the end of generation and after snapshot load.
func (d *Design) finish() {
	d.NumPoints = len(d.Points)

	d.byKey = make(map[PartitionKey]*Partition, len(d.Partitions))
	for _, p := range d.Partitions {
		d.byKey[p.Key] = p
		p.Coverage = roaring.New()
		for _, gid := range p.PointIDs {
			// Point IDs index in-memory rows and stay below 2^32, within
			// roaring's uint32 key space.
			p.Coverage.Add(uint32(gid))
		}
	}

	d.lookup = make(map[string]int, len(d.Indices))
	for _, p := range d.Partitions {
		for r, row := range p.Indices {
			d.lookup[indexKey(row)] = p.PointIDs[r]
		}
	}
}

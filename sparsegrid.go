package sparsegrid

import (
	"context"
	"encoding/binary"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/hupe1980/sparsegrid/design"
	"github.com/hupe1980/sparsegrid/multiindex"
)

// SparseGrid builds Smolyak-type sparse-grid designs: structured mixtures of
// low-degree tensor-product grids whose union approximates a full tensor grid
// with far fewer points.
//
// A SparseGrid is configured once via New and is safe for concurrent use;
// every Generate call recomputes the full design from the configuration.
type SparseGrid struct {
	dim      int
	level    int
	designer design.Designer
	opts     options
}

// New creates a sparse-grid generator for dimension dim at resolution level
// eta. Configuration is validated here, never in Generate.
func New(dim, eta int, optFns ...Option) (*SparseGrid, error) {
	o := applyOptions(optFns)

	if dim < 1 || eta < 1 {
		return nil, &ErrInvalidGridParameters{Dim: dim, Level: eta}
	}
	if o.lower >= o.upper {
		return nil, &ErrInvalidDesignParameters{Lower: o.lower, Upper: o.upper}
	}

	designer, err := design.New(o.family, func(do *design.Options) {
		do.DyadicSort = o.dyadicSort
		do.Neighbors = o.neighbors
	})
	if err != nil {
		return nil, translateError(err)
	}

	return &SparseGrid{
		dim:      dim,
		level:    eta,
		designer: designer,
		opts:     o,
	}, nil
}

// Generate runs the sparse-grid construction and returns the immutable
// result.
//
// Generation is all-or-nothing: on error no partial Design is returned.
// Partitions are expanded concurrently (bounded by WithParallelism), then
// concatenated and deduplicated sequentially in (total, id) order, so the
// result is deterministic for identical configuration.
func (sg *SparseGrid) Generate(ctx context.Context) (*Design, error) {
	start := time.Now()

	des, err := sg.generate(ctx)
	err = translateError(err)

	partitions, points := 0, 0
	if des != nil {
		partitions, points = len(des.Partitions), des.NumPoints
	}
	sg.opts.metricsCollector.RecordGenerate(partitions, points, time.Since(start), err)
	sg.opts.logger.LogGenerate(ctx, sg.dim, sg.level, partitions, points, err)

	if err != nil {
		return nil, err
	}
	return des, nil
}

func (sg *SparseGrid) generate(ctx context.Context) (*Design, error) {
	sets, err := multiindex.Admissible(sg.dim, sg.level)
	if err != nil {
		return nil, err
	}

	// A one-dimensional design depends only on its degree, so each degree is
	// generated once and shared across partitions. The maximum per-axis
	// degree inside the Smolyak cone is eta.
	axes := make([]*design.Design, sg.level+1)
	for deg := 1; deg <= sg.level; deg++ {
		d1, err := sg.designer.Design(deg, sg.opts.lower, sg.opts.upper)
		if err != nil {
			return nil, err
		}
		axes[deg] = d1
	}

	var parts []*Partition
	for _, set := range sets {
		for id, index := range set.Indices {
			parts = append(parts, &Partition{
				Key:   PartitionKey{Total: set.Total, ID: id},
				Index: index,
			})
		}
	}

	// Partitions are independent until the dedup pass below; expand them
	// concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sg.parallelism())
	for _, p := range parts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sg.expand(p, axes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	des := &Design{
		Dim:        sg.dim,
		Level:      sg.level,
		Lower:      sg.opts.lower,
		Upper:      sg.opts.upper,
		Family:     sg.designer.Family(),
		Partitions: parts,
	}
	sg.dedup(des)
	des.finish()

	return des, nil
}

// expand fills one partition with the Cartesian product of its per-axis
// point and rank sequences.
func (sg *SparseGrid) expand(p *Partition, axes []*design.Design) {
	p.Axes = make([]*design.Design, sg.dim)
	lens := make([]int, sg.dim)
	for a, deg := range p.Index {
		p.Axes[a] = axes[deg]
		lens[a] = axes[deg].Len()
	}

	rows := combin.Cartesian(lens)
	p.Points = make([][]float64, len(rows))
	p.Indices = make([][]int, len(rows))
	for r, row := range rows {
		pt := make([]float64, sg.dim)
		ix := make([]int, sg.dim)
		for a, i := range row {
			pt[a] = p.Axes[a].Points[i]
			ix[a] = p.Axes[a].Ranks[i]
		}
		p.Points[r] = pt
		p.Indices[r] = ix
	}
}

// dedup concatenates all partition rows in (total, id) order and collapses
// duplicates into the global collections, recording the partition-to-global
// mappings.
func (sg *SparseGrid) dedup(des *Design) {
	pointIDs := make(map[string]int)
	indexIDs := make(map[string]int)

	for _, p := range des.Partitions {
		p.PointIDs = make([]int, len(p.Points))
		p.IndexIDs = make([]int, len(p.Indices))

		for r := range p.Points {
			key := sg.pointKey(p.Points[r])
			gid, ok := pointIDs[key]
			if !ok {
				gid = len(des.Points)
				pointIDs[key] = gid
				des.Points = append(des.Points, p.Points[r])
			}
			p.PointIDs[r] = gid

			ikey := indexKey(p.Indices[r])
			iid, ok := indexIDs[ikey]
			if !ok {
				iid = len(des.Indices)
				indexIDs[ikey] = iid
				des.Indices = append(des.Indices, p.Indices[r])
			}
			p.IndexIDs[r] = iid
		}
	}
}

func (sg *SparseGrid) parallelism() int {
	if sg.opts.parallelism > 0 {
		return sg.opts.parallelism
	}
	return runtime.GOMAXPROCS(0)
}

// pointKey builds the dedup key for a point row. Exact mode keys on the raw
// float bits; tolerance mode quantizes each coordinate to an eps-sized
// bucket first.
func (sg *SparseGrid) pointKey(pt []float64) string {
	buf := make([]byte, 8*len(pt))
	for i, x := range pt {
		var v uint64
		if eps := sg.opts.tolerance; eps > 0 {
			v = uint64(int64(math.Round(x / eps)))
		} else {
			v = math.Float64bits(x)
		}
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	return string(buf)
}

func indexKey(index []int) string {
	buf := make([]byte, 8*len(index))
	for i, v := range index {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return string(buf)
}

// Package sparsegrid constructs Smolyak-type sparse-grid designs for use as
// inducing-point layouts in tensor-structured Gaussian process models.
//
// A sparse grid combines many low-degree tensor-product grids, one per
// admissible multi-index, into a single design whose point count grows
// polynomially rather than exponentially with the resolution level. The
// built-in one-dimensional families place dyadic points, so points shared
// between overlapping tensor products are bit-identical and deduplicate by
// exact equality.
//
// # Quick Start
//
//	sg, err := sparsegrid.New(2, 4,
//	    sparsegrid.WithBounds(0, 1),
//	    sparsegrid.WithFamily(design.FamilyHyperbolicCross),
//	    sparsegrid.WithNeighbors(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := sg.Generate(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(res.NumPoints)   // deduplicated global point count
//	m := res.PointMatrix()       // n_pts x d gonum matrix for the GP layer
//
// # Result Structure
//
// The generated Design exposes both the combinatorial and the geometric side
// of the construction with consistent cross-references:
//
//	res.Partitions        // one tensor-product component per admissible multi-index
//	res.Partition(t, id)  // keyed access by (total, position)
//	p.PointIDs            // partition-local row -> global deduplicated row
//	p.Coverage            // roaring bitmap of global point IDs in the partition
//	res.Lookup(ranks)     // per-axis rank tuple -> global point position
//
// # Snapshots
//
// A Design can be persisted and reloaded without regeneration:
//
//	err := res.SaveToWriter(f, nil)     // nil codec selects codec.Default
//	res2, err := sparsegrid.LoadFromReader(f)
//
// Snapshot files are self-describing: the header records the codec, and the
// derived lookup structures are rebuilt on load.
package sparsegrid

package sparsegrid

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/sparsegrid/codec"
	"github.com/hupe1980/sparsegrid/design"
)

// Snapshot format: a fixed header identifying the codec, followed by a
// zstd-compressed codec payload. The header makes files self-describing, so
// a snapshot is always decoded with the codec that wrote it.
const (
	// snapshotMagic identifies sparsegrid snapshot files (ASCII: "SGD1").
	snapshotMagic = 0x53474431
	// snapshotVersion is the current snapshot format version.
	snapshotVersion = 1
)

var (
	// ErrInvalidSnapshot is returned when the magic number does not match.
	ErrInvalidSnapshot = errors.New("invalid snapshot header")

	// ErrUnsupportedSnapshotVersion is returned for snapshot versions this
	// build cannot read.
	ErrUnsupportedSnapshotVersion = errors.New("unsupported snapshot version")

	// ErrUnknownCodec is returned when the codec named in the header is not
	// registered.
	ErrUnknownCodec = errors.New("unknown snapshot codec")
)

type axisSnapshot struct {
	Family    string    `json:"family"`
	Degree    int       `json:"degree"`
	Lower     float64   `json:"lower"`
	Upper     float64   `json:"upper"`
	Points    []float64 `json:"points"`
	Levels    []int     `json:"levels"`
	Ranks     []int     `json:"ranks"`
	Lefts     []float64 `json:"lefts,omitempty"`
	Rights    []float64 `json:"rights,omitempty"`
	SortIndex []int     `json:"sort_index"`
}

type partitionSnapshot struct {
	Total    int         `json:"total"`
	ID       int         `json:"id"`
	Index    []int       `json:"index"`
	Points   [][]float64 `json:"points"`
	Indices  [][]int     `json:"indices"`
	PointIDs []int       `json:"point_ids"`
	IndexIDs []int       `json:"index_ids"`
}

type designSnapshot struct {
	Dim        int                 `json:"dim"`
	Level      int                 `json:"level"`
	Lower      float64             `json:"lower"`
	Upper      float64             `json:"upper"`
	Family     string              `json:"family"`
	Axes       []axisSnapshot      `json:"axes"`
	Points     [][]float64         `json:"points"`
	Indices    [][]int             `json:"indices"`
	Partitions []partitionSnapshot `json:"partitions"`
}

// SaveToWriter writes the design as a snapshot to w.
// If c is nil, codec.Default is used.
func (d *Design) SaveToWriter(w io.Writer, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(snapshotMagic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(snapshotVersion)); err != nil {
		return err
	}
	name := []byte(c.Name())
	if err := binary.Write(w, binary.LittleEndian, uint8(len(name))); err != nil {
		return err
	}
	if _, err := w.Write(name); err != nil {
		return err
	}

	payload, err := c.Marshal(d.snapshot())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := zw.Write(payload); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// LoadFromReader reads a snapshot written by SaveToWriter and rebuilds the
// design, including the derived structures (partition key map, rank-tuple
// lookup, coverage bitmaps) that are not persisted.
func LoadFromReader(r io.Reader) (*Design, error) {
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, err
	}
	if magic != snapshotMagic {
		return nil, ErrInvalidSnapshot
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSnapshotVersion, version)
	}

	var nameLen uint8
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return nil, err
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, err
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	payload, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}

	var snap designSnapshot
	if err := c.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return snap.restore()
}

// Save writes a generated design as a snapshot to w with the generator's
// logging and metrics applied. If c is nil, codec.Default is used.
func (sg *SparseGrid) Save(ctx context.Context, w io.Writer, d *Design, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}

	start := time.Now()
	err := d.SaveToWriter(w, c)

	sg.opts.metricsCollector.RecordSnapshot(time.Since(start), err)
	sg.opts.logger.LogSnapshot(ctx, c.Name(), err)

	return err
}

// Load reads a snapshot from r with the generator's logging and metrics
// applied.
func (sg *SparseGrid) Load(ctx context.Context, r io.Reader) (*Design, error) {
	start := time.Now()
	d, err := LoadFromReader(r)

	points := 0
	if d != nil {
		points = d.NumPoints
	}
	sg.opts.metricsCollector.RecordLoad(time.Since(start), err)
	sg.opts.logger.LogLoad(ctx, points, err)

	return d, err
}

func (d *Design) snapshot() designSnapshot {
	// Per-axis designs are shared across partitions; persist each degree
	// once and let partitions reference them through their multi-index.
	byDegree := make(map[int]*design.Design)
	for _, p := range d.Partitions {
		for _, ax := range p.Axes {
			byDegree[ax.Degree] = ax
		}
	}
	axes := make([]axisSnapshot, 0, len(byDegree))
	for deg := 1; deg <= d.Level; deg++ {
		ax, ok := byDegree[deg]
		if !ok {
			continue
		}
		axes = append(axes, axisSnapshot{
			Family:    ax.Family.String(),
			Degree:    ax.Degree,
			Lower:     ax.Lower,
			Upper:     ax.Upper,
			Points:    ax.Points,
			Levels:    ax.Levels,
			Ranks:     ax.Ranks,
			Lefts:     ax.Lefts,
			Rights:    ax.Rights,
			SortIndex: ax.SortIndex,
		})
	}

	parts := make([]partitionSnapshot, len(d.Partitions))
	for i, p := range d.Partitions {
		parts[i] = partitionSnapshot{
			Total:    p.Key.Total,
			ID:       p.Key.ID,
			Index:    p.Index,
			Points:   p.Points,
			Indices:  p.Indices,
			PointIDs: p.PointIDs,
			IndexIDs: p.IndexIDs,
		}
	}

	return designSnapshot{
		Dim:        d.Dim,
		Level:      d.Level,
		Lower:      d.Lower,
		Upper:      d.Upper,
		Family:     d.Family.String(),
		Axes:       axes,
		Points:     d.Points,
		Indices:    d.Indices,
		Partitions: parts,
	}
}

func (s *designSnapshot) restore() (*Design, error) {
	family, ok := design.FamilyByName(s.Family)
	if !ok {
		return nil, fmt.Errorf("%w: unknown family %q", ErrInvalidSnapshot, s.Family)
	}

	byDegree := make(map[int]*design.Design, len(s.Axes))
	for _, ax := range s.Axes {
		axFamily, ok := design.FamilyByName(ax.Family)
		if !ok {
			return nil, fmt.Errorf("%w: unknown family %q", ErrInvalidSnapshot, ax.Family)
		}
		byDegree[ax.Degree] = &design.Design{
			Family:    axFamily,
			Degree:    ax.Degree,
			Lower:     ax.Lower,
			Upper:     ax.Upper,
			Points:    ax.Points,
			Levels:    ax.Levels,
			Ranks:     ax.Ranks,
			Lefts:     ax.Lefts,
			Rights:    ax.Rights,
			SortIndex: ax.SortIndex,
		}
	}

	d := &Design{
		Dim:     s.Dim,
		Level:   s.Level,
		Lower:   s.Lower,
		Upper:   s.Upper,
		Family:  family,
		Points:  s.Points,
		Indices: s.Indices,
	}

	d.Partitions = make([]*Partition, len(s.Partitions))
	for i, ps := range s.Partitions {
		// The payload is untrusted input: enforce the parallel-slice
		// invariant and the id ranges before any derived state is built.
		if len(ps.Points) != len(ps.Indices) ||
			len(ps.PointIDs) != len(ps.Points) ||
			len(ps.IndexIDs) != len(ps.Points) {
			return nil, fmt.Errorf("%w: partition (%d,%d) has inconsistent row mappings", ErrInvalidSnapshot, ps.Total, ps.ID)
		}
		for r := range ps.PointIDs {
			if gid := ps.PointIDs[r]; gid < 0 || gid >= len(s.Points) {
				return nil, fmt.Errorf("%w: partition (%d,%d) references point id %d outside [0,%d)", ErrInvalidSnapshot, ps.Total, ps.ID, gid, len(s.Points))
			}
			if iid := ps.IndexIDs[r]; iid < 0 || iid >= len(s.Indices) {
				return nil, fmt.Errorf("%w: partition (%d,%d) references index id %d outside [0,%d)", ErrInvalidSnapshot, ps.Total, ps.ID, iid, len(s.Indices))
			}
		}

		p := &Partition{
			Key:      PartitionKey{Total: ps.Total, ID: ps.ID},
			Index:    ps.Index,
			Points:   ps.Points,
			Indices:  ps.Indices,
			PointIDs: ps.PointIDs,
			IndexIDs: ps.IndexIDs,
		}
		p.Axes = make([]*design.Design, len(ps.Index))
		for a, deg := range ps.Index {
			ax, ok := byDegree[deg]
			if !ok {
				return nil, fmt.Errorf("%w: missing axis design for degree %d", ErrInvalidSnapshot, deg)
			}
			p.Axes[a] = ax
		}
		d.Partitions[i] = p
	}

	d.finish()
	return d, nil
}

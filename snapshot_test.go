package sparsegrid

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsegrid/codec"
)

func TestSnapshot(t *testing.T) {
	ctx := context.Background()

	generate := func(t *testing.T) *Design {
		t.Helper()

		sg, err := New(2, 4, WithNeighbors(true))
		require.NoError(t, err)

		res, err := sg.Generate(ctx)
		require.NoError(t, err)

		return res
	}

	t.Run("RoundTrip", func(t *testing.T) {
		res := generate(t)

		var buf bytes.Buffer
		require.NoError(t, res.SaveToWriter(&buf, nil))

		loaded, err := LoadFromReader(&buf)
		require.NoError(t, err)

		assert.Equal(t, res.Dim, loaded.Dim)
		assert.Equal(t, res.Level, loaded.Level)
		assert.Equal(t, res.Family, loaded.Family)
		assert.Equal(t, res.NumPoints, loaded.NumPoints)

		// Exact, not approximate: the snapshot must not perturb a single bit.
		assert.Equal(t, res.Points, loaded.Points)
		assert.Equal(t, res.Indices, loaded.Indices)

		require.Len(t, loaded.Partitions, len(res.Partitions))
		for i, p := range res.Partitions {
			q := loaded.Partitions[i]
			assert.Equal(t, p.Key, q.Key)
			assert.Equal(t, p.Index, q.Index)
			assert.Equal(t, p.Points, q.Points)
			assert.Equal(t, p.PointIDs, q.PointIDs)
			assert.Equal(t, p.IndexIDs, q.IndexIDs)

			require.Len(t, q.Axes, len(p.Axes))
			for a := range p.Axes {
				assert.Equal(t, p.Axes[a].Points, q.Axes[a].Points)
				assert.Equal(t, p.Axes[a].Ranks, q.Axes[a].Ranks)
				assert.Equal(t, p.Axes[a].Lefts, q.Axes[a].Lefts)
			}
		}
	})

	t.Run("DerivedStateRebuilt", func(t *testing.T) {
		res := generate(t)

		var buf bytes.Buffer
		require.NoError(t, res.SaveToWriter(&buf, nil))

		loaded, err := LoadFromReader(&buf)
		require.NoError(t, err)

		// Coverage bitmaps and the rank-tuple lookup are not serialized;
		// they are reconstructed from the id mappings.
		for i, p := range res.Partitions {
			assert.True(t, p.Coverage.Equals(loaded.Partitions[i].Coverage))
		}
		for _, p := range loaded.Partitions {
			for r, row := range p.Indices {
				gid, ok := loaded.Lookup(row)
				require.True(t, ok)
				assert.Equal(t, p.PointIDs[r], gid)
			}
		}

		byKey, ok := loaded.Partition(res.Partitions[0].Key.Total, res.Partitions[0].Key.ID)
		require.True(t, ok)
		assert.Equal(t, res.Partitions[0].Index, byKey.Index)
	})

	t.Run("SharedAxesRelinked", func(t *testing.T) {
		res := generate(t)

		var buf bytes.Buffer
		require.NoError(t, res.SaveToWriter(&buf, nil))

		loaded, err := LoadFromReader(&buf)
		require.NoError(t, err)

		// Axis designs are stored once per degree; partitions of equal degree
		// must share the restored instance.
		byDegree := make(map[int]any)
		for _, p := range loaded.Partitions {
			for a, deg := range p.Index {
				if prev, ok := byDegree[deg]; ok {
					assert.Same(t, prev, p.Axes[a])
				} else {
					byDegree[deg] = p.Axes[a]
				}
			}
		}
	})

	t.Run("ExplicitCodec", func(t *testing.T) {
		res := generate(t)

		var buf bytes.Buffer
		require.NoError(t, res.SaveToWriter(&buf, codec.JSON{}))

		loaded, err := LoadFromReader(&buf)
		require.NoError(t, err)
		assert.Equal(t, res.Points, loaded.Points)
	})

	t.Run("InstrumentedSaveLoad", func(t *testing.T) {
		mc := &BasicMetricsCollector{}
		sg, err := New(2, 3, WithMetricsCollector(mc))
		require.NoError(t, err)

		res, err := sg.Generate(ctx)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, sg.Save(ctx, &buf, res, nil))

		loaded, err := sg.Load(ctx, &buf)
		require.NoError(t, err)
		assert.Equal(t, res.Points, loaded.Points)

		stats := mc.GetStats()
		assert.Equal(t, int64(1), stats.SnapshotCount)
		assert.Equal(t, int64(0), stats.SnapshotErrors)
		assert.Equal(t, int64(1), stats.LoadCount)
		assert.Equal(t, int64(0), stats.LoadErrors)
	})

	t.Run("InconsistentMappingsRejected", func(t *testing.T) {
		res := generate(t)

		// Break the parallel-slice invariant on one partition, then write the
		// corrupted design through the regular writer. Loading must fail with
		// an error, never panic.
		res.Partitions[0].PointIDs = res.Partitions[0].PointIDs[:0]

		var buf bytes.Buffer
		require.NoError(t, res.SaveToWriter(&buf, nil))

		_, err := LoadFromReader(&buf)
		require.ErrorIs(t, err, ErrInvalidSnapshot)
	})

	t.Run("OutOfRangeIDsRejected", func(t *testing.T) {
		res := generate(t)
		res.Partitions[0].PointIDs[0] = res.NumPoints // past the global collection

		var buf bytes.Buffer
		require.NoError(t, res.SaveToWriter(&buf, nil))

		_, err := LoadFromReader(&buf)
		require.ErrorIs(t, err, ErrInvalidSnapshot)

		res = generate(t)
		res.Partitions[0].IndexIDs[0] = -1

		buf.Reset()
		require.NoError(t, res.SaveToWriter(&buf, nil))

		_, err = LoadFromReader(&buf)
		require.ErrorIs(t, err, ErrInvalidSnapshot)
	})

	t.Run("BadMagic", func(t *testing.T) {
		_, err := LoadFromReader(bytes.NewReader([]byte("not a snapshot at all")))
		require.ErrorIs(t, err, ErrInvalidSnapshot)
	})

	t.Run("Truncated", func(t *testing.T) {
		res := generate(t)

		var buf bytes.Buffer
		require.NoError(t, res.SaveToWriter(&buf, nil))

		_, err := LoadFromReader(bytes.NewReader(buf.Bytes()[:10]))
		require.Error(t, err)
	})
}

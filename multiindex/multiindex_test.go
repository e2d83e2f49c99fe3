package multiindex

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNSumK(t *testing.T) {
	t.Run("Count", func(t *testing.T) {
		for k := 1; k <= 5; k++ {
			for n := 0; n <= 6; n++ {
				tuples, err := NSumK(k, n)
				require.NoError(t, err)
				assert.Len(t, tuples, Count(k, n), "k=%d n=%d", k, n)
			}
		}
	})

	t.Run("SumAndEntries", func(t *testing.T) {
		tuples, err := NSumK(4, 6)
		require.NoError(t, err)

		for _, tup := range tuples {
			require.Len(t, tup, 4)
			sum := 0
			for _, v := range tup {
				assert.GreaterOrEqual(t, v, 0)
				sum += v
			}
			assert.Equal(t, 6, sum)
		}
	})

	t.Run("LexicographicAndDistinct", func(t *testing.T) {
		tuples, err := NSumK(3, 5)
		require.NoError(t, err)

		for i := 1; i < len(tuples); i++ {
			assert.Negative(t, slices.Compare(tuples[i-1], tuples[i]))
		}
	})

	t.Run("BruteForceCrossCheck", func(t *testing.T) {
		tuples, err := NSumK(3, 4)
		require.NoError(t, err)

		var want [][]int
		for a := 0; a <= 4; a++ {
			for b := 0; b <= 4-a; b++ {
				want = append(want, []int{a, b, 4 - a - b})
			}
		}
		require.Equal(t, want, tuples)
	})

	t.Run("ZeroTotal", func(t *testing.T) {
		tuples, err := NSumK(3, 0)
		require.NoError(t, err)
		require.Equal(t, [][]int{{0, 0, 0}}, tuples)
	})

	t.Run("InvalidArgs", func(t *testing.T) {
		_, err := NSumK(0, 3)
		require.ErrorIs(t, err, ErrInvalidTupleArgs)

		_, err = NSumK(2, -1)
		require.ErrorIs(t, err, ErrInvalidTupleArgs)
	})
}

func TestAdmissible(t *testing.T) {
	t.Run("TotalsAndCounts", func(t *testing.T) {
		sets, err := Admissible(2, 4)
		require.NoError(t, err)
		require.Len(t, sets, 4)

		for i, set := range sets {
			assert.Equal(t, 2+i, set.Total)
			// Positive compositions of t into d parts: C(t-1, d-1).
			assert.Len(t, set.Indices, set.Total-1)

			for _, index := range set.Indices {
				require.Len(t, index, 2)
				sum := 0
				for _, v := range index {
					assert.GreaterOrEqual(t, v, 1)
					sum += v
				}
				assert.Equal(t, set.Total, sum)
			}
		}
	})

	t.Run("BruteForceCrossCheck", func(t *testing.T) {
		const d, eta = 3, 3

		sets, err := Admissible(d, eta)
		require.NoError(t, err)

		var got [][]int
		for _, set := range sets {
			got = append(got, set.Indices...)
		}

		// Exhaustive search over the bounded value range.
		var want [][]int
		for t1 := d; t1 <= d+eta-1; t1++ {
			for a := 1; a <= eta; a++ {
				for b := 1; b <= eta; b++ {
					for c := 1; c <= eta; c++ {
						if a+b+c == t1 {
							want = append(want, []int{a, b, c})
						}
					}
				}
			}
		}
		assert.ElementsMatch(t, want, got)
	})

	t.Run("Deterministic", func(t *testing.T) {
		first, err := Admissible(3, 4)
		require.NoError(t, err)
		second, err := Admissible(3, 4)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("InvalidParams", func(t *testing.T) {
		var gridErr *ErrInvalidGridParameters

		_, err := Admissible(0, 4)
		require.ErrorAs(t, err, &gridErr)
		assert.Equal(t, 0, gridErr.Dim)

		_, err = Admissible(2, 0)
		require.ErrorAs(t, err, &gridErr)
		assert.Equal(t, 0, gridErr.Level)
	})
}

func TestIsAdmissible(t *testing.T) {
	assert.True(t, IsAdmissible([]int{1, 1}, 2, 1))
	assert.True(t, IsAdmissible([]int{2, 3}, 2, 4))
	assert.False(t, IsAdmissible([]int{2, 4}, 2, 4))    // total 6 > d+eta-1
	assert.False(t, IsAdmissible([]int{0, 2}, 2, 4))    // entry below 1
	assert.False(t, IsAdmissible([]int{1, 1, 1}, 2, 4)) // wrong length
}

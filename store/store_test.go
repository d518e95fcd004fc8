package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vstojkovic-mongodb/r2t2/ftdc"
	"github.com/vstojkovic-mongodb/r2t2/metric"
)

func instants(ms ...int64) []metric.Instant {
	out := make([]metric.Instant, len(ms))
	for i, m := range ms {
		out[i] = metric.InstantFromMillis(m)
	}
	return out
}

// Scenario 4: two blocks with diverging key sets.
func TestAppendBlockFillsAbsentsForDivergingKeySets(t *testing.T) {
	s := New()
	table := metric.NewTable()

	blockA := &ftdc.Block{
		Timestamps: instants(100, 200),
		Columns: []ftdc.BlockColumn{
			{Key: metric.NewPath("a"), Values: []int64{1, 2}},
		},
	}
	blockB := &ftdc.Block{
		Timestamps: instants(300, 400),
		Columns: []ftdc.BlockColumn{
			{Key: metric.NewPath("b"), Values: []int64{3, 4}},
		},
	}

	require.NoError(t, s.AppendBlock(blockA, table))
	require.NoError(t, s.AppendBlock(blockB, table))

	require.Len(t, s.Timestamps(), 4)

	colA, ok := s.Column(metric.NewPath("a"))
	require.True(t, ok)
	require.Equal(t, []float64{1, 2}, colA[:2])
	require.True(t, math.IsNaN(colA[2]))
	require.True(t, math.IsNaN(colA[3]))

	colB, ok := s.Column(metric.NewPath("b"))
	require.True(t, ok)
	require.True(t, math.IsNaN(colB[0]))
	require.True(t, math.IsNaN(colB[1]))
	require.Equal(t, []float64{3, 4}, colB[2:])

	// Dataset alignment: every column's length matches the timestamp vector.
	require.Len(t, colA, len(s.Timestamps()))
	require.Len(t, colB, len(s.Timestamps()))

	require.Len(t, table.Transients(), 2)
}

func TestClearEmptiesStore(t *testing.T) {
	s := New()
	table := metric.NewTable()
	block := &ftdc.Block{
		Timestamps: instants(1),
		Columns:    []ftdc.BlockColumn{{Key: metric.NewPath("m"), Values: []int64{1}}},
	}
	require.NoError(t, s.AppendBlock(block, table))
	s.Clear()

	require.Empty(t, s.Timestamps())
	_, ok := s.Column(metric.NewPath("m"))
	require.False(t, ok)
	_, ok = s.FirstTimestamp()
	require.False(t, ok)
}

func TestFirstAndLastTimestamp(t *testing.T) {
	s := New()
	table := metric.NewTable()
	block := &ftdc.Block{
		Timestamps: instants(100, 200, 300),
		Columns:    []ftdc.BlockColumn{{Key: metric.NewPath("m"), Values: []int64{1, 2, 3}}},
	}
	require.NoError(t, s.AppendBlock(block, table))

	first, ok := s.FirstTimestamp()
	require.True(t, ok)
	require.Equal(t, int64(100), first.Millis())

	last, ok := s.LastTimestamp()
	require.True(t, ok)
	require.Equal(t, int64(300), last.Millis())
}

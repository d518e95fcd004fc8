// Package store holds the in-memory dataset accumulated from a decoded
// archive: a global timestamp vector and one value column per observed
// metric path, kept aligned as the metric set drifts from block to block.
package store

import (
	"math"

	"github.com/vstojkovic-mongodb/r2t2/errs"
	"github.com/vstojkovic-mongodb/r2t2/ftdc"
	"github.com/vstojkovic-mongodb/r2t2/internal/pool"
	"github.com/vstojkovic-mongodb/r2t2/metric"
)

// column is one metric's accumulated series, widened to float64 so a
// missing sample can be represented as NaN; see the design note on why
// integer columns are not carried through unchanged.
type column struct {
	key    metric.Path
	values []float64
}

// Store accumulates timestamps and per-path value columns across blocks. It
// is owned exclusively by the orchestrator: the sampler only ever reads
// from it, and nothing in this package takes a lock, matching the
// single-threaded cooperative concurrency model.
type Store struct {
	timestamps []metric.Instant
	order      []string // Path.RawKey() in first-seen order, for deterministic iteration
	cols       map[string]*column
}

// New returns an empty dataset store.
func New() *Store {
	return &Store{cols: make(map[string]*column)}
}

// Clear empties the store, as open-archive does before ingesting a new
// archive. Column buffers are returned to the float64 slice pool rather
// than left for the garbage collector, since a column's lifetime runs
// exactly from here to the next Clear.
func (s *Store) Clear() {
	for _, key := range s.order {
		pool.PutFloat64Slice(s.cols[key].values)
	}
	s.timestamps = nil
	s.order = nil
	s.cols = make(map[string]*column)
}

// AppendBlock folds block into the store, padding every column (old and
// new) with NaN so that every column stays exactly as long as the
// timestamp vector. Newly observed keys are registered with table via
// EnsureFor so the descriptor table's transients list stays in sync.
func (s *Store) AppendBlock(block *ftdc.Block, table *metric.Table) error {
	if block == nil {
		return errs.New(errs.KindFormat, "cannot append a nil block")
	}

	nOld := len(s.timestamps)
	nNew := len(block.Timestamps)

	// Checked before anything is appended, so a rejected block leaves the
	// store exactly as the previous append left it.
	for i := range block.Columns {
		if len(block.Columns[i].Values) != nNew {
			return errs.New(errs.KindFormat, "block column length does not match its own timestamp vector")
		}
	}

	blockCols := make(map[string]*ftdc.BlockColumn, len(block.Columns))
	for i := range block.Columns {
		bc := &block.Columns[i]
		blockCols[bc.Key.RawKey()] = bc
	}

	for _, key := range s.order {
		col := s.cols[key]
		if bc, ok := blockCols[key]; ok {
			if len(bc.Values) != nNew {
				return errs.New(errs.KindFormat, "block column length does not match its own timestamp vector")
			}
			for _, v := range bc.Values {
				col.values = append(col.values, float64(v))
			}
		} else {
			col.values = appendNaN(col.values, nNew)
		}
	}

	for i := range block.Columns {
		bc := &block.Columns[i]
		key := bc.Key.RawKey()
		if _, exists := s.cols[key]; exists {
			continue
		}
		if len(bc.Values) != nNew {
			return errs.New(errs.KindFormat, "block column length does not match its own timestamp vector")
		}
		buf := pool.GetFloat64Slice(nOld + nNew)
		values := appendNaN(buf[:0], nOld)
		for _, v := range bc.Values {
			values = append(values, float64(v))
		}
		s.cols[key] = &column{key: bc.Key, values: values}
		s.order = append(s.order, key)
		table.EnsureFor(bc.Key)
	}

	s.timestamps = append(s.timestamps, block.Timestamps...)

	return nil
}

func appendNaN(dst []float64, n int) []float64 {
	for i := 0; i < n; i++ {
		dst = append(dst, math.NaN())
	}
	return dst
}

// Timestamps returns the global timestamp vector. Callers must not mutate
// the returned slice.
func (s *Store) Timestamps() []metric.Instant {
	return s.timestamps
}

// Column returns the value column for key, if the store has observed it.
// Callers must not mutate the returned slice.
func (s *Store) Column(key metric.Path) ([]float64, bool) {
	col, ok := s.cols[key.RawKey()]
	if !ok {
		return nil, false
	}
	return col.values, true
}

// FirstTimestamp returns the earliest timestamp in the store. The second
// return value is false if the store is empty.
func (s *Store) FirstTimestamp() (metric.Instant, bool) {
	if len(s.timestamps) == 0 {
		return 0, false
	}
	return s.timestamps[0], true
}

// LastTimestamp returns the latest timestamp in the store. The second
// return value is false if the store is empty.
func (s *Store) LastTimestamp() (metric.Instant, bool) {
	if len(s.timestamps) == 0 {
		return 0, false
	}
	return s.timestamps[len(s.timestamps)-1], true
}

// Package sample implements the read-only, downsampled view the UI
// collaborator uses to render a chart: given a set of descriptor ids, a
// time window, and a target point count, it returns a (time, value) series
// per descriptor with that descriptor's scale factor already applied.
package sample

import (
	"math"
	"sort"

	"github.com/vstojkovic-mongodb/r2t2/metric"
	"github.com/vstojkovic-mongodb/r2t2/store"
)

// Point is one sampled (time, scaled value) pair.
type Point struct {
	Time  metric.Instant
	Value float64
}

// Dataset is the read-only surface the sampler needs from the dataset
// store: the global timestamp vector and per-path value columns.
type Dataset interface {
	Timestamps() []metric.Instant
	Column(key metric.Path) ([]float64, bool)
}

// Descriptors is the read-only surface the sampler needs from the
// descriptor table: resolving an id to its key path and scale.
type Descriptors interface {
	Descriptor(id int) (metric.Descriptor, bool)
}

var (
	_ Dataset     = (*store.Store)(nil)
	_ Descriptors = (*metric.Table)(nil)
)

// Sample resolves each id against table and ds, and returns a downsampled
// series per id. An id with no descriptor, a descriptor whose column was
// never observed, or a window with no overlapping samples yields an empty
// (not absent, not erroring) series for that id, per the sampler's
// not-a-fault policy for degenerate inputs.
func Sample(table Descriptors, ds Dataset, ids []int, lo, hi metric.Instant, n int) map[int][]Point {
	timestamps := ds.Timestamps()
	out := make(map[int][]Point, len(ids))

	for _, id := range ids {
		desc, ok := table.Descriptor(id)
		if !ok {
			out[id] = nil
			continue
		}
		values, ok := ds.Column(desc.Key)
		if !ok {
			out[id] = nil
			continue
		}
		out[id] = sampleOne(timestamps, values, desc.Scale, lo, hi, n)
	}

	return out
}

// sampleOne implements the window-bound and stride/tail algorithm for a
// single series.
func sampleOne(timestamps []metric.Instant, values []float64, scale float64, lo, hi metric.Instant, n int) []Point {
	start, end, ok := windowBounds(timestamps, lo, hi)
	if !ok {
		return nil
	}

	emit := func(i int) (Point, bool) {
		v := values[i]
		if math.IsNaN(v) {
			return Point{}, false
		}
		return Point{Time: timestamps[i], Value: v / scale}, true
	}

	// Small window, or a degenerate target point count: every non-absent
	// point in range, no downsampling.
	deltaMs := int64(0)
	if n > 0 && hi > lo {
		deltaMs = int64(hi-lo) / int64(n)
	}
	if end-start < n || deltaMs <= 0 {
		return emitAll(timestamps, values, start, end, scale)
	}

	var points []Point
	cursor := lo
	emitted := 0
	i := start
	for i <= end {
		remaining := end - i + 1
		if remaining < n-emitted {
			// Not enough raw samples left to ever reach the stride's
			// target count by waiting on the cursor; take what's left.
			tail := emitAll(timestamps, values, i, end, scale)
			points = append(points, tail...)
			break
		}

		if timestamps[i] >= cursor {
			if p, ok := emit(i); ok {
				points = append(points, p)
			}
			emitted++
			cursor = cursor.Add(deltaMs)
		}
		i++
		if emitted == n {
			break
		}
	}

	return points
}

func emitAll(timestamps []metric.Instant, values []float64, start, end int, scale float64) []Point {
	var out []Point
	for i := start; i <= end; i++ {
		v := values[i]
		if math.IsNaN(v) {
			continue
		}
		out = append(out, Point{Time: timestamps[i], Value: v / scale})
	}
	return out
}

// windowBounds binary-searches timestamps for the index range covering
// [lo, hi], clamping end back by one when hi is not an exact match and
// clamping both ends to the valid index range. ok is false when the
// series is empty or the window has no overlap.
func windowBounds(timestamps []metric.Instant, lo, hi metric.Instant) (start, end int, ok bool) {
	if len(timestamps) == 0 {
		return 0, 0, false
	}

	start = sort.Search(len(timestamps), func(i int) bool { return timestamps[i] >= lo })
	endIdx := sort.Search(len(timestamps), func(i int) bool { return timestamps[i] > hi })
	end = endIdx - 1

	if start > len(timestamps)-1 || end < 0 || start > end {
		return 0, 0, false
	}
	return start, end, true
}

package pool

import "sync"

// typedSlicePool pools slices of one element type behind a single
// sync.Pool, sized to an exact length on Get. It exists to share the
// grow-or-reuse logic between the int64 pool (the block decoder's column
// buffers) and the float64 pool (the dataset store's columns) instead of
// duplicating it per type.
type typedSlicePool[T any] struct {
	pool sync.Pool
}

func newTypedSlicePool[T any]() *typedSlicePool[T] {
	return &typedSlicePool[T]{
		pool: sync.Pool{New: func() any { return new([]T) }},
	}
}

// get returns a slice of exactly length size, reusing a pooled backing
// array when one of sufficient capacity is available, alongside the
// pointer sync.Pool.Put needs to return it later.
func (p *typedSlicePool[T]) get(size int) ([]T, *[]T) {
	ptr, _ := p.pool.Get().(*[]T)
	s := (*ptr)[:0]
	if cap(s) < size {
		s = make([]T, size)
	} else {
		s = s[:size]
	}
	*ptr = s
	return s, ptr
}

func (p *typedSlicePool[T]) put(ptr *[]T) {
	p.pool.Put(ptr)
}

var (
	int64Pool   = newTypedSlicePool[int64]()
	float64Pool = newTypedSlicePool[float64]()
)

// GetInt64Slice returns an int64 slice of exactly size elements, plus a
// cleanup function that returns its backing array to the pool — the
// lifecycle the block decoder's per-column buffers follow, since a
// column's pooled buffer is released as soon as its values have been
// copied into the dataset store (see ftdc.Block.Release).
func GetInt64Slice(size int) ([]int64, func()) {
	s, ptr := int64Pool.get(size)
	return s, func() { int64Pool.put(ptr) }
}

// GetFloat64Slice returns a float64 slice of exactly size elements. Unlike
// GetInt64Slice, it has no paired cleanup closure: dataset store columns
// live far longer than the call that creates them, so they are returned
// to the pool in bulk by PutFloat64Slice when the store is cleared,
// rather than by the column's creator.
func GetFloat64Slice(size int) []float64 {
	s, _ := float64Pool.get(size)
	return s
}

// PutFloat64Slice returns a float64 slice to the pool.
func PutFloat64Slice(s []float64) {
	s = s[:0]
	float64Pool.put(&s)
}

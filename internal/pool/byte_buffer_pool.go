package pool

import "sync"

// Default and maximum retained sizes for the two scratch-buffer pools this
// package exposes: one for the container reader's per-container read
// buffer (containers are usually a few KB), one for the block decoder's
// inflate destination (an inflated block can run into the low megabytes).
const (
	ContainerBufferDefaultSize  = 1024 * 16       // 16KiB
	ContainerBufferMaxThreshold = 1024 * 128      // 128KiB
	BlockBufferDefaultSize      = 1024 * 1024     // 1MiB
	BlockBufferMaxThreshold     = 1024 * 1024 * 8 // 8MiB
)

// ByteBuffer is a reusable byte slice. It only exposes the operations the
// container reader and block decoder actually perform on a scratch buffer:
// growing it ahead of a known read size, writing into it, and reading back
// exactly what was written.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer returns a ByteBuffer with defaultSize bytes of capacity
// pre-allocated.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the buffer's current contents.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the number of bytes currently held.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the buffer's capacity.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Reset empties the buffer without releasing its backing array, so the
// pool can hand it back out at its existing capacity.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// MustWrite appends data, growing the backing array if needed.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// SetLength resizes the buffer to exactly n bytes, used by the container
// reader once it knows a container's declared length. Panics if n exceeds
// the current capacity — callers must Grow first.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 || n > cap(bb.B) {
		panic("pool: SetLength out of range")
	}
	bb.B = bb.B[:n]
}

// Grow ensures the buffer can hold requiredBytes more bytes without a
// further reallocation. Up to 4x ContainerBufferDefaultSize of capacity it
// grows in ContainerBufferDefaultSize steps (whichever pool the buffer came
// from) to avoid repeated small reallocations early in a buffer's life;
// past that it grows by a quarter of its current capacity,
// which amortizes well for the rare archive whose blocks keep getting
// bigger.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	if cap(bb.B)-len(bb.B) >= requiredBytes {
		return
	}

	growBy := ContainerBufferDefaultSize
	if cap(bb.B) > 4*ContainerBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	grown := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(grown, bb.B)
	bb.B = grown
}

// ByteBufferPool is a sync.Pool of ByteBuffers. Buffers whose capacity has
// grown past maxThreshold are discarded rather than pooled, so one
// unusually large container or block doesn't pin oversized buffers in the
// pool for the rest of the run.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool returns a pool whose buffers start at defaultSize and
// are discarded once their capacity exceeds maxThreshold.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool:         sync.Pool{New: func() any { return NewByteBuffer(defaultSize) }},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool, or allocates one if empty.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put resets bb and returns it to the pool, unless it has grown past the
// pool's max threshold.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}
	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	containerDefaultPool = NewByteBufferPool(ContainerBufferDefaultSize, ContainerBufferMaxThreshold)
	blockDefaultPool     = NewByteBufferPool(BlockBufferDefaultSize, BlockBufferMaxThreshold)
)

// GetContainerBuffer retrieves a ByteBuffer from the container-read pool.
func GetContainerBuffer() *ByteBuffer {
	return containerDefaultPool.Get()
}

// PutContainerBuffer returns a ByteBuffer to the container-read pool.
func PutContainerBuffer(bb *ByteBuffer) {
	containerDefaultPool.Put(bb)
}

// GetBlockBuffer retrieves a ByteBuffer from the block-inflate pool.
func GetBlockBuffer() *ByteBuffer {
	return blockDefaultPool.Get()
}

// PutBlockBuffer returns a ByteBuffer to the block-inflate pool.
func PutBlockBuffer(bb *ByteBuffer) {
	blockDefaultPool.Put(bb)
}

package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBufferGrowPreservesContents(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte("ab"))
	bb.Grow(100)
	require.GreaterOrEqual(t, bb.Cap(), 102)
	require.Equal(t, []byte("ab"), bb.Bytes())
}

func TestByteBufferResetKeepsCapacity(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.MustWrite([]byte("hello"))
	cap0 := bb.Cap()
	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.Equal(t, cap0, bb.Cap())
}

func TestByteBufferPoolRoundTrip(t *testing.T) {
	p := NewByteBufferPool(8, 64)
	bb := p.Get()
	bb.MustWrite([]byte("data"))
	p.Put(bb)

	bb2 := p.Get()
	require.Equal(t, 0, bb2.Len())
}

func TestByteBufferPoolDiscardsOversizedBuffers(t *testing.T) {
	p := NewByteBufferPool(8, 16)
	bb := NewByteBuffer(32)
	p.Put(bb) // exceeds maxThreshold, must not panic
}

func TestContainerAndBlockBufferPools(t *testing.T) {
	bb := GetContainerBuffer()
	require.NotNil(t, bb)
	PutContainerBuffer(bb)

	block := GetBlockBuffer()
	require.NotNil(t, block)
	PutBlockBuffer(block)
}

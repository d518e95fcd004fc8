package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInt64SliceHasExactLength(t *testing.T) {
	s, cleanup := GetInt64Slice(10)
	defer cleanup()
	require.Len(t, s, 10)
}

func TestGetFloat64SliceHasExactLength(t *testing.T) {
	s := GetFloat64Slice(5)
	defer PutFloat64Slice(s)
	require.Len(t, s, 5)
}

func TestSlicePoolReusesUnderlyingArray(t *testing.T) {
	s, cleanup := GetInt64Slice(100)
	s[0] = 42
	cleanup()

	s2, cleanup2 := GetInt64Slice(100)
	defer cleanup2()
	require.Len(t, s2, 100)
}

func TestPutFloat64SliceReturnsBufferToPool(t *testing.T) {
	s := GetFloat64Slice(50)
	PutFloat64Slice(s)

	s2 := GetFloat64Slice(50)
	defer PutFloat64Slice(s2)
	require.Len(t, s2, 50)
}

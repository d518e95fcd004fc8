package compress

import (
	"bytes"
	"compress/zlib"
	"testing"

	"github.com/stretchr/testify/require"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestZlibDecompressorRoundTrip(t *testing.T) {
	original := []byte("the quick brown fox jumps over the lazy dog")
	compressed := deflate(t, original)

	d := NewZlibDecompressor()
	out, err := d.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, original, out)
}

func TestZlibDecompressorRejectsGarbage(t *testing.T) {
	d := NewZlibDecompressor()
	_, err := d.Decompress([]byte{0x00, 0x01, 0x02})
	require.Error(t, err)
}

func TestZlibDecompressorDecompressIntoRoundTrip(t *testing.T) {
	original := []byte("the quick brown fox jumps over the lazy dog")
	compressed := deflate(t, original)

	d := NewZlibDecompressor()
	dst := make([]byte, 0, len(original))
	out, err := d.DecompressInto(dst, compressed)
	require.NoError(t, err)
	require.Equal(t, original, out)
}

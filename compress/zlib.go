package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// ZlibDecompressor inflates zlib streams using klauspost/compress, which
// the rest of the retrieved pack already depends on for deflate-family
// decoding.
type ZlibDecompressor struct{}

// NewZlibDecompressor returns the sole Decompressor implementation this
// module needs; the archive format names zlib explicitly and never varies
// the codec per container.
func NewZlibDecompressor() *ZlibDecompressor {
	return &ZlibDecompressor{}
}

// Decompress inflates data, a zlib stream, fully into memory.
func (*ZlibDecompressor) Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// DecompressInto inflates data into dst, which should be pre-sized to the
// known uncompressed length carried in the archive's data-container
// payload. It returns the filled slice, which aliases dst's backing array
// when dst has sufficient capacity.
func (*ZlibDecompressor) DecompressInto(dst []byte, data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	buf := bytes.NewBuffer(dst[:0])
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

package ftdc

import (
	"encoding/binary"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/vstojkovic-mongodb/r2t2/compress"
	"github.com/vstojkovic-mongodb/r2t2/errs"
	"github.com/vstojkovic-mongodb/r2t2/internal/pool"
	"github.com/vstojkovic-mongodb/r2t2/metric"
)

// intoDecompressor is implemented by decompressors that can inflate into a
// caller-supplied buffer. DecodeBlock uses it when available to avoid an
// extra allocation per block on long archives.
type intoDecompressor interface {
	DecompressInto(dst, data []byte) ([]byte, error)
}

// timestampKeySegment is the well-known single-segment reference-document
// field the decoder treats as the block's timestamp column.
const timestampKeySegment = "start"

// Block is the decoded payload of a data container: a timestamp vector and
// one integer value column per remaining metric path, all of matching
// length. Key paths within a block are unique.
type Block struct {
	Timestamps []metric.Instant
	Columns    []BlockColumn
}

// Release returns every column's pooled int64 buffer. Callers must do this
// only once the column values have been copied elsewhere (the dataset
// store copies them into its own float64 columns on append); the slices
// must not be read after Release.
func (b *Block) Release() {
	for i := range b.Columns {
		if r := b.Columns[i].release; r != nil {
			r()
		}
	}
}

// BlockColumn is one metric's decoded series. Values stay integer-valued
// here; the dataset store widens them to float64 on append, since that
// layer needs a NaN sentinel for absent samples.
type BlockColumn struct {
	Key     metric.Path
	Values  []int64
	release func()
}

// DecodeBlock decodes a data container's binary payload into a Block:
// inflate, parse the reference document, walk it to enumerate columns in
// deterministic order, then decode the delta tail against those columns.
func DecodeBlock(payload []byte, decompressor compress.Decompressor) (*Block, error) {
	if len(payload) < 4 {
		return nil, errs.New(errs.KindFormat, "data payload shorter than its own uncompressed-size prefix")
	}
	uncompressedSize := binary.LittleEndian.Uint32(payload[:4])

	var inflated []byte
	var err error
	if id, ok := decompressor.(intoDecompressor); ok {
		buf := pool.GetBlockBuffer()
		defer pool.PutBlockBuffer(buf)
		buf.Grow(int(uncompressedSize))
		inflated, err = id.DecompressInto(buf.Bytes()[:0], payload[4:])
	} else {
		inflated, err = decompressor.Decompress(payload[4:])
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindContainerParse, "inflating block payload", err)
	}
	if uint32(len(inflated)) != uncompressedSize {
		return nil, errs.New(errs.KindFormat, "inflated size does not match declared uncompressed_size")
	}

	if len(inflated) < 4 {
		return nil, errs.New(errs.KindFormat, "inflated payload too short to hold a reference document")
	}
	refDocLen := int(binary.LittleEndian.Uint32(inflated[:4]))
	if refDocLen < 5 || refDocLen > len(inflated) {
		return nil, errs.New(errs.KindFormat, "reference document length out of range")
	}

	refDoc := bson.Raw(inflated[:refDocLen])
	if err := refDoc.Validate(); err != nil {
		return nil, errs.Wrap(errs.KindContainerParse, "parsing reference document", err)
	}

	rest := inflated[refDocLen:]
	if len(rest) < 8 {
		return nil, errs.New(errs.KindFormat, "block missing metric_count/delta_count fields")
	}
	metricCount := int(binary.LittleEndian.Uint32(rest[:4]))
	deltaCount := int(binary.LittleEndian.Uint32(rest[4:8]))
	deltaBytes := rest[8:]

	cols, err := walkReference(refDoc, deltaCount)
	if err != nil {
		return nil, err
	}
	if len(cols) != metricCount {
		return nil, errs.New(errs.KindFormat, "reference document emitted a different metric count than declared")
	}

	stream := newDeltaStream(deltaBytes)
	for _, col := range cols {
		if err := stream.decodeColumn(col, deltaCount); err != nil {
			return nil, err
		}
	}
	if !stream.exhausted() {
		return nil, errs.New(errs.KindFormat, "delta stream left unconsumed bytes or an open zero-run after decoding all columns")
	}

	block := &Block{Columns: make([]BlockColumn, 0, len(cols))}
	for _, col := range cols {
		segs := col.key.Segments()
		if len(segs) == 1 && segs[0] == timestampKeySegment {
			block.Timestamps = make([]metric.Instant, len(col.vals))
			for i, v := range col.vals {
				block.Timestamps[i] = metric.InstantFromMillis(v)
			}
			// Converted to Instants above; the int64 buffer can go back to
			// the pool immediately rather than waiting for Block.Release.
			col.release()
			continue
		}
		block.Columns = append(block.Columns, BlockColumn{Key: col.key, Values: col.vals, release: col.release})
	}
	if block.Timestamps == nil {
		return nil, errs.New(errs.KindFormat, "block has no start column to derive a timestamp vector from")
	}

	return block, nil
}

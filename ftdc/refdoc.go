package ftdc

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/vstojkovic-mongodb/r2t2/errs"
	"github.com/vstojkovic-mongodb/r2t2/format"
	"github.com/vstojkovic-mongodb/r2t2/internal/pool"
	"github.com/vstojkovic-mongodb/r2t2/metric"
)

// column is one metric's seed value and accumulated deltas, discovered
// during the reference-document walk and filled in by the delta stream
// decoder afterward. vals is backed by a pooled int64 buffer sized exactly
// to deltaCount+1, so the delta stream's later appends never reallocate;
// release returns that buffer once the caller is done with it.
type column struct {
	key     metric.Path
	vals    []int64
	release func()
}

// walkReference enumerates the metrics named in doc in deterministic,
// column-major emission order: document fields in document order, array
// elements in index order. This order is load-bearing — the delta tail is
// laid out to match it exactly, and any deviation silently misaligns every
// metric past the first divergence.
func walkReference(doc bson.Raw, deltaCount int) ([]*column, error) {
	var cols []*column
	key := metric.NewKey()
	if err := walkDocument(doc, key, deltaCount, &cols); err != nil {
		return nil, err
	}
	return cols, nil
}

func walkDocument(doc bson.Raw, key *metric.Key, deltaCount int, cols *[]*column) error {
	elems, err := doc.Elements()
	if err != nil {
		return errs.Wrap(errs.KindFormat, "reading reference document elements", err)
	}
	for _, elem := range elems {
		key.Push(elem.Key())
		if err := walkValue(elem.Value(), key, deltaCount, cols); err != nil {
			return err
		}
		key.Truncate(key.Len() - 1)
	}
	return nil
}

func walkArray(arr bson.Raw, key *metric.Key, deltaCount int, cols *[]*column) error {
	elems, err := arr.Elements()
	if err != nil {
		return errs.Wrap(errs.KindFormat, "reading reference array elements", err)
	}
	for i, elem := range elems {
		key.PushIndex(i)
		if err := walkValue(elem.Value(), key, deltaCount, cols); err != nil {
			return err
		}
		key.Truncate(key.Len() - 1)
	}
	return nil
}

// classifyLeaf maps a reference-document field's wire type to the leaf kind
// the block decoder emits it as. EmbeddedDocument and Array are not leaves
// and are never passed here; walkValue recurses into them before
// classification would apply.
func classifyLeaf(t bsontype.Type) format.LeafKind {
	switch t {
	case bsontype.DateTime:
		return format.LeafDateTime
	case bsontype.Timestamp:
		return format.LeafTimestamp
	case bsontype.Int64:
		return format.LeafInt64
	case bsontype.Int32:
		return format.LeafInt32
	case bsontype.Double:
		return format.LeafDouble
	case bsontype.Boolean:
		return format.LeafBool
	default:
		return format.LeafSkipped
	}
}

func walkValue(val bson.RawValue, key *metric.Key, deltaCount int, cols *[]*column) error {
	if val.Type == bsontype.EmbeddedDocument {
		child, ok := val.DocumentOK()
		if !ok {
			return errs.New(errs.KindFormat, "embedded document field has the wrong wire type")
		}
		return walkDocument(child, key, deltaCount, cols)
	}
	if val.Type == bsontype.Array {
		child, ok := val.ArrayOK()
		if !ok {
			return errs.New(errs.KindFormat, "array field has the wrong wire type")
		}
		return walkArray(bson.Raw(child), key, deltaCount, cols)
	}

	switch classifyLeaf(val.Type) {
	case format.LeafDateTime:
		ms, ok := val.DateTimeOK()
		if !ok {
			return errs.New(errs.KindFormat, "datetime field has the wrong wire type")
		}
		emit(key, ms, deltaCount, cols)

	case format.LeafTimestamp:
		t, i, ok := val.TimestampOK()
		if !ok {
			return errs.New(errs.KindFormat, "timestamp field has the wrong wire type")
		}
		key.Push("t")
		emit(key, int64(t), deltaCount, cols)
		key.Truncate(key.Len() - 1)
		key.Push("i")
		emit(key, int64(i), deltaCount, cols)
		key.Truncate(key.Len() - 1)

	case format.LeafInt64:
		v, ok := val.Int64OK()
		if !ok {
			return errs.New(errs.KindFormat, "int64 field has the wrong wire type")
		}
		emit(key, v, deltaCount, cols)

	case format.LeafInt32:
		v, ok := val.Int32OK()
		if !ok {
			return errs.New(errs.KindFormat, "int32 field has the wrong wire type")
		}
		emit(key, int64(v), deltaCount, cols)

	case format.LeafDouble:
		v, ok := val.DoubleOK()
		if !ok {
			return errs.New(errs.KindFormat, "double field has the wrong wire type")
		}
		// Truncated, not rounded: the archive's delta compression is
		// integer-only and fractional parts are lost by design.
		emit(key, int64(v), deltaCount, cols)

	case format.LeafBool:
		v, ok := val.BooleanOK()
		if !ok {
			return errs.New(errs.KindFormat, "boolean field has the wrong wire type")
		}
		n := int64(0)
		if v {
			n = 1
		}
		emit(key, n, deltaCount, cols)

	case format.LeafSkipped:
		// String, null, and any other leaf type: skipped silently, per the
		// reference-document traversal rules.
	}
	return nil
}

// emit records one metric column, seeded with its first sample and
// preallocated for the deltas that will follow it in the tail stream.
func emit(key *metric.Key, seed int64, deltaCount int, cols *[]*column) {
	buf, release := pool.GetInt64Slice(deltaCount + 1)
	buf[0] = seed
	*cols = append(*cols, &column{key: key.Snapshot(), vals: buf[:1], release: release})
}

package ftdc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/vstojkovic-mongodb/r2t2/errs"
	"github.com/vstojkovic-mongodb/r2t2/format"
)

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	return raw
}

// Scenario 1: a single metadata container.
func TestReaderSingleMetadataContainer(t *testing.T) {
	doc := mustMarshal(t, bson.D{
		{Key: "type", Value: int32(0)},
		{Key: "doc", Value: bson.D{{Key: "hostname", Value: "x"}, {Key: "pid", Value: int32(1)}}},
	})

	rd := NewReader(bytes.NewReader(doc))
	kind, raw, err := rd.Next()
	require.NoError(t, err)
	require.Equal(t, format.ContainerMetadata, kind)

	meta, err := ExtractMetadata(raw)
	require.NoError(t, err)

	var decoded struct {
		Hostname string `bson:"hostname"`
		PID      int32  `bson:"pid"`
	}
	require.NoError(t, bson.Unmarshal(meta, &decoded))
	require.Equal(t, "x", decoded.Hostname)
	require.Equal(t, int32(1), decoded.PID)

	_, _, err = rd.Next()
	require.True(t, errs.Is(err, errs.KindEndOfStream))
}

func TestReaderUnknownContainerType(t *testing.T) {
	doc := mustMarshal(t, bson.D{{Key: "type", Value: int32(7)}})
	rd := NewReader(bytes.NewReader(doc))
	_, _, err := rd.Next()
	require.True(t, errs.Is(err, errs.KindUnknownContainerType))
}

func TestReaderSkipAdvancesPastContainer(t *testing.T) {
	first := mustMarshal(t, bson.D{{Key: "type", Value: int32(0)}, {Key: "doc", Value: bson.D{{Key: "a", Value: int32(1)}}}})
	second := mustMarshal(t, bson.D{{Key: "type", Value: int32(0)}, {Key: "doc", Value: bson.D{{Key: "b", Value: int32(2)}}}})

	var buf bytes.Buffer
	buf.Write(first)
	buf.Write(second)

	rd := NewReader(&buf)
	require.NoError(t, rd.Skip())

	kind, raw, err := rd.Next()
	require.NoError(t, err)
	require.Equal(t, format.ContainerMetadata, kind)
	meta, err := ExtractMetadata(raw)
	require.NoError(t, err)
	var decoded struct {
		B int32 `bson:"b"`
	}
	require.NoError(t, bson.Unmarshal(meta, &decoded))
	require.Equal(t, int32(2), decoded.B)
}

func TestExtractMetadataMissingDocIsFormatError(t *testing.T) {
	doc := mustMarshal(t, bson.D{{Key: "type", Value: int32(0)}})
	_, err := ExtractMetadata(doc)
	require.True(t, errs.Is(err, errs.KindFormat))
}

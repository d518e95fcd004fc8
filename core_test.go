package r2t2

import (
	"bytes"
	stdzlib "compress/zlib"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vstojkovic-mongodb/r2t2/metric"
)

func uvarint(v uint64) []byte {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, v)
	return buf[:n]
}

func buildArchiveFile(t *testing.T, startMillis int64) string {
	t.Helper()

	metadata, err := bson.Marshal(bson.D{
		{Key: "type", Value: int32(0)},
		{Key: "doc", Value: bson.D{{Key: "hostname", Value: "host-a"}}},
	})
	require.NoError(t, err)

	refDoc, err := bson.Marshal(bson.D{
		{Key: "start", Value: primitive.DateTime(startMillis)},
		{Key: "cpu", Value: int64(10)},
	})
	require.NoError(t, err)

	var inner bytes.Buffer
	inner.Write(refDoc)
	var counts [8]byte
	binary.LittleEndian.PutUint32(counts[:4], 2) // metric_count: start, cpu
	binary.LittleEndian.PutUint32(counts[4:], 2) // delta_count
	inner.Write(counts[:])
	for _, d := range []uint64{1, 1, 5, 5} {
		inner.Write(uvarint(d))
	}

	var compressed bytes.Buffer
	w := stdzlib.NewWriter(&compressed)
	_, err = w.Write(inner.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var payload bytes.Buffer
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(inner.Len()))
	payload.Write(sizeBuf[:])
	payload.Write(compressed.Bytes())

	dataContainer, err := bson.Marshal(bson.D{
		{Key: "type", Value: int32(1)},
		{Key: "data", Value: primitive.Binary{Subtype: 0x00, Data: payload.Bytes()}},
	})
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "archive.ftdc")
	var buf bytes.Buffer
	buf.Write(metadata)
	buf.Write(dataContainer)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func buildCatalogFile(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	doc := `{"CPU": [{"key": ["cpu"], "name": "CPU Usage"}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestCoreOpenLoadCatalogSampleEndToEnd(t *testing.T) {
	archivePath := buildArchiveFile(t, 1_700_000_000_000)
	catalogPath := buildCatalogFile(t)

	core := NewCore()

	loaded, err := core.OpenArchive(archivePath)
	require.NoError(t, err)
	require.Equal(t, int64(1_700_000_000_000), loaded.Start.Millis())
	require.Len(t, loaded.Transients, 1)

	catalogResult, err := core.LoadCatalog(catalogPath)
	require.NoError(t, err)
	require.Contains(t, catalogResult.Sections, "CPU")
	require.Empty(t, catalogResult.Transients)

	id := catalogResult.Sections["CPU"][0]
	sampled := core.SampleMetrics([]int{id}, [2]metric.Instant{loaded.Start, loaded.End}, 10)
	points := sampled.Series[id]
	require.NotEmpty(t, points)
	require.Equal(t, float64(10), points[0].Value)
}

func TestCoreSampleBeforeOpenReturnsEmptySeries(t *testing.T) {
	core := NewCore()
	sampled := core.SampleMetrics([]int{0}, [2]metric.Instant{0, 1000}, 10)
	require.Empty(t, sampled.Series[0])
}

// Package ftdc implements the container reader and block decoder: the
// layer that turns a raw archive byte stream into metadata documents and
// decoded Blocks.
package ftdc

import (
	"encoding/binary"
	"io"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/vstojkovic-mongodb/r2t2/compress"
	"github.com/vstojkovic-mongodb/r2t2/errs"
	"github.com/vstojkovic-mongodb/r2t2/format"
	"github.com/vstojkovic-mongodb/r2t2/internal/pool"
)

// lengthPrefixSize is the size of a container's own leading length field,
// which BSON documents already carry as their first four bytes, so a
// container is simply a raw BSON document read straight off the stream.
const lengthPrefixSize = 4

// Reader reads a stream of length-prefixed container documents, classifying
// each as metadata or data.
type Reader struct {
	r io.Reader
}

// NewReader wraps r as a container stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next reads and classifies the next container. An end of stream at the
// container boundary is reported as an *errs.Error of KindEndOfStream, the
// one non-fatal outcome this method can return; the outer ingestion loop
// treats it as normal termination.
func (rd *Reader) Next() (format.ContainerType, bson.Raw, error) {
	var lenBuf [lengthPrefixSize]byte
	if _, err := io.ReadFull(rd.r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return 0, nil, errs.EndOfStream()
		}
		if err == io.ErrUnexpectedEOF {
			return 0, nil, errs.Wrap(errs.KindContainerParse, "stream ends inside a container length", err)
		}
		return 0, nil, errs.Wrap(errs.KindIO, "reading container length", err)
	}

	length := binary.LittleEndian.Uint32(lenBuf[:])
	if length < lengthPrefixSize {
		return 0, nil, errs.New(errs.KindContainerParse, "container length shorter than its own length field")
	}

	buf := pool.GetContainerBuffer()
	defer pool.PutContainerBuffer(buf)
	buf.Grow(int(length))
	buf.SetLength(int(length))
	copy(buf.Bytes(), lenBuf[:])

	if _, err := io.ReadFull(rd.r, buf.Bytes()[lengthPrefixSize:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, nil, errs.Wrap(errs.KindContainerParse, "stream ends inside a container body", err)
		}
		return 0, nil, errs.Wrap(errs.KindIO, "reading container body", err)
	}

	doc := make(bson.Raw, length)
	copy(doc, buf.Bytes())
	if err := doc.Validate(); err != nil {
		return 0, nil, errs.Wrap(errs.KindContainerParse, "parsing container body", err)
	}

	typeVal, err := doc.LookupErr("type")
	if err != nil {
		return 0, nil, errs.Wrap(errs.KindFormat, "container missing type field", err)
	}
	typeInt, ok := typeVal.Int32OK()
	if !ok {
		return 0, nil, errs.New(errs.KindFormat, "container type field is not an integer")
	}

	switch format.ContainerType(typeInt) {
	case format.ContainerMetadata:
		return format.ContainerMetadata, doc, nil
	case format.ContainerData:
		return format.ContainerData, doc, nil
	default:
		return 0, nil, errs.UnknownContainerType(int(typeInt))
	}
}

// Skip advances past the next container without parsing it, seeking
// relative by length minus the length field itself. Used to scan past
// uninteresting containers cheaply.
func (rd *Reader) Skip() error {
	var lenBuf [lengthPrefixSize]byte
	if _, err := io.ReadFull(rd.r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return errs.EndOfStream()
		}
		if err == io.ErrUnexpectedEOF {
			return errs.Wrap(errs.KindContainerParse, "stream ends inside a container length", err)
		}
		return errs.Wrap(errs.KindIO, "reading container length", err)
	}

	length := binary.LittleEndian.Uint32(lenBuf[:])
	if length < lengthPrefixSize {
		return errs.New(errs.KindContainerParse, "container length shorter than its own length field")
	}

	remaining := int64(length) - lengthPrefixSize
	if seeker, ok := rd.r.(io.Seeker); ok {
		if _, err := seeker.Seek(remaining, io.SeekCurrent); err != nil {
			return errs.Wrap(errs.KindIO, "seeking past container", err)
		}
		return nil
	}

	if _, err := io.CopyN(io.Discard, rd.r, remaining); err != nil {
		if err == io.EOF {
			return errs.Wrap(errs.KindContainerParse, "stream ends inside a container body", err)
		}
		return errs.Wrap(errs.KindIO, "discarding container", err)
	}
	return nil
}

// ExtractMetadata returns the document found at key "doc" in a metadata
// container. A missing or wrong-typed field is a format error.
func ExtractMetadata(doc bson.Raw) (bson.Raw, error) {
	val, err := doc.LookupErr("doc")
	if err != nil {
		return nil, errs.Wrap(errs.KindFormat, "metadata container missing doc field", err)
	}
	embedded, ok := val.DocumentOK()
	if !ok {
		return nil, errs.New(errs.KindFormat, "metadata container's doc field is not a document")
	}
	return embedded, nil
}

// ExtractData decodes a data container's block, delegating the heavy
// lifting to DecodeBlock.
func ExtractData(doc bson.Raw, decompressor compress.Decompressor) (*Block, error) {
	val, err := doc.LookupErr("data")
	if err != nil {
		return nil, errs.Wrap(errs.KindFormat, "data container missing data field", err)
	}
	_, payload, ok := val.BinaryOK()
	if !ok {
		return nil, errs.New(errs.KindFormat, "data container's data field is not binary")
	}
	return DecodeBlock(payload, decompressor)
}

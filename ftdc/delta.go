package ftdc

import (
	"encoding/binary"

	"github.com/vstojkovic-mongodb/r2t2/errs"
)

// deltaStream decodes the block's variable-length-integer tail. Its
// zero-run counter is shared across every column it decodes — the run
// persists across column boundaries and is not reset when a new column
// starts, per the single-zero-run-counter design note.
type deltaStream struct {
	data             []byte
	pos              int
	zeroRunRemaining int
}

func newDeltaStream(data []byte) *deltaStream {
	return &deltaStream{data: data}
}

// readVarint reads one 7-bit-per-byte little-endian continuation varint,
// the same format encoding/binary.Uvarint already implements.
func (s *deltaStream) readVarint() (uint64, error) {
	v, n := binary.Uvarint(s.data[s.pos:])
	if n == 0 {
		return 0, errs.New(errs.KindContainerParse, "delta stream truncated mid varint")
	}
	if n < 0 {
		return 0, errs.New(errs.KindNumericOverflow, "delta stream varint overflows 64 bits")
	}
	s.pos += n
	return v, nil
}

// decodeColumn appends deltaCount further samples to col by repeatedly
// consuming either a run of zero deltas or one real delta, advancing the
// shared zero-run state as it goes.
func (s *deltaStream) decodeColumn(col *column, deltaCount int) error {
	value := col.vals[0]
	need := deltaCount

	for need > 0 {
		if s.zeroRunRemaining > 0 {
			take := s.zeroRunRemaining
			if take > need {
				take = need
			}
			for i := 0; i < take; i++ {
				col.vals = append(col.vals, value)
			}
			s.zeroRunRemaining -= take
			need -= take
			continue
		}

		d, err := s.readVarint()
		if err != nil {
			return err
		}

		if d != 0 {
			// d's bit pattern is the two's-complement signed delta, zero
			// extended to 64 bits by the unsigned varint encoding; int64(d)
			// reinterprets those bits, and Go's defined int64 overflow
			// performs the required wrapping add.
			delta := int64(d)
			value += delta
			col.vals = append(col.vals, value)
			need--
			continue
		}

		k, err := s.readVarint()
		if err != nil {
			return err
		}
		s.zeroRunRemaining = int(k) + 1
	}

	return nil
}

// exhausted reports whether the stream has been consumed to its last byte
// with no dangling zero-run, the post-condition checked once every column
// has been decoded.
func (s *deltaStream) exhausted() bool {
	return s.pos == len(s.data) && s.zeroRunRemaining == 0
}

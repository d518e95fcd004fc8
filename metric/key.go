// Package metric holds the data types shared by the block decoder, the
// descriptor table and the dataset store: key paths, time instants and
// descriptors.
package metric

import (
	"strconv"
	"strings"

	"github.com/vstojkovic-mongodb/r2t2/internal/hash"
)

// sep is the separator used when concatenating key path segments for
// hashing, equality and ordering. It cannot appear in a BSON field name, so
// ["a","b"] and ["ab"] never collide.
const sep = byte(0)

// Key is an append-only builder for a dotted metric path. It stores the
// flat concatenation of its segments alongside per-segment boundary
// offsets, so Push is O(segment length), Truncate is O(1), and Len never
// allocates.
//
// The zero value is not ready for use; call NewKey.
type Key struct {
	buf     []byte
	offsets []int // offsets[i] is where segment i begins in buf, at its leading separator for i > 0; offsets[len] == len(buf)
	hash    uint64
	hashOK  bool
}

// NewKey returns an empty key path builder.
func NewKey() *Key {
	return &Key{offsets: []int{0}}
}

// Push appends a new trailing segment.
func (k *Key) Push(segment string) {
	if len(k.buf) > 0 {
		k.buf = append(k.buf, sep)
	}
	k.buf = append(k.buf, segment...)
	k.offsets = append(k.offsets, len(k.buf))
	k.hashOK = false
}

// PushIndex appends an array index as a decimal-string segment, per the
// reference-document traversal rule that array elements are keyed by their
// index.
func (k *Key) PushIndex(i int) {
	k.Push(strconv.Itoa(i))
}

// Len returns the number of segments currently pushed.
func (k *Key) Len() int {
	return len(k.offsets) - 1
}

// Truncate drops segments back down to length n.
func (k *Key) Truncate(n int) {
	if n >= k.Len() {
		return
	}
	cut := k.offsets[n]
	k.buf = k.buf[:cut]
	k.offsets = k.offsets[:n+1]
	k.hashOK = false
}

// Segments returns the pushed segments as a freshly allocated slice.
func (k *Key) Segments() []string {
	out := make([]string, k.Len())
	for i := range out {
		out[i] = string(k.buf[k.segStart(i):k.segEnd(i)])
	}
	return out
}

func (k *Key) segStart(i int) int {
	start := k.offsets[i]
	if i > 0 {
		start++ // skip the separator
	}
	return start
}

func (k *Key) segEnd(i int) int {
	return k.offsets[i+1]
}

// Snapshot freezes the builder's current state into an immutable Path,
// suitable for storing inside a dataset column or a descriptor.
func (k *Key) Snapshot() Path {
	raw := make([]byte, len(k.buf))
	copy(raw, k.buf)
	return Path{raw: string(raw), h: k.Hash()}
}

// Hash returns the cached xxHash64 of the concatenated form, recomputing it
// only when the builder has changed since the last call.
func (k *Key) Hash() uint64 {
	if !k.hashOK {
		k.hash = hash.ID(string(k.buf))
		k.hashOK = true
	}
	return k.hash
}

// String renders the key path with its NUL separators replaced by dots,
// for diagnostics only; equality and ordering never use this form.
func (k *Key) String() string {
	return strings.ReplaceAll(string(k.buf), string(rune(sep)), ".")
}

// Path is an immutable, stored-by-value key path produced by Key.Snapshot.
// Equality, hashing and ordering all operate on the concatenated form with
// the fixed NUL separator, per the key path data model.
type Path struct {
	raw string
	h   uint64
}

// NewPath builds a Path directly from a list of segments, without going
// through the incremental Key builder. Used by the descriptor table and
// the catalog loader, which both receive complete paths up front.
func NewPath(segments ...string) Path {
	k := NewKey()
	for _, s := range segments {
		k.Push(s)
	}
	return k.Snapshot()
}

// Equal reports whether two paths have the same concatenated form.
func (p Path) Equal(other Path) bool {
	return p.raw == other.raw
}

// Less implements the lexicographic ordering over the concatenated form.
func (p Path) Less(other Path) bool {
	return p.raw < other.raw
}

// Hash returns the cached xxHash64 of the concatenated form.
func (p Path) Hash() uint64 {
	return p.h
}

// RawKey returns the NUL-joined concatenated form. It is suitable as a map
// key for packages (the dataset store, the sampler) that need to index
// structures by path without going through the descriptor table; Equal and
// Hash remain the preferred comparison for everything else.
func (p Path) RawKey() string {
	return p.raw
}

// Segments splits the path back into its component segments.
func (p Path) Segments() []string {
	if p.raw == "" {
		return nil
	}
	return strings.Split(p.raw, string(rune(sep)))
}

// JoinedWithSpaces renders the segments space-joined, the default display
// name convention for descriptors with no catalog-supplied name.
func (p Path) JoinedWithSpaces() string {
	return strings.Join(p.Segments(), " ")
}

// String renders the path with dot separators, for diagnostics.
func (p Path) String() string {
	return strings.Join(p.Segments(), ".")
}

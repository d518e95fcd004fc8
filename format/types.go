// Package format defines the small integer-tagged enums used by the wire
// format: the container type tag and the reference-document leaf kinds the
// block decoder recognizes while walking the tree.
package format

type ContainerType int32

const (
	ContainerMetadata ContainerType = 0
	ContainerData     ContainerType = 1
)

func (c ContainerType) String() string {
	switch c {
	case ContainerMetadata:
		return "metadata"
	case ContainerData:
		return "data"
	default:
		return "unknown"
	}
}

// LeafKind classifies a reference-document field for metric emission
// during the tree walk. Fields whose kind is LeafSkipped are silently
// excluded from the emitted column list.
type LeafKind uint8

const (
	LeafSkipped LeafKind = iota
	LeafDateTime
	LeafTimestamp // internal BSON timestamp (t, i) pair; split into two metrics
	LeafInt64
	LeafInt32
	LeafDouble
	LeafBool
)

func (k LeafKind) String() string {
	switch k {
	case LeafDateTime:
		return "datetime"
	case LeafTimestamp:
		return "timestamp"
	case LeafInt64:
		return "int64"
	case LeafInt32:
		return "int32"
	case LeafDouble:
		return "double"
	case LeafBool:
		return "bool"
	default:
		return "skipped"
	}
}

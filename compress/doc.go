// Package compress wraps the single decompression codec the archive format
// uses: zlib. A data container's payload is always zlib-deflated (see the
// data container external interface); there is no algorithm selection here,
// unlike formats that support several interchangeable codecs.
package compress

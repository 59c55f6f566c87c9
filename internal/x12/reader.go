// =============================================================================
// EDI Claims Converter - Streaming Segment Reader
// =============================================================================
//
// Reader provides memory-efficient tokenizing for large X12 files. Instead of
// loading the whole interchange into memory, it yields one segment at a time.
//
// USAGE:
//   reader := x12.NewReader(file)
//   for reader.Next() {
//       segment := reader.Segment()
//       // Process the segment...
//   }
//   if err := reader.Err(); err != nil {
//       return err
//   }
//
// =============================================================================

package x12

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// maxSegmentSize caps a single segment. Real segments are a few hundred bytes;
// the cap only protects against files that are missing terminators entirely.
const maxSegmentSize = 1024 * 1024

// Reader streams segments from an io.Reader.
type Reader struct {
	scanner *bufio.Scanner
	current Segment
	index   int
	err     error
}

// NewReader creates a Reader over r using the default delimiters.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSegmentSize)
	scanner.Split(splitSegments)

	return &Reader{
		scanner: scanner,
		index:   -1,
	}
}

// Next advances to the next non-empty segment. Returns false at end of input
// or on error.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}

	for r.scanner.Scan() {
		raw := strings.TrimSpace(r.scanner.Text())
		if raw == "" {
			continue
		}
		r.current = NewSegment(raw)
		r.index++
		return true
	}

	r.err = r.scanner.Err()
	return false
}

// Segment returns the current segment.
func (r *Reader) Segment() Segment {
	return r.current
}

// Index returns the 0-based position of the current segment among the
// non-empty segments read so far.
func (r *Reader) Index() int {
	return r.index
}

// Err returns the first read error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}

// splitSegments is a bufio.SplitFunc that yields the bytes between segment
// terminators.
func splitSegments(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexByte(data, SegmentTerminator[0]); i >= 0 {
		return i + 1, data[:i], nil
	}

	// Final segment without a trailing terminator.
	if atEOF {
		return len(data), data, nil
	}

	return 0, nil, nil
}

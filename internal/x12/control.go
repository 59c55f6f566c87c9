// =============================================================================
// EDI Claims Converter - Control Numbers
// =============================================================================
//
// Every interchange (ISA13/IEA02), functional group (GS06/GE02), and
// transaction set (ST02/SE02) carries a control number that must match
// between its header and trailer. Receivers use them to detect duplicates, so
// two files produced by the same process must not share one.
//
// SOURCES:
//   - Sequence   : monotonic counter, safe for concurrent use (default)
//   - UUIDSource : digits derived from a random UUID, for multi-process setups
//
// =============================================================================

package x12

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ControlNumberSource hands out zero-padded numeric control numbers.
type ControlNumberSource interface {
	// Next returns a control number exactly width digits long.
	Next(width int) string
}

// =============================================================================
// SEQUENCE
// =============================================================================

// Sequence is a monotonic control number source. Values are taken modulo
// 10^width, so a sequence only repeats after 10^width calls for a given width.
type Sequence struct {
	counter atomic.Uint64
}

// NewSequence creates a sequence whose first value is start.
func NewSequence(start uint64) *Sequence {
	s := &Sequence{}
	if start > 0 {
		s.counter.Store(start - 1)
	}
	return s
}

// Next implements ControlNumberSource.
func (s *Sequence) Next(width int) string {
	return formatControlNumber(s.counter.Add(1), width)
}

// defaultSequence is shared by generators that were not given a source.
// It is seeded from the clock so that consecutive process runs do not start
// from the same value.
var defaultSequence = NewSequence(uint64(time.Now().UnixNano()/int64(time.Millisecond)) % 1_000_000_000)

// DefaultControlNumbers returns the process-wide control number sequence.
func DefaultControlNumbers() ControlNumberSource {
	return defaultSequence
}

// =============================================================================
// UUID SOURCE
// =============================================================================

// UUIDSource derives control numbers from random (v4) UUIDs.
type UUIDSource struct{}

// Next implements ControlNumberSource.
func (UUIDSource) Next(width int) string {
	id := uuid.New()
	return formatControlNumber(binary.BigEndian.Uint64(id[:8]), width)
}

// =============================================================================
// HELPERS
// =============================================================================

// formatControlNumber reduces n to width digits and zero-pads it.
func formatControlNumber(n uint64, width int) string {
	if width <= 0 {
		return ""
	}
	if width < 20 {
		n %= pow10(width)
	}
	return fmt.Sprintf("%0*d", width, n)
}

func pow10(n int) uint64 {
	result := uint64(1)
	for i := 0; i < n; i++ {
		result *= 10
	}
	return result
}

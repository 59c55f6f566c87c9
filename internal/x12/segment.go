// =============================================================================
// EDI Claims Converter - X12 Segment Tokenizer
// =============================================================================
//
// This module splits raw X12 text into segments and elements. It is the shared
// low-level layer used by both the 835 parser and the 837/835 generators.
//
// WIRE FORMAT:
//   ISA*00*          *00*          *ZZ*SENDER         *...~
//   GS*HP*SENDER*RECEIVER*20231215*1200*000000001*X*005010X221A1~
//   CLP*CLAIM123*1*100.00*80.00*20.00*12*123456789*11*1~
//
//   - Segments are terminated by '~'
//   - Elements are separated by '*'
//   - Sub-elements (composites) are separated by ':'
//   - Element 0 is always the segment tag (ISA, CLP, SVC, ...)
//
// LIMITATIONS:
//   - No release/escape character is supported. A literal '~' or '*' inside
//     data will split the segment.
//   - The delimiters declared inside the ISA segment are ignored; the default
//     delimiters above are always assumed.
//
// =============================================================================

package x12

import (
	"strings"
)

// =============================================================================
// DELIMITERS
// =============================================================================

const (
	// SegmentTerminator ends every segment.
	SegmentTerminator = "~"

	// ElementSeparator separates elements within a segment.
	ElementSeparator = "*"

	// SubElementSeparator separates the components of a composite element.
	SubElementSeparator = ":"
)

// =============================================================================
// SEGMENT
// =============================================================================

// Segment is a single X12 segment split into its elements.
// Element 0 is the segment tag.
type Segment []string

// NewSegment splits a single raw segment (without terminator) into elements.
func NewSegment(raw string) Segment {
	return Segment(strings.Split(raw, ElementSeparator))
}

// Tag returns the segment identifier (element 0).
func (s Segment) Tag() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Element returns the element at index i, counted from the tag.
// Out-of-range indexes return an empty string so that callers never panic
// on short segments.
func (s Segment) Element(i int) string {
	if i < 0 || i >= len(s) {
		return ""
	}
	return s[i]
}

// Has reports whether element i is present (even if empty).
func (s Segment) Has(i int) bool {
	return i >= 0 && i < len(s)
}

// Len returns the number of elements including the tag.
func (s Segment) Len() int {
	return len(s)
}

// Components splits element i on the sub-element separator.
func (s Segment) Components(i int) []string {
	return strings.Split(s.Element(i), SubElementSeparator)
}

// String joins the segment back together without a terminator.
func (s Segment) String() string {
	return strings.Join(s, ElementSeparator)
}

// =============================================================================
// TOKENIZER
// =============================================================================

// Tokenize splits raw X12 text into an ordered list of segments.
//
// PARAMETERS:
//   - text: The raw file content.
//
// RETURNS:
//   - The segments in their original order. Whitespace around each segment is
//     trimmed (files often carry a newline after every '~') and empty segments
//     are dropped.
func Tokenize(text string) []Segment {
	rawSegments := strings.Split(text, SegmentTerminator)
	segments := make([]Segment, 0, len(rawSegments))

	for _, raw := range rawSegments {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		segments = append(segments, NewSegment(raw))
	}

	return segments
}

// Join renders segments as X12 text: segments joined by the terminator, with
// a trailing terminator after the last one.
func Join(segments []Segment) string {
	var builder strings.Builder
	for _, segment := range segments {
		builder.WriteString(segment.String())
		builder.WriteString(SegmentTerminator)
	}
	return builder.String()
}

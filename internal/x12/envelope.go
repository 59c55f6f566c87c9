// =============================================================================
// EDI Claims Converter - X12 Envelopes
// =============================================================================
//
// Builder collects outgoing segments. Envelope writes the ISA/GS/ST header
// and the SE/GE/IEA trailer around them, with SE01 counting ST through SE.
//
// =============================================================================

package x12

import (
	"strconv"
	"time"
)

// =============================================================================
// BUILDER
// =============================================================================

// Builder accumulates segments for an outgoing document.
type Builder struct {
	segments []Segment
}

// Add appends a segment made of tag followed by elements.
func (b *Builder) Add(tag string, elements ...string) {
	seg := make(Segment, 0, len(elements)+1)
	seg = append(seg, tag)
	seg = append(seg, elements...)
	b.segments = append(b.segments, seg)
}

// Len returns the number of segments added so far.
func (b *Builder) Len() int {
	return len(b.segments)
}

// Segments returns the accumulated segments.
func (b *Builder) Segments() []Segment {
	return b.segments
}

// String renders the document with a trailing terminator.
func (b *Builder) String() string {
	return Join(b.segments)
}

// =============================================================================
// ENVELOPE
// =============================================================================

// Envelope describes the ISA/GS/ST headers and matching trailers around a
// single transaction set.
type Envelope struct {
	SenderID   string
	ReceiverID string

	// UsageIndicator is ISA15: UsageProduction or UsageTest.
	UsageIndicator string

	// FunctionalID is GS01 (HP for 835, HC for 837).
	FunctionalID string

	// TransactionSetID is ST01 ("835" or "837").
	TransactionSetID string

	// GuideVersion is written to GS08 and ST03.
	GuideVersion string

	InterchangeControlNumber    string
	GroupControlNumber          string
	TransactionSetControlNumber string

	Timestamp time.Time
}

// AssignControlNumbers draws the three control numbers from source.
func (e *Envelope) AssignControlNumbers(source ControlNumberSource) {
	e.InterchangeControlNumber = source.Next(ISALenControlNumber)
	e.GroupControlNumber = source.Next(GroupControlNumberLen)
	e.TransactionSetControlNumber = source.Next(TransactionControlNumberLen)
}

// WriteHeader adds the ISA, GS and ST segments.
func (e Envelope) WriteHeader(b *Builder) {
	usage := e.UsageIndicator
	if usage == "" {
		usage = UsageProduction
	}

	b.Add(TagISA,
		"00", Blank(ISALenAuthInfo),
		"00", Blank(ISALenSecurityInfo),
		"ZZ", PadRight(e.SenderID, ISALenInterchangeID),
		"ZZ", PadRight(e.ReceiverID, ISALenInterchangeID),
		FormatShortDate(e.Timestamp), FormatTime(e.Timestamp),
		"U", InterchangeVersion,
		e.InterchangeControlNumber,
		"0", usage, SubElementSeparator,
	)

	b.Add(TagGS,
		e.FunctionalID,
		e.SenderID,
		e.ReceiverID,
		FormatDate(e.Timestamp),
		FormatTime(e.Timestamp),
		e.GroupControlNumber,
		"X", e.GuideVersion,
	)

	b.Add(TagST, e.TransactionSetID, e.TransactionSetControlNumber, e.GuideVersion)
}

// WriteTrailer adds the SE, GE and IEA segments. The SE count is the number
// of segments in the builder, including the SE itself.
func (e Envelope) WriteTrailer(b *Builder) {
	b.Add(TagSE, strconv.Itoa(b.Len()+1), e.TransactionSetControlNumber)
	b.Add(TagGE, "1", e.GroupControlNumber)
	b.Add(TagIEA, "1", e.InterchangeControlNumber)
}

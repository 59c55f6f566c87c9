// =============================================================================
// EDI Claims Converter - 835 Parser
// =============================================================================
//
// This module decodes an X12 835 remittance file into a RemittanceAdvice.
//
// HOW IT WORKS:
//   1. Segments are read in file order (from a string or a streaming reader)
//   2. Each segment is dispatched on its tag
//   3. A small parse state tracks the current claim and service line so that
//      CAS, NM1, SVC, AMT and DTM segments attach to the right loop
//
// SEGMENTS INTERPRETED:
//   ISA  interchange control number
//   N1   payer name (PR qualifier)
//   REF  payer id (2U qualifier)
//   TRN  check / EFT trace number
//   BPR  total payment, payment method, payment date
//   DTM  405 production date, 472 service line date, 232 claim date
//   CLP  opens a claim
//   CAS  claim adjustments
//   NM1  patient (QC qualifier)
//   SVC  opens a service line
//   AMT  allowed (AU) and discount (D) amounts
//
// Every other segment, including PLB provider adjustments, is skipped.
//
// =============================================================================

package era

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/edi-claims-converter/internal/x12"
)

// ErrMissingElement is the cause of a ParseError raised for a segment that
// lacks an element the parser cannot do without.
var ErrMissingElement = errors.New("missing required element")

// ParseError reports a segment that could not be decoded.
type ParseError struct {
	// Index is the zero-based position of the segment in the file.
	Index int

	// Tag is the offending segment's tag ("" for reader failures).
	Tag string

	// Err is the underlying cause.
	Err error
}

func (e *ParseError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("failed to parse EDI 835 file: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse EDI 835 file: %s segment %d: %v", e.Tag, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// Parse decodes 835 text held in memory.
//
// PARAMETERS:
//   - text: the complete file contents
//
// RETURNS:
//   - *RemittanceAdvice: the decoded remittance
//   - error: a *ParseError when a segment is malformed
func Parse(text string) (*RemittanceAdvice, error) {
	state := newParseState()
	for i, seg := range x12.Tokenize(text) {
		if err := state.apply(i, seg); err != nil {
			return nil, err
		}
	}
	return state.remit, nil
}

// ParseReader decodes an 835 stream segment by segment without loading the
// whole file into memory.
func ParseReader(r io.Reader) (*RemittanceAdvice, error) {
	state := newParseState()
	reader := x12.NewReader(r)
	for reader.Next() {
		if err := state.apply(reader.Index(), reader.Segment()); err != nil {
			return nil, err
		}
	}
	if err := reader.Err(); err != nil {
		return nil, &ParseError{Index: reader.Index(), Err: err}
	}
	return state.remit, nil
}

// =============================================================================
// PARSE STATE
// =============================================================================

// parseState holds the loop context while walking the segments.
// claim and line are indices into remit.Claims and that claim's ServiceLines;
// -1 means "none open".
type parseState struct {
	remit *RemittanceAdvice
	claim int
	line  int
}

func newParseState() *parseState {
	return &parseState{
		remit: &RemittanceAdvice{Claims: []ClaimPayment{}},
		claim: -1,
		line:  -1,
	}
}

func (s *parseState) currentClaim() *ClaimPayment {
	if s.claim < 0 {
		return nil
	}
	return &s.remit.Claims[s.claim]
}

func (s *parseState) currentLine() *ServiceLine {
	claim := s.currentClaim()
	if claim == nil || s.line < 0 {
		return nil
	}
	return &claim.ServiceLines[s.line]
}

// apply folds one segment into the state.
func (s *parseState) apply(index int, seg x12.Segment) error {
	switch seg.Tag() {
	case x12.TagISA:
		s.remit.InterchangeControlNumber = strings.TrimSpace(seg.Element(x12.ISAIndexControlNumber))

	case x12.TagN1:
		if seg.Element(1) == "PR" {
			s.remit.PayerName = seg.Element(2)
		}

	case x12.TagREF:
		if seg.Element(1) == "2U" {
			s.remit.PayerID = seg.Element(2)
		}

	case x12.TagTRN:
		if seg.Element(1) == "1" {
			s.remit.CheckNumber = seg.Element(2)
		}

	case x12.TagBPR:
		s.applyBPR(seg)

	case x12.TagDTM:
		s.applyDTM(seg)

	case x12.TagCLP:
		s.applyCLP(seg)

	case x12.TagCAS:
		s.applyCAS(seg)

	case x12.TagNM1:
		if claim := s.currentClaim(); claim != nil && seg.Element(1) == "QC" {
			claim.PatientName = strings.TrimSpace(seg.Element(4) + " " + seg.Element(3))
			claim.PatientID = seg.Element(9)
		}

	case x12.TagSVC:
		if err := s.applySVC(seg); err != nil {
			return &ParseError{Index: index, Tag: x12.TagSVC, Err: err}
		}

	case x12.TagAMT:
		s.applyAMT(seg)
	}

	return nil
}

func (s *parseState) applyBPR(seg x12.Segment) {
	s.remit.TotalPaymentAmount = x12.ParseAmount(seg.Element(2))
	s.remit.PaymentMethod = paymentMethodFromCode(seg.Element(4))
	if date := seg.Element(16); date != "" {
		s.remit.CheckDate = x12.FormatEDIDate(date)
	}
}

func (s *parseState) applyDTM(seg x12.Segment) {
	date := x12.FormatEDIDate(seg.Element(2))
	claim := s.currentClaim()

	switch seg.Element(1) {
	case "405":
		if claim == nil {
			s.remit.CheckDate = date
		}
	case "472":
		if line := s.currentLine(); line != nil {
			line.ServiceDate = date
		}
	case "232":
		if claim != nil && s.currentLine() == nil {
			claim.ServiceDate = date
		}
	}
}

func (s *parseState) applyCLP(seg x12.Segment) {
	s.remit.Claims = append(s.remit.Claims, ClaimPayment{
		ClaimNumber:                 seg.Element(1),
		StatusCode:                  seg.Element(2),
		TotalChargeAmount:           x12.ParseAmount(seg.Element(3)),
		PaymentAmount:               x12.ParseAmount(seg.Element(4)),
		PatientResponsibilityAmount: x12.ParseAmount(seg.Element(5)),
		FilingIndicatorCode:         seg.Element(6),
		PayerClaimControlNumber:     seg.Element(7),
		FacilityTypeCode:            seg.Element(8),
		FrequencyCode:               seg.Element(9),
		ServiceLines:                []ServiceLine{},
		Adjustments:                 []AdjustmentGroup{},
	})
	s.claim = len(s.remit.Claims) - 1
	s.line = -1
}

// applyCAS reads reason/amount/quantity triples starting at element 2.
// A triple with an empty reason code is dropped.
func (s *parseState) applyCAS(seg x12.Segment) {
	claim := s.currentClaim()
	if claim == nil {
		return
	}

	group := AdjustmentGroup{
		GroupCode:   seg.Element(1),
		Adjustments: []Adjustment{},
	}
	for i := 2; i < seg.Len(); i += 3 {
		reason := seg.Element(i)
		if reason == "" {
			continue
		}
		group.Adjustments = append(group.Adjustments, Adjustment{
			ReasonCode: reason,
			Amount:     x12.ParseAmount(seg.Element(i + 1)),
			Quantity:   seg.Element(i + 2),
		})
	}
	claim.Adjustments = append(claim.Adjustments, group)
}

func (s *parseState) applySVC(seg x12.Segment) error {
	claim := s.currentClaim()
	if claim == nil {
		return nil
	}
	if !seg.Has(1) {
		return fmt.Errorf("SVC01 composite medical procedure: %w", ErrMissingElement)
	}

	claim.ServiceLines = append(claim.ServiceLines, ServiceLine{
		ProcedureCode: procedureCode(seg),
		ChargeAmount:  x12.ParseAmount(seg.Element(2)),
		PaymentAmount: x12.ParseAmount(seg.Element(3)),
		Units:         seg.Element(5),
		Adjustments:   []AdjustmentGroup{},
	})
	s.line = len(claim.ServiceLines) - 1
	return nil
}

func (s *parseState) applyAMT(seg x12.Segment) {
	claim := s.currentClaim()
	if claim == nil {
		return
	}

	amount := x12.ParseAmount(seg.Element(2))
	switch seg.Element(1) {
	case "AU":
		claim.AllowedAmount = &amount
	case "D":
		claim.DiscountAmount = &amount
	}
}

// procedureCode returns the code component of SVC01 ("HC:99213:25" gives
// "99213"). Modifiers are dropped; a composite without a code component is
// returned whole.
func procedureCode(seg x12.Segment) string {
	components := seg.Components(1)
	if len(components) > 1 && components[1] != "" {
		return components[1]
	}
	return seg.Element(1)
}

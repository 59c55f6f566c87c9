// =============================================================================
// EDI Claims Converter - 835 Structural Validator
// =============================================================================
//
// Validate835 looks for the ISA, BPR and CLP markers in raw 835 text before
// it is parsed. Amounts and loops are left to the parser.
//
// =============================================================================

package era

import (
	"strings"

	"github.com/ginjaninja78/edi-claims-converter/internal/types"
)

// Validation messages reported by Validate835.
const (
	MsgFileEmpty  = "File is empty"
	MsgMissingISA = "Missing ISA (Interchange Control Header) segment - not a valid EDI file"
	MsgMissingBPR = "Missing BPR (Financial Information) segment - not a valid 835 file"
	MsgMissingCLP = "No claim payment information found (missing CLP segments)"
)

// Validate835 runs a cheap structural pre-check on raw 835 text before it is
// handed to Parse. It only looks for the segments a remittance cannot be
// posted without; it does not check envelopes or segment order.
func Validate835(text string) types.ValidationResult {
	if strings.TrimSpace(text) == "" {
		return types.NewValidationResult([]string{MsgFileEmpty})
	}

	var errors []string
	if !strings.Contains(text, x12Marker("ISA")) {
		errors = append(errors, MsgMissingISA)
	}
	if !strings.Contains(text, x12Marker("BPR")) {
		errors = append(errors, MsgMissingBPR)
	}
	if !strings.Contains(text, x12Marker("CLP")) {
		errors = append(errors, MsgMissingCLP)
	}

	return types.NewValidationResult(errors)
}

func x12Marker(tag string) string {
	return tag + "*"
}

// =============================================================================
// EDI Claims Converter - 837P Claim Validator
// =============================================================================
//
// ValidateClaimData gates claims before generation. The generator itself
// never rejects input.
//
// =============================================================================

package claim

import (
	"strings"

	"github.com/ginjaninja78/edi-claims-converter/internal/types"
)

// Validation messages reported by ValidateClaimData, in check order.
const (
	MsgPatientRequired     = "Patient information is required"
	MsgPatientNameRequired = "Patient name is required"
	MsgPatientDOBRequired  = "Patient date of birth is required"
	MsgProviderRequired    = "Provider information is required"
	MsgAmountPositive      = "Claim amount must be greater than 0"
	MsgServiceDateRequired = "Service date is required"
	MsgDiagnosisRequired   = "At least one diagnosis code is required"
	MsgProcedureRequired   = "At least one procedure code is required"
)

// ValidateClaimData checks that a claim carries the data a payer needs
// before an 837 is generated for it. All problems are collected; the
// function never stops at the first one.
func ValidateClaimData(claim ClaimSubmission) types.ValidationResult {
	var errors []string

	if claim.Patient == nil {
		errors = append(errors, MsgPatientRequired)
	} else {
		if blank(claim.Patient.FirstName) || blank(claim.Patient.LastName) {
			errors = append(errors, MsgPatientNameRequired)
		}
		if blank(claim.Patient.DateOfBirth) {
			errors = append(errors, MsgPatientDOBRequired)
		}
	}

	if claim.Provider == nil {
		errors = append(errors, MsgProviderRequired)
	}

	if claim.Amount == nil || !claim.Amount.IsPositive() {
		errors = append(errors, MsgAmountPositive)
	}

	if blank(claim.ServiceDate) {
		errors = append(errors, MsgServiceDateRequired)
	}

	if len(claim.DiagnosisCodes) == 0 {
		errors = append(errors, MsgDiagnosisRequired)
	}

	if len(claim.ProcedureCodes) == 0 {
		errors = append(errors, MsgProcedureRequired)
	}

	return types.NewValidationResult(errors)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

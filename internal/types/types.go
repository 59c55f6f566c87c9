// =============================================================================
// EDI Claims Converter - Shared Types
// =============================================================================
//
// This package contains types shared by several modules to avoid import
// cycles. Types defined here are used by:
//   - era       (835 structural validation)
//   - claim     (837 claim-data validation)
//   - processor (batch result reporting)
//
// =============================================================================

package types

import (
	"strings"
)

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult is the outcome of a structural pre-check.
// Validation failures are never returned as Go errors: the caller decides
// whether to proceed.
type ValidationResult struct {
	// Valid is true when Errors is empty.
	Valid bool `json:"valid"`

	// Errors contains one human-readable message per problem found.
	Errors []string `json:"errors"`
}

// NewValidationResult builds a result from the collected error messages.
func NewValidationResult(errors []string) ValidationResult {
	if errors == nil {
		errors = []string{}
	}
	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// String joins the error messages for display.
func (r ValidationResult) String() string {
	if r.Valid {
		return "valid"
	}
	return strings.Join(r.Errors, "; ")
}

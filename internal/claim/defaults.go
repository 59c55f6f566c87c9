// =============================================================================
// EDI Claims Converter - 837P Default Table
// =============================================================================

package claim

// Placeholder values written when a claim or submitter leaves a field empty.
// Several of these are not valid production identifiers; ValidateClaimData
// should gate real submissions.
const (
	DefaultSubmitterID      = "AUREONCARE"
	DefaultOrganizationName = "AUREONCARE"
	DefaultReceiverID       = "CLEARHOUSE"
	DefaultReceiverName     = "CLEARINGHOUSE"
	DefaultContactName      = "Billing Contact"
	DefaultContactPhone     = "5555555555"

	DefaultProviderName    = "Provider"
	DefaultProviderNPI     = "1234567890"
	DefaultProviderAddress = "123 Main St"
	DefaultProviderTaxID   = "123456789"
	DefaultCity            = "City"
	DefaultState           = "ST"
	DefaultZipCode         = "12345"

	DefaultPatientLastName  = "Doe"
	DefaultPatientFirstName = "John"
	DefaultMemberID         = "123456789"
	DefaultPatientAddress   = "456 Oak Ave"
	DefaultDateOfBirth      = "1980-01-01"

	DefaultPayerName = "Insurance Company"
	DefaultPayerID   = "12345"

	DefaultAmount          = "100.00"
	DefaultLineCharge      = "50.00"
	DefaultPlaceOfService  = "11"
	DefaultFilingIndicator = "12"
	DefaultDiagnosisCode   = "Z00.00"
	DefaultProcedureCode   = "99213"

	// BillingTaxonomy is the PRV taxonomy code (family medicine).
	BillingTaxonomy = "207Q00000X"

	// ClaimControlNumberLen is the width of generated claim control numbers.
	ClaimControlNumberLen = 10
)

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

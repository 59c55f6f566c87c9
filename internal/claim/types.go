// =============================================================================
// EDI Claims Converter - 837P Claim Types
// =============================================================================
//
// These types describe a professional claim ready for submission and the
// entity submitting it. Field names follow the snake_case keys used by claim
// batch files (YAML) and the billing system's JSON exports.
//
// Every field is optional as far as the generator is concerned: anything left
// empty falls back to the default table in defaults.go. ValidateClaimData is
// the gate that rejects claims missing data a payer would require.
//
// =============================================================================

package claim

import (
	"github.com/shopspring/decimal"
)

// ProviderTypeOrganization marks a billing provider that is not a person.
const ProviderTypeOrganization = "organization"

// ClaimSubmission is a single professional claim.
type ClaimSubmission struct {
	ClaimNumber          string           `yaml:"claim_number" json:"claim_number"`
	Patient              *Patient         `yaml:"patient" json:"patient,omitempty"`
	Provider             *Provider        `yaml:"provider" json:"provider,omitempty"`
	Payer                string           `yaml:"payer" json:"payer"`
	PayerID              string           `yaml:"payer_id" json:"payer_id"`
	Amount               *decimal.Decimal `yaml:"amount" json:"amount,omitempty"`
	ServiceDate          string           `yaml:"service_date" json:"service_date"`
	DiagnosisCodes       []string         `yaml:"diagnosis_codes" json:"diagnosis_codes"`
	ProcedureCodes       []string         `yaml:"procedure_codes" json:"procedure_codes"`
	PlaceOfService       string           `yaml:"place_of_service" json:"place_of_service"`
	ClaimFilingIndicator string           `yaml:"claim_filing_indicator" json:"claim_filing_indicator"`
}

// Patient is the subscriber on the claim. The patient is always treated as
// the subscriber (relationship code 18, self).
type Patient struct {
	FirstName         string `yaml:"first_name" json:"first_name"`
	LastName          string `yaml:"last_name" json:"last_name"`
	MiddleName        string `yaml:"middle_name" json:"middle_name"`
	DateOfBirth       string `yaml:"date_of_birth" json:"date_of_birth"`
	Gender            string `yaml:"gender" json:"gender"`
	Address           string `yaml:"address" json:"address"`
	City              string `yaml:"city" json:"city"`
	State             string `yaml:"state" json:"state"`
	ZipCode           string `yaml:"zip_code" json:"zip_code"`
	InsuranceMemberID string `yaml:"insurance_member_id" json:"insurance_member_id"`
	InsurancePlan     string `yaml:"insurance_plan" json:"insurance_plan"`
}

// Provider is the billing provider.
type Provider struct {
	// Type is "organization" for a non-person entity; anything else is a person.
	Type             string `yaml:"type" json:"type"`
	FirstName        string `yaml:"first_name" json:"first_name"`
	LastName         string `yaml:"last_name" json:"last_name"`
	MiddleName       string `yaml:"middle_name" json:"middle_name"`
	OrganizationName string `yaml:"organization_name" json:"organization_name"`
	NPI              string `yaml:"npi" json:"npi"`
	TaxID            string `yaml:"tax_id" json:"tax_id"`
	Address          string `yaml:"address" json:"address"`
	City             string `yaml:"city" json:"city"`
	State            string `yaml:"state" json:"state"`
	ZipCode          string `yaml:"zip_code" json:"zip_code"`
}

// IsOrganization reports whether the provider is a non-person entity.
func (p *Provider) IsOrganization() bool {
	return p != nil && p.Type == ProviderTypeOrganization
}

// SubmitterInfo identifies the submitter and the receiving clearinghouse.
type SubmitterInfo struct {
	SubmitterID      string `yaml:"submitter_id" json:"submitter_id" validate:"omitempty,max=15"`
	ReceiverID       string `yaml:"receiver_id" json:"receiver_id" validate:"omitempty,max=15"`
	ReceiverName     string `yaml:"receiver_name" json:"receiver_name"`
	OrganizationName string `yaml:"organization_name" json:"organization_name"`
	ContactName      string `yaml:"contact_name" json:"contact_name"`
	ContactPhone     string `yaml:"contact_phone" json:"contact_phone" validate:"omitempty,numeric"`

	// TestIndicator is ISA15: "P" production or "T" test.
	TestIndicator string `yaml:"test_indicator" json:"test_indicator" validate:"omitempty,oneof=P T"`
}

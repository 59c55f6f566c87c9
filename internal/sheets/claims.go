// =============================================================================
// EDI Claims Converter - XLSX Claim Import
// =============================================================================
//
// This module reads claim batches exported from a billing system as XLSX
// workbooks (or CSV, see csv.go) and turns each row into a
// claim.ClaimSubmission.
//
// SHEET STRUCTURE (one claim per row):
//
//   | claim_number | patient_first_name | patient_last_name | ... | amount | diagnosis_codes | procedure_codes |
//   |--------------|--------------------|-------------------|-----|--------|-----------------|-----------------|
//   | CLM0001      | Jane               | Smith             | ... | 250.00 | J06.9, R05.9    | 99214; 87880    |
//
// Column order does not matter: columns are located by header name. Header
// names are normalized (lowercase, spaces and dashes become underscores) and
// then looked up in ClaimLayout.Headers before being matched against the
// canonical field names below.
//
// CUSTOMIZATION:
//   - Map your billing system's header names in config.yaml (claim_sheet.headers)
//   - Move the header row with claim_sheet.header_row / data_start_row
//
// =============================================================================

package sheets

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/edi-claims-converter/internal/claim"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// CANONICAL FIELDS
// =============================================================================

// Canonical column names understood by ReadClaims.
const (
	FieldClaimNumber          = "claim_number"
	FieldPatientFirstName     = "patient_first_name"
	FieldPatientLastName      = "patient_last_name"
	FieldPatientMiddleName    = "patient_middle_name"
	FieldPatientDOB           = "patient_dob"
	FieldPatientGender        = "patient_gender"
	FieldPatientAddress       = "patient_address"
	FieldPatientCity          = "patient_city"
	FieldPatientState         = "patient_state"
	FieldPatientZip           = "patient_zip"
	FieldMemberID             = "member_id"
	FieldInsurancePlan        = "insurance_plan"
	FieldProviderType         = "provider_type"
	FieldProviderFirstName    = "provider_first_name"
	FieldProviderLastName     = "provider_last_name"
	FieldProviderOrganization = "provider_organization"
	FieldProviderNPI          = "provider_npi"
	FieldProviderTaxID        = "provider_tax_id"
	FieldProviderAddress      = "provider_address"
	FieldProviderCity         = "provider_city"
	FieldProviderState        = "provider_state"
	FieldProviderZip          = "provider_zip"
	FieldPayer                = "payer"
	FieldPayerID              = "payer_id"
	FieldAmount               = "amount"
	FieldServiceDate          = "service_date"
	FieldDiagnosisCodes       = "diagnosis_codes"
	FieldProcedureCodes       = "procedure_codes"
	FieldPlaceOfService       = "place_of_service"
	FieldFilingIndicator      = "filing_indicator"
)

// patientSetters and providerSetters fill the nested structs. A claim gets a
// Patient (or Provider) only when at least one of its columns is non-empty.
var patientSetters = map[string]func(p *claim.Patient, v string){
	FieldPatientFirstName:  func(p *claim.Patient, v string) { p.FirstName = v },
	FieldPatientLastName:   func(p *claim.Patient, v string) { p.LastName = v },
	FieldPatientMiddleName: func(p *claim.Patient, v string) { p.MiddleName = v },
	FieldPatientDOB:        func(p *claim.Patient, v string) { p.DateOfBirth = v },
	FieldPatientGender:     func(p *claim.Patient, v string) { p.Gender = v },
	FieldPatientAddress:    func(p *claim.Patient, v string) { p.Address = v },
	FieldPatientCity:       func(p *claim.Patient, v string) { p.City = v },
	FieldPatientState:      func(p *claim.Patient, v string) { p.State = v },
	FieldPatientZip:        func(p *claim.Patient, v string) { p.ZipCode = v },
	FieldMemberID:          func(p *claim.Patient, v string) { p.InsuranceMemberID = v },
	FieldInsurancePlan:     func(p *claim.Patient, v string) { p.InsurancePlan = v },
}

var providerSetters = map[string]func(p *claim.Provider, v string){
	FieldProviderType:         func(p *claim.Provider, v string) { p.Type = strings.ToLower(v) },
	FieldProviderFirstName:    func(p *claim.Provider, v string) { p.FirstName = v },
	FieldProviderLastName:     func(p *claim.Provider, v string) { p.LastName = v },
	FieldProviderOrganization: func(p *claim.Provider, v string) { p.OrganizationName = v },
	FieldProviderNPI:          func(p *claim.Provider, v string) { p.NPI = v },
	FieldProviderTaxID:        func(p *claim.Provider, v string) { p.TaxID = v },
	FieldProviderAddress:      func(p *claim.Provider, v string) { p.Address = v },
	FieldProviderCity:         func(p *claim.Provider, v string) { p.City = v },
	FieldProviderState:        func(p *claim.Provider, v string) { p.State = v },
	FieldProviderZip:          func(p *claim.Provider, v string) { p.ZipCode = v },
}

var claimSetters = map[string]func(c *claim.ClaimSubmission, v string){
	FieldClaimNumber:     func(c *claim.ClaimSubmission, v string) { c.ClaimNumber = v },
	FieldPayer:           func(c *claim.ClaimSubmission, v string) { c.Payer = v },
	FieldPayerID:         func(c *claim.ClaimSubmission, v string) { c.PayerID = v },
	FieldServiceDate:     func(c *claim.ClaimSubmission, v string) { c.ServiceDate = v },
	FieldDiagnosisCodes:  func(c *claim.ClaimSubmission, v string) { c.DiagnosisCodes = splitCodes(v) },
	FieldProcedureCodes:  func(c *claim.ClaimSubmission, v string) { c.ProcedureCodes = splitCodes(v) },
	FieldPlaceOfService:  func(c *claim.ClaimSubmission, v string) { c.PlaceOfService = v },
	FieldFilingIndicator: func(c *claim.ClaimSubmission, v string) { c.ClaimFilingIndicator = v },
}

// =============================================================================
// LAYOUT CONFIGURATION
// =============================================================================

// ClaimLayout describes where the claims live in a workbook or CSV export.
type ClaimLayout struct {
	// SheetName selects the sheet. Default: the first sheet.
	SheetName string `yaml:"sheet_name"`

	// Delimiter separates CSV fields: ",", ";", "|" or "tab".
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRow is the 1-based row holding the column headers.
	// Default: 1
	HeaderRow int `yaml:"header_row" validate:"gte=0"`

	// DataStartRow is the 1-based row where claim rows begin.
	// Default: HeaderRow + 1
	DataStartRow int `yaml:"data_start_row" validate:"gte=0"`

	// Headers maps a billing system header (normalized) to a canonical field.
	//
	// CUSTOMIZATION: Example
	//   headers:
	//     pt_first: patient_first_name
	//     chg_amt:  amount
	Headers map[string]string `yaml:"headers"`
}

// DefaultClaimLayout returns the layout used when no configuration is given.
func DefaultClaimLayout() ClaimLayout {
	return ClaimLayout{HeaderRow: 1, DataStartRow: 2}
}

func (l ClaimLayout) withDefaults() ClaimLayout {
	if l.HeaderRow <= 0 {
		l.HeaderRow = 1
	}
	if l.DataStartRow <= l.HeaderRow {
		l.DataStartRow = l.HeaderRow + 1
	}
	return l
}

// field resolves a raw header to a canonical field name.
func (l ClaimLayout) field(header string) string {
	name := normalizeHeader(header)
	for alias, field := range l.Headers {
		if normalizeHeader(alias) == name {
			return normalizeHeader(field)
		}
	}
	return name
}

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadClaims reads every claim row from an XLSX workbook.
//
// PARAMETERS:
//   - path:   the workbook path
//   - layout: sheet and header configuration
//
// RETURNS:
//   - The claims in row order. Blank rows are skipped.
//   - An error if the workbook cannot be read or a cell cannot be converted
//     (for example a non-numeric amount).
func ReadClaims(path string, layout ClaimLayout) ([]claim.ClaimSubmission, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open claims workbook: %w", err)
	}
	defer f.Close()

	return readClaims(f, layout)
}

func readClaims(f *excelize.File, layout ClaimLayout) ([]claim.ClaimSubmission, error) {
	layout = layout.withDefaults()

	sheetName := layout.SheetName
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("claims workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < layout.HeaderRow {
		return nil, fmt.Errorf("sheet %q has no header row %d", sheetName, layout.HeaderRow)
	}

	return claimsFromRows(rows, layout)
}

// claimsFromRows maps raw rows to claims. layout must already have its
// defaults applied and rows must contain the header row.
func claimsFromRows(rows [][]string, layout ClaimLayout) ([]claim.ClaimSubmission, error) {
	header := rows[layout.HeaderRow-1]
	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = layout.field(h)
	}

	var claims []claim.ClaimSubmission
	for i := layout.DataStartRow - 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		c, err := parseClaimRow(row, fields)
		if err != nil {
			return nil, fmt.Errorf("error parsing row %d: %w", i+1, err)
		}
		claims = append(claims, c)
	}

	return claims, nil
}

// parseClaimRow converts one row. Unknown columns are ignored.
func parseClaimRow(row, fields []string) (claim.ClaimSubmission, error) {
	var (
		c        claim.ClaimSubmission
		patient  claim.Patient
		provider claim.Provider

		hasPatient, hasProvider bool
	)

	for i, field := range fields {
		if i >= len(row) {
			break
		}
		value := strings.TrimSpace(row[i])
		if value == "" {
			continue
		}

		if set, ok := patientSetters[field]; ok {
			set(&patient, value)
			hasPatient = true
			continue
		}
		if set, ok := providerSetters[field]; ok {
			set(&provider, value)
			hasProvider = true
			continue
		}
		if set, ok := claimSetters[field]; ok {
			set(&c, value)
			continue
		}
		if field == FieldAmount {
			amount, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
			if err != nil {
				return c, fmt.Errorf("invalid amount %q: %w", value, err)
			}
			c.Amount = &amount
		}
	}

	if hasPatient {
		c.Patient = &patient
	}
	if hasProvider {
		c.Provider = &provider
	}
	return c, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizeHeader lowercases a header and replaces spaces and dashes with
// underscores, so "Patient First-Name" becomes "patient_first_name".
func normalizeHeader(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(value)
}

// splitCodes splits a code list on commas or semicolons.
func splitCodes(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' })
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			codes = append(codes, p)
		}
	}
	return codes
}

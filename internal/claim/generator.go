// =============================================================================
// EDI Claims Converter - 837P Generator
// =============================================================================
//
// This module encodes one ClaimSubmission as a complete X12 837P interchange.
//
// OUTPUT STRUCTURE (fixed order):
//   ISA / GS (HC) / ST*837 / BHT
//   1000A  NM1*41 submitter, PER contact
//   1000B  NM1*40 receiver
//   2000A  HL*2 billing provider, PRV, NM1*85, N3, N4, REF*EI
//   2000B  HL*3 subscriber, SBR, NM1*IL, N3, N4, DMG, NM1*PR payer
//   2300   CLM, DTP*472, HI
//   2400   per procedure: LX, SV1, DTP*472
//   SE / GE / IEA
//
// HL numbering leaves id 1 to the submitter, so the billing provider is
// HL*2 and the subscriber is HL*3 with parent 2.
//
// CUSTOMIZATION:
//   - Default values for empty fields live in defaults.go
//   - Control numbers come from Generator.Controls; pass x12.UUIDSource{} for
//     random numbers or x12.NewSequence for reproducible output
//
// =============================================================================

package claim

import (
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/edi-claims-converter/internal/x12"
	"github.com/shopspring/decimal"
)

// Generator renders 837P files.
type Generator struct {
	// Clock supplies envelope timestamps and the fallback service date.
	Clock func() time.Time

	// Controls supplies ISA/GS/ST and claim control numbers.
	Controls x12.ControlNumberSource
}

// NewGenerator returns a Generator using the wall clock and the process-wide
// control number sequence.
func NewGenerator() *Generator {
	return &Generator{
		Clock:    time.Now,
		Controls: x12.DefaultControlNumbers(),
	}
}

// Generate837File renders claim with a default Generator.
func Generate837File(claim ClaimSubmission, submitter SubmitterInfo) string {
	return NewGenerator().Generate(claim, submitter)
}

// Generate renders a complete 837P interchange.
//
// PARAMETERS:
//   - claim:     the claim to encode
//   - submitter: submitter and receiver identity
//
// RETURNS:
//   - The 837 text, segments joined by '~' with a trailing '~'. Generation
//     never fails; missing data is replaced by the default table.
func (g *Generator) Generate(claim ClaimSubmission, submitter SubmitterInfo) string {
	now := g.now()
	controls := g.controls()

	submitterID := valueOr(submitter.SubmitterID, DefaultSubmitterID)
	receiverID := valueOr(submitter.ReceiverID, DefaultReceiverID)

	env := x12.Envelope{
		SenderID:         submitterID,
		ReceiverID:       receiverID,
		UsageIndicator:   valueOr(submitter.TestIndicator, x12.UsageProduction),
		FunctionalID:     x12.FunctionalIDClaim,
		TransactionSetID: "837",
		GuideVersion:     x12.ClaimGuideVersion,
		Timestamp:        now,
	}
	env.AssignControlNumbers(controls)

	claimControl := claim.ClaimNumber
	if claimControl == "" {
		claimControl = controls.Next(ClaimControlNumberLen)
	}

	var b x12.Builder
	env.WriteHeader(&b)
	b.Add(x12.TagBHT, "0019", "00", claimControl, x12.FormatDate(now), x12.FormatTime(now), "CH")

	writeSubmitter(&b, submitter, submitterID, receiverID)
	writeBillingProvider(&b, claim.Provider)
	writeSubscriber(&b, claim)

	serviceDate := formatClaimDate(claim.ServiceDate, now)
	placeOfService := valueOr(claim.PlaceOfService, DefaultPlaceOfService)

	amount := DefaultAmount
	if hasAmount(claim.Amount) {
		amount = x12.FormatAmount(*claim.Amount)
	}
	b.Add(x12.TagCLM,
		claimControl,
		amount,
		"", "",
		placeOfService+x12.SubElementSeparator+"B"+x12.SubElementSeparator+"1",
		"", "Y", "Y", "", "",
	)
	b.Add(x12.TagDTP, "472", "D8", serviceDate)
	b.Add(x12.TagHI, diagnosisComposites(claim.DiagnosisCodes)...)

	procedures := claim.ProcedureCodes
	if len(procedures) == 0 {
		procedures = []string{DefaultProcedureCode}
	}
	charge := lineCharge(claim.Amount, len(procedures))
	for i, code := range procedures {
		b.Add(x12.TagLX, strconv.Itoa(i+1))
		b.Add(x12.TagSV1,
			"HC"+x12.SubElementSeparator+code,
			charge,
			"UN", "1",
			placeOfService,
			"", "", "", "1",
		)
		b.Add(x12.TagDTP, "472", "D8", serviceDate)
	}

	env.WriteTrailer(&b)
	return b.String()
}

// =============================================================================
// LOOPS
// =============================================================================

// writeSubmitter writes loops 1000A and 1000B.
func writeSubmitter(b *x12.Builder, submitter SubmitterInfo, submitterID, receiverID string) {
	b.Add(x12.TagNM1, "41", "2",
		valueOr(submitter.OrganizationName, DefaultOrganizationName),
		"", "", "", "", "46", submitterID)
	b.Add(x12.TagPER, "IC",
		valueOr(submitter.ContactName, DefaultContactName),
		"TE", valueOr(submitter.ContactPhone, DefaultContactPhone))
	b.Add(x12.TagNM1, "40", "2",
		valueOr(submitter.ReceiverName, DefaultReceiverName),
		"", "", "", "", "46", receiverID)
}

// writeBillingProvider writes loop 2000A/2010AA.
func writeBillingProvider(b *x12.Builder, provider *Provider) {
	p := Provider{}
	if provider != nil {
		p = *provider
	}

	entityType := "1"
	if p.IsOrganization() {
		entityType = "2"
	}

	b.Add(x12.TagHL, "2", "", "20", "1")
	b.Add(x12.TagPRV, "BI", "PXC", BillingTaxonomy)
	b.Add(x12.TagNM1, "85", entityType,
		valueOr(p.LastName, valueOr(p.OrganizationName, DefaultProviderName)),
		p.FirstName, p.MiddleName, "", "",
		"XX", valueOr(p.NPI, DefaultProviderNPI))
	b.Add(x12.TagN3, valueOr(p.Address, DefaultProviderAddress))
	b.Add(x12.TagN4,
		valueOr(p.City, DefaultCity),
		valueOr(p.State, DefaultState),
		valueOr(p.ZipCode, DefaultZipCode))
	b.Add(x12.TagREF, "EI", valueOr(p.TaxID, DefaultProviderTaxID))
}

// writeSubscriber writes loop 2000B with the subscriber and payer names.
func writeSubscriber(b *x12.Builder, claim ClaimSubmission) {
	p := Patient{}
	if claim.Patient != nil {
		p = *claim.Patient
	}

	b.Add(x12.TagHL, "3", "2", "22", "0")
	b.Add(x12.TagSBR, "P", "18", "", "", p.InsurancePlan, "", "", "",
		valueOr(claim.ClaimFilingIndicator, DefaultFilingIndicator))
	b.Add(x12.TagNM1, "IL", "1",
		valueOr(p.LastName, DefaultPatientLastName),
		valueOr(p.FirstName, DefaultPatientFirstName),
		p.MiddleName, "", "",
		"MI", valueOr(p.InsuranceMemberID, DefaultMemberID))
	b.Add(x12.TagN3, valueOr(p.Address, DefaultPatientAddress))
	b.Add(x12.TagN4,
		valueOr(p.City, DefaultCity),
		valueOr(p.State, DefaultState),
		valueOr(p.ZipCode, DefaultZipCode))

	dob, ok := x12.ParseDate(p.DateOfBirth)
	if !ok {
		dob, _ = x12.ParseDate(DefaultDateOfBirth)
	}
	b.Add(x12.TagDMG, "D8", x12.FormatDate(dob), genderCode(p.Gender))

	b.Add(x12.TagNM1, "PR", "2",
		valueOr(claim.Payer, DefaultPayerName),
		"", "", "", "",
		"PI", valueOr(claim.PayerID, DefaultPayerID))
}

// =============================================================================
// HELPERS
// =============================================================================

// genderCode maps male/female to M/F; anything else is U (unknown).
func genderCode(gender string) string {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "male":
		return "M"
	case "female":
		return "F"
	default:
		return "U"
	}
}

// diagnosisComposites builds the HI elements: ABK for the principal
// diagnosis, ABF for the rest.
func diagnosisComposites(codes []string) []string {
	if len(codes) == 0 {
		codes = []string{DefaultDiagnosisCode}
	}
	composites := make([]string, len(codes))
	for i, code := range codes {
		qualifier := "ABF"
		if i == 0 {
			qualifier = "ABK"
		}
		composites[i] = qualifier + x12.SubElementSeparator + code
	}
	return composites
}

// lineCharge splits the claim amount evenly across the service lines.
func lineCharge(amount *decimal.Decimal, lines int) string {
	if !hasAmount(amount) || lines <= 0 {
		return DefaultLineCharge
	}
	return x12.FormatAmount(amount.Div(decimal.NewFromInt(int64(lines))))
}

func hasAmount(amount *decimal.Decimal) bool {
	return amount != nil && !amount.IsZero()
}

// formatClaimDate renders value as CCYYMMDD, falling back to now when value
// is empty or not a recognised date.
func formatClaimDate(value string, now time.Time) string {
	if date, ok := x12.ParseDate(value); ok {
		return x12.FormatDate(date)
	}
	return x12.FormatDate(now)
}

func (g *Generator) now() time.Time {
	if g.Clock == nil {
		return time.Now()
	}
	return g.Clock()
}

func (g *Generator) controls() x12.ControlNumberSource {
	if g.Controls == nil {
		return x12.DefaultControlNumbers()
	}
	return g.Controls
}

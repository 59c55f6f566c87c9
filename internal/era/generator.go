// =============================================================================
// EDI Claims Converter - 835 Generator
// =============================================================================
//
// This module produces X12 835 remittance files from payment data. It is used
// to build test remittances and to answer payers that expect an 835 echo.
//
// OUTPUT STRUCTURE:
//   ISA / GS (HP) / ST*835
//   BPR  TRN  N1*PR  [N3]  [N4]
//   per claim:   LX  CLP  [CAS...]  [NM1*QC]
//   per service: SVC  [DTM*472]
//   SE / GE / IEA
//
// Files written here parse back with Parse.
//
// =============================================================================

package era

import (
	"strconv"
	"time"

	"github.com/ginjaninja78/edi-claims-converter/internal/x12"
	"github.com/shopspring/decimal"
)

// Defaults used when the payment data leaves a field empty.
const (
	DefaultPayerID        = "PAYER"
	DefaultReceiverID     = "RECEIVER"
	DefaultTracePayerID   = "1234567890"
	DefaultPayerName      = "Insurance Company"
	DefaultStatusCode     = "1"
	DefaultFilingCode     = "12"
	DefaultFacilityCode   = "11"
	DefaultAdjustmentCode = GroupContractual
	DefaultReasonCode     = "45"
	DefaultProcedureCode  = "99213"
	DefaultUnits          = "1"
)

// =============================================================================
// INPUT TYPES
// =============================================================================

// PayerInfo identifies the paying organisation and the bank accounts on the
// BPR segment.
type PayerInfo struct {
	PayerID               string `yaml:"payer_id" json:"payer_id"`
	ReceiverID            string `yaml:"receiver_id" json:"receiver_id"`
	Name                  string `yaml:"name" json:"name"`
	Address               string `yaml:"address" json:"address"`
	City                  string `yaml:"city" json:"city"`
	State                 string `yaml:"state" json:"state"`
	Zip                   string `yaml:"zip" json:"zip"`
	AccountNumber         string `yaml:"account_number" json:"account_number"`
	RoutingNumber         string `yaml:"routing_number" json:"routing_number"`
	ReceiverAccountNumber string `yaml:"receiver_account_number" json:"receiver_account_number"`
	ReceiverRoutingNumber string `yaml:"receiver_routing_number" json:"receiver_routing_number"`
}

// PaymentBatch is one payment (check or EFT) covering a set of claims.
type PaymentBatch struct {
	TotalAmount decimal.Decimal `yaml:"total_amount" json:"total_amount"`
	CheckNumber string          `yaml:"check_number" json:"check_number"`
	Claims      []PaidClaim     `yaml:"claims" json:"claims"`
}

// PaidClaim is the payer's decision on one claim.
type PaidClaim struct {
	SequenceNumber          int               `yaml:"sequence_number" json:"sequence_number"`
	ClaimNumber             string            `yaml:"claim_number" json:"claim_number"`
	StatusCode              string            `yaml:"status_code" json:"status_code"`
	ChargedAmount           decimal.Decimal   `yaml:"charged_amount" json:"charged_amount"`
	PaidAmount              decimal.Decimal   `yaml:"paid_amount" json:"paid_amount"`
	PatientResponsibility   decimal.Decimal   `yaml:"patient_responsibility" json:"patient_responsibility"`
	FilingIndicator         string            `yaml:"filing_indicator" json:"filing_indicator"`
	PayerClaimControlNumber string            `yaml:"payer_claim_control_number" json:"payer_claim_control_number"`
	FacilityTypeCode        string            `yaml:"facility_type_code" json:"facility_type_code"`
	PatientFirstName        string            `yaml:"patient_first_name" json:"patient_first_name"`
	PatientLastName         string            `yaml:"patient_last_name" json:"patient_last_name"`
	PatientMiddleName       string            `yaml:"patient_middle_name" json:"patient_middle_name"`
	Adjustments             []PaidAdjustment  `yaml:"adjustments" json:"adjustments"`
	ServiceLines            []PaidServiceLine `yaml:"service_lines" json:"service_lines"`
}

// PaidAdjustment becomes one single-reason CAS segment.
type PaidAdjustment struct {
	GroupCode  string          `yaml:"group_code" json:"group_code"`
	ReasonCode string          `yaml:"reason_code" json:"reason_code"`
	Amount     decimal.Decimal `yaml:"amount" json:"amount"`
}

// PaidServiceLine becomes an SVC segment and an optional DTM*472.
type PaidServiceLine struct {
	ProcedureCode string          `yaml:"procedure_code" json:"procedure_code"`
	ChargedAmount decimal.Decimal `yaml:"charged_amount" json:"charged_amount"`
	PaidAmount    decimal.Decimal `yaml:"paid_amount" json:"paid_amount"`
	Units         string          `yaml:"units" json:"units"`
	ServiceDate   string          `yaml:"service_date" json:"service_date"`
}

// =============================================================================
// GENERATOR
// =============================================================================

// Generator renders 835 files.
type Generator struct {
	// Clock supplies the envelope timestamp. Defaults to time.Now.
	Clock func() time.Time

	// Controls supplies ISA/GS/ST control numbers. Defaults to the
	// process-wide sequence.
	Controls x12.ControlNumberSource
}

// NewGenerator returns a Generator using the wall clock and the default
// control number sequence.
func NewGenerator() *Generator {
	return &Generator{
		Clock:    time.Now,
		Controls: x12.DefaultControlNumbers(),
	}
}

// Generate835File renders batch with a default Generator.
func Generate835File(batch PaymentBatch, payer PayerInfo) string {
	return NewGenerator().Generate(batch, payer)
}

// Generate renders a complete 835 interchange for batch.
//
// PARAMETERS:
//   - batch: the payment and the claims it covers
//   - payer: payer identity and bank details
//
// RETURNS:
//   - The 835 text, segments joined by '~' with a trailing '~'.
func (g *Generator) Generate(batch PaymentBatch, payer PayerInfo) string {
	now := g.now()
	payerID := valueOr(payer.PayerID, DefaultPayerID)

	env := x12.Envelope{
		SenderID:         payerID,
		ReceiverID:       valueOr(payer.ReceiverID, DefaultReceiverID),
		UsageIndicator:   x12.UsageProduction,
		FunctionalID:     x12.FunctionalIDRemittance,
		TransactionSetID: "835",
		GuideVersion:     x12.RemittanceGuideVersion,
		Timestamp:        now,
	}
	env.AssignControlNumbers(g.controls())

	var b x12.Builder
	env.WriteHeader(&b)

	b.Add(x12.TagBPR,
		"I", x12.FormatAmount(batch.TotalAmount), "C", "ACH",
		"", "", "", payer.AccountNumber,
		"", payer.RoutingNumber,
		"DA", "", payer.ReceiverAccountNumber,
		"", payer.ReceiverRoutingNumber,
		x12.FormatDate(now),
	)
	b.Add(x12.TagTRN, "1",
		valueOr(batch.CheckNumber, env.InterchangeControlNumber),
		valueOr(payer.PayerID, DefaultTracePayerID),
	)
	b.Add(x12.TagN1, "PR", valueOr(payer.Name, DefaultPayerName))
	if payer.Address != "" {
		b.Add(x12.TagN3, payer.Address)
	}
	if payer.City != "" || payer.State != "" || payer.Zip != "" {
		b.Add(x12.TagN4, payer.City, payer.State, payer.Zip)
	}

	for _, claim := range batch.Claims {
		writeClaim(&b, claim)
	}

	env.WriteTrailer(&b)
	return b.String()
}

func writeClaim(b *x12.Builder, claim PaidClaim) {
	seq := claim.SequenceNumber
	if seq <= 0 {
		seq = 1
	}
	b.Add(x12.TagLX, strconv.Itoa(seq))

	b.Add(x12.TagCLP,
		claim.ClaimNumber,
		valueOr(claim.StatusCode, DefaultStatusCode),
		x12.FormatAmount(claim.ChargedAmount),
		x12.FormatAmount(claim.PaidAmount),
		x12.FormatAmount(claim.PatientResponsibility),
		valueOr(claim.FilingIndicator, DefaultFilingCode),
		claim.PayerClaimControlNumber,
		valueOr(claim.FacilityTypeCode, DefaultFacilityCode),
	)

	for _, adj := range claim.Adjustments {
		b.Add(x12.TagCAS,
			valueOr(adj.GroupCode, DefaultAdjustmentCode),
			valueOr(adj.ReasonCode, DefaultReasonCode),
			x12.FormatAmount(adj.Amount),
		)
	}

	if claim.PatientFirstName != "" || claim.PatientLastName != "" {
		b.Add(x12.TagNM1, "QC", "1", claim.PatientLastName, claim.PatientFirstName, claim.PatientMiddleName)
	}

	for _, line := range claim.ServiceLines {
		b.Add(x12.TagSVC,
			"HC"+x12.SubElementSeparator+valueOr(line.ProcedureCode, DefaultProcedureCode),
			x12.FormatAmount(line.ChargedAmount),
			x12.FormatAmount(line.PaidAmount),
			"",
			valueOr(line.Units, DefaultUnits),
		)
		if date, ok := x12.ParseDate(line.ServiceDate); ok {
			b.Add(x12.TagDTM, "472", x12.FormatDate(date))
		}
	}
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

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

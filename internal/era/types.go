// =============================================================================
// EDI Claims Converter - 835 Remittance Types
// =============================================================================
//
// These types hold the structured content of an X12 835 (Electronic
// Remittance Advice) file and the payment postings derived from it.
//
// OWNERSHIP:
//   RemittanceAdvice
//   └── ClaimPayment (one per CLP segment)
//       ├── ServiceLine (one per SVC segment)
//       └── AdjustmentGroup (one per CAS segment)
//           └── Adjustment (reason/amount/quantity triple)
//
// MISSING VALUES:
//   - Amounts that feed arithmetic are decimal.Zero when absent or unparseable.
//   - Amounts whose presence matters (allowed, discount) are nil pointers until
//     their AMT segment is seen.
//   - Optional strings and dates are "" when absent.
//
// =============================================================================

package era

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PAYMENT METHOD
// =============================================================================

// PaymentMethod is the normalised BPR04 payment method.
type PaymentMethod string

const (
	PaymentMethodEFT   PaymentMethod = "eft"
	PaymentMethodCheck PaymentMethod = "check"
	PaymentMethodOther PaymentMethod = "other"
)

// paymentMethodFromCode maps a BPR04 code to a PaymentMethod.
func paymentMethodFromCode(code string) PaymentMethod {
	switch code {
	case "ACH":
		return PaymentMethodEFT
	case "CHK":
		return PaymentMethodCheck
	default:
		return PaymentMethodOther
	}
}

// Adjustment group codes commonly seen in CAS01. The group code is kept as an
// open string because X12 allows values beyond these.
const (
	GroupContractual           = "CO"
	GroupPatientResponsibility = "PR"
	GroupOtherAdjustment       = "OA"
	GroupPayerInitiated        = "PI"
)

// =============================================================================
// REMITTANCE ADVICE
// =============================================================================

// RemittanceAdvice is the root result of parsing an 835 file.
type RemittanceAdvice struct {
	// InterchangeControlNumber is ISA13.
	InterchangeControlNumber string `json:"interchangeControlNumber"`

	// PayerName is N1*PR element 2.
	PayerName string `json:"payerName"`

	// PayerID is REF*2U element 2.
	PayerID string `json:"payerIdentification"`

	// PaymentMethod is derived from BPR04. Empty when no BPR was seen.
	PaymentMethod PaymentMethod `json:"paymentMethod"`

	// CheckNumber is the TRN*1 trace number (check or EFT number).
	CheckNumber string `json:"checkNumber"`

	// CheckDate is an ISO date (YYYY-MM-DD) or "".
	CheckDate string `json:"checkDate,omitempty"`

	// TotalPaymentAmount is BPR02. It is not reconciled against the claims.
	TotalPaymentAmount decimal.Decimal `json:"totalPaymentAmount"`

	// Claims are the CLP loops in file order.
	Claims []ClaimPayment `json:"claims"`
}

// =============================================================================
// CLAIM PAYMENT
// =============================================================================

// ClaimPayment is one CLP loop.
type ClaimPayment struct {
	ClaimNumber                 string          `json:"claimNumber"`
	StatusCode                  string          `json:"claimStatusCode"`
	TotalChargeAmount           decimal.Decimal `json:"totalChargeAmount"`
	PaymentAmount               decimal.Decimal `json:"paymentAmount"`
	PatientResponsibilityAmount decimal.Decimal `json:"patientResponsibilityAmount"`
	FilingIndicatorCode         string          `json:"claimFilingIndicatorCode"`
	PayerClaimControlNumber     string          `json:"payerClaimControlNumber"`
	FacilityTypeCode            string          `json:"facilityTypeCode"`
	FrequencyCode               string          `json:"claimFrequencyCode"`

	PatientName string `json:"patientName,omitempty"`
	PatientID   string `json:"patientId,omitempty"`
	ServiceDate string `json:"serviceDate,omitempty"`

	// AllowedAmount is AMT*AU, nil when absent.
	AllowedAmount *decimal.Decimal `json:"allowedAmount,omitempty"`

	// DiscountAmount is AMT*D, nil when absent.
	DiscountAmount *decimal.Decimal `json:"discountAmount,omitempty"`

	ServiceLines []ServiceLine     `json:"serviceLines"`
	Adjustments  []AdjustmentGroup `json:"adjustments"`
}

// TotalAdjustment sums every adjustment amount across all groups.
func (c ClaimPayment) TotalAdjustment() decimal.Decimal {
	total := decimal.Zero
	for _, group := range c.Adjustments {
		total = total.Add(group.Total())
	}
	return total
}

// ServiceLine is one SVC loop within a claim.
type ServiceLine struct {
	// ProcedureCode is SVC01 with its qualifier prefix ("HC:") removed.
	ProcedureCode string          `json:"procedureCode"`
	ChargeAmount  decimal.Decimal `json:"chargeAmount"`
	PaymentAmount decimal.Decimal `json:"paymentAmount"`
	Units         string          `json:"units,omitempty"`
	ServiceDate   string          `json:"serviceDate,omitempty"`

	// Adjustments is reserved for line-level CAS segments; CAS is currently
	// always attached to the claim, so this stays empty.
	Adjustments []AdjustmentGroup `json:"adjustments"`
}

// AdjustmentGroup is one CAS segment.
type AdjustmentGroup struct {
	GroupCode   string       `json:"groupCode"`
	Adjustments []Adjustment `json:"adjustments"`
}

// Total sums the group's adjustment amounts.
func (g AdjustmentGroup) Total() decimal.Decimal {
	total := decimal.Zero
	for _, adj := range g.Adjustments {
		total = total.Add(adj.Amount)
	}
	return total
}

// Adjustment is a reason code / amount / quantity triple from a CAS segment.
type Adjustment struct {
	ReasonCode string          `json:"reasonCode"`
	Amount     decimal.Decimal `json:"amount"`
	Quantity   string          `json:"quantity,omitempty"`
}

// =============================================================================
// PAYMENT POSTING
// =============================================================================

// PostingStatus is the status given to every auto-imported posting.
const PostingStatus = "posted"

// PaymentPosting is a storage-ready payment row for one matched claim.
// JSON names follow the payment_postings table columns.
type PaymentPosting struct {
	ClaimID           string          `json:"claim_id"`
	CheckNumber       string          `json:"check_number"`
	CheckDate         string          `json:"check_date,omitempty"`
	PaymentAmount     decimal.Decimal `json:"payment_amount"`
	AllowedAmount     decimal.Decimal `json:"allowed_amount"`
	DeductibleAmount  decimal.Decimal `json:"deductible_amount"`
	CoinsuranceAmount decimal.Decimal `json:"coinsurance_amount"`
	CopayAmount       decimal.Decimal `json:"copay_amount"`
	AdjustmentAmount  decimal.Decimal `json:"adjustment_amount"`
	AdjustmentReason  string          `json:"adjustment_reason"`
	AdjustmentCode    string          `json:"adjustment_code"`
	PostingDate       string          `json:"posting_date"`
	Status            string          `json:"status"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`
	ERANumber         string          `json:"era_number"`
	EOBNumber         string          `json:"eob_number"`
	Notes             string          `json:"notes"`
	PayerName         string          `json:"payer_name"`
	PayerID           string          `json:"payer_id"`
	RawClaim          ClaimPayment    `json:"raw_claim_data"`
}

// PostingResult is the outcome of mapping a remittance to postings.
type PostingResult struct {
	// Postings holds one entry per claim whose number was found in the map.
	Postings []PaymentPosting `json:"postings"`

	// Skipped lists the claim numbers that had no mapped claim id, in file order.
	Skipped []string `json:"skipped"`
}

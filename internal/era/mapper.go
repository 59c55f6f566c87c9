// =============================================================================
// EDI Claims Converter - Payment Posting Mapper
// =============================================================================
//
// This module turns a parsed remittance into payment postings, one per claim
// that can be matched to a claim id in the caller's claim table.
//
// MAPPING RULES:
//   - Claims whose number is not in the table are skipped and reported
//   - adjustment_amount sums every adjustment across every CAS group
//   - adjustment_reason / adjustment_code come from the first CAS group only
//   - allowed_amount is AMT*AU when present and non-zero, else total charge
//   - deductible, coinsurance and copay are not derived and stay zero
//   - posting_date is the check date, or today when the file has none
//
// =============================================================================

package era

import (
	"fmt"
	"time"

	"github.com/ginjaninja78/edi-claims-converter/internal/logging"
	"github.com/ginjaninja78/edi-claims-converter/internal/x12"
	"github.com/shopspring/decimal"
)

// UnknownPayer is written into posting notes when the remittance has no
// payer name.
const UnknownPayer = "Unknown"

// Mapper converts remittances into payment postings.
type Mapper struct {
	// Now supplies the posting date fallback. Defaults to time.Now.
	Now func() time.Time

	logger logging.Logger
}

// NewMapper creates a Mapper that reports skipped claims through logger.
// A nil logger discards them.
func NewMapper(logger logging.Logger) *Mapper {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Mapper{
		Now:    time.Now,
		logger: logger,
	}
}

// ConvertToPaymentPostings maps remit with a default Mapper.
//
// PARAMETERS:
//   - remit:    the parsed remittance
//   - claimMap: claim number (CLP01) to internal claim id
//
// RETURNS:
//   - PostingResult with one posting per matched claim, in file order, plus
//     the unmatched claim numbers.
func ConvertToPaymentPostings(remit *RemittanceAdvice, claimMap map[string]string) PostingResult {
	return NewMapper(logging.New("mapper")).Map(remit, claimMap)
}

// Map builds the postings for remit.
func (m *Mapper) Map(remit *RemittanceAdvice, claimMap map[string]string) PostingResult {
	result := PostingResult{
		Postings: []PaymentPosting{},
		Skipped:  []string{},
	}
	if remit == nil {
		return result
	}

	for _, claim := range remit.Claims {
		claimID, ok := claimMap[claim.ClaimNumber]
		if !ok || claimID == "" {
			m.logger.Warn("claim %s not found in database, skipping", claim.ClaimNumber)
			result.Skipped = append(result.Skipped, claim.ClaimNumber)
			continue
		}
		result.Postings = append(result.Postings, m.posting(remit, claim, claimID))
	}

	return result
}

func (m *Mapper) posting(remit *RemittanceAdvice, claim ClaimPayment, claimID string) PaymentPosting {
	reason, code := firstAdjustment(claim.Adjustments)

	postingDate := remit.CheckDate
	if postingDate == "" {
		postingDate = m.now().Format(x12.LayoutISODate)
	}

	payerName := remit.PayerName
	if payerName == "" {
		payerName = UnknownPayer
	}

	return PaymentPosting{
		ClaimID:           claimID,
		CheckNumber:       remit.CheckNumber,
		CheckDate:         remit.CheckDate,
		PaymentAmount:     claim.PaymentAmount,
		AllowedAmount:     allowedAmount(claim),
		DeductibleAmount:  decimal.Zero,
		CoinsuranceAmount: decimal.Zero,
		CopayAmount:       decimal.Zero,
		AdjustmentAmount:  claim.TotalAdjustment(),
		AdjustmentReason:  reason,
		AdjustmentCode:    code,
		PostingDate:       postingDate,
		Status:            PostingStatus,
		PaymentMethod:     remit.PaymentMethod,
		ERANumber:         remit.InterchangeControlNumber,
		EOBNumber:         claim.PayerClaimControlNumber,
		Notes:             fmt.Sprintf("Auto-imported from EDI 835. Payer: %s", payerName),
		PayerName:         remit.PayerName,
		PayerID:           remit.PayerID,
		RawClaim:          claim,
	}
}

func (m *Mapper) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// allowedAmount treats a zero AMT*AU the same as an absent one.
func allowedAmount(claim ClaimPayment) decimal.Decimal {
	if claim.AllowedAmount != nil && !claim.AllowedAmount.IsZero() {
		return *claim.AllowedAmount
	}
	return claim.TotalChargeAmount
}

// firstAdjustment returns the "{group}-{reason}" label and group code of the
// first CAS group. The label is empty when that group has no adjustments.
func firstAdjustment(groups []AdjustmentGroup) (reason, code string) {
	if len(groups) == 0 {
		return "", ""
	}
	first := groups[0]
	if len(first.Adjustments) > 0 {
		reason = first.GroupCode + "-" + first.Adjustments[0].ReasonCode
	}
	return reason, first.GroupCode
}

// =============================================================================
// EDI Claims Converter - XLSX Posting Report
// =============================================================================
//
// WritePostingReport writes a PostingResult as a workbook for the billing
// team. The workbook has two sheets:
//
//   Postings  one row per PaymentPosting, amounts as numbers
//   Skipped   claim numbers that had no entry in the claim map
//
// =============================================================================

package sheets

import (
	"fmt"

	"github.com/ginjaninja78/edi-claims-converter/internal/era"
	"github.com/xuri/excelize/v2"
)

// Sheet names in the posting report.
const (
	SheetPostings = "Postings"
	SheetSkipped  = "Skipped"
)

// postingHeaders is the header row of the Postings sheet.
var postingHeaders = []interface{}{
	"Claim ID",
	"Check Number",
	"Check Date",
	"Payment Amount",
	"Allowed Amount",
	"Adjustment Amount",
	"Adjustment Reason",
	"Adjustment Code",
	"Payment Method",
	"Payer Name",
	"Payer ID",
	"Posting Date",
	"Status",
}

// WritePostingReport saves result to path.
//
// PARAMETERS:
//   - path:   the output .xlsx path; an existing file is overwritten
//   - result: the mapper output
//
// RETURNS:
//   - An error if the workbook cannot be built or saved.
func WritePostingReport(path string, result era.PostingResult) error {
	f, err := buildPostingReport(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save posting report: %w", err)
	}
	return nil
}

func buildPostingReport(result era.PostingResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetPostings); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSkipped); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, SheetPostings, 1, postingHeaders); err != nil {
		f.Close()
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(postingHeaders), 1)
	if err := f.SetCellStyle(SheetPostings, "A1", lastHeader, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, p := range result.Postings {
		row := []interface{}{
			p.ClaimID,
			p.CheckNumber,
			p.CheckDate,
			p.PaymentAmount.InexactFloat64(),
			p.AllowedAmount.InexactFloat64(),
			p.AdjustmentAmount.InexactFloat64(),
			p.AdjustmentReason,
			p.AdjustmentCode,
			string(p.PaymentMethod),
			p.PayerName,
			p.PayerID,
			p.PostingDate,
			p.Status,
		}
		if err := writeRow(f, SheetPostings, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := writeRow(f, SheetSkipped, 1, []interface{}{"Claim Number"}); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(SheetSkipped, "A1", "A1", bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	for i, number := range result.Skipped {
		if err := writeRow(f, SheetSkipped, i+2, []interface{}{number}); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

package sheets

import (
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/edi-claims-converter/internal/era"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWritePostingReport(t *testing.T) {
	result := era.PostingResult{
		Postings: []era.PaymentPosting{
			{
				ClaimID:          "db-1",
				CheckNumber:      "CHK100",
				CheckDate:        "2024-06-05",
				PaymentAmount:    decimal.RequireFromString("85.5"),
				AllowedAmount:    decimal.RequireFromString("100"),
				AdjustmentAmount: decimal.RequireFromString("14.5"),
				AdjustmentReason: "CO",
				AdjustmentCode:   "45",
				PaymentMethod:    era.PaymentMethodCheck,
				PayerName:        "ACME HEALTH",
				PayerID:          "ACME01",
				PostingDate:      "2024-06-05",
				Status:           era.PostingStatus,
			},
		},
		Skipped: []string{"CLM404", "CLM405"},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WritePostingReport(path, result))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetPostings, SheetSkipped}, f.GetSheetList())

	rows, err := f.GetRows(SheetPostings, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Claim ID", rows[0][0])
	assert.Equal(t, "Status", rows[0][len(rows[0])-1])
	assert.Equal(t, []string{
		"db-1", "CHK100", "2024-06-05", "85.5", "100", "14.5", "CO", "45",
		"check", "ACME HEALTH", "ACME01", "2024-06-05", "posted",
	}, rows[1])

	skipped, err := f.GetRows(SheetSkipped)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Claim Number"}, {"CLM404"}, {"CLM405"}}, skipped)
}

func TestWritePostingReport_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WritePostingReport(path, era.PostingResult{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetPostings)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

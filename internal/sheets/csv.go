// =============================================================================
// EDI Claims Converter - CSV Claim Import
// =============================================================================
//
// Many billing systems can only export flat files. ReadClaimsCSV accepts the
// same columns as the XLSX import, located by header name through the same
// ClaimLayout (header_row, data_start_row, headers). sheet_name is ignored.
//
// CUSTOMIZATION:
//   - claim_sheet.delimiter selects ",", ";", "|" or "tab"
//
// =============================================================================

package sheets

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/edi-claims-converter/internal/claim"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadClaimsCSV reads every claim row from a CSV export.
//
// PARAMETERS:
//   - path:   the CSV file
//   - layout: header configuration and delimiter
//
// RETURNS:
//   - The claims in row order. Blank rows are skipped.
//   - An error if the file cannot be read or a cell cannot be converted.
func ReadClaimsCSV(path string, layout ClaimLayout) ([]claim.ClaimSubmission, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open claims file: %w", err)
	}
	defer file.Close()

	return readClaimsCSV(file, layout)
}

func readClaimsCSV(r io.Reader, layout ClaimLayout) ([]claim.ClaimSubmission, error) {
	layout = layout.withDefaults()

	reader := bufio.NewReader(r)
	if prefix, err := reader.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		reader.Discard(len(utf8BOM))
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, layout.Delimiter)

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) < layout.HeaderRow {
		return nil, fmt.Errorf("CSV has no header row %d", layout.HeaderRow)
	}

	return claimsFromRows(rows, layout)
}

// configureReader applies the delimiter and the lenient settings billing
// exports need (ragged rows, stray quotes, padded fields).
func configureReader(reader *csv.Reader, delimiter string) {
	switch delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(delimiter) > 0 {
			reader.Comma = rune(delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

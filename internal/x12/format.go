// =============================================================================
// EDI Claims Converter - X12 Formatting Helpers
// =============================================================================
//
// Date, time, amount, and padding helpers shared by the parser and the
// generators.
//
// DATE FORMATS:
//   - CCYYMMDD : 4-digit year, used in GS, BHT, DTP, DMG, BPR
//   - YYMMDD   : 2-digit year, used only in ISA09
//   - HHMM     : 24-hour time, used in ISA10, GS05, BHT05
//
// =============================================================================

package x12

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Go reference layouts for the X12 date/time formats.
const (
	LayoutCCYYMMDD = "20060102"
	LayoutYYMMDD   = "060102"
	LayoutHHMM     = "1504"
	LayoutISODate  = "2006-01-02"
)

// inputDateLayouts are accepted when reading dates supplied by callers.
var inputDateLayouts = []string{
	LayoutISODate,
	time.RFC3339,
	"2006-01-02T15:04:05",
	LayoutCCYYMMDD,
	"01/02/2006",
}

// =============================================================================
// DATES
// =============================================================================

// FormatEDIDate converts an X12 CCYYMMDD date to an ISO calendar date.
//
// Non-digit characters are stripped first; the remaining digits must be
// exactly eight long. Anything else (empty, 6-digit, garbage) yields "".
//
// EXAMPLES:
//   "20231215"   -> "2023-12-15"
//   "2023-12-15" -> "2023-12-15"
//   "231215"     -> ""
func FormatEDIDate(ediDate string) string {
	if ediDate == "" {
		return ""
	}

	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, ediDate)

	if len(cleaned) != 8 {
		return ""
	}

	return cleaned[0:4] + "-" + cleaned[4:6] + "-" + cleaned[6:8]
}

// FormatDate renders t as CCYYMMDD.
func FormatDate(t time.Time) string {
	return t.Format(LayoutCCYYMMDD)
}

// FormatShortDate renders t as YYMMDD for the ISA header.
func FormatShortDate(t time.Time) string {
	return t.Format(LayoutYYMMDD)
}

// FormatTime renders t as HHMM.
func FormatTime(t time.Time) string {
	return t.Format(LayoutHHMM)
}

// ParseDate parses a caller-supplied date in any of the accepted layouts.
// The second return value is false when no layout matched.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range inputDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// =============================================================================
// AMOUNTS
// =============================================================================

// ParseAmount parses a monetary element. Absent or unparseable values are
// treated as zero so that they can always feed arithmetic.
func ParseAmount(value string) decimal.Decimal {
	amount, ok := ParseOptionalAmount(value)
	if !ok {
		return decimal.Zero
	}
	return amount
}

// ParseOptionalAmount parses a monetary element and reports whether it held a
// valid number.
func ParseOptionalAmount(value string) (decimal.Decimal, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// FormatAmount renders an amount with two decimal places.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// =============================================================================
// PADDING
// =============================================================================

// PadRight truncates s to length and pads it with trailing spaces, as required
// by the fixed-width ISA fields.
func PadRight(s string, length int) string {
	runes := []rune(s)
	if len(runes) > length {
		runes = runes[:length]
	}
	return string(runes) + strings.Repeat(" ", length-len(runes))
}

// Blank returns a string of n spaces.
func Blank(n int) string {
	return strings.Repeat(" ", n)
}

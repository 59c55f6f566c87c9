// =============================================================================
// EDI Claims Converter - Processing Results
// =============================================================================
//
// Every pipeline run over a file produces one Result. Failures are recorded
// in the Result rather than returned, so a batch never stops because a single
// file is bad (unless continue_on_error is false).
//
// =============================================================================

package processor

import (
	"errors"
	"time"

	"github.com/ginjaninja78/edi-claims-converter/internal/era"
	"github.com/ginjaninja78/edi-claims-converter/internal/x12"
	"github.com/ginjaninja78/edi-claims-converter/pkg/utils"
	"github.com/shopspring/decimal"
)

// ErrValidationFailed is wrapped when a file or claim fails its pre-check.
var ErrValidationFailed = errors.New("validation failed")

// Pipeline stages recorded on failure.
const (
	StageCancelled = "cancelled"
	StageRead      = "read"
	StageLoad      = "load"
	StageValidate  = "validate"
	StageParse     = "parse"
	StageWrite     = "write"
)

// Result kinds.
const (
	KindRemittance = "835"
	KindClaim      = "837"
)

// Result represents the outcome of processing a single file.
type Result struct {
	FilePath string
	Kind     string

	// Profile is the matched payer profile name, if any.
	Profile string

	// OutputFiles lists every file written to the output directory.
	OutputFiles []string

	Success bool

	// Stage and Error describe the failure when Success is false.
	Stage string
	Error error

	// ValidationErrors holds the 835 structural pre-check messages.
	ValidationErrors []string

	// ClaimIssues holds per-claim validation failures of a claim batch.
	ClaimIssues []ClaimIssue

	// Skipped lists remittance claim numbers missing from the claim map.
	Skipped []string

	Stats ProcessingStats
}

// ClaimIssue is one claim rejected by claim.ValidateClaimData.
type ClaimIssue struct {
	// Index is the claim's zero-based position in the batch.
	Index       int
	ClaimNumber string
	Errors      []string
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	Claims           int
	Postings         int
	Skipped          int
	Generated        int
	ValidationErrors int
	TotalPaid        decimal.Decimal
	ProcessingTime   time.Duration
}

func (r Result) fail(stage string, err error, start time.Time) Result {
	r.Success = false
	r.Stage = stage
	r.Error = err
	r.Stats.ProcessingTime = time.Since(start)
	return r
}

// =============================================================================
// RUN REPORTING
// =============================================================================

// Summarize folds results into a run summary for utils.WriteSummaryLog.
func Summarize(results []Result, start, end time.Time) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		StartTime:  start,
		EndTime:    end,
		TotalFiles: len(results),
	}

	paid := decimal.Zero
	for _, r := range results {
		if !r.Success {
			summary.FailedFiles++
			msg := ""
			if r.Error != nil {
				msg = r.Error.Error()
			}
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    r.FilePath,
				Stage:        r.Stage,
				ErrorMessage: msg,
			})
			continue
		}

		summary.SuccessfulFiles++
		summary.TotalClaims += r.Stats.Claims
		summary.TotalPostings += r.Stats.Postings
		summary.TotalSkipped += r.Stats.Skipped
		paid = paid.Add(r.Stats.TotalPaid)
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   r.FilePath,
			OutputFiles: r.OutputFiles,
			Profile:     r.Profile,
			Claims:      r.Stats.Claims,
			Postings:    r.Stats.Postings,
			Skipped:     r.Stats.Skipped,
			ProcessTime: r.Stats.ProcessingTime,
		})
	}
	summary.TotalPaid = x12.FormatAmount(paid)

	return summary
}

// ErrorEntries turns failed results and rejected claims into error log
// entries. Parse failures carry the offending segment.
func ErrorEntries(results []Result, now time.Time) []utils.ErrorLogEntry {
	var entries []utils.ErrorLogEntry

	for _, r := range results {
		for _, issue := range r.ClaimIssues {
			for _, msg := range issue.Errors {
				entries = append(entries, utils.ErrorLogEntry{
					Timestamp:   now,
					FileName:    r.FilePath,
					Stage:       StageValidate,
					Message:     msg,
					ClaimNumber: issue.ClaimNumber,
				})
			}
		}

		if r.Success || r.Error == nil {
			continue
		}

		entry := utils.ErrorLogEntry{
			Timestamp: now,
			FileName:  r.FilePath,
			Stage:     r.Stage,
			Message:   r.Error.Error(),
		}
		var parseErr *era.ParseError
		if errors.As(r.Error, &parseErr) {
			entry.SegmentIndex = parseErr.Index
			entry.SegmentTag = parseErr.Tag
		}
		entries = append(entries, entry)
	}

	return entries
}

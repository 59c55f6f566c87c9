// =============================================================================
// EDI Claims Converter - 835 Processing Pipeline
// =============================================================================
//
// RemittanceProcessor runs one 835 file through the posting pipeline.
//
// PROCESSING PIPELINE:
//   1. Read the file
//   2. Structural pre-check (era.Validate835)
//   3. Parse into a RemittanceAdvice (era.Parse)
//   4. Match a payer profile by file name and fill missing payer identity
//   5. Map claims to payment postings using the claim map
//   6. Write the posting document (JSON) and optional XLSX report
//   7. Archive the input and the outputs
//
// CONCURRENCY:
//   Process is safe for concurrent use; all shared state is read-only after
//   construction.
//
// =============================================================================

package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/edi-claims-converter/internal/config"
	"github.com/ginjaninja78/edi-claims-converter/internal/era"
	"github.com/ginjaninja78/edi-claims-converter/internal/logging"
	"github.com/ginjaninja78/edi-claims-converter/internal/sheets"
	"github.com/ginjaninja78/edi-claims-converter/pkg/utils"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// PostingDocument is the JSON written for each processed 835.
type PostingDocument struct {
	SourceFile  string               `json:"source_file"`
	Profile     string               `json:"profile,omitempty"`
	ProcessedAt time.Time            `json:"processed_at"`
	Remittance  RemittanceSummary    `json:"remittance"`
	Postings    []era.PaymentPosting `json:"postings"`
	Skipped     []string             `json:"skipped"`
}

// RemittanceSummary is the header of a remittance without its claims.
type RemittanceSummary struct {
	InterchangeControlNumber string            `json:"interchange_control_number"`
	PayerName                string            `json:"payer_name"`
	PayerID                  string            `json:"payer_id"`
	PaymentMethod            era.PaymentMethod `json:"payment_method"`
	CheckNumber              string            `json:"check_number"`
	CheckDate                string            `json:"check_date,omitempty"`
	TotalPaymentAmount       decimal.Decimal   `json:"total_payment_amount"`
	ClaimCount               int               `json:"claim_count"`
}

// SummarizeRemittance copies the header fields of remit.
func SummarizeRemittance(remit *era.RemittanceAdvice) RemittanceSummary {
	return RemittanceSummary{
		InterchangeControlNumber: remit.InterchangeControlNumber,
		PayerName:                remit.PayerName,
		PayerID:                  remit.PayerID,
		PaymentMethod:            remit.PaymentMethod,
		CheckNumber:              remit.CheckNumber,
		CheckDate:                remit.CheckDate,
		TotalPaymentAmount:       remit.TotalPaymentAmount,
		ClaimCount:               len(remit.Claims),
	}
}

// RemittanceProcessor handles the conversion of 835 files to postings.
type RemittanceProcessor struct {
	cfg      *config.MainConfig
	profiles []*config.PayerProfile

	// claimMaps holds one map per claim map file; "" is the main config's.
	claimMaps map[string]map[string]string

	files  *utils.FileManager
	mapper *era.Mapper
	logger logging.Logger

	// Archive moves inputs and copies outputs after success. Default: true
	Archive bool

	// Now stamps the posting documents. Default: time.Now
	Now func() time.Time
}

// NewRemittanceProcessor prepares a processor, loading every claim map
// referenced by cfg and the profiles.
//
// RETURNS:
//   - An error if a referenced claim map cannot be loaded.
func NewRemittanceProcessor(cfg *config.MainConfig, profiles []*config.PayerProfile, logger logging.Logger) (*RemittanceProcessor, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	p := &RemittanceProcessor{
		cfg:       cfg,
		profiles:  profiles,
		claimMaps: map[string]map[string]string{"": {}},
		files:     newFileManager(cfg),
		mapper:    era.NewMapper(logger),
		logger:    logger,
		Archive:   true,
		Now:       time.Now,
	}

	if cfg.ClaimMapFile != "" {
		claimMap, err := config.LoadClaimMap(cfg.ClaimMapFile)
		if err != nil {
			return nil, err
		}
		p.claimMaps[""] = claimMap
	} else {
		logger.Warn("no claim_map_file configured; every claim will be skipped")
	}

	for _, profile := range profiles {
		if profile.ClaimMapFile == "" {
			continue
		}
		if _, loaded := p.claimMaps[profile.ClaimMapFile]; loaded {
			continue
		}
		claimMap, err := config.LoadClaimMap(profile.ClaimMapFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load claim map for profile %s: %w", profile.ProfileName, err)
		}
		p.claimMaps[profile.ClaimMapFile] = claimMap
	}

	return p, nil
}

// Process runs the posting pipeline for one file.
func (p *RemittanceProcessor) Process(ctx context.Context, path string) Result {
	start := time.Now()
	result := Result{FilePath: path, Kind: KindRemittance}

	if err := ctx.Err(); err != nil {
		return result.fail(StageCancelled, err, start)
	}

	p.logger.Info("Processing file: %s", path)

	// =========================================================================
	// STEP 1-3: READ, PRE-CHECK, PARSE
	// =========================================================================

	data, err := os.ReadFile(path)
	if err != nil {
		return result.fail(StageRead, fmt.Errorf("failed to read input file: %w", err), start)
	}
	text := string(data)

	check := era.Validate835(text)
	if !check.Valid {
		result.ValidationErrors = check.Errors
		result.Stats.ValidationErrors = len(check.Errors)
		for _, msg := range check.Errors {
			p.logger.Warn("Validation error in %s: %s", filepath.Base(path), msg)
		}
		return result.fail(StageValidate, fmt.Errorf("%w: %s", ErrValidationFailed, check.String()), start)
	}

	remit, err := era.Parse(text)
	if err != nil {
		return result.fail(StageParse, err, start)
	}
	result.Stats.Claims = len(remit.Claims)
	p.logger.Debug("Parsed %d claims from %s", len(remit.Claims), filepath.Base(path))

	// =========================================================================
	// STEP 4-5: PROFILE AND POSTINGS
	// =========================================================================

	profile := config.MatchProfile(p.profiles, path)
	if profile != nil {
		result.Profile = profile.ProfileName
		applyProfile(remit, profile)
		p.logger.Debug("Matched payer profile %s", profile.ProfileName)
	}

	postings := p.mapper.Map(remit, p.claimMapFor(profile))
	result.Skipped = postings.Skipped
	result.Stats.Postings = len(postings.Postings)
	result.Stats.Skipped = len(postings.Skipped)
	result.Stats.TotalPaid = totalPaid(postings.Postings)

	// =========================================================================
	// STEP 6: WRITE OUTPUTS
	// =========================================================================

	doc := PostingDocument{
		SourceFile:  filepath.Base(path),
		Profile:     result.Profile,
		ProcessedAt: p.now(),
		Remittance:  SummarizeRemittance(remit),
		Postings:    postings.Postings,
		Skipped:     postings.Skipped,
	}

	outputs, err := p.writeOutputs(path, doc, postings)
	result.OutputFiles = outputs
	if err != nil {
		return result.fail(StageWrite, err, start)
	}
	p.logger.Info("Wrote %d postings (%d skipped) to %s", len(postings.Postings), len(postings.Skipped), outputs[0])

	// =========================================================================
	// STEP 7: ARCHIVE
	// =========================================================================

	if p.Archive {
		archiveAll(p.files, p.logger, path, outputs)
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(start)
	return result
}

func (p *RemittanceProcessor) writeOutputs(path string, doc PostingDocument, postings era.PostingResult) ([]string, error) {
	name := utils.GenerateOutputFileName(p.cfg.OutputNaming, map[string]string{
		"type":     KindRemittance,
		"original": utils.BaseName(path),
	}, ".json")
	jsonPath := filepath.Join(p.cfg.OutputDir, name)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode postings: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}
	outputs := []string{jsonPath}

	if p.cfg.XLSXReport {
		xlsxPath := strings.TrimSuffix(jsonPath, ".json") + ".xlsx"
		if err := sheets.WritePostingReport(xlsxPath, postings); err != nil {
			return outputs, fmt.Errorf("failed to write posting report: %w", err)
		}
		outputs = append(outputs, xlsxPath)
	}

	return outputs, nil
}

func (p *RemittanceProcessor) claimMapFor(profile *config.PayerProfile) map[string]string {
	if profile != nil && profile.ClaimMapFile != "" {
		if claimMap, ok := p.claimMaps[profile.ClaimMapFile]; ok {
			return claimMap
		}
	}
	return p.claimMaps[""]
}

func (p *RemittanceProcessor) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// applyProfile fills payer identity the file left empty.
func applyProfile(remit *era.RemittanceAdvice, profile *config.PayerProfile) {
	if remit.PayerName == "" {
		remit.PayerName = profile.PayerName
	}
	if remit.PayerID == "" {
		remit.PayerID = profile.PayerID
	}
}

func totalPaid(postings []era.PaymentPosting) decimal.Decimal {
	total := decimal.Zero
	for _, posting := range postings {
		total = total.Add(posting.PaymentAmount)
	}
	return total
}

func newFileManager(cfg *config.MainConfig) *utils.FileManager {
	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	fm.UseDateSubdirs = cfg.ArchiveDateSubdirs
	return fm
}

// archiveAll moves the input and copies the outputs. Failures are logged and
// do not fail the file.
func archiveAll(files *utils.FileManager, logger logging.Logger, input string, outputs []string) {
	if _, err := files.ArchiveInputFile(input); err != nil {
		logger.Warn("Failed to archive %s: %v", input, err)
	}
	for _, out := range outputs {
		if _, err := files.ArchiveOutputFile(out); err != nil {
			logger.Warn("Failed to archive %s: %v", out, err)
		}
	}
}

// =============================================================================
// EDI Claims Converter - 837 Claim Batch Pipeline
// =============================================================================
//
// ClaimProcessor turns a claim batch file into one 837P file per claim.
//
// PROCESSING PIPELINE:
//   1. Load the batch (XLSX, CSV, YAML or JSON)
//   2. Validate every claim (claim.ValidateClaimData)
//   3. Generate an 837 for each valid claim, with receiver overrides taken
//      from the payer profile whose payer_id matches the claim
//   4. Write the files and archive them
//
// With continue_on_error false, a single invalid claim fails the whole batch
// before anything is written.
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

	"github.com/ginjaninja78/edi-claims-converter/internal/claim"
	"github.com/ginjaninja78/edi-claims-converter/internal/config"
	"github.com/ginjaninja78/edi-claims-converter/internal/logging"
	"github.com/ginjaninja78/edi-claims-converter/internal/sheets"
	"github.com/ginjaninja78/edi-claims-converter/pkg/utils"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// claimBatchFile is the keyed form of a YAML or JSON batch. A bare list of
// claims is accepted as well.
type claimBatchFile struct {
	Claims []claim.ClaimSubmission `yaml:"claims" json:"claims"`
}

// LoadClaimBatch reads the claims in path. The format is chosen by
// extension: .xlsx, .csv, .yaml/.yml or .json.
func LoadClaimBatch(path string, layout sheets.ClaimLayout) ([]claim.ClaimSubmission, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx":
		return sheets.ReadClaims(path, layout)
	case ".csv":
		return sheets.ReadClaimsCSV(path, layout)
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("unsupported claim batch format %q", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read claim batch: %w", err)
	}

	if ext == ".json" {
		return decodeClaimBatch(data, json.Unmarshal)
	}
	return decodeClaimBatch(data, yaml.Unmarshal)
}

// decodeClaimBatch accepts a bare list of claims or a mapping with a
// "claims" list. A mapping without that key is rejected so that a single
// claim object is not read as an empty batch.
func decodeClaimBatch(data []byte, unmarshal func([]byte, interface{}) error) ([]claim.ClaimSubmission, error) {
	var list []claim.ClaimSubmission
	if err := unmarshal(data, &list); err == nil {
		return list, nil
	}

	var batch claimBatchFile
	if err := unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse claim batch: %w", err)
	}
	if batch.Claims == nil {
		return nil, fmt.Errorf("failed to parse claim batch: no %q list found", "claims")
	}
	return batch.Claims, nil
}

// ValidateBatch runs claim.ValidateClaimData over claims and returns the
// failures.
func ValidateBatch(claims []claim.ClaimSubmission) []ClaimIssue {
	var issues []ClaimIssue
	for i, c := range claims {
		if result := claim.ValidateClaimData(c); !result.Valid {
			issues = append(issues, ClaimIssue{
				Index:       i,
				ClaimNumber: c.ClaimNumber,
				Errors:      result.Errors,
			})
		}
	}
	return issues
}

// ClaimProcessor generates 837 files from claim batches.
type ClaimProcessor struct {
	cfg      *config.MainConfig
	profiles []*config.PayerProfile

	// Generator renders each claim. Default: claim.NewGenerator()
	Generator *claim.Generator

	// Archive moves the batch and copies the 837 files after success.
	// Default: true
	Archive bool

	files  *utils.FileManager
	logger logging.Logger
}

// NewClaimProcessor creates a ClaimProcessor.
func NewClaimProcessor(cfg *config.MainConfig, profiles []*config.PayerProfile, logger logging.Logger) *ClaimProcessor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ClaimProcessor{
		cfg:       cfg,
		profiles:  profiles,
		Generator: claim.NewGenerator(),
		Archive:   true,
		files:     newFileManager(cfg),
		logger:    logger,
	}
}

// Process runs the claim pipeline for one batch file.
func (p *ClaimProcessor) Process(ctx context.Context, path string) Result {
	start := time.Now()
	result := Result{FilePath: path, Kind: KindClaim}

	if err := ctx.Err(); err != nil {
		return result.fail(StageCancelled, err, start)
	}

	p.logger.Info("Processing claim batch: %s", path)

	claims, err := LoadClaimBatch(path, p.cfg.ClaimSheet)
	if err != nil {
		return result.fail(StageLoad, err, start)
	}
	result.Stats.Claims = len(claims)

	issues := ValidateBatch(claims)
	result.ClaimIssues = issues
	for _, issue := range issues {
		result.Stats.ValidationErrors += len(issue.Errors)
		p.logger.Warn("Claim %q (#%d) rejected: %s", issue.ClaimNumber, issue.Index+1, strings.Join(issue.Errors, "; "))
	}
	if len(issues) > 0 && !p.cfg.ContinueOnError {
		return result.fail(StageValidate,
			fmt.Errorf("%w: %d of %d claims invalid", ErrValidationFailed, len(issues), len(claims)), start)
	}

	rejected := make(map[int]bool, len(issues))
	for _, issue := range issues {
		rejected[issue.Index] = true
	}

	for i, c := range claims {
		if rejected[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result.fail(StageCancelled, err, start)
		}

		out, err := p.writeClaim(path, c)
		if err != nil {
			return result.fail(StageWrite, err, start)
		}
		result.OutputFiles = append(result.OutputFiles, out)
		result.Stats.Generated++
		p.logger.Debug("Generated 837 for claim %s: %s", c.ClaimNumber, out)
	}

	p.logger.Info("Generated %d of %d claims from %s", result.Stats.Generated, len(claims), filepath.Base(path))

	if p.Archive {
		archiveAll(p.files, p.logger, path, result.OutputFiles)
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(start)
	return result
}

func (p *ClaimProcessor) writeClaim(batchPath string, c claim.ClaimSubmission) (string, error) {
	text := p.generator().Generate(c, p.SubmitterFor(c))

	name := utils.GenerateOutputFileName(p.cfg.ClaimOutputNaming, map[string]string{
		"type":     KindClaim,
		"original": utils.BaseName(batchPath),
		"claim":    c.ClaimNumber,
	}, ".x12")
	outPath := filepath.Join(p.cfg.OutputDir, name)

	if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write 837 for claim %s: %w", c.ClaimNumber, err)
	}
	return outPath, nil
}

// SubmitterFor returns the configured submitter with the receiver replaced
// by the claim's payer profile, when one matches.
func (p *ClaimProcessor) SubmitterFor(c claim.ClaimSubmission) claim.SubmitterInfo {
	submitter := p.cfg.Submitter

	profile := config.ProfileForPayer(p.profiles, c.PayerID)
	if profile == nil {
		return submitter
	}
	if profile.ReceiverID != "" {
		submitter.ReceiverID = profile.ReceiverID
	}
	if profile.ReceiverName != "" {
		submitter.ReceiverName = profile.ReceiverName
	}
	return submitter
}

func (p *ClaimProcessor) generator() *claim.Generator {
	if p.Generator == nil {
		return claim.NewGenerator()
	}
	return p.Generator
}

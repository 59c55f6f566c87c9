// =============================================================================
// EDI Claims Converter - Batch Runner
// =============================================================================
//
// RunBatch drives a Processor over many files with bounded concurrency.
// WriteRunLogs and PruneArchives finish a run.
//
// =============================================================================

package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/ginjaninja78/edi-claims-converter/internal/config"
	"github.com/ginjaninja78/edi-claims-converter/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// Processor runs a pipeline over one file.
type Processor interface {
	Process(ctx context.Context, path string) Result
}

// RunBatch processes files with at most maxConcurrency running at once.
//
// PARAMETERS:
//   - ctx:            cancels files that have not started yet
//   - proc:           the pipeline
//   - files:          input paths
//   - maxConcurrency: worker limit; <= 0 means unlimited
//   - stopOnError:    when true, the first failure cancels the files that
//                     have not started (they report StageCancelled)
//
// RETURNS:
//   - One Result per file, in the order of files.
func RunBatch(ctx context.Context, proc Processor, files []string, maxConcurrency int, stopOnError bool) []Result {
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	if maxConcurrency > 0 {
		g.SetLimit(maxConcurrency)
	}

	for i, file := range files {
		g.Go(func() error {
			results[i] = proc.Process(gctx, file)
			if stopOnError && !results[i].Success {
				return fmt.Errorf("%s: %w", file, results[i].Error)
			}
			return nil
		})
	}

	// The first failure is already recorded in results.
	_ = g.Wait()

	return results
}

// WriteRunLogs writes the error log (when anything failed) and the summary
// for a finished batch into dir.
//
// RETURNS:
//   - The error log path ("" when there were no errors) and the summary path.
func WriteRunLogs(results []Result, start, end time.Time, dir string) (string, string, error) {
	errorLog, err := utils.WriteErrorLog(ErrorEntries(results, end), dir)
	if err != nil {
		return "", "", err
	}

	summaryLog, err := utils.WriteSummaryLog(Summarize(results, start, end), dir)
	if err != nil {
		return errorLog, "", err
	}

	return errorLog, summaryLog, nil
}

// PruneArchives applies archive_retention_days to both archive directories.
// It returns the number of files removed.
func PruneArchives(cfg *config.MainConfig) (int, error) {
	if cfg.ArchiveRetentionDays <= 0 {
		return 0, nil
	}

	maxAge := time.Duration(cfg.ArchiveRetentionDays) * 24 * time.Hour
	total := 0
	for _, dir := range []string{cfg.InputArchiveDir, cfg.OutputArchiveDir} {
		removed, err := utils.CleanOldArchives(dir, maxAge)
		total += removed
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

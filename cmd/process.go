// =============================================================================
// EDI Claims Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, the batch entry point. It posts
// every 835 file found in the input directory.
//
// COMMAND USAGE:
//   edi process [flags]
//
// FLAGS:
//   --file        : Process only this file instead of scanning the input dir
//   --profile     : Process only files matched by this payer profile
//
// PROCESSING PIPELINE:
//   1. Load config.yaml and the payer profiles
//   2. Discover 835 files in the input directory
//   3. For each file (concurrently, max_concurrency at a time):
//      a. Validate the envelope
//      b. Parse the remittance
//      c. Match a payer profile
//      d. Map claims to payment postings
//      e. Write the posting JSON and XLSX report
//      f. Archive the input and outputs
//   4. Write the error log and run summary
//   5. Prune old archives (archive_retention_days)
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/edi-claims-converter/internal/config"
	"github.com/ginjaninja78/edi-claims-converter/internal/logging"
	"github.com/ginjaninja78/edi-claims-converter/internal/processor"
	"github.com/ginjaninja78/edi-claims-converter/pkg/utils"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// filePath is a single file to process instead of the whole input directory.
var filePath string

// profileName filters processing to files matched by one payer profile.
var profileName string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Post every 835 remittance file in the input directory",
	Long: `The process command scans the input directory for 835 files (.835, .edi,
.x12, .txt), validates and parses each one, and maps its claims to payment
postings using the claim map.

Files are processed concurrently (max_concurrency). With continue_on_error
set to false, the first failure cancels the files that have not started.

On successful processing:
  - A posting JSON (and an XLSX report when xlsx_report is on) is written
    to the output directory
  - The original file is moved to the input archive
  - The outputs are copied to the output archive

On error:
  - The error is recorded in the run's error log
  - The original file remains in the input directory
  - The command exits non-zero once the batch is done`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Process only this file",
	)

	processCmd.Flags().StringVar(
		&profileName,
		"profile",
		"",
		"Process only files matched by this payer profile",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(ctx context.Context) error {
	startTime := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Println("=== EDI Claims Converter ===")
	fmt.Println("Loading configuration...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New("process")

	profiles, err := config.LoadPayerProfiles(cfg.ProfilesDir)
	if err != nil {
		return fmt.Errorf("failed to load payer profiles: %w", err)
	}
	fmt.Printf("Loaded %d payer profile(s)\n", len(profiles))

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles, err := discoverInputFiles(cfg)
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	inputFiles = filterByProfile(inputFiles, profiles, profileName)

	if len(inputFiles) == 0 {
		fmt.Println("No 835 files found in the input directory.")
		return nil
	}
	fmt.Printf("Found %d file(s) to process\n", len(inputFiles))

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================

	proc, err := processor.NewRemittanceProcessor(cfg, profiles, logging.New("remittance"))
	if err != nil {
		return err
	}

	fmt.Println("Processing files...")
	results := processor.RunBatch(ctx, proc, inputFiles, cfg.MaxConcurrency, !cfg.ContinueOnError)

	// =========================================================================
	// STEP 4: REPORT
	// =========================================================================

	endTime := time.Now()
	failed := printResults(results)

	errorLog, summaryLog, err := processor.WriteRunLogs(results, startTime, endTime, cfg.LogDir)
	if err != nil {
		logger.Error("Failed to write run logs: %v", err)
	}

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", len(inputFiles))
	fmt.Printf("Successful:      %d\n", len(results)-failed)
	fmt.Printf("Errors:          %d\n", failed)
	fmt.Printf("Time elapsed:    %s\n", endTime.Sub(startTime))
	if summaryLog != "" {
		fmt.Printf("Summary:         %s\n", summaryLog)
	}
	if errorLog != "" {
		fmt.Printf("Error log:       %s\n", errorLog)
	}

	// =========================================================================
	// STEP 5: ARCHIVE RETENTION
	// =========================================================================

	if removed, err := processor.PruneArchives(cfg); err != nil {
		logger.Warn("Archive cleanup failed: %v", err)
	} else if removed > 0 {
		logger.Info("Removed %d archived file(s) older than %d days", removed, cfg.ArchiveRetentionDays)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(results))
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// discoverInputFiles returns --file when given, otherwise the 835 files in
// the input directory.
func discoverInputFiles(cfg *config.MainConfig) ([]string, error) {
	if filePath != "" {
		if _, err := os.Stat(filePath); err != nil {
			return nil, err
		}
		return []string{filePath}, nil
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	if err := fm.EnsureDirectories(); err != nil {
		return nil, err
	}
	return fm.DiscoverInputFiles(utils.DefaultInputExtensions...)
}

// filterByProfile keeps the files matched by the named profile. An empty
// name keeps everything.
func filterByProfile(files []string, profiles []*config.PayerProfile, name string) []string {
	if name == "" {
		return files
	}

	var kept []string
	for _, file := range files {
		if profile := config.MatchProfile(profiles, file); profile != nil && profile.ProfileName == name {
			kept = append(kept, file)
		}
	}
	return kept
}

// printResults prints one line per file and returns the number of failures.
func printResults(results []processor.Result) int {
	failed := 0
	for _, result := range results {
		name := filepath.Base(result.FilePath)
		if result.Success {
			fmt.Printf("  ✓ %s -> %d posting(s), %d skipped\n", name, result.Stats.Postings, result.Stats.Skipped)
			continue
		}
		failed++
		fmt.Printf("  ✗ %s [%s]: %v\n", name, result.Stage, result.Error)
		for _, msg := range result.ValidationErrors {
			fmt.Printf("      - %s\n", msg)
		}
	}
	return failed
}

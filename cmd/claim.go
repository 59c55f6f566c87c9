// =============================================================================
// EDI Claims Converter - 837 Commands
// =============================================================================
//
// COMMAND USAGE:
//   edi claim validate FILE
//   edi claim generate FILE [--out DIR] [--test] [--archive]
//
// FILE is a claim batch: .xlsx or .csv (columns per claim_sheet in
// config.yaml), .yaml/.yml or .json.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/edi-claims-converter/internal/config"
	"github.com/ginjaninja78/edi-claims-converter/internal/logging"
	"github.com/ginjaninja78/edi-claims-converter/internal/processor"
	"github.com/ginjaninja78/edi-claims-converter/internal/x12"
	"github.com/ginjaninja78/edi-claims-converter/pkg/utils"
	"github.com/spf13/cobra"
)

var (
	claimOutDir  string
	claimTest    bool
	claimArchive bool
)

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Validate claim batches and generate 837P files",
}

var claimValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check every claim in a batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		claims, err := processor.LoadClaimBatch(args[0], cfg.ClaimSheet)
		if err != nil {
			return err
		}

		issues := processor.ValidateBatch(claims)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d claim(s), %d invalid\n", args[0], len(claims), len(issues))
		for _, issue := range issues {
			fmt.Fprintf(out, "  ✗ #%d %s: %s\n", issue.Index+1, issue.ClaimNumber, strings.Join(issue.Errors, "; "))
		}

		if len(issues) > 0 {
			return fmt.Errorf("%d of %d claim(s) invalid", len(issues), len(claims))
		}
		return nil
	},
}

var claimGenerateCmd = &cobra.Command{
	Use:   "generate FILE",
	Short: "Write one 837P file per valid claim",
	Long: `Generate an 837P file for every valid claim in the batch. Invalid claims are
reported and skipped, unless continue_on_error is false, in which case nothing
is written. The receiver on each file is taken from the payer profile whose
payer_id matches the claim, falling back to the submitter block of config.yaml.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if claimOutDir != "" {
			cfg.OutputDir = claimOutDir
		}
		fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
		if claimTest {
			cfg.Submitter.TestIndicator = x12.UsageTest
		}

		profiles, err := config.LoadPayerProfiles(cfg.ProfilesDir)
		if err != nil {
			return fmt.Errorf("failed to load payer profiles: %w", err)
		}

		proc := processor.NewClaimProcessor(cfg, profiles, logging.New("claim"))
		proc.Archive = claimArchive

		result := proc.Process(context.Background(), args[0])
		out := cmd.OutOrStdout()
		for _, issue := range result.ClaimIssues {
			fmt.Fprintf(out, "  ✗ #%d %s: %s\n", issue.Index+1, issue.ClaimNumber, strings.Join(issue.Errors, "; "))
		}
		if !result.Success {
			return fmt.Errorf("%s [%s]: %w", filepath.Base(args[0]), result.Stage, result.Error)
		}

		for _, file := range result.OutputFiles {
			fmt.Fprintf(out, "  ✓ %s\n", file)
		}
		fmt.Fprintf(out, "Generated %d of %d claim(s)\n", result.Stats.Generated, result.Stats.Claims)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(claimCmd)
	claimCmd.AddCommand(claimValidateCmd, claimGenerateCmd)

	claimGenerateCmd.Flags().StringVar(&claimOutDir, "out", "", "Output directory (default: output_dir from config)")
	claimGenerateCmd.Flags().BoolVar(&claimTest, "test", false, "Mark the interchanges as test data (ISA15 = T)")
	claimGenerateCmd.Flags().BoolVar(&claimArchive, "archive", false, "Archive the batch and copy the 837 files after success")
}

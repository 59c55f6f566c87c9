// =============================================================================
// EDI Claims Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (edi)
//   ├── processCmd (edi process)
//   ├── eraCmd (edi era validate|parse|post|generate)
//   ├── claimCmd (edi claim validate|generate)
//   └── versionCmd (edi version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --env, --verbose)
//   2. Loading the .env file before any command runs
//   3. Setting up logging
//
//   config.yaml is only loaded by the commands that need directories or
//   submitter identity (process, claim generate). The era commands work on
//   a single file and need nothing else.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/edi-claims-converter/internal/config"
	"github.com/ginjaninja78/edi-claims-converter/internal/logging"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// envFile holds the path to the optional .env file.
var envFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "edi",
	Short: "EDI Claims Converter - X12 835 remittance posting and 837P claim generation",
	Long: `EDI Claims Converter reads X12 835 remittance advice files, turns them into
payment postings for the billing system, and generates X12 837P professional
claim files from claim batches.

Key Features:
  - Structural validation of incoming 835 files
  - 835 parsing into payments, claims, service lines and adjustments
  - Payment posting through a claim number map, with an XLSX report
  - 837P generation from XLSX, YAML or JSON claim batches
  - Payer profiles for file routing and clearinghouse overrides
  - Concurrent batch processing with archiving and run logs

Example Usage:
  edi process                          # Post every 835 in the input directory
  edi era parse remit.835 --pretty     # Print one 835 as JSON
  edi claim generate batch.xlsx --test # Write test 837 files for a batch`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(envFile); err != nil {
			return err
		}
		initLogging(os.Getenv(config.EnvLogLevel), os.Getenv(config.EnvLogFormat))
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env",
		".env",
		"Path to an optional .env file with EDI_* overrides",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// loadConfig loads config.yaml and re-initialises logging from it.
func loadConfig() (*config.MainConfig, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}
	initLogging(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

// initLogging applies --verbose on top of the configured level.
func initLogging(level, format string) {
	if verbose {
		level = "debug"
	}
	if format == "" {
		format = logging.FormatText
	}
	logging.Init(level, format, os.Stderr)
}

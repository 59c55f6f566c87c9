// =============================================================================
// EDI Claims Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the EDI Claims Converter CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   edi process             - Post every 835 file in the input directory
//   edi era ...             - Validate, parse, post or generate a single 835
//   edi claim ...           - Validate claim batches and generate 837P files
//   edi version             - Display the application version
//
// ARCHITECTURE:
//   - cmd/                : CLI command definitions (Cobra)
//   - internal/x12        : segment tokenizer, envelopes, control numbers
//   - internal/era        : 835 validation, parsing, posting, generation
//   - internal/claim      : 837P claim validation and generation
//   - internal/sheets     : XLSX claim import and posting reports
//   - internal/processor  : per-file pipelines and the concurrent batch runner
//   - internal/config     : config.yaml, payer profiles, claim maps, .env
//   - pkg/utils           : file discovery, archiving, naming, run logs
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/edi-claims-converter/cmd"
)

func main() {
	cmd.Execute()
}

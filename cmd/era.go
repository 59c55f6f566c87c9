// =============================================================================
// EDI Claims Converter - 835 Commands
// =============================================================================
//
// Single-file tools for 835 remittance advice.
//
// COMMAND USAGE:
//   edi era validate FILE
//   edi era parse FILE [--pretty]
//   edi era post FILE --claims MAP.yaml [--xlsx OUT.xlsx]
//   edi era generate PAYMENT.yaml [--out FILE]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/edi-claims-converter/internal/config"
	"github.com/ginjaninja78/edi-claims-converter/internal/era"
	"github.com/ginjaninja78/edi-claims-converter/internal/logging"
	"github.com/ginjaninja78/edi-claims-converter/internal/sheets"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	eraPretty   bool
	eraClaimMap string
	eraXLSXOut  string
	eraOutput   string
)

// paymentFile is the input of 'era generate'.
type paymentFile struct {
	Payer   era.PayerInfo    `yaml:"payer"`
	Payment era.PaymentBatch `yaml:"payment"`
}

var eraCmd = &cobra.Command{
	Use:   "era",
	Short: "Validate, parse, post or generate 835 remittance files",
}

var eraValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check the envelope of an 835 file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(args[0])
		if err != nil {
			return err
		}

		result := era.Validate835(text)
		if result.Valid {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", args[0])
			return nil
		}
		for _, msg := range result.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", msg)
		}
		return fmt.Errorf("%s: %d validation error(s)", args[0], len(result.Errors))
	},
}

var eraParseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Print an 835 file as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		remit, err := parseRemittance(args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), remit, eraPretty)
	},
}

var eraPostCmd = &cobra.Command{
	Use:   "post FILE",
	Short: "Map an 835 file to payment postings",
	Long: `Map the claims of an 835 file to payment postings. Claim numbers are
looked up in the --claims YAML map (claim number: billing claim id); claims
without an entry are listed as skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		remit, err := parseRemittance(args[0])
		if err != nil {
			return err
		}

		claimMap := map[string]string{}
		if eraClaimMap != "" {
			if claimMap, err = config.LoadClaimMap(eraClaimMap); err != nil {
				return err
			}
		}

		result := era.NewMapper(logging.New("era")).Map(remit, claimMap)

		if eraXLSXOut != "" {
			if err := sheets.WritePostingReport(eraXLSXOut, result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", eraXLSXOut)
		}

		return writeJSON(cmd.OutOrStdout(), result, eraPretty)
	},
}

var eraGenerateCmd = &cobra.Command{
	Use:   "generate PAYMENT.yaml",
	Short: "Generate an 835 file from a payment description",
	Long: `Generate an 835 file from a YAML payment description:

  payer:
    payer_id: PAYER01
    name: Example Health Plan
  payment:
    total_amount: 85.50
    check_number: CHK100
    claims:
      - claim_number: CLAIM123
        charged_amount: 100
        paid_amount: 85.50`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read payment file: %w", err)
		}

		var input paymentFile
		if err := yaml.Unmarshal(data, &input); err != nil {
			return fmt.Errorf("failed to parse payment file: %w", err)
		}

		text := era.Generate835File(input.Payment, input.Payer)

		if eraOutput == "" {
			_, err := io.WriteString(cmd.OutOrStdout(), text)
			return err
		}
		if err := os.WriteFile(eraOutput, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write 835 file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "835 written to %s\n", eraOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eraCmd)
	eraCmd.AddCommand(eraValidateCmd, eraParseCmd, eraPostCmd, eraGenerateCmd)

	eraParseCmd.Flags().BoolVar(&eraPretty, "pretty", false, "Indent the JSON output")

	eraPostCmd.Flags().StringVar(&eraClaimMap, "claims", "", "YAML claim map (claim number: billing claim id)")
	eraPostCmd.Flags().StringVar(&eraXLSXOut, "xlsx", "", "Also write an XLSX posting report to this path")
	eraPostCmd.Flags().BoolVar(&eraPretty, "pretty", false, "Indent the JSON output")

	eraGenerateCmd.Flags().StringVarP(&eraOutput, "out", "o", "", "Write the 835 to this file instead of stdout")
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// parseRemittance streams path through the 835 parser.
func parseRemittance(path string) (*era.RemittanceAdvice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	remit, err := era.ParseReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return remit, nil
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/edi-claims-converter/internal/claim"
	"github.com/ginjaninja78/edi-claims-converter/internal/config"
	"github.com/ginjaninja78/edi-claims-converter/internal/sheets"
	"github.com/ginjaninja78/edi-claims-converter/internal/x12"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const claimBatchYAML = `
claims:
  - claim_number: CLM0001
    patient:
      first_name: Jane
      last_name: Smith
      date_of_birth: "1975-08-21"
      gender: female
    provider:
      type: organization
      organization_name: Springfield Family Care
      npi: "1999999999"
    payer: Blue Payer
    payer_id: BP001
    amount: 250.00
    service_date: "2024-06-01"
    diagnosis_codes: [J06.9]
    procedure_codes: ["99214", "87880"]
  - claim_number: CLM0002
    payer_id: BP001
`

const claimBatchJSON = `[
  {
    "claim_number": "J1",
    "patient": {"first_name": "Ann", "last_name": "Lee", "date_of_birth": "1990-01-02"},
    "provider": {"first_name": "Bo", "last_name": "Chen"},
    "amount": "75.50",
    "service_date": "2024-05-30",
    "diagnosis_codes": ["Z00.00"],
    "procedure_codes": ["99213"]
  }
]`

func fixedClaimProcessor(cfg *config.MainConfig, profiles []*config.PayerProfile) *ClaimProcessor {
	p := NewClaimProcessor(cfg, profiles, nil)
	p.Generator = &claim.Generator{
		Clock:    func() time.Time { return time.Date(2024, time.June, 10, 9, 30, 0, 0, time.UTC) },
		Controls: x12.NewSequence(500),
	}
	return p
}

func TestLoadClaimBatch_Formats(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "batch.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(claimBatchYAML), 0644))
	claims, err := LoadClaimBatch(yamlPath, sheets.DefaultClaimLayout())
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, "250", claims[0].Amount.String())
	assert.Equal(t, []string{"99214", "87880"}, claims[0].ProcedureCodes)
	assert.True(t, claims[0].Provider.IsOrganization())

	listPath := filepath.Join(dir, "list.yml")
	require.NoError(t, os.WriteFile(listPath, []byte("- claim_number: L1\n- claim_number: L2\n"), 0644))
	claims, err = LoadClaimBatch(listPath, sheets.DefaultClaimLayout())
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, "L2", claims[1].ClaimNumber)

	jsonPath := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(claimBatchJSON), 0644))
	claims, err = LoadClaimBatch(jsonPath, sheets.DefaultClaimLayout())
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "75.5", claims[0].Amount.String())

	csvPath := filepath.Join(dir, "batch.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("claim_number,amount\nC1,10\n"), 0644))
	claims, err = LoadClaimBatch(csvPath, sheets.DefaultClaimLayout())
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "C1", claims[0].ClaimNumber)

	_, err = LoadClaimBatch(filepath.Join(dir, "batch.txt"), sheets.DefaultClaimLayout())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported claim batch format")
}

func TestLoadClaimBatch_RejectsMappingWithoutClaims(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json single claim", "single.json", `{"claim_number": "X1", "amount": "10"}`},
		{"yaml single claim", "single.yaml", "claim_number: X1\namount: 10\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			claims, err := LoadClaimBatch(path, sheets.DefaultClaimLayout())
			require.Error(t, err)
			assert.Contains(t, err.Error(), `no "claims" list`)
			assert.Empty(t, claims)
		})
	}
}

func TestClaimProcessor_SingleClaimObjectFailsLoad(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "one.json", `{"claim_number": "X1"}`)

	result := fixedClaimProcessor(cfg, nil).Process(context.Background(), input)
	assert.False(t, result.Success)
	assert.Equal(t, StageLoad, result.Stage)
	assert.FileExists(t, input)
}

func TestValidateBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(claimBatchYAML), 0644))

	claims, err := LoadClaimBatch(path, sheets.DefaultClaimLayout())
	require.NoError(t, err)

	issues := ValidateBatch(claims)
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Index)
	assert.Equal(t, "CLM0002", issues[0].ClaimNumber)
	assert.Len(t, issues[0].Errors, 6)
}

func TestClaimProcessor_ContinueOnError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Submitter = claim.SubmitterInfo{SubmitterID: "SUB01", TestIndicator: x12.UsageTest}
	profiles := []*config.PayerProfile{
		{ProfileName: "BLUE", PayerID: "BP001", ReceiverID: "BPCLEAR", ReceiverName: "BLUE CLEARING", FileMatchingPatterns: []string{"blue_*"}},
	}

	input := writeInput(t, cfg, "june_batch.yaml", claimBatchYAML)
	result := fixedClaimProcessor(cfg, profiles).Process(context.Background(), input)

	require.True(t, result.Success, "%v", result.Error)
	assert.Equal(t, KindClaim, result.Kind)
	assert.Equal(t, 2, result.Stats.Claims)
	assert.Equal(t, 1, result.Stats.Generated)
	assert.Equal(t, 6, result.Stats.ValidationErrors)
	require.Len(t, result.ClaimIssues, 1)

	require.Len(t, result.OutputFiles, 1)
	out := result.OutputFiles[0]
	assert.True(t, strings.HasPrefix(filepath.Base(out), "837_CLM0001_"))
	assert.Equal(t, ".x12", filepath.Ext(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	segments := x12.Tokenize(string(data))
	require.NotEmpty(t, segments)

	isa := segments[0]
	assert.Equal(t, "SUB01", strings.TrimSpace(isa.Element(6)))
	assert.Equal(t, "BPCLEAR", strings.TrimSpace(isa.Element(8)))
	assert.Equal(t, x12.UsageTest, isa.Element(x12.ISAIndexUsageIndicator))
	assert.Contains(t, string(data), "NM1*40*2*BLUE CLEARING*****46*BPCLEAR~")
	assert.Contains(t, string(data), "CLM*CLM0001*250.00*")

	assert.NoFileExists(t, input)
	assert.FileExists(t, filepath.Join(cfg.OutputArchiveDir, filepath.Base(out)))

	entries := ErrorEntries([]Result{result}, time.Now())
	assert.Len(t, entries, 6)
	assert.Equal(t, "CLM0002", entries[0].ClaimNumber)
}

func TestClaimProcessor_StopOnInvalidClaim(t *testing.T) {
	cfg := testConfig(t)
	cfg.ContinueOnError = false

	input := writeInput(t, cfg, "june_batch.yaml", claimBatchYAML)
	result := fixedClaimProcessor(cfg, nil).Process(context.Background(), input)

	assert.False(t, result.Success)
	assert.Equal(t, StageValidate, result.Stage)
	assert.True(t, errors.Is(result.Error, ErrValidationFailed))
	assert.Contains(t, result.Error.Error(), "1 of 2 claims invalid")

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.FileExists(t, input)
}

func TestClaimProcessor_LoadFailure(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "bad.yaml", "claims: [unclosed\n")

	result := fixedClaimProcessor(cfg, nil).Process(context.Background(), input)
	assert.False(t, result.Success)
	assert.Equal(t, StageLoad, result.Stage)
}

func TestSubmitterFor(t *testing.T) {
	cfg := testConfig(t)
	cfg.Submitter = claim.SubmitterInfo{SubmitterID: "SUB01", ReceiverID: "DEFAULT", ReceiverName: "DEFAULT CH"}
	profiles := []*config.PayerProfile{
		{PayerID: "P1", ReceiverID: "P1RCV", FileMatchingPatterns: []string{"*"}},
	}
	p := NewClaimProcessor(cfg, profiles, nil)

	matched := p.SubmitterFor(claim.ClaimSubmission{PayerID: "P1"})
	assert.Equal(t, "P1RCV", matched.ReceiverID)
	assert.Equal(t, "DEFAULT CH", matched.ReceiverName)
	assert.Equal(t, "SUB01", matched.SubmitterID)

	other := p.SubmitterFor(claim.ClaimSubmission{PayerID: "P2"})
	assert.Equal(t, "DEFAULT", other.ReceiverID)
}

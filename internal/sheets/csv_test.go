package sheets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadClaimsCSV(t *testing.T) {
	content := "\xEF\xBB\xBFClaim Number,Patient First Name,Patient Last Name,Patient DOB,Amount,Diagnosis Codes,Procedure Codes\n" +
		"CLM0001,Jane,Smith,1975-08-21,\"1,250.00\",\"J06.9, R05.9\",99214;87880\n" +
		",,,,,,\n" +
		"CLM0002,Ann,Lee,1990-01-02,75.5,Z00.00,99213\n"

	path := filepath.Join(t.TempDir(), "claims.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	claims, err := ReadClaimsCSV(path, DefaultClaimLayout())
	require.NoError(t, err)
	require.Len(t, claims, 2)

	first := claims[0]
	assert.Equal(t, "CLM0001", first.ClaimNumber)
	require.NotNil(t, first.Patient)
	assert.Equal(t, "Jane", first.Patient.FirstName)
	assert.Equal(t, "1975-08-21", first.Patient.DateOfBirth)
	require.NotNil(t, first.Amount)
	assert.Equal(t, "1250", first.Amount.String())
	assert.Equal(t, []string{"J06.9", "R05.9"}, first.DiagnosisCodes)
	assert.Equal(t, []string{"99214", "87880"}, first.ProcedureCodes)
	assert.Nil(t, first.Provider)

	assert.Equal(t, "CLM0002", claims[1].ClaimNumber)
}

func TestReadClaimsCSV_DelimiterAndAliases(t *testing.T) {
	content := "Billing export\n" +
		"clm|pt_first|pt_last|chg_amt\n" +
		"C9|Bo|Chen|40\n"

	layout := ClaimLayout{
		HeaderRow: 2,
		Delimiter: "pipe",
		Headers: map[string]string{
			"clm":      FieldClaimNumber,
			"pt_first": FieldPatientFirstName,
			"pt_last":  FieldPatientLastName,
			"chg_amt":  FieldAmount,
		},
	}

	claims, err := readClaimsCSV(strings.NewReader(content), layout)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "C9", claims[0].ClaimNumber)
	assert.Equal(t, "Chen", claims[0].Patient.LastName)
	assert.Equal(t, "40", claims[0].Amount.String())
}

func TestReadClaimsCSV_Errors(t *testing.T) {
	_, err := ReadClaimsCSV(filepath.Join(t.TempDir(), "missing.csv"), DefaultClaimLayout())
	require.Error(t, err)

	_, err = readClaimsCSV(strings.NewReader("claim_number,amount\nC1,abc\n"), DefaultClaimLayout())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")

	_, err = readClaimsCSV(strings.NewReader(""), DefaultClaimLayout())
	require.Error(t, err)
}

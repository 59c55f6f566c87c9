package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ginjaninja78/edi-claims-converter/internal/config"
	"github.com/ginjaninja78/edi-claims-converter/internal/era"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const remittance835 = `ISA*00*          *00*          *ZZ*PAYERID        *ZZ*RECEIVERID     *231215*1200*U*00401*000000123*0*P*:~
GS*HP*PAYERID*RECEIVERID*20231215*1200*000000001*X*005010X221A1~
ST*835*0001*005010X221A1~
BPR*I*150.00*C*ACH*CCP*01*999999999*DA*123456*1512345678**01*999988880*DA*98765*20231215~
TRN*1*CHK12345*1512345678~
N1*PR*ACME HEALTH~
REF*2U*ACME01~
LX*1~
CLP*CLAIM123*1*100.00*80.00*20.00*12*PCN0001*11*1~
CAS*CO*45*20.00~
NM1*QC*1*DOE*JANE****MI*MEM001~
SVC*HC:99213*100.00*80.00**1~
CLP*CLAIM456*4*50.00*0*0*12*PCN0002*11*1~
CAS*CO*197*50.00~
SE*14*0001~
GE*1*000000001~
IEA*1*000000123~`

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	root := t.TempDir()

	cfg := &config.MainConfig{
		InputDir:          filepath.Join(root, "input"),
		OutputDir:         filepath.Join(root, "output"),
		InputArchiveDir:   filepath.Join(root, "input_archive"),
		OutputArchiveDir:  filepath.Join(root, "output_archive"),
		ProfilesDir:       filepath.Join(root, "profiles"),
		LogDir:            filepath.Join(root, "logs"),
		OutputNaming:      "{type}_{original}_{uuid}",
		ClaimOutputNaming: "{type}_{claim}_{uuid}",
		XLSXReport:        true,
		ContinueOnError:   true,
		MaxConcurrency:    2,
	}
	for _, dir := range []string{cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir, cfg.LogDir} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}

	cfg.ClaimMapFile = filepath.Join(root, "claims.yaml")
	require.NoError(t, os.WriteFile(cfg.ClaimMapFile, []byte("CLAIM123: db-1\n"), 0644))

	return cfg
}

func writeInput(t *testing.T, cfg *config.MainConfig, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.InputDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRemittanceProcessor_Success(t *testing.T) {
	cfg := testConfig(t)
	profiles := []*config.PayerProfile{
		{ProfileName: "ACME", PayerID: "ACME01", FileMatchingPatterns: []string{"acme_*.835"}},
	}

	proc, err := NewRemittanceProcessor(cfg, profiles, nil)
	require.NoError(t, err)
	proc.Now = func() time.Time { return time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC) }

	input := writeInput(t, cfg, "acme_0601.835", remittance835)
	result := proc.Process(context.Background(), input)

	require.True(t, result.Success, "%v", result.Error)
	assert.Equal(t, KindRemittance, result.Kind)
	assert.Equal(t, "ACME", result.Profile)
	assert.Equal(t, 2, result.Stats.Claims)
	assert.Equal(t, 1, result.Stats.Postings)
	assert.Equal(t, []string{"CLAIM456"}, result.Skipped)
	assert.Equal(t, "80.00", result.Stats.TotalPaid.StringFixed(2))

	require.Len(t, result.OutputFiles, 2)
	assert.True(t, strings.HasPrefix(filepath.Base(result.OutputFiles[0]), "835_acme_0601_"))
	assert.Equal(t, ".json", filepath.Ext(result.OutputFiles[0]))
	assert.Equal(t, ".xlsx", filepath.Ext(result.OutputFiles[1]))

	data, err := os.ReadFile(result.OutputFiles[0])
	require.NoError(t, err)
	var doc struct {
		SourceFile string `json:"source_file"`
		Profile    string `json:"profile"`
		Remittance struct {
			CheckNumber string `json:"check_number"`
			ClaimCount  int    `json:"claim_count"`
		} `json:"remittance"`
		Postings []struct {
			ClaimID          string `json:"claim_id"`
			AdjustmentReason string `json:"adjustment_reason"`
		} `json:"postings"`
		Skipped []string `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "acme_0601.835", doc.SourceFile)
	assert.Equal(t, "ACME", doc.Profile)
	assert.Equal(t, "CHK12345", doc.Remittance.CheckNumber)
	assert.Equal(t, 2, doc.Remittance.ClaimCount)
	require.Len(t, doc.Postings, 1)
	assert.Equal(t, "db-1", doc.Postings[0].ClaimID)
	assert.Equal(t, "CO-45", doc.Postings[0].AdjustmentReason)
	assert.Equal(t, []string{"CLAIM456"}, doc.Skipped)

	assert.NoFileExists(t, input)
	assert.FileExists(t, filepath.Join(cfg.InputArchiveDir, "acme_0601.835"))
	assert.FileExists(t, filepath.Join(cfg.OutputArchiveDir, filepath.Base(result.OutputFiles[1])))
}

func TestRemittanceProcessor_ProfileFillsPayerAndClaimMap(t *testing.T) {
	cfg := testConfig(t)
	cfg.XLSXReport = false

	profileMap := filepath.Join(filepath.Dir(cfg.ClaimMapFile), "beta_claims.yaml")
	require.NoError(t, os.WriteFile(profileMap, []byte("CLAIM456: beta-9\n"), 0644))

	profiles := []*config.PayerProfile{{
		ProfileName:          "BETA",
		PayerName:            "BETA MUTUAL",
		PayerID:              "BETA01",
		FileMatchingPatterns: []string{"beta_*"},
		ClaimMapFile:         profileMap,
	}}
	proc, err := NewRemittanceProcessor(cfg, profiles, nil)
	require.NoError(t, err)
	proc.Archive = false

	text := strings.Replace(remittance835, "N1*PR*ACME HEALTH~\nREF*2U*ACME01~\n", "", 1)
	input := writeInput(t, cfg, "beta_1.edi", text)

	result := proc.Process(context.Background(), input)
	require.True(t, result.Success, "%v", result.Error)
	require.Len(t, result.OutputFiles, 1)
	assert.Equal(t, []string{"CLAIM123"}, result.Skipped)
	assert.FileExists(t, input)

	data, err := os.ReadFile(result.OutputFiles[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"payer_name": "BETA MUTUAL"`)
	assert.Contains(t, string(data), `"claim_id": "beta-9"`)
}

func TestRemittanceProcessor_ValidationFailure(t *testing.T) {
	cfg := testConfig(t)
	proc, err := NewRemittanceProcessor(cfg, nil, nil)
	require.NoError(t, err)

	input := writeInput(t, cfg, "junk.835", "hello world")
	result := proc.Process(context.Background(), input)

	assert.False(t, result.Success)
	assert.Equal(t, StageValidate, result.Stage)
	assert.True(t, errors.Is(result.Error, ErrValidationFailed))
	assert.Equal(t, []string{era.MsgMissingISA, era.MsgMissingBPR, era.MsgMissingCLP}, result.ValidationErrors)
	assert.FileExists(t, input)
	assert.Empty(t, result.OutputFiles)
}

func TestRemittanceProcessor_ParseFailure(t *testing.T) {
	cfg := testConfig(t)
	proc, err := NewRemittanceProcessor(cfg, nil, nil)
	require.NoError(t, err)

	text := strings.Replace(remittance835, "SVC*HC:99213*100.00*80.00**1~", "SVC~", 1)
	input := writeInput(t, cfg, "broken.835", text)
	result := proc.Process(context.Background(), input)

	require.False(t, result.Success)
	assert.Equal(t, StageParse, result.Stage)

	var parseErr *era.ParseError
	require.True(t, errors.As(result.Error, &parseErr))
	assert.Equal(t, "SVC", parseErr.Tag)
	assert.True(t, errors.Is(result.Error, era.ErrMissingElement))

	entries := ErrorEntries([]Result{result}, time.Now())
	require.Len(t, entries, 1)
	assert.Equal(t, "SVC", entries[0].SegmentTag)
	assert.Equal(t, parseErr.Index, entries[0].SegmentIndex)
}

func TestRemittanceProcessor_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	proc, err := NewRemittanceProcessor(cfg, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := proc.Process(ctx, writeInput(t, cfg, "a.835", remittance835))
	assert.False(t, result.Success)
	assert.Equal(t, StageCancelled, result.Stage)
	assert.ErrorIs(t, result.Error, context.Canceled)
}

func TestNewRemittanceProcessor_MissingClaimMap(t *testing.T) {
	cfg := testConfig(t)
	cfg.ClaimMapFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewRemittanceProcessor(cfg, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read claim map")
}

// =============================================================================
// BATCH
// =============================================================================

type fakeProcessor struct {
	fail    string
	running int32
	peak    int32
}

func (f *fakeProcessor) Process(ctx context.Context, path string) Result {
	if err := ctx.Err(); err != nil {
		return Result{FilePath: path, Stage: StageCancelled, Error: err}
	}

	n := atomic.AddInt32(&f.running, 1)
	defer atomic.AddInt32(&f.running, -1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	if path == f.fail {
		return Result{FilePath: path, Stage: StageParse, Error: errors.New("boom")}
	}
	return Result{FilePath: path, Success: true, Stats: ProcessingStats{Postings: 1}}
}

func TestRunBatch_OrderAndLimit(t *testing.T) {
	proc := &fakeProcessor{fail: "c"}
	files := []string{"a", "b", "c", "d", "e", "f"}

	results := RunBatch(context.Background(), proc, files, 2, false)

	require.Len(t, results, len(files))
	for i, r := range results {
		assert.Equal(t, files[i], r.FilePath)
	}
	assert.False(t, results[2].Success)
	assert.True(t, results[5].Success)
	assert.LessOrEqual(t, atomic.LoadInt32(&proc.peak), int32(2))

	summary := Summarize(results, time.Now(), time.Now())
	assert.Equal(t, 5, summary.SuccessfulFiles)
	assert.Equal(t, 1, summary.FailedFiles)
	assert.Equal(t, 5, summary.TotalPostings)
	assert.Equal(t, "0.00", summary.TotalPaid)
}

func TestRunBatch_StopOnError(t *testing.T) {
	proc := &fakeProcessor{fail: "b"}
	results := RunBatch(context.Background(), proc, []string{"a", "b", "c", "d"}, 1, true)

	assert.True(t, results[0].Success)
	assert.Equal(t, StageParse, results[1].Stage)
	for _, r := range results[2:] {
		assert.Equal(t, StageCancelled, r.Stage)
		assert.ErrorIs(t, r.Error, context.Canceled)
	}
}

func TestWriteRunLogs(t *testing.T) {
	dir := t.TempDir()
	results := []Result{
		{FilePath: "ok.835", Success: true, Stats: ProcessingStats{Postings: 2}},
		{FilePath: "bad.835", Stage: StageValidate, Error: ErrValidationFailed},
	}

	errorLog, summaryLog, err := WriteRunLogs(results, time.Now(), time.Now(), dir)
	require.NoError(t, err)
	assert.FileExists(t, errorLog)
	assert.FileExists(t, summaryLog)

	errorLog, _, err = WriteRunLogs(results[:1], time.Now(), time.Now(), dir)
	require.NoError(t, err)
	assert.Empty(t, errorLog)
}

func TestPruneArchives(t *testing.T) {
	cfg := testConfig(t)

	removed, err := PruneArchives(cfg)
	require.NoError(t, err)
	assert.Zero(t, removed)

	old := filepath.Join(cfg.InputArchiveDir, "old.835")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0644))
	past := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(old, past, past))

	cfg.ArchiveRetentionDays = 7
	removed, err = PruneArchives(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

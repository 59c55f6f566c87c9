package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "input_archive"),
		filepath.Join(root, "output_archive"),
	)
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	fm := newTestManager(t)
	for _, name := range []string{"b.835", "a.EDI", "c.txt", "notes.md", "d.x12"} {
		touch(t, filepath.Join(fm.InputDir, name), "ISA~")
	}
	require.NoError(t, os.Mkdir(filepath.Join(fm.InputDir, "nested.835"), 0755))

	files, err := fm.DiscoverInputFiles()
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"a.EDI", "b.835", "c.txt", "d.x12"}, names)

	only, err := fm.DiscoverInputFiles(".835")
	require.NoError(t, err)
	assert.Len(t, only, 1)
}

func TestDiscoverInputFiles_MissingDir(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "nope"), "", "", "")
	_, err := fm.DiscoverInputFiles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to scan input directory")
}

func TestArchiveInputAndOutput(t *testing.T) {
	fm := newTestManager(t)
	fm.UseDateSubdirs = true
	fm.Now = func() time.Time { return time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC) }

	in := filepath.Join(fm.InputDir, "era.835")
	touch(t, in, "ISA*00~")
	out := filepath.Join(fm.OutputDir, "era.json")
	touch(t, out, "{}")

	archived, err := fm.ArchiveInputFile(in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "2024", "03", "07", "era.835"), archived)
	assert.NoFileExists(t, in)
	assert.FileExists(t, archived)

	copied, err := fm.ArchiveOutputFile(out)
	require.NoError(t, err)
	assert.FileExists(t, out)
	data, err := os.ReadFile(copied)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{type}_{original}_{uuid}", map[string]string{
		"type":     "837",
		"original": "june batch/part 1",
	}, ".x12")

	pattern := regexp.MustCompile(`^837_june_batch_part_1_[0-9a-f-]{36}\.x12$`)
	assert.Regexp(t, pattern, name)

	kept := GenerateOutputFileName("report_{date}.json", nil, ".json")
	assert.True(t, strings.HasSuffix(kept, ".json"))
	assert.False(t, strings.HasSuffix(kept, ".json.json"))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "acme_0601", BaseName("/in/acme_0601.835"))
	assert.Equal(t, "noext", BaseName("noext"))
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{
		{Timestamp: time.Now(), FileName: "bad.835", Stage: "parse", Message: "missing element", SegmentIndex: 7, SegmentTag: "SVC"},
		{Timestamp: time.Now(), FileName: "claims.yaml", Stage: "validate", Message: "Patient name is required", ClaimNumber: "CLM9"},
	}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Total Errors: 2")
	assert.Contains(t, text, "Segment:   SVC (#7)")
	assert.Contains(t, text, "Claim:     CLM9")
}

func TestWriteSummaryLog(t *testing.T) {
	start := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	path, err := WriteSummaryLog(ProcessingSummary{
		StartTime:       start,
		EndTime:         start.Add(2 * time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		TotalPostings:   3,
		TotalPaid:       "450.00",
		ProcessedFiles: []ProcessedFileInfo{
			{InputFile: "a.835", OutputFiles: []string{"a.json", "a.xlsx"}, Profile: "ACME", Postings: 3},
		},
		FailedFilesList: []FailedFileInfo{{InputFile: "b.835", Stage: "validate", ErrorMessage: "Missing ISA segment"}},
	}, t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Duration:    2s")
	assert.Contains(t, text, "Total Paid:      450.00")
	assert.Contains(t, text, "Output:       a.xlsx")
	assert.Contains(t, text, "Stage: validate")
}

func TestCleanOldArchives(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.835")
	fresh := filepath.Join(dir, "fresh.835")
	touch(t, old, "x")
	touch(t, fresh, "x")
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	removed, err := CleanOldArchives(dir, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
}

// =============================================================================
// EDI Claims Converter - File Manager Utility
// =============================================================================
//
// This module provides the file handling around the EDI pipelines:
//   - Discovery of incoming 835 files
//   - Archival of processed inputs and generated outputs
//   - Output file naming
//   - Per-run error and summary logs
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to input_archive after successful processing
//   - Output files are copied to output_archive
//   - Failed files stay in the input directory for the next run
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultInputExtensions are the file extensions picked up from the input
// directory when no extension is given.
var DefaultInputExtensions = []string{".835", ".edi", ".x12", ".txt"}

// Timestamp layouts used in generated names and log files.
const (
	fileTimestampLayout = "20060102_150405"
	logTimestampLayout  = "2006-01-02 15:04:05"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the pipelines.
type FileManager struct {
	InputDir         string
	OutputDir        string
	InputArchiveDir  string
	OutputArchiveDir string

	// UseDateSubdirs archives into YYYY/MM/DD subdirectories.
	UseDateSubdirs bool

	// Now is the clock used for archive subdirectories. Default: time.Now
	Now func() time.Time
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		Now:              time.Now,
	}
}

// EnsureDirectories creates all managed directories.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{
		fm.InputDir,
		fm.OutputDir,
		fm.InputArchiveDir,
		fm.OutputArchiveDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists regular files in the input directory whose
// extension matches one of extensions (case-insensitive).
//
// PARAMETERS:
//   - extensions: extensions including the dot; DefaultInputExtensions when empty
//
// RETURNS:
//   - The matching paths sorted by name.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles(extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = DefaultInputExtensions
	}

	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, want := range extensions {
			if ext == strings.ToLower(want) {
				files = append(files, filepath.Join(fm.InputDir, entry.Name()))
				break
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a processed input file to the input archive.
//
// RETURNS:
//   - The archived path.
//   - An error if the file can be neither renamed nor copied.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath, err := fm.archivePath(fm.InputArchiveDir, filePath)
	if err != nil {
		return "", err
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// ArchiveOutputFile copies a generated file to the output archive. The
// original stays in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	archivePath, err := fm.archivePath(fm.OutputArchiveDir, filePath)
	if err != nil {
		return "", err
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

func (fm *FileManager) archivePath(archiveDir, filePath string) (string, error) {
	dir := archiveDir
	if fm.UseDateSubdirs {
		now := fm.now()
		dir = filepath.Join(archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()))
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	return filepath.Join(dir, filepath.Base(filePath)), nil
}

func (fm *FileManager) now() time.Time {
	if fm.Now == nil {
		return time.Now()
	}
	return fm.Now()
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands a naming format.
//
// PARAMETERS:
//   - format: the name format. Built-in placeholders:
//       {uuid}      - A random UUID
//       {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//       {date}      - Current date (YYYYMMDD)
//   - params:    extra placeholders, e.g. {"type": "835", "original": "acme_0601"}
//   - extension: appended when the result does not already end with it
//
// EXAMPLE:
//   format:  "{type}_{original}_{uuid}"
//   params:  {"type": "837", "original": "june_batch"}
//   output:  "837_june_batch_a1b2c3d4-e5f6-7890-abcd-ef1234567890.x12"
//
// Placeholder values have path separators and spaces replaced with '_'.
func GenerateOutputFileName(format string, params map[string]string, extension string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format(fileTimestampLayout),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = sanitizeNamePart(value)
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if extension != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(extension)) {
		result += extension
	}
	return result
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func sanitizeNamePart(value string) string {
	return strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_").Replace(value)
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry is one failure in a processing run.
type ErrorLogEntry struct {
	Timestamp time.Time
	FileName  string

	// Stage is the pipeline step that failed: read, load, validate, parse,
	// write.
	Stage   string
	Message string

	// SegmentIndex and SegmentTag locate parse failures in the 835.
	SegmentIndex int
	SegmentTag   string

	// ClaimNumber identifies the claim for 837 validation failures.
	ClaimNumber string
}

// WriteErrorLog writes entries to error_log_<timestamp>.txt in dir.
//
// RETURNS:
//   - The log path, or "" when there were no entries.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, dir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	now := time.Now()
	logPath := filepath.Join(dir, fmt.Sprintf("error_log_%s.txt", now.Format(fileTimestampLayout)))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	fmt.Fprintf(w, "EDI Claims Converter - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		now.Format(logTimestampLayout), len(entries))

	for i, entry := range entries {
		fmt.Fprintf(w, "Error #%d\n", i+1)
		fmt.Fprintf(w, "  Timestamp: %s\n", entry.Timestamp.Format(logTimestampLayout))
		fmt.Fprintf(w, "  File:      %s\n", entry.FileName)
		fmt.Fprintf(w, "  Stage:     %s\n", entry.Stage)
		fmt.Fprintf(w, "  Message:   %s\n", entry.Message)
		if entry.SegmentTag != "" {
			fmt.Fprintf(w, "  Segment:   %s (#%d)\n", entry.SegmentTag, entry.SegmentIndex)
		}
		if entry.ClaimNumber != "" {
			fmt.Fprintf(w, "  Claim:     %s\n", entry.ClaimNumber)
		}
		w.WriteString("\n")
	}

	w.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}
	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary describes one processing run.
type ProcessingSummary struct {
	StartTime       time.Time
	EndTime         time.Time
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	TotalClaims     int
	TotalPostings   int
	TotalSkipped    int

	// TotalPaid is the formatted sum of posted payment amounts.
	TotalPaid string

	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo describes a successfully processed file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFiles []string
	Profile     string
	Claims      int
	Postings    int
	Skipped     int
	ProcessTime time.Duration
}

// FailedFileInfo describes a failed file.
type FailedFileInfo struct {
	InputFile    string
	Stage        string
	ErrorMessage string
}

// WriteSummaryLog writes summary to processing_summary_<timestamp>.txt in dir.
func WriteSummaryLog(summary ProcessingSummary, dir string) (string, error) {
	summaryPath := filepath.Join(dir,
		fmt.Sprintf("processing_summary_%s.txt", time.Now().Format(fileTimestampLayout)))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	fmt.Fprintf(w, "EDI Claims Converter - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:  %s\n"+
		"  End Time:    %s\n"+
		"  Duration:    %s\n\n"+
		"Statistics:\n"+
		"  Total Files:     %d\n"+
		"  Successful:      %d\n"+
		"  Failed:          %d\n"+
		"  Claims:          %d\n"+
		"  Postings:        %d\n"+
		"  Skipped Claims:  %d\n"+
		"  Total Paid:      %s\n\n",
		summary.StartTime.Format(logTimestampLayout),
		summary.EndTime.Format(logTimestampLayout),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalClaims,
		summary.TotalPostings,
		summary.TotalSkipped,
		summary.TotalPaid)

	if len(summary.ProcessedFiles) > 0 {
		w.WriteString("Successful Files:\n")
		w.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(w, "  Input:        %s\n", pf.InputFile)
			for _, out := range pf.OutputFiles {
				fmt.Fprintf(w, "  Output:       %s\n", out)
			}
			if pf.Profile != "" {
				fmt.Fprintf(w, "  Profile:      %s\n", pf.Profile)
			}
			fmt.Fprintf(w, "  Claims:       %d\n", pf.Claims)
			fmt.Fprintf(w, "  Postings:     %d\n", pf.Postings)
			fmt.Fprintf(w, "  Skipped:      %d\n", pf.Skipped)
			fmt.Fprintf(w, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		w.WriteString("Failed Files:\n")
		w.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(w, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(w, "  Stage: %s\n", ff.Stage)
			fmt.Fprintf(w, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	w.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// CleanOldArchives removes archived files last modified before now-maxAge.
//
// RETURNS:
//   - The number of files removed.
//   - An error if the walk or a removal fails.
func CleanOldArchives(archiveDir string, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	err := filepath.WalkDir(archiveDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("failed to clean archives: %w", err)
	}

	return removed, nil
}

// =============================================================================
// EDI Claims Converter - Configuration Module
// =============================================================================
//
// This module loads the main application configuration and the per-payer
// profiles used to route incoming 835 files.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): directories, logging, submitter identity
//   2. Payer Profiles (profiles/*.yaml): payer-specific matching and overrides
//   3. Claim Map (claim_map_file): claim number -> billing system claim id
//   4. .env (optional): EDI_* environment overrides
//
// PRECEDENCE (highest first):
//   environment variables > config.yaml > built-in defaults
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ginjaninja78/edi-claims-converter/internal/claim"
	"github.com/ginjaninja78/edi-claims-converter/internal/sheets"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel      = "EDI_LOG_LEVEL"
	EnvLogFormat     = "EDI_LOG_FORMAT"
	EnvSubmitterID   = "EDI_SUBMITTER_ID"
	EnvReceiverID    = "EDI_RECEIVER_ID"
	EnvTestIndicator = "EDI_TEST_INDICATOR"
	EnvClaimMapFile  = "EDI_CLAIM_MAP_FILE"
)

var validate = validator.New()

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for incoming 835 files.
	// Default: "./input"
	InputDir string `yaml:"input_dir" validate:"required"`

	// OutputDir receives posting JSON, XLSX reports and generated 837 files.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" validate:"required"`

	// InputArchiveDir receives 835 files after successful processing.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir" validate:"required"`

	// OutputArchiveDir receives copies of every output file.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir" validate:"required"`

	// ProfilesDir contains one YAML file per payer profile.
	// Default: "./profiles"
	ProfilesDir string `yaml:"profiles_dir" validate:"required"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel: "debug", "info", "warn", "error". Default: "info"
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat: "text" (console) or "json". Default: "text"
	LogFormat string `yaml:"log_format" validate:"oneof=text json"`

	// LogDir receives the per-run error and summary logs.
	// Default: "./logs"
	LogDir string `yaml:"log_dir" validate:"required"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNaming defines the output file name format.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {type}      - "835" for postings, "837" for claims
	//   {original}  - Input file name without extension
	//
	// Default: "{type}_{original}_{uuid}"
	OutputNaming string `yaml:"output_naming" validate:"required"`

	// ClaimOutputNaming names generated 837 files. It accepts the same
	// placeholders plus {claim}, the claim number.
	// Default: "{type}_{claim}_{uuid}"
	ClaimOutputNaming string `yaml:"claim_output_naming" validate:"required"`

	// XLSXReport writes a posting report workbook next to each JSON file.
	// Default: true
	XLSXReport bool `yaml:"xlsx_report"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the number of files processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" validate:"min=1,max=64"`

	// ContinueOnError keeps processing other files after a failure.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error"`

	// ClaimMapFile is a YAML map of claim number to billing system claim id.
	ClaimMapFile string `yaml:"claim_map_file"`

	// ArchiveRetentionDays removes archived files older than this many days
	// at the end of a run. 0 keeps everything.
	ArchiveRetentionDays int `yaml:"archive_retention_days" validate:"gte=0"`

	// ArchiveDateSubdirs archives into YYYY/MM/DD subdirectories.
	ArchiveDateSubdirs bool `yaml:"archive_date_subdirs"`

	// =========================================================================
	// 837 SETTINGS
	// =========================================================================

	// Submitter identifies this organization on generated 837 files.
	Submitter claim.SubmitterInfo `yaml:"submitter"`

	// ClaimSheet describes XLSX claim batch workbooks.
	ClaimSheet sheets.ClaimLayout `yaml:"claim_sheet"`
}

// =============================================================================
// PAYER PROFILE STRUCTURE
// =============================================================================

// PayerProfile holds the settings for one payer. Incoming 835 files are
// routed to the first profile whose pattern matches the file name.
type PayerProfile struct {
	// ProfileName is used in logs and summary files.
	ProfileName string `yaml:"profile_name"`

	// PayerName and PayerID replace empty N1*PR values in the remittance.
	PayerName string `yaml:"payer_name"`
	PayerID   string `yaml:"payer_id"`

	// FileMatchingPatterns are glob patterns matched against the file name.
	//
	// CUSTOMIZATION: Examples
	//   - "acme_*.835"
	//   - "*_ERA_*.txt"
	FileMatchingPatterns []string `yaml:"file_matching_patterns" validate:"required,min=1,dive,required"`

	// ReceiverID and ReceiverName override the submitter block on 837 files
	// addressed to this payer.
	ReceiverID   string `yaml:"receiver_id" validate:"omitempty,max=15"`
	ReceiverName string `yaml:"receiver_name"`

	// ClaimMapFile overrides the main claim map for this payer.
	ClaimMapFile string `yaml:"claim_map_file"`

	// SourceFile is the profile's path; set by the loader.
	SourceFile string `yaml:"-"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadEnv loads a .env file into the process environment. Variables that are
// already set win. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. When empty or
//     missing, built-in defaults are used.
//
// RETURNS:
//   - A pointer to the MainConfig struct with defaults and environment
//     overrides applied and all directories created.
//   - An error if the file cannot be parsed or fails validation.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	config := &MainConfig{
		XLSXReport:      true,
		ContinueOnError: true,
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	ApplyEnv(config)
	applyMainConfigDefaults(config)

	if err := validateMainConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyEnv copies EDI_* environment variables over the loaded values.
func ApplyEnv(config *MainConfig) {
	override := func(target *string, key string) {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			*target = value
		}
	}

	override(&config.LogLevel, EnvLogLevel)
	override(&config.LogFormat, EnvLogFormat)
	override(&config.Submitter.SubmitterID, EnvSubmitterID)
	override(&config.Submitter.ReceiverID, EnvReceiverID)
	override(&config.Submitter.TestIndicator, EnvTestIndicator)
	override(&config.ClaimMapFile, EnvClaimMapFile)
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.ProfilesDir == "" {
		config.ProfilesDir = "./profiles"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	config.LogLevel = strings.ToLower(config.LogLevel)
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.LogDir == "" {
		config.LogDir = "./logs"
	}
	if config.OutputNaming == "" {
		config.OutputNaming = "{type}_{original}_{uuid}"
	}
	if config.ClaimOutputNaming == "" {
		config.ClaimOutputNaming = "{type}_{claim}_{uuid}"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	config.Submitter.TestIndicator = strings.ToUpper(config.Submitter.TestIndicator)
}

// validateMainConfig checks field constraints and creates the working
// directories.
func validateMainConfig(config *MainConfig) error {
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, describe(err))
	}

	dirs := []string{
		config.InputDir,
		config.OutputDir,
		config.InputArchiveDir,
		config.OutputArchiveDir,
		config.ProfilesDir,
		config.LogDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// LoadPayerProfiles loads every profile in a directory.
//
// PARAMETERS:
//   - profilesDir: directory containing *.yaml / *.yml profile files
//
// RETURNS:
//   - The profiles sorted by file name, so matching order is stable.
//   - An error if any file cannot be read, parsed or validated.
func LoadPayerProfiles(profilesDir string) ([]*PayerProfile, error) {
	files, err := filepath.Glob(filepath.Join(profilesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(profilesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	files = append(files, ymlFiles...)
	sort.Strings(files)

	profiles := make([]*PayerProfile, 0, len(files))
	for _, file := range files {
		profile, err := loadPayerProfile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		profiles = append(profiles, profile)
	}

	return profiles, nil
}

func loadPayerProfile(filePath string) (*PayerProfile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var profile PayerProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	if profile.ProfileName == "" {
		profile.ProfileName = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}
	profile.SourceFile = filePath

	if err := validate.Struct(&profile); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, describe(err))
	}

	return &profile, nil
}

// MatchProfile returns the first profile with a pattern matching the base
// name of filePath, or nil.
func MatchProfile(profiles []*PayerProfile, filePath string) *PayerProfile {
	name := filepath.Base(filePath)
	for _, profile := range profiles {
		for _, pattern := range profile.FileMatchingPatterns {
			if matched, _ := filepath.Match(pattern, name); matched {
				return profile
			}
		}
	}
	return nil
}

// ProfileForPayer returns the first profile whose PayerID equals payerID,
// or nil.
func ProfileForPayer(profiles []*PayerProfile, payerID string) *PayerProfile {
	if payerID == "" {
		return nil
	}
	for _, profile := range profiles {
		if profile.PayerID == payerID {
			return profile
		}
	}
	return nil
}

// LoadClaimMap reads a YAML mapping of claim number to billing system claim id.
//
// Example:
//   CLM0001: "8f14e45f-ceea-467e-a9b2-2f3c4d5e6f70"
//   CLM0002: "c9f0f895-fb98-4b91-a0b1-1e2d3c4b5a69"
func LoadClaimMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read claim map: %w", err)
	}

	claimMap := map[string]string{}
	if err := yaml.Unmarshal(data, &claimMap); err != nil {
		return nil, fmt.Errorf("failed to parse claim map: %w", err)
	}
	return claimMap, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// describe flattens validator errors into "Field: tag" pairs.
func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		part := fe.Namespace() + ": " + fe.Tag()
		if fe.Param() != "" {
			part += "=" + fe.Param()
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

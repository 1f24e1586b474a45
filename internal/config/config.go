package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces every environment variable read by Load.
const envPrefix = "VOUCHER"

var structValidator = validator.New()

// Config is the complete configuration for a voucher study run.
//
// No envconfig default tags here: Process applies them even when the field
// already holds a value from the config file, so defaults live in Default.
type Config struct {
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// DataConfig locates the cohort input file.
type DataConfig struct {
	Path string `yaml:"path" envconfig:"PATH" validate:"required"`
}

// OutputConfig controls which artifacts a run writes and where.
type OutputConfig struct {
	Dir        string `yaml:"dir" envconfig:"DIR" validate:"required"`
	TextReport bool   `yaml:"text_report" envconfig:"TEXT_REPORT"`
	CSV        bool   `yaml:"csv" envconfig:"CSV"`
	JSON       bool   `yaml:"json" envconfig:"JSON"`
	Workbook   bool   `yaml:"workbook" envconfig:"WORKBOOK"`
}

// AnalysisConfig sets the estimation parameters.
type AnalysisConfig struct {
	Confidence float64 `yaml:"confidence" envconfig:"CONFIDENCE" validate:"gt=0.5,lt=1"`
	MinCohort  int     `yaml:"min_cohort" envconfig:"MIN_COHORT" validate:"min=0"`
}

// LoggingConfig contains logging configuration. Console output goes to
// stderr so the rendered report keeps stdout to itself.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// Load builds the configuration from defaults, an optional YAML file and
// VOUCHER_* environment variables, in increasing order of precedence. An
// empty path searches the usual file locations; a missing file is only an
// error when the path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays cfg with the values present in a YAML file. Keys
// absent from the file keep their current values.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// findConfigFile returns the first config file found in the usual
// locations, or an empty string when none exists.
func findConfigFile() string {
	locations := []string{
		"voucher.yaml",
		"configs/voucher.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// validate normalizes case-insensitive fields and checks the struct tags.
func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	c.Logging.Output = strings.ToLower(c.Logging.Output)

	err := structValidator.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return fmt.Errorf("field %s fails rule %q: %w", first.Namespace(), first.Tag(), err)
	}
	return err
}

// ReportPath returns the text report location under the output directory.
func (o OutputConfig) ReportPath() string {
	return filepath.Join(o.Dir, ReportFileName)
}

// ResultPath returns the JSON result location under the output directory.
func (o OutputConfig) ResultPath() string {
	return filepath.Join(o.Dir, ResultFileName)
}

// WorkbookPath returns the xlsx workbook location under the output directory.
func (o OutputConfig) WorkbookPath() string {
	return filepath.Join(o.Dir, WorkbookFileName)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Path: DefaultDataFile,
		},
		Output: OutputConfig{
			Dir:        DefaultOutputDir,
			TextReport: true,
			CSV:        true,
			JSON:       true,
			Workbook:   true,
		},
		Analysis: AnalysisConfig{
			Confidence: DefaultConfidence,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// studyEnvVars lists every environment variable Load reads.
var studyEnvVars = []string{
	"VOUCHER_DATA_PATH",
	"VOUCHER_OUTPUT_DIR",
	"VOUCHER_OUTPUT_TEXT_REPORT",
	"VOUCHER_OUTPUT_CSV",
	"VOUCHER_OUTPUT_JSON",
	"VOUCHER_OUTPUT_WORKBOOK",
	"VOUCHER_ANALYSIS_CONFIDENCE",
	"VOUCHER_ANALYSIS_MIN_COHORT",
	"VOUCHER_LOGGING_LEVEL",
	"VOUCHER_LOGGING_FORMAT",
	"VOUCHER_LOGGING_OUTPUT",
	"VOUCHER_LOGGING_FILE_PATH",
}

// clearEnv unsets every VOUCHER_* variable for the duration of the test.
// t.Setenv registers the restore before Unsetenv removes the value.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range studyEnvVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultDataFile, cfg.Data.Path)

				assert.Equal(t, DefaultOutputDir, cfg.Output.Dir)
				assert.True(t, cfg.Output.TextReport)
				assert.True(t, cfg.Output.CSV)
				assert.True(t, cfg.Output.JSON)
				assert.True(t, cfg.Output.Workbook)

				assert.Equal(t, DefaultConfidence, cfg.Analysis.Confidence)
				assert.Equal(t, 0, cfg.Analysis.MinCohort)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
			},
		},
		{
			name: "custom environment variables",
			env: map[string]string{
				"VOUCHER_DATA_PATH":           "cohorts/pilot.csv",
				"VOUCHER_OUTPUT_DIR":          "out/pilot",
				"VOUCHER_OUTPUT_WORKBOOK":     "false",
				"VOUCHER_ANALYSIS_CONFIDENCE": "0.90",
				"VOUCHER_ANALYSIS_MIN_COHORT": "50",
				"VOUCHER_LOGGING_LEVEL":       "debug",
				"VOUCHER_LOGGING_FORMAT":      "json",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "cohorts/pilot.csv", cfg.Data.Path)
				assert.Equal(t, "out/pilot", cfg.Output.Dir)
				assert.False(t, cfg.Output.Workbook)
				assert.True(t, cfg.Output.CSV)
				assert.Equal(t, 0.90, cfg.Analysis.Confidence)
				assert.Equal(t, 50, cfg.Analysis.MinCohort)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "confidence below one half",
			env: map[string]string{
				"VOUCHER_ANALYSIS_CONFIDENCE": "0.4",
			},
			wantErr: "config validation failed",
		},
		{
			name: "confidence at one",
			env: map[string]string{
				"VOUCHER_ANALYSIS_CONFIDENCE": "1.0",
			},
			wantErr: "config validation failed",
		},
		{
			name: "negative minimum cohort",
			env: map[string]string{
				"VOUCHER_ANALYSIS_MIN_COHORT": "-5",
			},
			wantErr: "config validation failed",
		},
		{
			name: "unknown log level",
			env: map[string]string{
				"VOUCHER_LOGGING_LEVEL": "verbose",
			},
			wantErr: "config validation failed",
		},
		{
			name: "malformed integer env value",
			env: map[string]string{
				"VOUCHER_ANALYSIS_MIN_COHORT": "plenty",
			},
			wantErr: "failed to load config from env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, val := range tt.env {
				t.Setenv(key, val)
			}

			cfg, err := Load("")

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_FilePrecedence(t *testing.T) {
	clearEnv(t)

	configFile := filepath.Join(t.TempDir(), "voucher.yaml")
	content := `
data:
  path: cohorts/full_study.csv
output:
  workbook: false
analysis:
  confidence: 0.90
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	t.Setenv("VOUCHER_LOGGING_LEVEL", "warn")

	cfg, err := Load(configFile)
	require.NoError(t, err)

	// Environment wins over the file, the file wins over defaults, and
	// untouched fields keep their defaults.
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "cohorts/full_study.csv", cfg.Data.Path)
	assert.Equal(t, 0.90, cfg.Analysis.Confidence)
	assert.False(t, cfg.Output.Workbook)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Dir)
	assert.True(t, cfg.Output.CSV)
}

func TestLoad_FileDiscovery(t *testing.T) {
	clearEnv(t)

	tempDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	t.Cleanup(func() { os.Chdir(originalDir) })

	content := "analysis:\n  confidence: 0.99\n"
	require.NoError(t, os.WriteFile("voucher.yaml", []byte(content), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.99, cfg.Analysis.Confidence)
}

func TestLoad_FileErrors(t *testing.T) {
	clearEnv(t)

	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config from file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "voucher.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("analysis: [unclosed"), 0644))

		_, err := Load(configFile)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config from file")
	})
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name        string
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "valid YAML config",
			fileContent: `
data:
  path: cohorts/pilot.csv
output:
  dir: out
  text_report: false
analysis:
  confidence: 0.80
  min_cohort: 40
logging:
  level: error
  format: json
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "cohorts/pilot.csv", cfg.Data.Path)
				assert.Equal(t, "out", cfg.Output.Dir)
				assert.False(t, cfg.Output.TextReport)
				assert.Equal(t, 0.80, cfg.Analysis.Confidence)
				assert.Equal(t, 40, cfg.Analysis.MinCohort)
				assert.Equal(t, "error", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name:        "partial config keeps existing values",
			fileContent: "analysis:\n  confidence: 0.90\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 0.90, cfg.Analysis.Confidence)
				assert.Equal(t, DefaultDataFile, cfg.Data.Path)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.True(t, cfg.Output.JSON)
			},
		},
		{
			name:        "invalid YAML syntax",
			fileContent: "output: [unclosed bracket",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := filepath.Join(t.TempDir(), "voucher.yaml")
			require.NoError(t, os.WriteFile(configFile, []byte(tt.fileContent), 0644))

			cfg := Default()
			err := loadFromFile(configFile, cfg)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}

	t.Run("non-existent file", func(t *testing.T) {
		err := loadFromFile("/non/existent/voucher.yaml", Default())
		assert.Error(t, err)
	})
}

func TestFindConfigFile(t *testing.T) {
	chdirTemp := func(t *testing.T) string {
		tempDir := t.TempDir()
		originalDir, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(tempDir))
		t.Cleanup(func() { os.Chdir(originalDir) })
		return tempDir
	}

	t.Run("no config file exists", func(t *testing.T) {
		chdirTemp(t)
		assert.Empty(t, findConfigFile())
	})

	t.Run("config file in current directory", func(t *testing.T) {
		chdirTemp(t)
		require.NoError(t, os.WriteFile("voucher.yaml", []byte("{}"), 0644))
		assert.Equal(t, "voucher.yaml", findConfigFile())
	})

	t.Run("config file in configs directory", func(t *testing.T) {
		tempDir := chdirTemp(t)
		require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "configs"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join("configs", "voucher.yaml"), []byte("{}"), 0644))
		assert.Equal(t, "configs/voucher.yaml", findConfigFile())
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "default configuration",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "empty data path",
			mutate:  func(cfg *Config) { cfg.Data.Path = "" },
			wantErr: true,
		},
		{
			name:    "empty output dir",
			mutate:  func(cfg *Config) { cfg.Output.Dir = "" },
			wantErr: true,
		},
		{
			name:    "confidence at the boundary",
			mutate:  func(cfg *Config) { cfg.Analysis.Confidence = 0.5 },
			wantErr: true,
		},
		{
			name:    "confidence above one",
			mutate:  func(cfg *Config) { cfg.Analysis.Confidence = 1.2 },
			wantErr: true,
		},
		{
			name:   "ninety percent confidence",
			mutate: func(cfg *Config) { cfg.Analysis.Confidence = 0.90 },
		},
		{
			name:    "unknown log format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "unknown log output",
			mutate:  func(cfg *Config) { cfg.Logging.Output = "syslog" },
			wantErr: true,
		},
		{
			name: "file output without a path",
			mutate: func(cfg *Config) {
				cfg.Logging.Output = "file"
				cfg.Logging.FilePath = ""
			},
			wantErr: true,
		},
		{
			name: "console output without a path",
			mutate: func(cfg *Config) {
				cfg.Logging.Output = "console"
				cfg.Logging.FilePath = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()

			if tt.wantErr {
				require.Error(t, err)
				var verrs validator.ValidationErrors
				assert.ErrorAs(t, err, &verrs)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate_NormalizesCase(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "WARN"
	cfg.Logging.Format = "JSON"
	cfg.Logging.Output = "Both"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
}

func TestOutputPaths(t *testing.T) {
	out := OutputConfig{Dir: filepath.Join("results", "pilot")}

	assert.Equal(t, filepath.Join("results", "pilot", "report.txt"), out.ReportPath())
	assert.Equal(t, filepath.Join("results", "pilot", "study.json"), out.ResultPath())
	assert.Equal(t, filepath.Join("results", "pilot", "study.xlsx"), out.WorkbookPath())
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "data/voucher_study.csv", cfg.Data.Path)
	assert.Equal(t, "results", cfg.Output.Dir)
	assert.True(t, cfg.Output.TextReport)
	assert.True(t, cfg.Output.CSV)
	assert.True(t, cfg.Output.JSON)
	assert.True(t, cfg.Output.Workbook)
	assert.Equal(t, 0.95, cfg.Analysis.Confidence)
	assert.Equal(t, 0, cfg.Analysis.MinCohort)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "logs/voucher-study.log", cfg.Logging.FilePath)

	require.NoError(t, cfg.validate())
}

// Package config provides centralized configuration management for the
// voucher study CLI. It merges built-in defaults, an optional YAML file and
// environment variables into a single validated Config consumed at startup.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Built-in defaults (lowest priority)
//
// Command-line flags are applied by the caller after Load and sit above all
// three.
//
// # Environment Variables
//
// All environment variables follow the pattern VOUCHER_* for namespacing:
//
//	VOUCHER_DATA_PATH=data/voucher_study.csv
//	VOUCHER_OUTPUT_DIR=results
//	VOUCHER_OUTPUT_WORKBOOK=false
//	VOUCHER_ANALYSIS_CONFIDENCE=0.90
//	VOUCHER_LOGGING_LEVEL=debug
//	VOUCHER_LOGGING_FORMAT=json
//
// # Configuration File
//
// Unless an explicit path is given, the file is looked up as voucher.yaml
// and then configs/voucher.yaml. Keys absent from the file keep their
// default values:
//
//	data:
//	  path: data/voucher_study.csv
//	output:
//	  dir: results
//	  workbook: false
//	analysis:
//	  confidence: 0.90
//	logging:
//	  level: debug
//	  format: text
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- The input path and output directory are set
//	- The confidence level lies strictly between 0.5 and 1
//	- Log level, format and output name known handlers
//	- A log file path is present whenever file output is enabled
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

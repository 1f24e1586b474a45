package config

// Application constants for the voucher study CLI.
const (
	// Application info
	AppName    = "voucher-study"
	AppVersion = "1.1.0"

	// Default input and output locations, relative to the working directory
	DefaultDataFile  = "data/voucher_study.csv"
	DefaultOutputDir = "results"
	DefaultLogFile   = "logs/voucher-study.log"

	// Well-known artifact names under the output directory. The CSV writer
	// adds effects.csv and coefficients.csv of its own.
	ReportFileName   = "report.txt"
	ResultFileName   = "study.json"
	WorkbookFileName = "study.xlsx"

	// DefaultConfidence is the interval level used when none is configured
	DefaultConfidence = 0.95
)

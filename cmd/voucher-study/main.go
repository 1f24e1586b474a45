package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"vouchercli/internal/cohort"
	"vouchercli/internal/config"
	"vouchercli/internal/estimator"
	"vouchercli/internal/infrastructure"
	"vouchercli/internal/report"
)

func main() {
	dataPath := flag.String("data", "", "path to the cohort CSV (overrides config)")
	configPath := flag.String("config", "", "path to a YAML config file")
	outputDir := flag.String("out", "", "output directory for study artifacts (overrides config)")
	confidence := flag.Float64("confidence", 0, "confidence level for intervals, e.g. 0.95 (overrides config)")
	logFormat := flag.String("format", "", "log format, text or json (overrides config)")
	quiet := flag.Bool("quiet", false, "log errors only")
	noExport := flag.Bool("no-export", false, "render the report to stdout without writing files")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", config.AppName, config.AppVersion)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Flags sit above env, file and defaults
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *confidence != 0 {
		cfg.Analysis.Confidence = *confidence
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}
	if *quiet {
		cfg.Logging.Level = "error"
	}

	logger, closeLogs, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logging", "error", err)
		os.Exit(1)
	}
	defer closeLogs()
	slog.SetDefault(logger)

	// Ctrl-C aborts the estimation pipeline between models
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Loading cohort", "path", cfg.Data.Path)
	students, err := cohort.Load(cfg.Data.Path, logger)
	if err != nil {
		logger.Error("Failed to load cohort", "path", cfg.Data.Path, "error", err)
		os.Exit(1)
	}
	logger.Info("Loaded cohort", "students", len(students))

	analyzer := estimator.New(estimator.Options{
		Confidence: cfg.Analysis.Confidence,
		MinCohort:  cfg.Analysis.MinCohort,
	}, logger)

	res, err := analyzer.Run(ctx, cfg.Data.Path, students)
	if err != nil {
		logger.Error("Study failed", "error", err)
		os.Exit(1)
	}

	if err := report.Render(os.Stdout, res); err != nil {
		logger.Error("Failed to render report", "error", err)
		os.Exit(1)
	}

	if *noExport {
		logger.Info("Export disabled, skipping file outputs", "run_id", res.RunID)
		return
	}

	written, err := saveOutputs(cfg.Output, res)
	if err != nil {
		logger.Error("Failed to save study outputs", "error", err)
		os.Exit(1)
	}

	logger.Info("Voucher study complete",
		"run_id", res.RunID,
		"students", res.N,
		"outputs", written)
}

// saveOutputs writes the enabled artifacts under the output directory and
// returns the paths written.
func saveOutputs(out config.OutputConfig, res *estimator.StudyResult) ([]string, error) {
	var written []string

	if out.TextReport {
		path := out.ReportPath()
		if err := writeTextReport(path, res); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if out.CSV {
		if err := report.SaveCSV(out.Dir, res); err != nil {
			return written, err
		}
		written = append(written,
			filepath.Join(out.Dir, report.EffectsFileName),
			filepath.Join(out.Dir, report.CoefficientsFileName))
	}

	if out.JSON {
		path := out.ResultPath()
		if err := report.SaveJSON(path, res); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if out.Workbook {
		path := out.WorkbookPath()
		if err := report.SaveWorkbook(path, res); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

// writeTextReport renders the study report into a file.
func writeTextReport(path string, res *estimator.StudyResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	if err := report.Render(file, res); err != nil {
		return fmt.Errorf("render report to %s: %w", path, err)
	}
	return nil
}

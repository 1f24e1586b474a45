package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"vouchercli/internal/estimator"
)

// File names SaveCSV writes into the output directory
const (
	EffectsFileName      = "effects.csv"
	CoefficientsFileName = "coefficients.csv"
)

// SaveCSV writes the machine readable tables next to each other in dir:
// effects.csv holds the unconditional comparison and compliance figures,
// coefficients.csv holds one row per fitted model term.
func SaveCSV(dir string, res *estimator.StudyResult) error {
	if res == nil {
		return fmt.Errorf("no study result to save")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := saveEffectsCSV(filepath.Join(dir, EffectsFileName), res); err != nil {
		return err
	}
	return saveCoefficientsCSV(filepath.Join(dir, CoefficientsFileName), res)
}

func saveEffectsCSV(path string, res *estimator.StudyResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV file %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"quantity", "value"}); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	rows := [][]string{
		{"students", strconv.Itoa(res.N)},
		{"n_untreated", strconv.Itoa(res.Effect.NUntreated)},
		{"n_treated", strconv.Itoa(res.Effect.NTreated)},
		{"p_untreated", formatFloat(res.Effect.PUntreated, 6)},
		{"p_treated", formatFloat(res.Effect.PTreated, 6)},
		{"ate", formatFloat(res.Effect.ATE, 6)},
		{"odds_difference", formatFloat(res.Effect.OddsDifference, 6)},
		{"winner_aid_share", formatFloat(res.Compliance.WinnerAidShare(), 6)},
		{"loser_aid_share", formatFloat(res.Compliance.LoserAidShare(), 6)},
		{"takeup_gap", formatFloat(res.Compliance.TakeupGap(), 6)},
		{"fitted_aid_min", formatFloat(res.TwoStage.FittedMin, 6)},
		{"fitted_aid_max", formatFloat(res.TwoStage.FittedMax, 6)},
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write CSV record %s: %w", row[0], err)
		}
	}

	return nil
}

func saveCoefficientsCSV(path string, res *estimator.StudyResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV file %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"model", "term", "estimate", "std_err", "z", "p",
		"ci_lower", "ci_upper", "odds_ratio", "or_lower", "or_upper",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, m := range []estimator.Model{res.Naive, res.TwoStage.StageOne, res.TwoStage.StageTwo} {
		for _, c := range m.Coefficients {
			record := []string{
				m.Name,
				c.Name,
				formatFloat(c.Estimate, 6),
				formatFloat(c.StdErr, 6),
				formatFloat(c.Z, 6),
				formatFloat(c.P, 6),
				formatFloat(c.Lower, 6),
				formatFloat(c.Upper, 6),
				formatFloat(c.OddsRatio, 6),
				formatFloat(c.ORLower, 6),
				formatFloat(c.ORUpper, 6),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("write CSV record for %s: %w", c.Name, err)
			}
		}
	}

	return nil
}

// formatFloat formats a float64 value for CSV output with the given precision
func formatFloat(value float64, precision int) string {
	return strconv.FormatFloat(value, 'f', precision, 64)
}

package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"vouchercli/internal/cohort"
	"vouchercli/internal/estimator"
)

// Sheet names in the workbook SaveWorkbook writes
const (
	SheetSummary      = "Summary"
	SheetDescriptives = "Descriptives"
	SheetModels       = "Models"
)

// SaveWorkbook writes the study result as an xlsx workbook with a summary
// sheet, the descriptive statistics and every fitted coefficient. It mirrors
// the CSV output for spreadsheet users.
func SaveWorkbook(path string, res *estimator.StudyResult) error {
	if res == nil {
		return fmt.Errorf("no study result to save")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), SheetSummary)
	if err := writeSummarySheet(f, res); err != nil {
		return fmt.Errorf("write %s sheet: %w", SheetSummary, err)
	}

	if _, err := f.NewSheet(SheetDescriptives); err != nil {
		return fmt.Errorf("create %s sheet: %w", SheetDescriptives, err)
	}
	if err := writeDescriptivesSheet(f, res); err != nil {
		return fmt.Errorf("write %s sheet: %w", SheetDescriptives, err)
	}

	if _, err := f.NewSheet(SheetModels); err != nil {
		return fmt.Errorf("create %s sheet: %w", SheetModels, err)
	}
	if err := writeModelsSheet(f, res); err != nil {
		return fmt.Errorf("write %s sheet: %w", SheetModels, err)
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, res *estimator.StudyResult) error {
	row := 1
	write := func(values ...interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(SheetSummary, cell, &values)
	}

	lines := [][]interface{}{
		{ReportTitle},
		{},
		{"Generated", res.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Run ID", res.RunID},
		{"Source", res.Source},
		{"Students", res.N},
		{"Confidence", res.Options.Confidence},
		{},
		{"Unconditional comparison"},
		{"completion share without aid", res.Effect.PUntreated},
		{"completion share with aid", res.Effect.PTreated},
		{"difference (ATE)", res.Effect.ATE},
		{"difference in completion odds", res.Effect.OddsDifference},
		{},
		{"Lottery compliance", "no aid", "aid", "total", "aid share"},
		{"lost lottery", res.Compliance.LosersNoAid, res.Compliance.LosersAid,
			res.Compliance.Losers(), res.Compliance.LoserAidShare()},
		{"won lottery", res.Compliance.WinnersNoAid, res.Compliance.WinnersAid,
			res.Compliance.Winners(), res.Compliance.WinnerAidShare()},
		{"take-up gap", res.Compliance.TakeupGap()},
		{},
		{"Findings"},
	}
	for _, line := range lines {
		if err := write(line...); err != nil {
			return err
		}
	}
	for _, insight := range res.Insights {
		if err := write(insight.Topic, insight.Message); err != nil {
			return err
		}
	}

	return f.SetColWidth(SheetSummary, "A", "A", 32)
}

func writeDescriptivesSheet(f *excelize.File, res *estimator.StudyResult) error {
	row := 1
	write := func(values ...interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(SheetDescriptives, cell, &values)
	}

	if err := write("group", "column", "count", "mean", "std",
		"min", "q1", "median", "q3", "max"); err != nil {
		return err
	}

	groups := []cohort.Summary{
		res.Descriptives.Overall,
		res.Descriptives.NoAid,
		res.Descriptives.Aid,
		res.Descriptives.Losers,
		res.Descriptives.Winners,
	}
	for _, g := range groups {
		for _, c := range g.Columns {
			if err := write(g.Label, c.Column, c.Count, statCell(c.Mean), statCell(c.Std),
				statCell(c.Min), statCell(c.Q1), statCell(c.Median),
				statCell(c.Q3), statCell(c.Max)); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(SheetDescriptives, "A", "B", 20)
}

func writeModelsSheet(f *excelize.File, res *estimator.StudyResult) error {
	row := 1
	write := func(values ...interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(SheetModels, cell, &values)
	}

	if err := write("model", "term", "estimate", "std_err", "z", "p",
		"ci_lower", "ci_upper", "odds_ratio", "or_lower", "or_upper"); err != nil {
		return err
	}

	for _, m := range []estimator.Model{res.Naive, res.TwoStage.StageOne, res.TwoStage.StageTwo} {
		for _, c := range m.Coefficients {
			if err := write(m.Name, c.Name, c.Estimate, c.StdErr, c.Z, c.P,
				c.Lower, c.Upper, c.OddsRatio, c.ORLower, c.ORUpper); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(SheetModels, "A", "B", 28)
}

// statCell keeps NaN out of numeric cells; xlsx has no representation for it
func statCell(v float64) interface{} {
	if math.IsNaN(v) {
		return "n/a"
	}
	return v
}

package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"vouchercli/internal/cohort"
	"vouchercli/internal/estimator"
)

// ReportTitle heads the text memo and the workbook summary sheet
const ReportTitle = "School Voucher Study - Instrumental Variables Report"

// Render writes the study result as a plain text research memo. Sections
// appear in a fixed order with fixed-width numbers, so output for the same
// result is byte for byte stable.
func Render(w io.Writer, res *estimator.StudyResult) error {
	if res == nil {
		return fmt.Errorf("no study result to render")
	}

	fmt.Fprintf(w, "%s\n", ReportTitle)
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", len(ReportTitle)))

	fmt.Fprintf(w, "Generated: %s\n", res.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Run ID: %s\n", res.RunID)
	fmt.Fprintf(w, "Source: %s\n", res.Source)
	fmt.Fprintf(w, "Students: %d\n", res.N)
	fmt.Fprintf(w, "Intervals: %.0f%% confidence\n\n", res.Options.Confidence*100)

	writeSectionHeader(w, "DESCRIPTIVE STATISTICS")
	writeSummary(w, res.Descriptives.Overall)
	writeSummary(w, res.Descriptives.NoAid)
	writeSummary(w, res.Descriptives.Aid)
	writeSummary(w, res.Descriptives.Losers)
	writeSummary(w, res.Descriptives.Winners)

	writeSectionHeader(w, "LOTTERY COMPLIANCE")
	writeCompliance(w, res.Compliance)

	writeSectionHeader(w, "UNCONDITIONAL COMPARISON")
	writeEffect(w, res.Effect)

	writeSectionHeader(w, "NAIVE LOGISTIC REGRESSION")
	writeModel(w, "model", res.Naive)

	writeSectionHeader(w, "TWO-STAGE INSTRUMENTAL VARIABLES")
	writeModel(w, "stage one", res.TwoStage.StageOne)
	fmt.Fprintf(w, "fitted aid probabilities: %.4f to %.4f\n\n",
		res.TwoStage.FittedMin, res.TwoStage.FittedMax)
	writeModel(w, "stage two", res.TwoStage.StageTwo)

	writeSectionHeader(w, "FINDINGS")
	for i, insight := range res.Insights {
		fmt.Fprintf(w, "%d. %s\n", i+1, insight.Message)
	}

	return nil
}

func writeSectionHeader(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("-", len(title)))
}

func writeSummary(w io.Writer, s cohort.Summary) {
	fmt.Fprintf(w, "%s (n=%d)\n", s.Label, s.N)
	fmt.Fprintf(w, "%-16s %6s %9s %9s %9s %9s %9s %9s %9s\n",
		"column", "count", "mean", "std", "min", "q1", "median", "q3", "max")
	for _, c := range s.Columns {
		fmt.Fprintf(w, "%-16s %6d %9s %9s %9s %9s %9s %9s %9s\n",
			c.Column, c.Count,
			formatStat(c.Mean), formatStat(c.Std),
			formatStat(c.Min), formatStat(c.Q1), formatStat(c.Median),
			formatStat(c.Q3), formatStat(c.Max))
	}
	fmt.Fprintf(w, "\n")
}

func writeCompliance(w io.Writer, ct cohort.ComplianceTable) {
	fmt.Fprintf(w, "%-16s %9s %9s %9s %11s\n", "", "no aid", "aid", "total", "aid share")
	fmt.Fprintf(w, "%-16s %9d %9d %9d %10.2f%%\n",
		"lost lottery", ct.LosersNoAid, ct.LosersAid, ct.Losers(), ct.LoserAidShare()*100)
	fmt.Fprintf(w, "%-16s %9d %9d %9d %10.2f%%\n",
		"won lottery", ct.WinnersNoAid, ct.WinnersAid, ct.Winners(), ct.WinnerAidShare()*100)
	fmt.Fprintf(w, "\ntake-up gap: %.2f percentage points\n\n", ct.TakeupGap()*100)
}

func writeEffect(w io.Writer, e estimator.UnconditionalEffect) {
	fmt.Fprintf(w, "finished 8th grade without aid: %.2f%% (%d students)\n",
		e.PUntreated*100, e.NUntreated)
	fmt.Fprintf(w, "finished 8th grade with aid: %.2f%% (%d students)\n",
		e.PTreated*100, e.NTreated)
	fmt.Fprintf(w, "difference (ATE): %.2f percentage points\n", e.ATE*100)
	fmt.Fprintf(w, "difference in completion odds: %.4f\n\n", e.OddsDifference)
	fmt.Fprintf(w, "note: the odds figure is a difference of group odds, not an odds ratio\n\n")
}

func writeModel(w io.Writer, label string, m estimator.Model) {
	fmt.Fprintf(w, "%s: %s (n=%d)\n", label, m.Formula, m.N)
	fmt.Fprintf(w, "%-14s %9s %9s %9s %9s %9s %9s %9s %9s %9s\n",
		"term", "estimate", "std err", "z", "p", "lower", "upper",
		"odds", "odds low", "odds high")
	for _, c := range m.Coefficients {
		fmt.Fprintf(w, "%-14s %9.4f %9.4f %9.4f %9.4f %9.4f %9.4f %9.4f %9.4f %9.4f\n",
			c.Name, c.Estimate, c.StdErr, c.Z, c.P,
			c.Lower, c.Upper, c.OddsRatio, c.ORLower, c.ORUpper)
	}
	fmt.Fprintf(w, "\n")
}

// formatStat renders one summary statistic, with n/a standing in for the
// undefined standard deviation of a single observation.
func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

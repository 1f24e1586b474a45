package cohort

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ColumnSummary holds descriptive statistics for one numeric column.
// Quantiles use linear interpolation between closest ranks and Std is
// the sample standard deviation (n-1 denominator).
type ColumnSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// MarshalJSON emits null for an undefined standard deviation because
// encoding/json rejects NaN.
func (cs ColumnSummary) MarshalJSON() ([]byte, error) {
	type alias ColumnSummary
	if math.IsNaN(cs.Std) {
		return json.Marshal(struct {
			alias
			Std interface{} `json:"std"`
		}{alias: alias(cs), Std: nil})
	}
	return json.Marshal(alias(cs))
}

// Summary is a describe-style table over one group of students
type Summary struct {
	Label   string          `json:"label"`
	N       int             `json:"n"`
	Columns []ColumnSummary `json:"columns"`
}

// Describe computes descriptive statistics for every cohort column over the
// given students. Columns appear in schema order. An empty group is an
// error: there is nothing to describe.
func Describe(label string, students []Student) (Summary, error) {
	if len(students) == 0 {
		return Summary{}, fmt.Errorf("describe %s: no students", label)
	}

	summary := Summary{
		Label:   label,
		N:       len(students),
		Columns: make([]ColumnSummary, 0, len(Columns)),
	}

	for _, col := range Columns {
		values, err := Column(students, col)
		if err != nil {
			return Summary{}, err
		}
		summary.Columns = append(summary.Columns, describeColumn(col, values))
	}
	return summary, nil
}

func describeColumn(name string, values []float64) ColumnSummary {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return ColumnSummary{
		Column: name,
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		Std:    stat.StdDev(values, nil),
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.50),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

// quantile interpolates linearly between closest ranks (quantile type 7,
// the convention dataframe describe() implementations use). gonum's
// stat.Quantile interpolates the empirical CDF instead, which yields
// different quartiles on small samples.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// DescribeBy splits the cohort by a predicate and describes both groups.
// The first summary covers students for which pred is false, the second
// those for which it is true. Either group being empty is an error because
// a one-sided split cannot support a comparison.
func DescribeBy(students []Student, pred func(Student) bool, outLabel, inLabel string) (Summary, Summary, error) {
	out, in := Partition(students, pred)

	outSummary, err := Describe(outLabel, out)
	if err != nil {
		return Summary{}, Summary{}, err
	}
	inSummary, err := Describe(inLabel, in)
	if err != nil {
		return Summary{}, Summary{}, err
	}
	return outSummary, inSummary, nil
}

// ComplianceTable cross-tabulates lottery results against aid usage. The
// gap between winner and loser take-up is the lever the instrumental
// variable design relies on.
type ComplianceTable struct {
	LosersNoAid  int `json:"losers_no_aid"`
	LosersAid    int `json:"losers_aid"`
	WinnersNoAid int `json:"winners_no_aid"`
	WinnersAid   int `json:"winners_aid"`
}

// Compliance tabulates the cohort by lottery result and aid usage
func Compliance(students []Student) ComplianceTable {
	var ct ComplianceTable
	for _, s := range students {
		switch {
		case s.Won() && s.Treated():
			ct.WinnersAid++
		case s.Won():
			ct.WinnersNoAid++
		case s.Treated():
			ct.LosersAid++
		default:
			ct.LosersNoAid++
		}
	}
	return ct
}

// Winners returns the number of lottery winners
func (ct ComplianceTable) Winners() int {
	return ct.WinnersAid + ct.WinnersNoAid
}

// Losers returns the number of lottery losers
func (ct ComplianceTable) Losers() int {
	return ct.LosersAid + ct.LosersNoAid
}

// WinnerAidShare returns the share of winners who used aid
func (ct ComplianceTable) WinnerAidShare() float64 {
	if ct.Winners() == 0 {
		return 0
	}
	return float64(ct.WinnersAid) / float64(ct.Winners())
}

// LoserAidShare returns the share of losers who used aid
func (ct ComplianceTable) LoserAidShare() float64 {
	if ct.Losers() == 0 {
		return 0
	}
	return float64(ct.LosersAid) / float64(ct.Losers())
}

// TakeupGap returns the difference in aid take-up between winners and
// losers. A gap near zero means the lottery barely moved aid usage and the
// instrument is weak.
func (ct ComplianceTable) TakeupGap() float64 {
	return ct.WinnerAidShare() - ct.LoserAidShare()
}

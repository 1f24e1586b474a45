package estimator

import (
	"errors"
	"fmt"
	"time"

	"vouchercli/internal/cohort"
)

// Constants for default estimation settings
const (
	// DefaultConfidence is the default confidence level for intervals
	DefaultConfidence = 0.95

	// WeakTakeupGap flags an instrument that barely moved aid usage
	WeakTakeupGap = 0.10
)

// Options configures a study run
type Options struct {
	// Confidence level for coefficient intervals, strictly between 0.5 and 1
	Confidence float64 `json:"confidence"`

	// MinCohort overrides the minimum cohort size. Zero means
	// cohort.MinStudentsForAnalysis.
	MinCohort int `json:"min_cohort"`
}

// DefaultOptions returns the standard study configuration
func DefaultOptions() Options {
	return Options{
		Confidence: DefaultConfidence,
		MinCohort:  cohort.MinStudentsForAnalysis,
	}
}

// IsValid checks if the options are usable
func (o Options) IsValid() bool {
	return o.Confidence > 0.5 && o.Confidence < 1 && o.MinCohort >= 0
}

func (o Options) minCohort() int {
	if o.MinCohort > 0 {
		return o.MinCohort
	}
	return cohort.MinStudentsForAnalysis
}

// Coefficient is one term of a fitted logistic regression. Lower and Upper
// bound the estimate at the configured confidence level; the odds ratio
// fields map the estimate and its interval through exp.
type Coefficient struct {
	Name      string  `json:"name"`
	Estimate  float64 `json:"estimate"`
	StdErr    float64 `json:"std_err"`
	Z         float64 `json:"z"`
	P         float64 `json:"p"`
	Lower     float64 `json:"ci_lower"`
	Upper     float64 `json:"ci_upper"`
	OddsRatio float64 `json:"odds_ratio"`
	ORLower   float64 `json:"odds_ratio_lower"`
	ORUpper   float64 `json:"odds_ratio_upper"`
}

// Model is one fitted logistic regression
type Model struct {
	Name         string        `json:"name"`
	Formula      string        `json:"formula"`
	N            int           `json:"n"`
	Confidence   float64       `json:"confidence"`
	Coefficients []Coefficient `json:"coefficients"`

	libSummary string // raw solver summary, kept for debug logging
}

// Coefficient returns the named term, if present
func (m Model) Coefficient(name string) (Coefficient, bool) {
	for _, c := range m.Coefficients {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// LibrarySummary returns the summary block the GLM solver renders for this
// model, in raw and odds-ratio scaled form.
func (m Model) LibrarySummary() string {
	return m.libSummary
}

// UnconditionalEffect compares grade completion between students who used
// financial aid and students who did not, without any covariate adjustment
type UnconditionalEffect struct {
	PUntreated     float64 `json:"p_untreated"`     // completion share without aid
	PTreated       float64 `json:"p_treated"`       // completion share with aid
	ATE            float64 `json:"ate"`             // PTreated - PUntreated
	OddsDifference float64 `json:"odds_difference"` // odds(PTreated) - odds(PUntreated)
	NUntreated     int     `json:"n_untreated"`
	NTreated       int     `json:"n_treated"`
}

// TwoStageResult holds both stages of the instrumental variables fit
type TwoStageResult struct {
	StageOne Model `json:"stage_one"`
	StageTwo Model `json:"stage_two"`

	// Fitted holds the stage-one fitted aid probabilities, one per student
	// in cohort order. This is the aid_hat column stage two regresses on.
	Fitted []float64 `json:"-"`

	FittedMin float64 `json:"fitted_min"`
	FittedMax float64 `json:"fitted_max"`
}

// Descriptives bundles the summary tables the report prints
type Descriptives struct {
	Overall cohort.Summary `json:"overall"`
	NoAid   cohort.Summary `json:"no_aid"`
	Aid     cohort.Summary `json:"aid"`
	Losers  cohort.Summary `json:"losers"`
	Winners cohort.Summary `json:"winners"`
}

// Insight is one generated interpretation sentence
type Insight struct {
	Topic   string `json:"topic"`
	Message string `json:"message"`
}

// StudyResult is the complete output of one study run
type StudyResult struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`
	N           int       `json:"n"`
	Options     Options   `json:"options"`

	Descriptives Descriptives           `json:"descriptives"`
	Compliance   cohort.ComplianceTable `json:"compliance"`
	Effect       UnconditionalEffect    `json:"effect"`
	Naive        Model                  `json:"naive"`
	TwoStage     TwoStageResult         `json:"two_stage"`
	Insights     []Insight              `json:"insights"`
}

// ErrCohortTooSmall is returned when fewer students are supplied than the
// configured minimum.
var ErrCohortTooSmall = errors.New("cohort too small for analysis")

// ErrEmptyGroup is returned when a comparison group has no students.
var ErrEmptyGroup = errors.New("comparison group is empty")

// DegenerateProbabilityError marks a group probability of exactly one, for
// which odds are undefined.
type DegenerateProbabilityError struct {
	Group string  `json:"group"`
	P     float64 `json:"p"`
}

// Error implements the error interface
func (e DegenerateProbabilityError) Error() string {
	return fmt.Sprintf("odds undefined: %s completion probability is %.6f", e.Group, e.P)
}

// FitError marks a logistic regression that did not produce a usable fit,
// typically perfect separation or a singular design matrix.
type FitError struct {
	Model  string `json:"model"`
	Reason string `json:"reason"`
}

// Error implements the error interface
func (e FitError) Error() string {
	return fmt.Sprintf("%s: fit failed: %s", e.Model, e.Reason)
}

package estimator

import (
	"fmt"

	"vouchercli/internal/cohort"
)

// NaiveModelName identifies the covariate-adjusted regression that treats
// aid usage as if it were randomly assigned.
const NaiveModelName = "naive logistic regression"

// NaiveLogit regresses grade completion on actual aid usage plus the sex and
// age covariates. Because students self-select into using aid, the aid
// coefficient mixes the treatment effect with selection, which is the bias
// the instrumental variables design corrects.
func NaiveLogit(students []cohort.Student, opts Options) (Model, error) {
	d, err := newDesign(students, cohort.ColumnFinishedGrade,
		[]string{cohort.ColumnUsedAid, cohort.ColumnSex, cohort.ColumnAge})
	if err != nil {
		return Model{}, fmt.Errorf("build design: %w", err)
	}

	fit, err := fitLogit(NaiveModelName, d)
	if err != nil {
		return Model{}, err
	}

	return buildModel(NaiveModelName, d, fit, opts.Confidence), nil
}

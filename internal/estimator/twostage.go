package estimator

import (
	"fmt"

	"vouchercli/internal/cohort"
)

// Model and derived column names for the two-stage fit
const (
	StageOneName = "first stage (aid take-up)"
	StageTwoName = "second stage (grade completion)"

	// FittedAidName is the derived column carrying the stage-one fitted
	// probabilities into stage two. It is the only derived column in the
	// pipeline.
	FittedAidName = "aid_hat"
)

// TwoStageIV estimates the effect of financial aid on grade completion using
// the voucher lottery as an instrument.
//
// Stage one regresses actual aid usage on the lottery result plus covariates.
// Its fitted probabilities replace the raw aid column in stage two, so the
// aid_hat coefficient only carries the variation in aid usage that the
// lottery induced. Both stages share the same covariate set and stage two
// never sees the raw treatment column.
func TwoStageIV(students []cohort.Student, opts Options) (TwoStageResult, error) {
	stage1Design, err := newDesign(students, cohort.ColumnUsedAid,
		[]string{cohort.ColumnWonLottery, cohort.ColumnSex, cohort.ColumnAge})
	if err != nil {
		return TwoStageResult{}, fmt.Errorf("stage one design: %w", err)
	}

	stage1Fit, err := fitLogit(StageOneName, stage1Design)
	if err != nil {
		return TwoStageResult{}, fmt.Errorf("stage one: %w", err)
	}

	fitted := fittedProbabilities(stage1Design, stage1Fit.params)
	min, max := fitted[0], fitted[0]
	for _, p := range fitted {
		if p <= 0 || p >= 1 {
			return TwoStageResult{}, FitError{
				Model:  StageOneName,
				Reason: fmt.Sprintf("fitted probability %v outside (0,1)", p),
			}
		}
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}

	stage2Design, err := newDesign(students, cohort.ColumnFinishedGrade,
		[]string{cohort.ColumnSex, cohort.ColumnAge},
		predictor{name: FittedAidName, values: fitted})
	if err != nil {
		return TwoStageResult{}, fmt.Errorf("stage two design: %w", err)
	}

	stage2Fit, err := fitLogit(StageTwoName, stage2Design)
	if err != nil {
		return TwoStageResult{}, fmt.Errorf("stage two: %w", err)
	}

	return TwoStageResult{
		StageOne:  buildModel(StageOneName, stage1Design, stage1Fit, opts.Confidence),
		StageTwo:  buildModel(StageTwoName, stage2Design, stage2Fit, opts.Confidence),
		Fitted:    fitted,
		FittedMin: min,
		FittedMax: max,
	}, nil
}

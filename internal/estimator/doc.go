// Package estimator implements the voucher lottery study estimators.
//
// The study asks whether using financial aid helped students finish 8th
// grade. Aid usage is self-selected, so the package estimates the effect
// three ways, from least to most careful:
//
//  1. Unconditional effect: the raw difference in completion shares and in
//     completion odds between aid users and non-users.
//  2. Naive logistic regression: completion on aid usage plus sex and age.
//     Covariate-adjusted but still biased by self-selection.
//  3. Two-stage instrumental variables: the voucher lottery is random, so
//     stage one regresses aid usage on the lottery result and covariates,
//     and stage two regresses completion on the stage-one fitted
//     probabilities in place of raw aid usage. The aid_hat coefficient is
//     identified from compliers only.
//
// # Architecture
//
//   - types.go: result structures, options and error types
//   - effect.go: group proportions, ATE, odds difference, odds ratios
//   - glm.go: design matrices and the binomial GLM bridge
//   - naive.go: the covariate-adjusted regression
//   - twostage.go: the two-stage instrumental variables fit
//   - analyzer.go: pipeline orchestration
//   - insights.go: generated interpretation sentences
//
// # Usage
//
//	analyzer := estimator.New(estimator.DefaultOptions(), slog.Default())
//	result, err := analyzer.Run(ctx, "data/cohort.csv", students)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	iv, _ := result.TwoStage.StageTwo.Coefficient(estimator.FittedAidName)
//	fmt.Printf("IV odds multiplier: %.2f\n", iv.OddsRatio)
//
// # Reading the Estimates
//
// Logistic coefficients are reported on the log-odds scale and mapped
// through exp into odds ratios: a coefficient of 0.5773 is an odds
// multiplier of about 1.78, and zero means no effect (multiplier 1).
//
// The pipeline is strictly sequential and deterministic: running it twice
// over the same cohort yields identical estimates. Failures surface as
// typed errors (FitError, DegenerateProbabilityError, ErrCohortTooSmall,
// ErrEmptyGroup) so callers can distinguish bad data from a failed fit.
package estimator

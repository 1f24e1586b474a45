package estimator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vouchercli/internal/cohort"
)

// Analyzer orchestrates the voucher study pipeline: descriptives, the
// unconditional effect, the naive logistic regression and the two-stage
// instrumental variables fit, in that order. Each step consumes the output
// of the previous one and the first failure aborts the run.
type Analyzer struct {
	opts   Options
	logger *slog.Logger
}

// New creates an analyzer with the given options
func New(opts Options, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{opts: opts, logger: logger}
}

// Run executes the full study over the cohort. source names the input for
// the report header. The returned result is deterministic for a given
// cohort and options, apart from the run id and timestamp.
func (a *Analyzer) Run(ctx context.Context, source string, students []cohort.Student) (*StudyResult, error) {
	start := time.Now()

	a.logger.InfoContext(ctx, "starting voucher study",
		"source", source,
		"students", len(students),
		"confidence", a.opts.Confidence,
	)

	if !a.opts.IsValid() {
		return nil, fmt.Errorf("invalid options: confidence %v must be in (0.5, 1)", a.opts.Confidence)
	}
	if err := a.validateCohort(students); err != nil {
		a.logger.ErrorContext(ctx, "cohort validation failed", "error", err)
		return nil, fmt.Errorf("validate cohort: %w", err)
	}

	res := &StudyResult{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		N:           len(students),
		Options:     a.opts,
	}
	logger := a.logger.With("run_id", res.RunID)

	overall, err := cohort.Describe("all students", students)
	if err != nil {
		return nil, fmt.Errorf("describe cohort: %w", err)
	}
	noAid, aid, err := cohort.DescribeBy(students, cohort.Student.Treated,
		"no financial aid", "used financial aid")
	if err != nil {
		return nil, fmt.Errorf("describe by aid usage: %w", err)
	}
	losers, winners, err := cohort.DescribeBy(students, cohort.Student.Won,
		"lost lottery", "won lottery")
	if err != nil {
		return nil, fmt.Errorf("describe by lottery result: %w", err)
	}
	res.Descriptives = Descriptives{
		Overall: overall,
		NoAid:   noAid,
		Aid:     aid,
		Losers:  losers,
		Winners: winners,
	}

	res.Compliance = cohort.Compliance(students)
	if gap := res.Compliance.TakeupGap(); gap < WeakTakeupGap {
		logger.WarnContext(ctx, "weak instrument",
			"takeup_gap", gap,
			"winner_share", res.Compliance.WinnerAidShare(),
			"loser_share", res.Compliance.LoserAidShare(),
		)
	}

	res.Effect, err = EstimateEffect(students)
	if err != nil {
		logger.ErrorContext(ctx, "unconditional effect failed", "error", err)
		return nil, fmt.Errorf("unconditional effect: %w", err)
	}
	logger.InfoContext(ctx, "unconditional effect estimated",
		"p_untreated", res.Effect.PUntreated,
		"p_treated", res.Effect.PTreated,
		"ate", res.Effect.ATE,
		"odds_difference", res.Effect.OddsDifference,
	)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	res.Naive, err = NaiveLogit(students, a.opts)
	if err != nil {
		logger.ErrorContext(ctx, "naive model failed", "error", err)
		return nil, fmt.Errorf("naive model: %w", err)
	}
	logger.DebugContext(ctx, "naive model fitted", "summary", res.Naive.LibrarySummary())

	res.TwoStage, err = TwoStageIV(students, a.opts)
	if err != nil {
		logger.ErrorContext(ctx, "two stage model failed", "error", err)
		return nil, fmt.Errorf("two stage model: %w", err)
	}
	logger.DebugContext(ctx, "stage one fitted",
		"summary", res.TwoStage.StageOne.LibrarySummary(),
		"fitted_min", res.TwoStage.FittedMin,
		"fitted_max", res.TwoStage.FittedMax,
	)
	logger.DebugContext(ctx, "stage two fitted", "summary", res.TwoStage.StageTwo.LibrarySummary())

	res.Insights = buildInsights(res)

	logger.InfoContext(ctx, "voucher study complete",
		"duration", time.Since(start),
		"insights", len(res.Insights),
	)
	return res, nil
}

// validateCohort re-checks every row so the estimators can assume clean
// data even when the cohort did not come from cohort.Load.
func (a *Analyzer) validateCohort(students []cohort.Student) error {
	if min := a.opts.minCohort(); len(students) < min {
		return fmt.Errorf("%w: have %d students, need at least %d", ErrCohortTooSmall, len(students), min)
	}
	for i, s := range students {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("student %d (id %d): %w", i, s.ID, err)
		}
	}
	return nil
}

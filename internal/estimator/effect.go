package estimator

import (
	"fmt"
	"math"

	"vouchercli/internal/cohort"
)

// GroupProportions returns the share of students who finished 8th grade in
// each aid group: p0 among students who did not use aid, p1 among students
// who did. Either group being empty is an ErrEmptyGroup.
func GroupProportions(students []cohort.Student) (p0, p1 float64, err error) {
	var nTreated, nUntreated, kTreated, kUntreated int
	for _, s := range students {
		if s.Treated() {
			nTreated++
			if s.Finished() {
				kTreated++
			}
		} else {
			nUntreated++
			if s.Finished() {
				kUntreated++
			}
		}
	}

	if nUntreated == 0 {
		return 0, 0, fmt.Errorf("no students without financial aid: %w", ErrEmptyGroup)
	}
	if nTreated == 0 {
		return 0, 0, fmt.Errorf("no students with financial aid: %w", ErrEmptyGroup)
	}

	p0 = float64(kUntreated) / float64(nUntreated)
	p1 = float64(kTreated) / float64(nTreated)
	return p0, p1, nil
}

// ATE returns the unconditional average treatment effect, the difference in
// completion shares between aid users and non-users.
func ATE(p1, p0 float64) float64 {
	return p1 - p0
}

// Odds converts a probability to odds. A probability of exactly one has no
// finite odds and is reported as a degenerate probability rather than +Inf.
func Odds(group string, p float64) (float64, error) {
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("probability for %s out of range: %v", group, p)
	}
	if p == 1 {
		return 0, DegenerateProbabilityError{Group: group, P: p}
	}
	return p / (1 - p), nil
}

// OddsDifference returns odds(p1) - odds(p0), the gap between the completion
// odds of aid users and non-users. Note this is a difference of odds, not an
// odds ratio, although study write-ups commonly label it one.
func OddsDifference(p1, p0 float64) (float64, error) {
	odds0, err := Odds("students without aid", p0)
	if err != nil {
		return 0, err
	}
	odds1, err := Odds("students with aid", p1)
	if err != nil {
		return 0, err
	}
	return odds1 - odds0, nil
}

// OddsRatio maps a logistic regression coefficient to the multiplicative
// change in odds for a one unit increase of its variable. A zero coefficient
// maps to 1 (no effect).
func OddsRatio(coef float64) float64 {
	return math.Exp(coef)
}

// EstimateEffect computes the unconditional comparison between aid users and
// non-users: group completion shares, their difference, and the gap in odds.
func EstimateEffect(students []cohort.Student) (UnconditionalEffect, error) {
	p0, p1, err := GroupProportions(students)
	if err != nil {
		return UnconditionalEffect{}, err
	}

	oddsDiff, err := OddsDifference(p1, p0)
	if err != nil {
		return UnconditionalEffect{}, err
	}

	untreated, treated := cohort.Partition(students, cohort.Student.Treated)
	return UnconditionalEffect{
		PUntreated:     p0,
		PTreated:       p1,
		ATE:            ATE(p1, p0),
		OddsDifference: oddsDiff,
		NUntreated:     len(untreated),
		NTreated:       len(treated),
	}, nil
}

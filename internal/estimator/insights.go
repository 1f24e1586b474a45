package estimator

import (
	"fmt"

	"vouchercli/internal/cohort"
)

// Topic labels for generated insights
const (
	TopicInstrument = "instrument"
	TopicRawGap     = "raw comparison"
	TopicNaive      = "naive estimate"
	TopicIV         = "instrumental variables"
	TopicCaveat     = "interpretation"
)

// buildInsights turns the fitted results into the plain language findings
// the report prints. Every figure in a sentence comes from the estimates;
// nothing is canned.
func buildInsights(res *StudyResult) []Insight {
	var insights []Insight
	add := func(topic, format string, args ...interface{}) {
		insights = append(insights, Insight{
			Topic:   topic,
			Message: fmt.Sprintf(format, args...),
		})
	}

	// Instrument strength from the compliance cross-tab
	gap := res.Compliance.TakeupGap()
	winnerShare := res.Compliance.WinnerAidShare() * 100
	loserShare := res.Compliance.LoserAidShare() * 100
	switch {
	case gap >= 0.25:
		add(TopicInstrument,
			"winning the lottery raised aid take-up by %.0f percentage points (%.0f%% of winners used aid against %.0f%% of losers), a strong first stage",
			gap*100, winnerShare, loserShare)
	case gap >= WeakTakeupGap:
		add(TopicInstrument,
			"winning the lottery raised aid take-up by %.0f percentage points (%.0f%% of winners used aid against %.0f%% of losers), enough variation to identify an effect for compliers",
			gap*100, winnerShare, loserShare)
	default:
		add(TopicInstrument,
			"the lottery moved aid take-up by only %.0f percentage points (%.0f%% of winners against %.0f%% of losers); with such a weak first stage the instrumental estimate is unreliable",
			gap*100, winnerShare, loserShare)
	}

	// Raw comparison without any adjustment
	add(TopicRawGap,
		"%.1f%% of aid users finished 8th grade against %.1f%% of non-users, a raw difference of %.1f percentage points (%d vs %d students)",
		res.Effect.PTreated*100, res.Effect.PUntreated*100, res.Effect.ATE*100,
		res.Effect.NTreated, res.Effect.NUntreated)

	alpha := 1 - res.Options.Confidence

	var naiveOR, ivOR float64
	if c, ok := res.Naive.Coefficient(cohort.ColumnUsedAid); ok {
		naiveOR = c.OddsRatio
		add(TopicNaive,
			"adjusting for sex and age, using financial aid multiplies the odds of finishing 8th grade by %.2f (%.0f%% CI %.2f to %.2f); students who chose to use aid may differ from those who did not, so this figure carries selection bias",
			c.OddsRatio, res.Options.Confidence*100, c.ORLower, c.ORUpper)
	}

	if c, ok := res.TwoStage.StageTwo.Coefficient(FittedAidName); ok {
		ivOR = c.OddsRatio
		add(TopicIV,
			"instrumenting aid usage with the lottery, the odds of finishing 8th grade multiply by %.2f (%.0f%% CI %.2f to %.2f); this is identified from compliers, students whose aid usage the lottery changed",
			c.OddsRatio, res.Options.Confidence*100, c.ORLower, c.ORUpper)

		if c.P < alpha {
			add(TopicCaveat,
				"the instrumented effect is distinguishable from no effect at the %.0f%% level (p = %.4f)",
				alpha*100, c.P)
		} else {
			add(TopicCaveat,
				"the %.0f%% interval for the instrumented odds multiplier includes 1 (p = %.4f), so no effect cannot be ruled out",
				res.Options.Confidence*100, c.P)
		}
	}

	if naiveOR > 0 && ivOR > 0 {
		switch ratio := naiveOR / ivOR; {
		case ratio > 1.10:
			add(TopicCaveat,
				"the naive odds multiplier (%.2f) exceeds the instrumented one (%.2f); self-selection into aid usage appears to inflate the naive estimate",
				naiveOR, ivOR)
		case ratio < 0.90:
			add(TopicCaveat,
				"the naive odds multiplier (%.2f) falls below the instrumented one (%.2f); selection appears to mask part of the effect in the naive estimate",
				naiveOR, ivOR)
		default:
			add(TopicCaveat,
				"naive (%.2f) and instrumented (%.2f) odds multipliers agree closely, suggesting limited selection on unobservables",
				naiveOR, ivOR)
		}
	}

	return insights
}

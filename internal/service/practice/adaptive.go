package practice

import (
	"time"

	"github.com/oratoria/oratoria-backend/internal/domain"
)

// AdaptiveInput extends the plain scheduling input with the session
// measurements the accuracy-driven strategy works from. Used when the
// client finishes a session without an explicit self-rating.
type AdaptiveInput struct {
	Card              domain.CardSnapshot
	RawAccuracy       float64
	WeightedAccuracy  float64
	VisibilityPercent float64
	DaysUntilDeadline int
	WordCount         int
	Now               time.Time
	Config            domain.SRSConfig
}

// AdaptiveOutput carries the full card update, including the derived
// rating recorded in the practice log.
type AdaptiveOutput struct {
	ScheduleOutput
	DerivedRating        domain.PracticeRating
	ConsecutiveStruggles int
	PerformanceTrend     float64
}

// ScheduleAdaptive is the ratingless strategy: it derives an SM-2 rating
// from the session's accuracy so the state machine stays coherent, then
// overrides the interval with an accuracy-and-visibility ladder of its own.
// Both paths share the deadline caps.
func ScheduleAdaptive(in AdaptiveInput) (AdaptiveOutput, error) {
	rating := DeriveRating(in.RawAccuracy, in.WeightedAccuracy, in.VisibilityPercent)

	base, err := Schedule(ScheduleInput{
		State:             in.Card.State,
		IntervalMinutes:   in.Card.IntervalMinutes,
		EaseFactor:        in.Card.EaseFactor,
		LearningStep:      in.Card.LearningStep,
		Rating:            rating,
		DaysUntilDeadline: in.DaysUntilDeadline,
		Now:               in.Now,
		Config:            in.Config,
	})
	if err != nil {
		return AdaptiveOutput{}, err
	}

	out := AdaptiveOutput{
		ScheduleOutput:       base,
		DerivedRating:        rating,
		ConsecutiveStruggles: nextStruggles(in.Card.ConsecutiveStruggles, in.WeightedAccuracy),
		PerformanceTrend:     UpdateTrend(in.Card.PerformanceTrend, in.Card.LastAccuracy, in.WeightedAccuracy),
	}

	interval := adaptiveInterval(in, out.ConsecutiveStruggles, out.PerformanceTrend)
	interval = capByDeadline(interval, in.DaysUntilDeadline)
	if interval < 1 {
		interval = 1
	}
	out.IntervalMinutes = interval
	out.NextReviewAt = in.Now.Add(time.Duration(interval) * time.Minute)
	return out, nil
}

// DeriveRating maps session accuracy onto the four-grade scale. Weighted
// accuracy (recall with text hidden) outranks raw accuracy: reciting from
// a fully visible page is reading, not remembering.
func DeriveRating(rawAccuracy, weightedAccuracy, visibilityPercent float64) domain.PracticeRating {
	switch {
	case weightedAccuracy < 50:
		return domain.PracticeRatingAgain
	case weightedAccuracy >= 70 && visibilityPercent <= 30:
		return domain.PracticeRatingEasy
	case weightedAccuracy >= 70:
		return domain.PracticeRatingGood
	default:
		return domain.PracticeRatingHard
	}
}

// adaptiveInterval is the accuracy ladder, in minutes before deadline caps:
//
//   - strong recall with most text hidden earns two to four days,
//   - strong reading off mostly visible text earns only four to eight
//     hours (the next session should hide more),
//   - a struggling session comes back within two to six hours,
//   - everything in between gets a one-day baseline scaled by a
//     frequency multiplier.
func adaptiveInterval(in AdaptiveInput, struggles int, trend float64) int {
	switch {
	case in.WeightedAccuracy >= 70 && in.VisibilityPercent <= 30:
		span := in.WeightedAccuracy - 70 // [0, 30]
		if span > 30 {
			span = 30
		}
		return 2*1440 + int(span*2*1440/30)

	case in.RawAccuracy >= 80 && in.VisibilityPercent >= 70:
		span := in.RawAccuracy - 80
		if span > 20 {
			span = 20
		}
		return 240 + int(span*240/20)

	case in.WeightedAccuracy < 50:
		return 120 + int(in.WeightedAccuracy*240/50)

	default:
		return int(1440 * frequencyMultiplier(in.DaysUntilDeadline, trend, struggles, in.WordCount, in.VisibilityPercent))
	}
}

// frequencyMultiplier scales the baseline interval: closer deadlines,
// falling trends, repeated struggles and long speeches all shorten it;
// calm, shrinking-visibility progress stretches it.
func frequencyMultiplier(daysRemaining int, trend float64, struggles, wordCount int, visibilityPercent float64) float64 {
	var m float64
	switch {
	case daysRemaining <= 1:
		m = 0.25
	case daysRemaining <= 3:
		m = 0.5
	case daysRemaining <= 7:
		m = 0.75
	case daysRemaining <= 14:
		m = 1.0
	default:
		m = 1.25
	}

	m *= 1 + 0.25*trend

	if struggles > 0 {
		m /= 1 + 0.5*float64(struggles)
	}

	switch {
	case wordCount > 500:
		m *= 0.7
	case wordCount > 200:
		m *= 0.85
	}

	switch {
	case visibilityPercent <= 30:
		m *= 1.2
	case visibilityPercent >= 70:
		m *= 0.8
	}

	if m < 0.1 {
		m = 0.1
	}
	if m > 2 {
		m = 2
	}
	return m
}

// nextStruggles advances the consecutive-struggle counter: a weighted
// accuracy below 50 extends the run, anything else breaks it.
func nextStruggles(prev int, weightedAccuracy float64) int {
	if weightedAccuracy < 50 {
		return prev + 1
	}
	return 0
}

// UpdateTrend smooths the accuracy delta into a [-1, +1] scalar. A swing
// of twenty accuracy points saturates the per-session contribution.
func UpdateTrend(prev, lastAccuracy, newAccuracy float64) float64 {
	delta := (newAccuracy - lastAccuracy) / 20
	if delta > 1 {
		delta = 1
	}
	if delta < -1 {
		delta = -1
	}
	trend := 0.7*prev + 0.3*delta
	if trend > 1 {
		trend = 1
	}
	if trend < -1 {
		trend = -1
	}
	return trend
}

// WeightedAccuracy discounts raw accuracy by how much of the text was
// hidden. Fully visible text keeps 40% of the raw score; fully hidden
// text keeps all of it.
func WeightedAccuracy(rawAccuracy, visibilityPercent float64) float64 {
	if visibilityPercent < 0 {
		visibilityPercent = 0
	}
	if visibilityPercent > 100 {
		visibilityPercent = 100
	}
	hiddenShare := (100 - visibilityPercent) / 100
	return rawAccuracy * (0.4 + 0.6*hiddenShare)
}

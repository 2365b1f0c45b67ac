package practice

import (
	"time"

	"github.com/oratoria/oratoria-backend/internal/domain"
)

// Scheduler constants. Intervals are minutes: deadline pressure routinely
// pushes reviews below an hour, so days would lose all resolution.
const (
	graduatingIntervalMin = 1440     // 1 day
	easyIntervalMin       = 4 * 1440 // 4 days
	relearnHardIntervalMin = 10
)

// ScheduleInput holds all data for one scheduling decision. Pure value:
// no side effects, no clock reads.
type ScheduleInput struct {
	State           domain.CardState
	IntervalMinutes int
	EaseFactor      float64
	LearningStep    int
	Rating          domain.PracticeRating
	// DaysUntilDeadline caps the interval: the card must stay reachable
	// before the speech is due.
	DaysUntilDeadline int
	Now               time.Time
	Config            domain.SRSConfig
}

// ScheduleOutput is the result of a scheduling decision.
type ScheduleOutput struct {
	State           domain.CardState
	IntervalMinutes int
	EaseFactor      float64
	LearningStep    int
	NextReviewAt    time.Time
}

// Schedule is the deadline-capped SM-2 state machine. Pure function: all
// decisions are deterministic on the input.
//
// An unknown card state degrades to NEW (valid default, not an error); an
// invalid rating is a caller contract violation and is rejected.
func Schedule(in ScheduleInput) (ScheduleOutput, error) {
	if !in.Rating.IsValid() {
		return ScheduleOutput{}, domain.NewValidationError("rating", "must be AGAIN, HARD, GOOD, or EASY")
	}

	if in.EaseFactor == 0 {
		in.EaseFactor = in.Config.DefaultEaseFactor
	}

	var out ScheduleOutput
	switch in.State {
	case domain.CardStateReview:
		out = scheduleReview(in)
	case domain.CardStateRelearning:
		out = scheduleRelearning(in)
	case domain.CardStateLearning:
		out = scheduleLearning(in)
	default:
		// NEW, or an unknown state from bad data: treat as NEW.
		in.LearningStep = 0
		out = scheduleLearning(in)
	}

	out.EaseFactor = clampEase(out.EaseFactor, in.Config)
	out.IntervalMinutes = capByDeadline(out.IntervalMinutes, in.DaysUntilDeadline)
	if out.IntervalMinutes < 1 {
		out.IntervalMinutes = 1
	}
	out.NextReviewAt = in.Now.Add(time.Duration(out.IntervalMinutes) * time.Minute)
	return out, nil
}

// scheduleLearning covers both NEW and LEARNING cards walking the
// learning steps.
func scheduleLearning(in ScheduleInput) ScheduleOutput {
	steps := learningSteps(in.Config)

	switch in.Rating {
	case domain.PracticeRatingAgain:
		return ScheduleOutput{
			State:           domain.CardStateLearning,
			IntervalMinutes: stepMinutes(steps, 0),
			EaseFactor:      in.EaseFactor,
			LearningStep:    0,
		}

	case domain.PracticeRatingHard:
		// Repeat the current step, but never faster than 6 minutes;
		// a struggling learner gains nothing from an immediate retry.
		interval := stepMinutes(steps, in.LearningStep)
		if interval < 6 {
			interval = 6
		}
		return ScheduleOutput{
			State:           domain.CardStateLearning,
			IntervalMinutes: interval,
			EaseFactor:      in.EaseFactor,
			LearningStep:    in.LearningStep,
		}

	case domain.PracticeRatingEasy:
		return ScheduleOutput{
			State:           domain.CardStateReview,
			IntervalMinutes: easyInterval(in.Config),
			EaseFactor:      in.EaseFactor + 0.15,
			LearningStep:    0,
		}

	default: // GOOD
		next := in.LearningStep + 1
		if next >= len(steps) {
			return ScheduleOutput{
				State:           domain.CardStateReview,
				IntervalMinutes: graduatingInterval(in.Config),
				EaseFactor:      in.EaseFactor,
				LearningStep:    0,
			}
		}
		return ScheduleOutput{
			State:           domain.CardStateLearning,
			IntervalMinutes: stepMinutes(steps, next),
			EaseFactor:      in.EaseFactor,
			LearningStep:    next,
		}
	}
}

func scheduleReview(in ScheduleInput) ScheduleOutput {
	switch in.Rating {
	case domain.PracticeRatingAgain:
		// Lapse: back to relearning from the first step.
		return ScheduleOutput{
			State:           domain.CardStateRelearning,
			IntervalMinutes: 1,
			EaseFactor:      in.EaseFactor - 0.20,
			LearningStep:    0,
		}

	case domain.PracticeRatingHard:
		interval := int(float64(in.IntervalMinutes) * 1.2)
		if alt := in.IntervalMinutes + graduatingIntervalMin; alt > interval {
			interval = alt
		}
		return ScheduleOutput{
			State:           domain.CardStateReview,
			IntervalMinutes: interval,
			EaseFactor:      in.EaseFactor - 0.15,
		}

	case domain.PracticeRatingEasy:
		return ScheduleOutput{
			State:           domain.CardStateReview,
			IntervalMinutes: int(float64(in.IntervalMinutes) * in.EaseFactor * 1.3),
			EaseFactor:      in.EaseFactor + 0.15,
		}

	default: // GOOD
		return ScheduleOutput{
			State:           domain.CardStateReview,
			IntervalMinutes: int(float64(in.IntervalMinutes) * in.EaseFactor),
			EaseFactor:      in.EaseFactor,
		}
	}
}

func scheduleRelearning(in ScheduleInput) ScheduleOutput {
	switch in.Rating {
	case domain.PracticeRatingAgain:
		return ScheduleOutput{
			State:           domain.CardStateRelearning,
			IntervalMinutes: 1,
			EaseFactor:      in.EaseFactor - 0.10,
			LearningStep:    0,
		}

	case domain.PracticeRatingHard:
		return ScheduleOutput{
			State:           domain.CardStateRelearning,
			IntervalMinutes: relearnHardIntervalMin,
			EaseFactor:      in.EaseFactor,
			LearningStep:    in.LearningStep,
		}

	case domain.PracticeRatingEasy:
		interval := int(float64(in.IntervalMinutes) * 0.75)
		if interval < 2*graduatingIntervalMin {
			interval = 2 * graduatingIntervalMin
		}
		return ScheduleOutput{
			State:           domain.CardStateReview,
			IntervalMinutes: interval,
			EaseFactor:      in.EaseFactor + 0.10,
		}

	default: // GOOD
		interval := int(float64(in.IntervalMinutes) * 0.5)
		if interval < graduatingIntervalMin {
			interval = graduatingIntervalMin
		}
		return ScheduleOutput{
			State:           domain.CardStateReview,
			IntervalMinutes: interval,
			EaseFactor:      in.EaseFactor,
		}
	}
}

// capByDeadline bounds an interval so the speech stays in rotation as its
// deadline approaches. The ladder tightens from a week down to half-hour
// drills on deadline day.
func capByDeadline(intervalMin, daysRemaining int) int {
	var capMin int
	switch {
	case daysRemaining <= 0:
		capMin = 30
	case daysRemaining == 1:
		capMin = 60
	case daysRemaining == 2:
		capMin = 120
	case daysRemaining <= 3:
		capMin = 240
	case daysRemaining <= 5:
		capMin = 480
	case daysRemaining <= 7:
		capMin = 720
	case daysRemaining <= 14:
		capMin = 1440
	case daysRemaining <= 30:
		capMin = 3 * 1440
	default:
		capMin = 7 * 1440
	}
	if intervalMin > capMin {
		return capMin
	}
	return intervalMin
}

func clampEase(ease float64, cfg domain.SRSConfig) float64 {
	minEase, maxEase := cfg.MinEaseFactor, cfg.MaxEaseFactor
	if minEase == 0 {
		minEase = 1.3
	}
	if maxEase == 0 {
		maxEase = 3.0
	}
	if ease < minEase {
		return minEase
	}
	if ease > maxEase {
		return maxEase
	}
	return ease
}

func learningSteps(cfg domain.SRSConfig) []time.Duration {
	if len(cfg.LearningSteps) > 0 {
		return cfg.LearningSteps
	}
	return []time.Duration{1 * time.Minute, 10 * time.Minute}
}

func stepMinutes(steps []time.Duration, step int) int {
	if step >= len(steps) {
		step = len(steps) - 1
	}
	if step < 0 {
		step = 0
	}
	m := int(steps[step].Minutes())
	if m < 1 {
		m = 1
	}
	return m
}

func graduatingInterval(cfg domain.SRSConfig) int {
	if cfg.GraduatingIntervalMinutes > 0 {
		return cfg.GraduatingIntervalMinutes
	}
	return graduatingIntervalMin
}

func easyInterval(cfg domain.SRSConfig) int {
	if cfg.EasyIntervalMinutes > 0 {
		return cfg.EasyIntervalMinutes
	}
	return easyIntervalMin
}

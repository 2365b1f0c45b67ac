package tempo

import (
	"time"

	"github.com/oratoria/oratoria-backend/internal/domain"
)

// Window capacities per partition.
const (
	generalWindowCap  = 50
	sentenceWindowCap = 20
	lengthWindowCap   = 30
)

// Sample gate: anything outside this range is recognition noise (duplicated
// finals, dropped audio), not a real pause, and never enters a window.
const (
	minSampleMs = 50
	maxSampleMs = 10_000
)

// Calibration-phase defaults, before any per-user statistics exist.
const (
	firstWordDefaultMs     = 3000
	generalDefaultMs       = 1500
	sentencePauseDefaultMs = 3500
)

// Phase boundaries keyed by words processed this session.
const (
	learningPhaseStart = 10
	adaptedPhaseStart  = 30
)

// Threshold clamps. The adapted phase may go as low as 300ms for a fast
// speaker; with little data the floor stays at 400ms.
const (
	adaptedFloorMs     = 300
	calibrationFloorMs = 400
	ceilingMs          = 5000
	firstWordFloorMs   = 2500
)

// Word-length multipliers: short words are spoken faster, long words slower.
const (
	shortWordFactor = 0.8
	longWordFactor  = 1.3
)

// Hint escalation bounds for the delay between successive hint levels.
const (
	hintStepFactor = 0.6
	hintStepMinMs  = 350
	hintStepMaxMs  = 900
)

// Estimator models the user's speaking cadence within one session and
// derives hesitation thresholds from it. It runs through three phases as
// samples accumulate: fixed defaults (calibration), a 50/50 blend
// (learning), and a purely statistical threshold (adapted).
type Estimator struct {
	general       *Window
	sentencePause *Window
	shortWords    *Window
	longWords     *Window

	wordsProcessed int
}

// NewEstimator creates an empty estimator for a new session.
func NewEstimator() *Estimator {
	return &Estimator{
		general:       NewWindow(generalWindowCap),
		sentencePause: NewWindow(sentenceWindowCap),
		shortWords:    NewWindow(lengthWindowCap),
		longWords:     NewWindow(lengthWindowCap),
	}
}

// Reset discards all samples and counters. Called at session start.
func (e *Estimator) Reset() {
	e.general.Reset()
	e.sentencePause.Reset()
	e.shortWords.Reset()
	e.longWords.Reset()
	e.wordsProcessed = 0
}

// WordsProcessed returns how many accepted matches this session has seen.
func (e *Estimator) WordsProcessed() int { return e.wordsProcessed }

// Observe records the latency (time since the previous successful match)
// for a word that was just matched. Out-of-range samples still advance the
// word count (the word happened) but are discarded from every window.
func (e *Estimator) Observe(latency time.Duration, word domain.WordToken) {
	e.wordsProcessed++

	ms := float64(latency.Milliseconds())
	if ms < minSampleMs || ms > maxSampleMs {
		return
	}

	e.general.Add(ms)
	if word.SentenceStart {
		e.sentencePause.Add(ms)
	}
	if word.IsShort() {
		e.shortWords.Add(ms)
	} else if word.IsLong() {
		e.longWords.Add(ms)
	}
}

// Threshold returns the hesitation threshold for the upcoming word.
// firstWord marks the very first word of the session, which always gets the
// most generous treatment.
func (e *Estimator) Threshold(word domain.WordToken, firstWord bool) time.Duration {
	switch {
	case e.wordsProcessed < learningPhaseStart:
		ms := e.calibrationDefault(word, firstWord)
		return clampMs(ms, calibrationFloorMs, ceilingMs)

	case e.wordsProcessed < adaptedPhaseStart:
		blended := (e.calibrationDefault(word, firstWord) + e.statisticalThreshold(word, firstWord)) / 2
		return clampMs(blended, calibrationFloorMs, ceilingMs)

	default:
		return clampMs(e.statisticalThreshold(word, firstWord), adaptedFloorMs, ceilingMs)
	}
}

// HintDelays returns the delay before the first hint and the step between
// successive hint levels for the upcoming word. The initial delay equals the
// hesitation threshold; the step follows the speaker's measured pace.
func (e *Estimator) HintDelays(word domain.WordToken, firstWord bool) (initial, step time.Duration) {
	initial = e.Threshold(word, firstWord)

	stepMs := hintStepFactor * e.general.Median()
	step = clampMs(stepMs, hintStepMinMs, hintStepMaxMs)
	return initial, step
}

// calibrationDefault returns the fixed generous defaults used before the
// user's own cadence is known.
func (e *Estimator) calibrationDefault(word domain.WordToken, firstWord bool) float64 {
	switch {
	case firstWord:
		return firstWordDefaultMs
	case word.SentenceStart:
		return sentencePauseDefaultMs
	default:
		return generalDefaultMs
	}
}

// statisticalThreshold derives a threshold from the sample windows:
// median + 1.5·stddev of the most specific window with enough data, then
// word-length and sentence-pause adjustments.
func (e *Estimator) statisticalThreshold(word domain.WordToken, firstWord bool) float64 {
	window := e.pickWindow(word)
	ms := window.Median() + 1.5*window.StdDev()

	if word.IsShort() {
		ms *= shortWordFactor
	} else if word.IsLong() {
		ms *= longWordFactor
	}

	if word.SentenceStart {
		if e.sentencePause.Len() >= 3 {
			if p90 := e.sentencePause.Percentile(90); ms < p90 {
				ms = p90
			}
		} else {
			ms *= 1.5
		}
	}

	if firstWord && ms < firstWordFloorMs {
		ms = firstWordFloorMs
	}
	return ms
}

// pickWindow selects the most specific window with enough samples:
// length-class (≥5), then sentence-pause (≥3, sentence-initial words only),
// then the general window.
func (e *Estimator) pickWindow(word domain.WordToken) *Window {
	if word.IsShort() && e.shortWords.Len() >= 5 {
		return e.shortWords
	}
	if word.IsLong() && e.longWords.Len() >= 5 {
		return e.longWords
	}
	if word.SentenceStart && e.sentencePause.Len() >= 3 {
		return e.sentencePause
	}
	return e.general
}

func clampMs(ms float64, floor, ceiling float64) time.Duration {
	if ms < floor {
		ms = floor
	}
	if ms > ceiling {
		ms = ceiling
	}
	return time.Duration(ms) * time.Millisecond
}

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.SRS.validate(); err != nil {
		return fmt.Errorf("srs: %w", err)
	}

	if err := c.Practice.validate(); err != nil {
		return fmt.Errorf("practice: %w", err)
	}

	return nil
}

func (s *SRSConfig) validate() error {
	if s.MinEaseFactor <= 0 {
		return fmt.Errorf("min_ease_factor must be > 0 (got %v)", s.MinEaseFactor)
	}
	if s.MaxEaseFactor < s.MinEaseFactor {
		return fmt.Errorf("max_ease_factor must be >= min_ease_factor (got %v < %v)", s.MaxEaseFactor, s.MinEaseFactor)
	}
	if s.GraduatingInterval <= 0 {
		return fmt.Errorf("graduating_interval must be > 0 (got %d)", s.GraduatingInterval)
	}
	if s.EasyInterval < s.GraduatingInterval {
		return fmt.Errorf("easy_interval must be >= graduating_interval (got %d < %d)", s.EasyInterval, s.GraduatingInterval)
	}

	steps, err := ParseLearningSteps(s.LearningStepsRaw)
	if err != nil {
		return fmt.Errorf("learning_steps: %w", err)
	}
	if len(steps) == 0 {
		return fmt.Errorf("learning_steps must not be empty")
	}
	s.LearningSteps = steps

	return nil
}

func (p *PracticeConfig) validate() error {
	if p.MatchThreshold <= 0 || p.MatchThreshold > 1 {
		return fmt.Errorf("match_threshold must be in (0, 1] (got %v)", p.MatchThreshold)
	}
	if p.Lookahead < 1 {
		return fmt.Errorf("lookahead must be >= 1 (got %d)", p.Lookahead)
	}
	if p.SimpleHideAfter < 1 || p.HideAfter < 1 {
		return fmt.Errorf("hide thresholds must be >= 1 (got %d, %d)", p.SimpleHideAfter, p.HideAfter)
	}
	if p.RecoveryMargin < 0 {
		return fmt.Errorf("recovery_margin must be >= 0 (got %d)", p.RecoveryMargin)
	}

	p.SimpleWords = splitCSV(p.SimpleWordsRaw)

	return nil
}

// ParseLearningSteps parses a comma-separated string of durations (e.g. "1m,10m")
// into a slice of time.Duration. An empty string returns a nil slice.
func ParseLearningSteps(raw string) ([]time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	steps := make([]time.Duration, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := time.ParseDuration(p)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", p, err)
		}
		steps = append(steps, d)
	}

	return steps, nil
}

// splitCSV splits a comma-separated word list, trimming whitespace and
// lowercasing. Empty items are dropped.
func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		words = append(words, p)
	}
	return words
}

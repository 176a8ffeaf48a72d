package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// AlertLevel is the flood severity of a river.
type AlertLevel string

const (
	AlertGreen  AlertLevel = "green"
	AlertYellow AlertLevel = "yellow"
	AlertRed    AlertLevel = "red"
)

// Thresholds in meters. A level equal to a threshold belongs to the more
// severe band.
const (
	YellowThreshold = 4.0
	RedThreshold    = 5.0
)

// Legacy thresholds, inclusive upper bounds. See ClassifyLegacy.
const (
	legacyGreenMax  = 2.0
	legacyYellowMax = 3.5
)

// AlertLevels lists every level from least to most severe.
var AlertLevels = []AlertLevel{AlertGreen, AlertYellow, AlertRed}

// Classify maps a river level in meters to its alert level.
//
// It is total: negative, zero, and NaN input classify green, +Inf red.
func Classify(level float64) AlertLevel {
	switch {
	case level >= RedThreshold:
		return AlertRed
	case level >= YellowThreshold:
		return AlertYellow
	default:
		return AlertGreen
	}
}

// ClassifyLegacy applies the older client-side thresholds (<= 2.0 m green,
// <= 3.5 m yellow, otherwise red). It is only used to report records whose
// level would have been shown differently by that policy.
func ClassifyLegacy(level float64) AlertLevel {
	if math.IsNaN(level) {
		return AlertGreen
	}
	switch {
	case level <= legacyGreenMax:
		return AlertGreen
	case level <= legacyYellowMax:
		return AlertYellow
	default:
		return AlertRed
	}
}

// Rank orders levels by severity: green 0, yellow 1, red 2. Unknown values
// rank -1.
func (l AlertLevel) Rank() int {
	switch l {
	case AlertGreen:
		return 0
	case AlertYellow:
		return 1
	case AlertRed:
		return 2
	default:
		return -1
	}
}

// Valid reports whether l is one of the three known levels.
func (l AlertLevel) Valid() bool {
	return l.Rank() >= 0
}

// MoreSevere reports whether l is strictly more severe than other.
func (l AlertLevel) MoreSevere(other AlertLevel) bool {
	return l.Rank() > other.Rank()
}

func (l AlertLevel) String() string {
	return string(l)
}

// ParseAlertLevel accepts a level name in any case, surrounding space ignored.
func ParseAlertLevel(s string) (AlertLevel, error) {
	l := AlertLevel(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("parse alert level %q: %w", s, ErrInvalidInput)
	}
	return l, nil
}

// UnmarshalJSON rejects anything outside the closed set.
func (l *AlertLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode alert level: %w", err)
	}
	parsed, err := ParseAlertLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ValidateLevel checks that a measured level can be stored on a record.
func ValidateLevel(level float64) error {
	if math.IsNaN(level) || math.IsInf(level, 0) {
		return fmt.Errorf("level must be a finite number: %w", ErrInvalidInput)
	}
	if level < 0 {
		return fmt.Errorf("level must not be negative, got %g: %w", level, ErrInvalidInput)
	}
	return nil
}

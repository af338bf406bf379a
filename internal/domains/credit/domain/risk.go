package domain

import (
	"fmt"
	"strings"
	"time"
)

// RiskLevel is the coarse bucket reported by the risk central. Informational only:
// decisions use the numeric score.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// ParseRiskLevel accepts the labels used on the wire, case-insensitively.
func ParseRiskLevel(raw string) (RiskLevel, error) {
	switch level := RiskLevel(strings.ToUpper(strings.TrimSpace(raw))); level {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return level, nil
	default:
		return "", fmt.Errorf("unknown risk level %q", raw)
	}
}

// RiskEvaluation is the immutable score record produced by the risk central for one
// evaluation attempt. Values are copied, never mutated; stamping returns a new value.
type RiskEvaluation struct {
	ID             int64
	ApplicationID  int64
	DocumentNumber string
	Score          int
	Level          RiskLevel
	Recommendation string
	EvaluatedAt    time.Time
}

// MeetsMinimumScore reports whether the score reaches the threshold.
func (r RiskEvaluation) MeetsMinimumScore(threshold int) bool {
	return r.Score >= threshold
}

// Stamp binds a fresh evaluation to the application it was produced for.
func (r RiskEvaluation) Stamp(applicationID int64, documentNumber string, at time.Time) RiskEvaluation {
	stamped := r
	stamped.ID = 0
	stamped.ApplicationID = applicationID
	stamped.DocumentNumber = documentNumber
	stamped.EvaluatedAt = at
	return stamped
}

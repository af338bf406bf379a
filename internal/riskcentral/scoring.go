// Package riskcentral is a deterministic stand-in for the external risk central. The same
// document number always receives the same score.
package riskcentral

import (
	"unicode/utf16"

	riskclient "github.com/Apurer/coopcredit-api-server/internal/clients/http/risk"
)

const (
	MinScore = 300
	MaxScore = 850

	lowRiskFrom    = 700
	mediumRiskFrom = 600
)

const (
	recommendationLow    = "Cliente con excelente historial crediticio. Se recomienda aprobación."
	recommendationMedium = "Cliente con historial crediticio aceptable. Evaluar condiciones adicionales."
	recommendationHigh   = "Cliente con historial crediticio deficiente. Se recomienda rechazar o solicitar garantías."
)

// Score maps a document number onto [300, 850] through a 32-bit polynomial string hash
// over UTF-16 code units.
func Score(documentNumber string) int {
	var h int32
	for _, unit := range utf16.Encode([]rune(documentNumber)) {
		h = 31*h + int32(unit)
	}
	if h < 0 {
		h = -h
	}
	return MinScore + int(h%int32(MaxScore-MinScore+1))
}

// Classify returns the risk level label and recommendation for a score.
func Classify(score int) (level, recommendation string) {
	switch {
	case score >= lowRiskFrom:
		return "LOW", recommendationLow
	case score >= mediumRiskFrom:
		return "MEDIUM", recommendationMedium
	default:
		return "HIGH", recommendationHigh
	}
}

// Evaluate builds the wire response for a document number.
func Evaluate(documentNumber string) riskclient.EvaluationResponse {
	score := Score(documentNumber)
	level, recommendation := Classify(score)
	return riskclient.EvaluationResponse{
		DocumentNumber: documentNumber,
		Score:          &score,
		RiskLevel:      level,
		Recommendation: recommendation,
	}
}

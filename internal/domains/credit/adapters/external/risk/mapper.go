package risk

import (
	"errors"
	"fmt"
	"strings"

	riskclient "github.com/Apurer/coopcredit-api-server/internal/clients/http/risk"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
)

const (
	minScore = 300
	maxScore = 850
)

var errMissingScore = errors.New("risk response without score")

// ToRiskEvaluation converts the wire payload into an unstamped domain evaluation.
func ToRiskEvaluation(resp riskclient.EvaluationResponse) (domain.RiskEvaluation, error) {
	if resp.Score == nil {
		return domain.RiskEvaluation{}, errMissingScore
	}
	score := *resp.Score
	if score < minScore || score > maxScore {
		return domain.RiskEvaluation{}, fmt.Errorf("risk score %d outside [%d, %d]", score, minScore, maxScore)
	}
	level, err := domain.ParseRiskLevel(resp.RiskLevel)
	if err != nil {
		return domain.RiskEvaluation{}, err
	}
	return domain.RiskEvaluation{
		DocumentNumber: strings.TrimSpace(resp.DocumentNumber),
		Score:          score,
		Level:          level,
		Recommendation: strings.TrimSpace(resp.Recommendation),
	}, nil
}

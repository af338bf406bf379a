package risk

import (
	"context"
	"fmt"
	"strings"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
	"github.com/Apurer/coopcredit-api-server/internal/riskcentral"
)

// MockClient scores in-process with the risk central's deterministic algorithm.
type MockClient struct{}

var _ ports.RiskClient = MockClient{}

// EvaluateRisk returns the same evaluation for the same document number.
func (MockClient) EvaluateRisk(ctx context.Context, documentNumber string) (*domain.RiskEvaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrRiskServiceUnavailable, err)
	}
	documentNumber = strings.TrimSpace(documentNumber)
	if documentNumber == "" {
		return nil, fmt.Errorf("%w: document number is required", ports.ErrRiskServiceUnavailable)
	}
	eval, err := ToRiskEvaluation(riskcentral.Evaluate(documentNumber))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrRiskServiceUnavailable, err)
	}
	return &eval, nil
}

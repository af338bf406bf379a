package risk

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	riskclient "github.com/Apurer/coopcredit-api-server/internal/clients/http/risk"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

type stubEvaluator struct {
	resp *riskclient.EvaluationResponse
	err  error
}

func (s stubEvaluator) Evaluate(context.Context, string) (*riskclient.EvaluationResponse, error) {
	return s.resp, s.err
}

func intPtr(v int) *int { return &v }

func TestAdapter_MapsResponse(t *testing.T) {
	adapter := NewAdapter(stubEvaluator{resp: &riskclient.EvaluationResponse{
		Score:          intPtr(720),
		RiskLevel:      "low",
		Recommendation: " aprobar ",
	}})

	eval, err := adapter.EvaluateRisk(context.Background(), "1017234567")
	require.NoError(t, err)
	assert.Equal(t, 720, eval.Score)
	assert.Equal(t, domain.RiskLevelLow, eval.Level)
	assert.Equal(t, "aprobar", eval.Recommendation)
	assert.Equal(t, "1017234567", eval.DocumentNumber)
	assert.Zero(t, eval.ID)
}

func TestAdapter_NormalizesFailures(t *testing.T) {
	cases := map[string]stubEvaluator{
		"transport":     {err: errors.New("connection refused")},
		"timeout":       {err: context.DeadlineExceeded},
		"nil response":  {},
		"missing score": {resp: &riskclient.EvaluationResponse{RiskLevel: "LOW"}},
		"unknown level": {resp: &riskclient.EvaluationResponse{Score: intPtr(700), RiskLevel: "EXTREME"}},
		"out of range":  {resp: &riskclient.EvaluationResponse{Score: intPtr(900), RiskLevel: "LOW"}},
	}
	for name, stub := range cases {
		t.Run(name, func(t *testing.T) {
			eval, err := NewAdapter(stub).EvaluateRisk(context.Background(), "80123456")
			require.ErrorIs(t, err, ports.ErrRiskServiceUnavailable)
			assert.Nil(t, eval)
		})
	}
}

func TestAdapter_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	adapter := NewAdapter(stubEvaluator{err: context.DeadlineExceeded}, WithRegisterer(reg))

	_, err := adapter.EvaluateRisk(context.Background(), "80123456")
	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(adapter.metrics.failures))
}

func TestMockClient_IsDeterministic(t *testing.T) {
	cases := []struct {
		doc   string
		score int
		level domain.RiskLevel
	}{
		{"1017234567", 751, domain.RiskLevelLow},
		{"1000000001", 614, domain.RiskLevelMedium},
		{"80123456", 563, domain.RiskLevelHigh},
	}
	for _, tc := range cases {
		eval, err := MockClient{}.EvaluateRisk(context.Background(), tc.doc)
		require.NoError(t, err)
		assert.Equal(t, tc.score, eval.Score, tc.doc)
		assert.Equal(t, tc.level, eval.Level, tc.doc)
	}
}

func TestMockClient_RespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := MockClient{}.EvaluateRisk(ctx, "80123456")
	require.ErrorIs(t, err, ports.ErrRiskServiceUnavailable)
	require.ErrorIs(t, err, context.Canceled)
}

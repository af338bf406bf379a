//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	pacttest "github.com/Apurer/coopcredit-api-server/test/pact"

	riskclient "github.com/Apurer/coopcredit-api-server/internal/clients/http/risk"
	creditrisk "github.com/Apurer/coopcredit-api-server/internal/domains/credit/adapters/external/risk"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
)

func TestRiskCentralContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	interaction := func(description, document string, score int, level string) {
		pact.AddInteraction().
			Given(pacttest.StateRiskCentralUp).
			UponReceiving(description).
			WithRequest(http.MethodPost, riskclient.EvaluationPath, func(b *pactconsumer.V2RequestBuilder) {
				b.Header("Content-Type", matchers.S("application/json"))
				b.JSONBody(matchers.Map{"documentNumber": matchers.S(document)})
			}).
			WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
				b.Header("Content-Type", jsonContentType)
				b.JSONBody(matchers.Map{
					"documentNumber": matchers.S(document),
					"score":          matchers.Like(score),
					"riskLevel":      matchers.Term(level, "LOW|MEDIUM|HIGH"),
					"recommendation": matchers.Like("recommendation"),
				})
			})
	}
	interaction("a score request for a low risk member", pacttest.LowRiskDocument, pacttest.LowRiskScore, "LOW")
	interaction("a score request for a high risk member", pacttest.HighRiskDocument, pacttest.HighRiskScore, "HIGH")

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		host := config.Host
		if host == "" {
			host = "localhost"
		}
		client, err := riskclient.NewRiskClient(fmt.Sprintf("http://%s:%d", host, config.Port), &http.Client{Timeout: 10 * time.Second})
		if err != nil {
			return err
		}
		adapter := creditrisk.NewAdapter(client)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		low, err := adapter.EvaluateRisk(ctx, pacttest.LowRiskDocument)
		if err != nil {
			return fmt.Errorf("evaluate low risk: %w", err)
		}
		if low.Score != pacttest.LowRiskScore || low.Level != domain.RiskLevelLow {
			return fmt.Errorf("unexpected low risk evaluation %+v", low)
		}

		high, err := adapter.EvaluateRisk(ctx, pacttest.HighRiskDocument)
		if err != nil {
			return fmt.Errorf("evaluate high risk: %w", err)
		}
		if high.Level != domain.RiskLevelHigh {
			return fmt.Errorf("unexpected high risk evaluation %+v", high)
		}
		return nil
	})
	require.NoError(t, err)
}

//go:build pact
// +build pact

package provider_test

import (
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"

	pacttest "github.com/Apurer/coopcredit-api-server/test/pact"

	"github.com/Apurer/coopcredit-api-server/internal/riskcentral"
)

func TestRiskCentralProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	server := httptest.NewServer(riskcentral.NewRouter(riskcentral.NewHandler(nil, riskcentral.Latency{})))
	defer server.Close()

	verifier := pactprovider.NewVerifier()
	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers: models.StateHandlers{
			pacttest.StateRiskCentralUp: func(bool, models.ProviderState) (models.ProviderStateResponse, error) {
				return nil, nil
			},
		},
	})
	require.NoError(t, err)
}

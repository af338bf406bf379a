package riskcentral

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	riskclient "github.com/Apurer/coopcredit-api-server/internal/clients/http/risk"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewHandler(nil, Latency{}))
}

func TestEvaluateEndpoint(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/risk-evaluation", strings.NewReader(`{"documentNumber":"1017234567"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body riskclient.EvaluationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Score)
	assert.Equal(t, 751, *body.Score)
	assert.Equal(t, "LOW", body.RiskLevel)
}

func TestEvaluateEndpoint_RejectsMissingDocument(t *testing.T) {
	router := newTestRouter()
	for _, payload := range []string{`{}`, `{"documentNumber":"  "}`, `not-json`} {
		req := httptest.NewRequest(http.MethodPost, "/risk-evaluation", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/risk-evaluation/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")
}

func TestLatencyPick(t *testing.T) {
	assert.Zero(t, Latency{}.pick())
	l := Latency{Min: 10, Max: 20}
	for i := 0; i < 50; i++ {
		d := l.pick()
		assert.GreaterOrEqual(t, d, l.Min)
		assert.Less(t, d, l.Max)
	}
}

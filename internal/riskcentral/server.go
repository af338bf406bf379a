package riskcentral

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	riskclient "github.com/Apurer/coopcredit-api-server/internal/clients/http/risk"
	apierrors "github.com/Apurer/coopcredit-api-server/internal/shared/errors"
)

// Latency bounds the simulated processing delay. A zero Max disables it.
type Latency struct {
	Min time.Duration
	Max time.Duration
}

// DefaultLatency is used by the standalone risk-central binary.
var DefaultLatency = Latency{Min: 100 * time.Millisecond, Max: 500 * time.Millisecond}

func (l Latency) pick() time.Duration {
	if l.Max <= 0 || l.Max < l.Min {
		return 0
	}
	if l.Max == l.Min {
		return l.Min
	}
	return l.Min + rand.N(l.Max-l.Min)
}

// Handler serves the scoring endpoints.
type Handler struct {
	logger    *slog.Logger
	latency   Latency
	responder *apierrors.ChainedResponder
}

// NewHandler builds the mock risk central handler.
func NewHandler(logger *slog.Logger, latency Latency) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		latency:   latency,
		responder: apierrors.NewKindResponder(""),
	}
}

// Evaluate handles POST /risk-evaluation.
func (h *Handler) Evaluate(c *gin.Context) {
	var req riskclient.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	doc := strings.TrimSpace(req.DocumentNumber)
	if doc == "" {
		h.responder.ValidationFailed(c, map[string]string{"documentNumber": "is required"})
		return
	}
	if d := h.latency.pick(); d > 0 {
		select {
		case <-time.After(d):
		case <-c.Request.Context().Done():
			return
		}
	}
	resp := Evaluate(doc)
	h.logger.InfoContext(c.Request.Context(), "risk evaluated",
		slog.Int("score", *resp.Score),
		slog.String("riskLevel", resp.RiskLevel),
	)
	c.JSON(http.StatusOK, resp)
}

// Health handles GET /risk-evaluation/health.
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "Risk Central Mock Service is running")
}

// NewRouter registers the risk central routes on a fresh gin engine behind mw.
func NewRouter(h *Handler, mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(mw...)
	router.POST(riskclient.EvaluationPath, h.Evaluate)
	router.GET(riskclient.EvaluationPath+"/health", h.Health)
	return router
}

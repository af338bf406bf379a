package coopcreditserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ApiHandleFunctions groups the handlers mounted by NewRouter.
type ApiHandleFunctions struct {
	CreditAPI    CreditAPI
	AffiliateAPI AffiliateAPI
}

// RouterOption customises NewRouter.
type RouterOption func(*routerConfig)

type routerConfig struct {
	middleware []gin.HandlerFunc
	metrics    http.Handler
}

// WithMiddleware installs middleware ahead of every route.
func WithMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(cfg *routerConfig) {
		cfg.middleware = append(cfg.middleware, mw...)
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) RouterOption {
	return func(cfg *routerConfig) {
		cfg.metrics = h
	}
}

// NewRouter builds the gin engine with every API route registered.
func NewRouter(handleFunctions ApiHandleFunctions, opts ...RouterOption) *gin.Engine {
	var cfg routerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(uuid.NewString))
	router.Use(cfg.middleware...)

	router.GET("/healthz", healthz)
	if cfg.metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.metrics))
	}

	responder := newProblemResponder()
	v1 := router.Group("/api/v1", authenticate(responder))

	affiliates := handleFunctions.AffiliateAPI
	v1.POST("/affiliates", requireRoles(responder, RoleAffiliate, RoleAdmin), affiliates.RegisterAffiliate)
	v1.GET("/affiliates", requireRoles(responder, RoleAdmin), affiliates.ListAffiliates)
	v1.GET("/affiliates/:affiliateId", requireRoles(responder, RoleAffiliate, RoleAnalyst, RoleAdmin), affiliates.GetAffiliate)
	v1.GET("/affiliates/document/:documentNumber", requireRoles(responder, RoleAnalyst, RoleAdmin), affiliates.GetAffiliateByDocument)

	credit := handleFunctions.CreditAPI
	apps := v1.Group("/credit-applications")
	apps.POST("", requireRoles(responder, RoleAffiliate, RoleAdmin), credit.CreateApplication)
	apps.GET("/me", requireRoles(responder, RoleAffiliate, RoleAdmin), credit.ListMine)
	apps.GET("", requireRoles(responder, RoleAnalyst, RoleAdmin), credit.ListAll)
	apps.GET("/:applicationId", requireRoles(responder, RoleAffiliate, RoleAnalyst, RoleAdmin), credit.GetApplication)
	apps.POST("/:applicationId/evaluate", requireRoles(responder, RoleAnalyst, RoleAdmin), credit.Evaluate)
	apps.POST("/:applicationId/approve", requireRoles(responder, RoleAnalyst, RoleAdmin), credit.Approve)
	apps.POST("/:applicationId/reject", requireRoles(responder, RoleAnalyst, RoleAdmin), credit.Reject)
	apps.POST("/:applicationId/cancel", requireRoles(responder, RoleAffiliate), credit.Cancel)

	return router
}

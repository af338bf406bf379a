package coopcreditserver

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	affiliatemapper "github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/adapters/http/mapper"
	affiliatesports "github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/ports"
	apierrors "github.com/Apurer/coopcredit-api-server/internal/shared/errors"
)

// AffiliateAPI wires HTTP transport with the affiliate registry.
type AffiliateAPI struct {
	service   affiliatesports.Service
	responder *apierrors.ChainedResponder
	logger    *slog.Logger
}

// NewAffiliateAPI creates an AffiliateAPI backed by the provided service.
func NewAffiliateAPI(service affiliatesports.Service, logger *slog.Logger) AffiliateAPI {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return AffiliateAPI{service: service, responder: newProblemResponder(), logger: logger}
}

// Post /api/v1/affiliates
// Registers a member profile
func (api *AffiliateAPI) RegisterAffiliate(c *gin.Context) {
	var payload affiliatemapper.RegisterAffiliate
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	params, fieldErrors := affiliatemapper.ToRegistrationParams(payload)
	if len(fieldErrors) > 0 {
		api.responder.ValidationFailed(c, fieldErrors)
		return
	}
	affiliate, err := api.service.Register(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, api.responder, api.logger, err)
		return
	}
	c.JSON(http.StatusCreated, affiliatemapper.FromDomain(affiliate))
}

// Get /api/v1/affiliates
// Lists member profiles
func (api *AffiliateAPI) ListAffiliates(c *gin.Context) {
	items, err := api.service.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, api.responder, api.logger, err)
		return
	}
	c.JSON(http.StatusOK, affiliatemapper.FromDomainList(items))
}

// Get /api/v1/affiliates/:affiliateId
// Finds a member profile by ID; members only see their own
func (api *AffiliateAPI) GetAffiliate(c *gin.Context) {
	id, ok := parseIDParam(c, api.responder, "affiliateId")
	if !ok {
		return
	}
	if actor := currentActor(c); actor.Role == RoleAffiliate && actor.AffiliateID != id {
		api.responder.Forbidden(c, "members can only read their own profile")
		return
	}
	affiliate, err := api.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, api.responder, api.logger, err)
		return
	}
	c.JSON(http.StatusOK, affiliatemapper.FromDomain(affiliate))
}

// Get /api/v1/affiliates/document/:documentNumber
// Finds a member profile by document number
func (api *AffiliateAPI) GetAffiliateByDocument(c *gin.Context) {
	doc := strings.TrimSpace(c.Param("documentNumber"))
	affiliate, err := api.service.GetByDocumentNumber(c.Request.Context(), doc)
	if err != nil {
		respondServiceError(c, api.responder, api.logger, err)
		return
	}
	c.JSON(http.StatusOK, affiliatemapper.FromDomain(affiliate))
}

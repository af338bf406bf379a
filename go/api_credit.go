package coopcreditserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	creditmapper "github.com/Apurer/coopcredit-api-server/internal/domains/credit/adapters/http/mapper"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	creditports "github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
	apierrors "github.com/Apurer/coopcredit-api-server/internal/shared/errors"
)

// CreditAPI wires HTTP transport with the credit bounded context service and workflows.
type CreditAPI struct {
	service    creditports.Service
	workflows  creditports.WorkflowOrchestrator
	affiliates creditports.AffiliateLookup
	responder  *apierrors.ChainedResponder
	logger     *slog.Logger
}

// NewCreditAPI creates a CreditAPI. workflows may be nil, in which case evaluations run
// on the service directly. affiliates resolves owner names for responses.
func NewCreditAPI(service creditports.Service, workflows creditports.WorkflowOrchestrator, affiliates creditports.AffiliateLookup, logger *slog.Logger) CreditAPI {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return CreditAPI{
		service:    service,
		workflows:  workflows,
		affiliates: affiliates,
		responder:  newProblemResponder(),
		logger:     logger,
	}
}

// Post /api/v1/credit-applications
// Submits a credit application for the caller's member profile. A repeated Idempotency-Key
// replays the first result.
func (api *CreditAPI) CreateApplication(c *gin.Context) {
	var payload creditmapper.CreateApplication
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	actor := currentActor(c)
	affiliateID := actor.AffiliateID
	if actor.Role == RoleAdmin && payload.AffiliateID != nil {
		affiliateID = *payload.AffiliateID
	}
	if affiliateID == 0 {
		api.responder.Respond(c, apierrors.ProblemInvalidState.WithDetail("a member profile is required before applying for credit"))
		return
	}
	app, err := api.service.CreateApplication(c.Request.Context(), creditmapper.ToCreateInput(payload, affiliateID, c.GetHeader(HeaderIdempotencyKey)))
	if err != nil {
		respondServiceError(c, api.responder, api.logger, err)
		return
	}
	c.JSON(http.StatusCreated, api.present(c.Request.Context(), app))
}

// Get /api/v1/credit-applications/me
// Lists the caller's applications
func (api *CreditAPI) ListMine(c *gin.Context) {
	actor := currentActor(c)
	if actor.AffiliateID == 0 {
		c.JSON(http.StatusOK, []creditmapper.Application{})
		return
	}
	apps, err := api.service.ListByAffiliate(c.Request.Context(), actor.AffiliateID)
	if err != nil {
		respondServiceError(c, api.responder, api.logger, err)
		return
	}
	c.JSON(http.StatusOK, api.presentList(c.Request.Context(), apps))
}

// Get /api/v1/credit-applications
// Lists every application
func (api *CreditAPI) ListAll(c *gin.Context) {
	apps, err := api.service.ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, api.responder, api.logger, err)
		return
	}
	c.JSON(http.StatusOK, api.presentList(c.Request.Context(), apps))
}

// Get /api/v1/credit-applications/:applicationId
// Finds an application by ID; members only see their own
func (api *CreditAPI) GetApplication(c *gin.Context) {
	id, ok := parseIDParam(c, api.responder, "applicationId")
	if !ok {
		return
	}
	app, err := api.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, api.responder, api.logger, err)
		return
	}
	if actor := currentActor(c); actor.Role == RoleAffiliate && !app.IsOwnedBy(actor.AffiliateID) {
		api.responder.Forbidden(c, "the application belongs to another member")
		return
	}
	c.JSON(http.StatusOK, api.present(c.Request.Context(), app))
}

// Post /api/v1/credit-applications/:applicationId/evaluate
// Scores the application with the risk central and decides it
func (api *CreditAPI) Evaluate(c *gin.Context) {
	id, ok := parseIDParam(c, api.responder, "applicationId")
	if !ok {
		return
	}
	app, err := api.evaluate(c.Request.Context(), id, currentActor(c).ID)
	if err != nil {
		respondServiceError(c, api.responder, api.logger, err)
		return
	}
	c.JSON(http.StatusOK, api.present(c.Request.Context(), app))
}

func (api *CreditAPI) evaluate(ctx context.Context, id int64, evaluatorID string) (*domain.CreditApplication, error) {
	if api.workflows != nil {
		return api.workflows.Evaluate(ctx, id, evaluatorID)
	}
	return api.service.Evaluate(ctx, id, evaluatorID)
}

// Post /api/v1/credit-applications/:applicationId/approve
// Approves the application without consulting the risk central
func (api *CreditAPI) Approve(c *gin.Context) {
	id, ok := parseIDParam(c, api.responder, "applicationId")
	if !ok {
		return
	}
	app, err := api.service.ApproveManually(c.Request.Context(), id, currentActor(c).ID)
	if err != nil {
		respondServiceError(c, api.responder, api.logger, err)
		return
	}
	c.JSON(http.StatusOK, api.present(c.Request.Context(), app))
}

// Post /api/v1/credit-applications/:applicationId/reject
// Rejects the application with a reason
func (api *CreditAPI) Reject(c *gin.Context) {
	id, ok := parseIDParam(c, api.responder, "applicationId")
	if !ok {
		return
	}
	var payload creditmapper.RejectApplication
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	app, err := api.service.RejectManually(c.Request.Context(), id, currentActor(c).ID, payload.Reason)
	if err != nil {
		respondServiceError(c, api.responder, api.logger, err)
		return
	}
	c.JSON(http.StatusOK, api.present(c.Request.Context(), app))
}

// Post /api/v1/credit-applications/:applicationId/cancel
// Withdraws one of the caller's pending applications
func (api *CreditAPI) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, api.responder, "applicationId")
	if !ok {
		return
	}
	actor := currentActor(c)
	if actor.AffiliateID == 0 {
		api.responder.Respond(c, apierrors.ProblemInvalidState.WithDetail("a member profile is required to cancel applications"))
		return
	}
	app, err := api.service.Cancel(c.Request.Context(), id, actor.AffiliateID)
	if err != nil {
		respondServiceError(c, api.responder, api.logger, err)
		return
	}
	c.JSON(http.StatusOK, api.present(c.Request.Context(), app))
}

func (api *CreditAPI) present(ctx context.Context, app *domain.CreditApplication) creditmapper.Application {
	return creditmapper.FromDomain(app, api.affiliateName(ctx, app.AffiliateID))
}

func (api *CreditAPI) presentList(ctx context.Context, apps []*domain.CreditApplication) []creditmapper.Application {
	names := make(map[int64]string)
	out := make([]creditmapper.Application, 0, len(apps))
	for _, app := range apps {
		name, ok := names[app.AffiliateID]
		if !ok {
			name = api.affiliateName(ctx, app.AffiliateID)
			names[app.AffiliateID] = name
		}
		out = append(out, creditmapper.FromDomain(app, name))
	}
	return out
}

func (api *CreditAPI) affiliateName(ctx context.Context, affiliateID int64) string {
	if api.affiliates == nil {
		return ""
	}
	affiliate, err := api.affiliates.FindByID(ctx, affiliateID)
	if err != nil {
		api.logger.WarnContext(ctx, "could not resolve affiliate name",
			slog.Int64("affiliate.id", affiliateID),
			slog.String("error", err.Error()),
		)
		return ""
	}
	return affiliate.FullName
}

package coopcreditserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/coopcredit-api-server/internal/shared/errors"
)

// Role is the caller role asserted by the trusted gateway.
type Role string

const (
	RoleAffiliate Role = "AFILIADO"
	RoleAnalyst   Role = "ANALISTA"
	RoleAdmin     Role = "ADMIN"
)

// Gateway headers. Authentication happens upstream; these are trusted as-is.
const (
	HeaderActorRole   = "X-Actor-Role"
	HeaderActorID     = "X-Actor-ID"
	HeaderAffiliateID = "X-Affiliate-ID"

	HeaderIdempotencyKey = "Idempotency-Key"
)

const actorContextKey = "coopcredit.actor"

// Actor is the authenticated caller.
type Actor struct {
	Role Role
	ID   string
	// AffiliateID links the caller to a member profile; zero when the caller has none.
	AffiliateID int64
}

// HasRole reports whether the actor holds any of roles.
func (a Actor) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

func parseRole(raw string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RoleAffiliate, RoleAnalyst, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// authenticate resolves the Actor from gateway headers and rejects anonymous calls.
func authenticate(responder *apierrors.ChainedResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := parseRole(c.GetHeader(HeaderActorRole))
		if !ok {
			responder.Unauthorized(c, "missing or unknown "+HeaderActorRole+" header")
			c.Abort()
			return
		}
		actor := Actor{Role: role, ID: strings.TrimSpace(c.GetHeader(HeaderActorID))}
		if actor.ID == "" {
			responder.Unauthorized(c, "missing "+HeaderActorID+" header")
			c.Abort()
			return
		}
		if raw := strings.TrimSpace(c.GetHeader(HeaderAffiliateID)); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				responder.BadRequest(c, HeaderAffiliateID+" must be a positive integer")
				c.Abort()
				return
			}
			actor.AffiliateID = id
		}
		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// requireRoles lets the request through only for the listed roles.
func requireRoles(responder *apierrors.ChainedResponder, roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentActor(c).HasRole(roles...) {
			responder.Forbidden(c, "operation not allowed for this role")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentActor(c *gin.Context) Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, ok := v.(Actor); ok {
			return actor
		}
	}
	return Actor{}
}

func parseIDParam(c *gin.Context, responder *apierrors.ChainedResponder, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		responder.Respond(c, apierrors.ProblemBadRequest.WithDetail(name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

// requestID propagates or assigns X-Request-ID.
func requestID(newID func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if id == "" {
			id = newID()
		}
		c.Header("X-Request-ID", id)
		c.Set("requestId", id)
		c.Next()
	}
}

func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package httppresentation

import (
	"net/http"
	"strings"

	"github.com/courtfunds/payhub-bridge/internal/pkg/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// RoleDeliveryManager is the operator role allowed to trigger dispatches.
	RoleDeliveryManager = "delivery-manager"

	headerRequestID = "X-Request-ID"
	// headerUserRoles carries the authenticated caller's roles, resolved by
	// the API gateway in front of this service.
	headerUserRoles = "X-User-Roles"
)

// RequestContext generates/echoes X-Request-ID and stores a request-scoped
// logger on the context for downstream layers.
func RequestContext(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(headerRequestID, rid)

		logger := base.With(
			zap.String("request_id", rid),
			zap.String("path", c.FullPath()),
		)
		c.Request = c.Request.WithContext(logging.ContextWithLogger(c.Request.Context(), logger))
		c.Next()
	}
}

// RequireRole rejects callers that do not hold the given role with 403.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, held := range strings.Split(c.GetHeader(headerUserRoles), ",") {
			if strings.TrimSpace(held) == role {
				c.Next()
				return
			}
		}

		logging.FromContext(c.Request.Context()).Warn("authorization_denied",
			zap.String("required_role", role),
		)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
	}
}

package httppresentation

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/courtfunds/payhub-bridge/internal/application/dispatch"
	"github.com/courtfunds/payhub-bridge/internal/domain/payhub"
	"github.com/courtfunds/payhub-bridge/internal/domain/setting"
	"github.com/courtfunds/payhub-bridge/internal/pkg/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const featureDisabledMessage = "This function is temporarily unavailable.\nPlease contact support."

// Dispatcher triggers one dispatch invocation with the caller's bearer token.
type Dispatcher interface {
	Dispatch(ctx context.Context, userToken string) (payhub.Report, error)
}

type Handler struct {
	dispatcher Dispatcher
	flags      setting.Store
	now        func() time.Time
}

func NewHandler(dispatcher Dispatcher, flags setting.Store) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		flags:      flags,
		now:        time.Now,
	}
}

// Register mounts the bridge routes on the given engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	grp := r.Group("/payment-instructions", RequireRole(RoleDeliveryManager))
	grp.GET("/send-to-payhub", h.handleSendToPayhub)
	grp.GET("/send-to-payhub/:reportDate", h.handleSendToPayhub)
}

func (h *Handler) handleSendToPayhub(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.FromContext(ctx)

	if raw := c.Param("reportDate"); raw != "" {
		millis, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid report date"})
			return
		}
		if millis > h.now().UnixMilli() {
			c.JSON(http.StatusBadRequest, gin.H{"message": "report date must not be in the future"})
			return
		}
	}

	enabled, err := h.flags.Flag(ctx, setting.SendToPayhub)
	if err != nil {
		logger.Error("feature_flag_read_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	if !enabled {
		c.JSON(http.StatusBadRequest, gin.H{"message": featureDisabledMessage})
		return
	}

	report, err := h.dispatcher.Dispatch(ctx, c.GetHeader("Authorization"))
	if err != nil {
		logger.Error("dispatch_failed", zap.Error(err))
		if errors.Is(err, dispatch.ErrCredential) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "service credential unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	c.JSON(http.StatusOK, report)
}

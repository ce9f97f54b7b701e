package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoLaunchpad/launchgate/internal/middleware"
	"github.com/GoLaunchpad/launchgate/internal/model"
	"github.com/GoLaunchpad/launchgate/internal/pkg/apperrors"
	"github.com/GoLaunchpad/launchgate/internal/pkg/metrics"
	"github.com/GoLaunchpad/launchgate/internal/service"
)

// HookHandler fronts the transfer authorizer. The host calls it on every
// transfer of a policy-controlled asset and forwards our verdict verbatim.
type HookHandler struct {
	authorizer *service.Authorizer
	events     service.EventSink
}

func NewHookHandler(authorizer *service.Authorizer, events service.EventSink) *HookHandler {
	return &HookHandler{authorizer: authorizer, events: events}
}

func (h *HookHandler) Authorize(c *gin.Context) {
	var req model.TransferHookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, err.Error(), err))
		return
	}

	tc := service.TransferContext{Amount: req.Amount}
	var err error
	if tc.Asset, err = model.ParseIdentity(req.Asset); err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed asset identity", err))
		return
	}
	if tc.Sender, err = model.ParseIdentity(req.Sender); err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed sender identity", err))
		return
	}
	if tc.Recipient, err = model.ParseIdentity(req.Recipient); err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed recipient identity", err))
		return
	}

	if err := h.authorizer.Authorize(c.Request.Context(), tc); err != nil {
		if apperrors.IsGateRejection(err) {
			appErr := apperrors.Wrap(err)
			metrics.TransfersAuthorized.WithLabelValues("rejected").Inc()
			middleware.AddAuditContext(c, "decision", "rejected")
			middleware.AddAuditContext(c, "reason", string(appErr.Type))
			if h.events != nil {
				h.events.Publish(service.EventTransferRejected, gin.H{
					"asset":  req.Asset,
					"sender": req.Sender,
					"amount": req.Amount,
					"reason": string(appErr.Type),
				})
			}
			c.JSON(http.StatusForbidden, model.TransferHookResponse{
				Permitted: false,
				Reason:    string(appErr.Type),
			})
			return
		}
		c.Error(err)
		return
	}

	metrics.TransfersAuthorized.WithLabelValues("permitted").Inc()
	middleware.AddAuditContext(c, "decision", "permitted")
	if h.events != nil {
		h.events.Publish(service.EventTransferPermitted, gin.H{
			"asset":  req.Asset,
			"sender": req.Sender,
			"amount": req.Amount,
		})
	}
	c.JSON(http.StatusOK, model.TransferHookResponse{Permitted: true})
}

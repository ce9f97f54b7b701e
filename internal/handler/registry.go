package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoLaunchpad/launchgate/internal/middleware"
	"github.com/GoLaunchpad/launchgate/internal/model"
	"github.com/GoLaunchpad/launchgate/internal/pkg/apperrors"
	"github.com/GoLaunchpad/launchgate/internal/service"
)

type RegistryHandler struct {
	svc *service.RegistryService
}

func NewRegistryHandler(svc *service.RegistryService) *RegistryHandler {
	return &RegistryHandler{svc: svc}
}

func (h *RegistryHandler) Initialize(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.Error(apperrors.New(apperrors.ErrUnauthorized, "missing caller identity", nil))
		return
	}

	var req model.InitializeRegistryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, err.Error(), err))
		return
	}

	var treasury *model.Identity
	if req.Treasury != nil {
		id, err := model.ParseIdentity(*req.Treasury)
		if err != nil {
			c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed treasury identity", err))
			return
		}
		treasury = &id
	}

	cfg, err := h.svc.Initialize(c.Request.Context(), caller, req.Fee, treasury)
	if err != nil {
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "initialize_registry")
	middleware.AddAuditContext(c, "owner", cfg.Owner.String())

	c.JSON(http.StatusCreated, cfg)
}

func (h *RegistryHandler) Get(c *gin.Context) {
	cfg, err := h.svc.Get(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoLaunchpad/launchgate/internal/middleware"
	"github.com/GoLaunchpad/launchgate/internal/model"
	"github.com/GoLaunchpad/launchgate/internal/pkg/apperrors"
	"github.com/GoLaunchpad/launchgate/internal/service"
)

type PolicyHandler struct {
	svc *service.PolicyService
}

func NewPolicyHandler(svc *service.PolicyService) *PolicyHandler {
	return &PolicyHandler{svc: svc}
}

func policyParamsFrom(window *model.TradingWindowDTO, maxAmount, minAmount uint64, credential string) (service.PolicyParams, error) {
	p := service.PolicyParams{
		MaxTransferAmount: maxAmount,
		MinTransferAmount: minAmount,
	}
	if window != nil {
		p.Window = &model.TradingWindow{
			OpenMinute:  window.OpenMinute,
			CloseMinute: window.CloseMinute,
		}
	}
	if credential != "" {
		id, err := model.ParseIdentity(credential)
		if err != nil {
			return p, err
		}
		p.RequiredCredentialAsset = id
	}
	return p, nil
}

func (h *PolicyHandler) Initialize(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.Error(apperrors.New(apperrors.ErrUnauthorized, "missing caller identity", nil))
		return
	}

	var req model.InitializePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, err.Error(), err))
		return
	}
	asset, err := model.ParseIdentity(req.Asset)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed asset identity", err))
		return
	}
	params, err := policyParamsFrom(req.Window, req.MaxTransferAmount, req.MinTransferAmount, req.RequiredCredentialAsset)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed credential asset identity", err))
		return
	}

	policy, err := h.svc.InitializePolicy(c.Request.Context(), caller, asset, params)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "initialize_policy")
	middleware.AddAuditContext(c, "asset", policy.Asset.String())

	c.JSON(http.StatusCreated, policy)
}

func (h *PolicyHandler) Edit(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.Error(apperrors.New(apperrors.ErrUnauthorized, "missing caller identity", nil))
		return
	}
	asset, err := model.ParseIdentity(c.Param("asset"))
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed asset identity", err))
		return
	}

	var req model.EditPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, err.Error(), err))
		return
	}
	params, err := policyParamsFrom(req.Window, req.MaxTransferAmount, req.MinTransferAmount, req.RequiredCredentialAsset)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed credential asset identity", err))
		return
	}

	policy, err := h.svc.EditPolicy(c.Request.Context(), caller, asset, params)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "edit_policy")
	middleware.AddAuditContext(c, "asset", policy.Asset.String())

	c.JSON(http.StatusOK, policy)
}

func (h *PolicyHandler) UpdateFlags(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.Error(apperrors.New(apperrors.ErrUnauthorized, "missing caller identity", nil))
		return
	}
	asset, err := model.ParseIdentity(c.Param("asset"))
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed asset identity", err))
		return
	}

	// All four flags are required on the wire so a toggle is always a full
	// replacement, never a partial patch.
	var req model.UpdateFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, err.Error(), err))
		return
	}

	policy, err := h.svc.UpdateFlags(c.Request.Context(), caller, asset, service.PolicyFlags{
		WhitelistEnabled:   *req.WhitelistEnabled,
		TradingTimeEnabled: *req.TradingTimeEnabled,
		MaxTransferEnabled: *req.MaxTransferEnabled,
		NFTGated:           *req.NFTGated,
	})
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "update_flags")
	middleware.AddAuditContext(c, "asset", policy.Asset.String())

	c.JSON(http.StatusOK, policy)
}

func (h *PolicyHandler) Get(c *gin.Context) {
	asset, err := model.ParseIdentity(c.Param("asset"))
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed asset identity", err))
		return
	}

	policy, err := h.svc.GetPolicy(c.Request.Context(), asset)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

func (h *PolicyHandler) AddToWhitelist(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.Error(apperrors.New(apperrors.ErrUnauthorized, "missing caller identity", nil))
		return
	}
	asset, err := model.ParseIdentity(c.Param("asset"))
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed asset identity", err))
		return
	}

	var req model.WhitelistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, err.Error(), err))
		return
	}
	principal, err := model.ParseIdentity(req.Principal)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed principal identity", err))
		return
	}

	if err := h.svc.AddToWhitelist(c.Request.Context(), caller, asset, principal); err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "add_to_whitelist")
	middleware.AddAuditContext(c, "asset", asset.String())
	middleware.AddAuditContext(c, "principal", principal.String())

	c.JSON(http.StatusCreated, gin.H{"asset": asset.String(), "principal": principal.String(), "whitelisted": true})
}

func (h *PolicyHandler) RemoveFromWhitelist(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.Error(apperrors.New(apperrors.ErrUnauthorized, "missing caller identity", nil))
		return
	}
	asset, err := model.ParseIdentity(c.Param("asset"))
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed asset identity", err))
		return
	}
	principal, err := model.ParseIdentity(c.Param("principal"))
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed principal identity", err))
		return
	}

	if err := h.svc.RemoveFromWhitelist(c.Request.Context(), caller, asset, principal); err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "remove_from_whitelist")
	middleware.AddAuditContext(c, "asset", asset.String())
	middleware.AddAuditContext(c, "principal", principal.String())

	c.JSON(http.StatusOK, gin.H{"asset": asset.String(), "principal": principal.String(), "whitelisted": false})
}

func (h *PolicyHandler) CheckWhitelist(c *gin.Context) {
	asset, err := model.ParseIdentity(c.Param("asset"))
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed asset identity", err))
		return
	}
	principal, err := model.ParseIdentity(c.Param("principal"))
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed principal identity", err))
		return
	}

	ok, err := h.svc.IsWhitelisted(c.Request.Context(), asset, principal)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset.String(), "principal": principal.String(), "whitelisted": ok})
}

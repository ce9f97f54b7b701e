package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoLaunchpad/launchgate/internal/middleware"
	"github.com/GoLaunchpad/launchgate/internal/model"
	"github.com/GoLaunchpad/launchgate/internal/pkg/apperrors"
	"github.com/GoLaunchpad/launchgate/internal/service"
)

type SaleHandler struct {
	svc *service.SaleEngine
}

func NewSaleHandler(svc *service.SaleEngine) *SaleHandler {
	return &SaleHandler{svc: svc}
}

func (h *SaleHandler) Initialize(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.Error(apperrors.New(apperrors.ErrUnauthorized, "missing caller identity", nil))
		return
	}

	var req model.InitializeSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, err.Error(), err))
		return
	}
	asset, err := model.ParseIdentity(req.Asset)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed asset identity", err))
		return
	}

	sale, err := h.svc.InitializeSale(c.Request.Context(), caller, service.SaleParams{
		Asset:            asset,
		SoftCap:          req.SoftCap,
		HardCap:          req.HardCap,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		TotalOffered:     req.TotalOffered,
		PricePerBaseUnit: req.PricePerBaseUnit,
	})
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "initialize_sale")
	middleware.AddAuditContext(c, "asset", sale.Asset.String())

	c.JSON(http.StatusCreated, sale)
}

func (h *SaleHandler) Purchase(c *gin.Context) {
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

	var req model.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, err.Error(), err))
		return
	}

	resp, err := h.svc.Purchase(c.Request.Context(), caller, asset, req.Amount)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "purchase")
	middleware.AddAuditContext(c, "asset", resp.Asset)
	middleware.AddAuditContext(c, "amount", resp.Amount)
	middleware.AddAuditContext(c, "cost", resp.Cost)

	c.JSON(http.StatusOK, resp)
}

func (h *SaleHandler) Get(c *gin.Context) {
	asset, err := model.ParseIdentity(c.Param("asset"))
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed asset identity", err))
		return
	}

	resp, err := h.svc.GetSale(c.Request.Context(), asset)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

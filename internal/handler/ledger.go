package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoLaunchpad/launchgate/internal/ledger"
	"github.com/GoLaunchpad/launchgate/internal/middleware"
	"github.com/GoLaunchpad/launchgate/internal/model"
	"github.com/GoLaunchpad/launchgate/internal/pkg/apperrors"
)

// LedgerHandler exposes balance queries and the ops-only faucet. Funding is a
// collaborator primitive: the engines never mint, the deployment's operator
// seeds payment balances through here.
type LedgerHandler struct {
	ledger ledger.Ledger
}

func NewLedgerHandler(l ledger.Ledger) *LedgerHandler {
	return &LedgerHandler{ledger: l}
}

func (h *LedgerHandler) Balance(c *gin.Context) {
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

	amount, err := h.ledger.Balance(c.Request.Context(), asset, principal)
	if err != nil {
		c.Error(apperrors.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, model.BalanceResponse{
		Asset:     asset.String(),
		Principal: principal.String(),
		Amount:    amount,
		Display:   model.DisplayAmount(amount),
	})
}

func (h *LedgerHandler) Fund(c *gin.Context) {
	var req model.FundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, err.Error(), err))
		return
	}

	// Empty asset funds the payment currency.
	asset := model.PaymentAsset
	if req.Asset != "" {
		var err error
		if asset, err = model.ParseIdentity(req.Asset); err != nil {
			c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed asset identity", err))
			return
		}
	}
	principal, err := model.ParseIdentity(req.Principal)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInvalidRequest, "malformed principal identity", err))
		return
	}

	err = h.ledger.Settle(c.Request.Context(), func(tx ledger.Tx) error {
		return tx.Mint(c.Request.Context(), asset, principal, req.Amount)
	})
	if err != nil {
		c.Error(apperrors.Wrap(err))
		return
	}

	middleware.AddAuditContext(c, "action", "fund")
	middleware.AddAuditContext(c, "asset", asset.String())
	middleware.AddAuditContext(c, "principal", principal.String())
	middleware.AddAuditContext(c, "amount", req.Amount)

	c.JSON(http.StatusOK, gin.H{
		"asset":     asset.String(),
		"principal": principal.String(),
		"amount":    req.Amount,
	})
}

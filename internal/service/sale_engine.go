package service

import (
	"context"
	"errors"

	"github.com/GoLaunchpad/launchgate/internal/clock"
	"github.com/GoLaunchpad/launchgate/internal/keys"
	"github.com/GoLaunchpad/launchgate/internal/ledger"
	"github.com/GoLaunchpad/launchgate/internal/model"
	"github.com/GoLaunchpad/launchgate/internal/pkg/apperrors"
	"github.com/GoLaunchpad/launchgate/internal/pkg/metrics"
	"github.com/GoLaunchpad/launchgate/internal/repository"
)

// SaleParams are the creator-supplied sale terms.
type SaleParams struct {
	Asset            model.AssetID
	SoftCap          uint64
	HardCap          uint64
	StartTime        int64
	EndTime          int64
	TotalOffered     uint64
	PricePerBaseUnit uint64
}

// SaleEngine drives the sale state machine: creation funds the vault, each
// purchase settles payment, token delivery and the sold counter in one step.
type SaleEngine struct {
	sales  repository.SaleStore
	ledger ledger.Ledger
	clock  clock.Clock
	events EventSink
}

func NewSaleEngine(sales repository.SaleStore, l ledger.Ledger, c clock.Clock, events EventSink) *SaleEngine {
	return &SaleEngine{sales: sales, ledger: l, clock: c, events: events}
}

// InitializeSale validates the terms, creates the sale record and escrows the
// offered supply in the vault. One-time per asset: there is no
// re-initialization path.
func (e *SaleEngine) InitializeSale(ctx context.Context, creator model.Identity, p SaleParams) (*model.Sale, error) {
	if p.SoftCap == 0 || p.SoftCap > p.HardCap || p.HardCap > p.TotalOffered {
		return nil, apperrors.Newf(apperrors.ErrInvalidCapConfiguration,
			"caps must satisfy 0 < soft(%d) <= hard(%d) <= offered(%d)", p.SoftCap, p.HardCap, p.TotalOffered).
			WithRecord("asset", p.Asset.String())
	}
	if p.PricePerBaseUnit == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidRequest, "price per base unit must be positive", nil)
	}

	now := e.clock.Now()
	if p.StartTime >= p.EndTime {
		return nil, apperrors.Newf(apperrors.ErrInvalidTimeWindow,
			"start time %d must be before end time %d", p.StartTime, p.EndTime).
			WithRecord("asset", p.Asset.String())
	}
	if p.EndTime <= now {
		return nil, apperrors.Newf(apperrors.ErrInvalidTimeWindow,
			"end time %d is in the past", p.EndTime).
			WithRecord("asset", p.Asset.String())
	}

	sale := &model.Sale{
		Creator:          creator,
		Asset:            p.Asset,
		SoftCap:          p.SoftCap,
		HardCap:          p.HardCap,
		StartTime:        p.StartTime,
		EndTime:          p.EndTime,
		TotalOffered:     p.TotalOffered,
		PricePerBaseUnit: p.PricePerBaseUnit,
		TotalSold:        0,
	}

	vault := keys.VaultHolder(p.Asset)
	err := e.ledger.Settle(ctx, func(tx ledger.Tx) error {
		// Escrow first: if the creator cannot fund the vault, no record is
		// ever created.
		if err := tx.Transfer(ctx, p.Asset, creator, vault, p.TotalOffered); err != nil {
			if errors.Is(err, ledger.ErrInsufficientFunds) {
				return apperrors.Newf(apperrors.ErrInsufficientFunds,
					"creator holds fewer than %d base units to offer", p.TotalOffered).
					WithRecord("asset", p.Asset.String()).
					WithRecord("creator", creator.String())
			}
			return err
		}
		if err := e.sales.Create(ctx, tx, sale); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return apperrors.New(apperrors.ErrAlreadyInitialized, "sale already exists for asset", nil).
					WithRecord("asset", p.Asset.String())
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	if e.events != nil {
		e.events.Publish(EventSaleInitialized, sale)
	}
	return sale, nil
}

// Purchase runs one purchase settlement step. Validation order is fixed:
// sale window, hard cap, cost arithmetic, vault stock, buyer funds. The first
// failing check wins and nothing is applied.
func (e *SaleEngine) Purchase(ctx context.Context, buyer model.Identity, asset model.AssetID, amount uint64) (*model.PurchaseResponse, error) {
	if amount == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidRequest, "amount must be positive", nil)
	}

	// One authoritative clock reading drives every check in this step.
	now := e.clock.Now()
	vault := keys.VaultHolder(asset)

	var resp *model.PurchaseResponse
	err := e.ledger.Settle(ctx, func(tx ledger.Tx) error {
		sale, err := e.sales.Get(ctx, tx, asset)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.New(apperrors.ErrNotFound, "no sale for asset", nil).
					WithRecord("asset", asset.String())
			}
			return err
		}

		if now < sale.StartTime || now >= sale.EndTime {
			return apperrors.Newf(apperrors.ErrSaleNotActive,
				"sale window is [%d, %d), current time %d", sale.StartTime, sale.EndTime, now).
				WithRecord("asset", asset.String())
		}

		newTotal, ok := model.CheckedAdd(sale.TotalSold, amount)
		if !ok {
			return apperrors.New(apperrors.ErrArithmeticOverflow, "total sold overflows", nil).
				WithRecord("asset", asset.String())
		}
		// No partial fill: a request past the hard cap is rejected in full.
		if newTotal > sale.HardCap {
			return apperrors.Newf(apperrors.ErrHardCapReached,
				"purchase of %d would raise total sold to %d past hard cap %d", amount, newTotal, sale.HardCap).
				WithRecord("asset", asset.String())
		}

		cost, ok := model.CheckedMul(amount, sale.PricePerBaseUnit)
		if !ok {
			return apperrors.Newf(apperrors.ErrArithmeticOverflow,
				"cost of %d base units at price %d overflows", amount, sale.PricePerBaseUnit).
				WithRecord("asset", asset.String())
		}

		vaultBal, err := tx.Balance(ctx, asset, vault)
		if err != nil {
			return err
		}
		if vaultBal < amount {
			// Cap accounting guarantees stock; reaching this means the vault
			// was tampered with outside the engine.
			return apperrors.Newf(apperrors.ErrInternal,
				"vault holds %d of %d requested base units", vaultBal, amount).
				WithRecord("asset", asset.String())
		}

		if err := tx.Transfer(ctx, model.PaymentAsset, buyer, sale.Creator, cost); err != nil {
			if errors.Is(err, ledger.ErrInsufficientFunds) {
				return apperrors.Newf(apperrors.ErrInsufficientFunds,
					"buyer cannot cover cost of %d payment units", cost).
					WithRecord("asset", asset.String()).
					WithRecord("buyer", buyer.String())
			}
			return err
		}
		if err := tx.Transfer(ctx, asset, vault, buyer, amount); err != nil {
			return err
		}
		if err := e.sales.SetTotalSold(ctx, tx, asset, newTotal); err != nil {
			return err
		}

		resp = &model.PurchaseResponse{
			Asset:       asset.String(),
			Buyer:       buyer.String(),
			Amount:      amount,
			Cost:        cost,
			CostDisplay: model.DisplayAmount(cost),
			TotalSold:   newTotal,
		}
		return nil
	})
	if err != nil {
		metrics.PurchasesTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.Wrap(err)
	}

	metrics.PurchasesTotal.WithLabelValues("settled").Inc()
	metrics.TokensSold.WithLabelValues(asset.String()).Add(float64(amount))
	if e.events != nil {
		e.events.Publish(EventPurchaseSettled, resp)
	}
	return resp, nil
}

// GetSale returns the terminal sale record with its derived status.
func (e *SaleEngine) GetSale(ctx context.Context, asset model.AssetID) (*model.SaleResponse, error) {
	sale, err := e.sales.Get(ctx, nil, asset)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "no sale for asset", nil).
				WithRecord("asset", asset.String())
		}
		return nil, apperrors.Wrap(err)
	}
	vaultBal, err := e.ledger.Balance(ctx, asset, keys.VaultHolder(asset))
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return &model.SaleResponse{
		Sale:           sale,
		Status:         sale.StatusAt(e.clock.Now()),
		SoftCapReached: sale.SoftCapReached(),
		VaultBalance:   vaultBal,
	}, nil
}

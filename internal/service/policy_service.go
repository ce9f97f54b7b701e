package service

import (
	"context"
	"errors"

	"github.com/GoLaunchpad/launchgate/internal/ledger"
	"github.com/GoLaunchpad/launchgate/internal/model"
	"github.com/GoLaunchpad/launchgate/internal/pkg/apperrors"
	"github.com/GoLaunchpad/launchgate/internal/repository"
)

// PolicyParams carry the gate parameters set at creation and replaced by
// EditPolicy. The four switches are not here: they start false and change
// only through UpdateFlags.
type PolicyParams struct {
	Window                  *model.TradingWindow
	MaxTransferAmount       uint64
	MinTransferAmount       uint64
	RequiredCredentialAsset model.AssetID
}

// PolicyFlags is the full switch set. Updates always carry all four so a
// toggle is one atomic replacement, not a read-modify-write per flag.
type PolicyFlags struct {
	WhitelistEnabled   bool
	TradingTimeEnabled bool
	MaxTransferEnabled bool
	NFTGated           bool
}

// PolicyService manages per-asset transfer policies and their whitelists.
// Creation charges the registry setup fee; every mutation is owner-gated.
type PolicyService struct {
	registry  repository.RegistryStore
	policies  repository.PolicyStore
	allowlist repository.AllowlistStore
	ledger    ledger.Ledger
	events    EventSink
}

func NewPolicyService(registry repository.RegistryStore, policies repository.PolicyStore, allowlist repository.AllowlistStore, l ledger.Ledger, events EventSink) *PolicyService {
	return &PolicyService{registry: registry, policies: policies, allowlist: allowlist, ledger: l, events: events}
}

func validateParams(p PolicyParams) error {
	if p.Window != nil && !p.Window.Valid() {
		return apperrors.Newf(apperrors.ErrInvalidRequest,
			"trading window [%d, %d) must satisfy open < close < %d",
			p.Window.OpenMinute, p.Window.CloseMinute, model.MinutesPerDay)
	}
	if p.MinTransferAmount > p.MaxTransferAmount {
		return apperrors.Newf(apperrors.ErrInvalidRequest,
			"min transfer amount %d exceeds max %d", p.MinTransferAmount, p.MaxTransferAmount)
	}
	return nil
}

// InitializePolicy creates the per-asset policy with every gate switched off
// and settles the setup fee to the treasury in the same step, so a caller who
// cannot pay leaves no record behind.
func (s *PolicyService) InitializePolicy(ctx context.Context, caller model.Identity, asset model.AssetID, p PolicyParams) (*model.Policy, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	cfg, err := s.registry.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "global config not initialized", nil)
		}
		return nil, apperrors.Wrap(err)
	}

	policy := &model.Policy{
		Owner:                   caller,
		Asset:                   asset,
		Window:                  p.Window,
		MaxTransferAmount:       p.MaxTransferAmount,
		MinTransferAmount:       p.MinTransferAmount,
		RequiredCredentialAsset: p.RequiredCredentialAsset,
	}

	err = s.ledger.Settle(ctx, func(tx ledger.Tx) error {
		if cfg.Fee > 0 {
			if err := tx.Transfer(ctx, model.PaymentAsset, caller, cfg.Treasury, cfg.Fee); err != nil {
				if errors.Is(err, ledger.ErrInsufficientFunds) {
					return apperrors.Newf(apperrors.ErrFeePaymentFailed,
						"caller cannot cover the %d payment-unit setup fee", cfg.Fee).
						WithRecord("asset", asset.String()).
						WithRecord("caller", caller.String())
				}
				return err
			}
		}
		if err := s.policies.Create(ctx, tx, policy); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return apperrors.New(apperrors.ErrAlreadyInitialized, "policy already exists for asset", nil).
					WithRecord("asset", asset.String())
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	if s.events != nil {
		s.events.Publish(EventPolicyInitialized, policy)
	}
	return policy, nil
}

// EditPolicy replaces the gate parameters wholesale. The switches are left
// untouched, so an edit cannot accidentally arm or disarm a gate.
func (s *PolicyService) EditPolicy(ctx context.Context, caller model.Identity, asset model.AssetID, p PolicyParams) (*model.Policy, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	var policy *model.Policy
	err := s.ledger.Settle(ctx, func(tx ledger.Tx) error {
		var err error
		policy, err = s.getOwned(ctx, tx, caller, asset)
		if err != nil {
			return err
		}
		policy.Window = p.Window
		policy.MaxTransferAmount = p.MaxTransferAmount
		policy.MinTransferAmount = p.MinTransferAmount
		policy.RequiredCredentialAsset = p.RequiredCredentialAsset
		return s.policies.Update(ctx, tx, policy)
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	if s.events != nil {
		s.events.Publish(EventPolicyUpdated, policy)
	}
	return policy, nil
}

// UpdateFlags replaces all four gate switches in one step.
func (s *PolicyService) UpdateFlags(ctx context.Context, caller model.Identity, asset model.AssetID, flags PolicyFlags) (*model.Policy, error) {
	var policy *model.Policy
	err := s.ledger.Settle(ctx, func(tx ledger.Tx) error {
		var err error
		policy, err = s.getOwned(ctx, tx, caller, asset)
		if err != nil {
			return err
		}
		policy.WhitelistEnabled = flags.WhitelistEnabled
		policy.TradingTimeEnabled = flags.TradingTimeEnabled
		policy.MaxTransferEnabled = flags.MaxTransferEnabled
		policy.NFTGated = flags.NFTGated
		return s.policies.Update(ctx, tx, policy)
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	if s.events != nil {
		s.events.Publish(EventPolicyUpdated, policy)
	}
	return policy, nil
}

// AddToWhitelist records the membership marker. Idempotent retries fail
// loudly so callers can tell a duplicate from a first add.
func (s *PolicyService) AddToWhitelist(ctx context.Context, caller model.Identity, asset model.AssetID, principal model.Identity) error {
	if _, err := s.getOwned(ctx, nil, caller, asset); err != nil {
		return apperrors.Wrap(err)
	}
	if err := s.allowlist.Add(ctx, asset, principal); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return apperrors.New(apperrors.ErrAlreadyWhitelisted, "principal is already whitelisted", nil).
				WithRecord("asset", asset.String()).
				WithRecord("principal", principal.String())
		}
		return apperrors.Wrap(err)
	}
	return nil
}

func (s *PolicyService) RemoveFromWhitelist(ctx context.Context, caller model.Identity, asset model.AssetID, principal model.Identity) error {
	if _, err := s.getOwned(ctx, nil, caller, asset); err != nil {
		return apperrors.Wrap(err)
	}
	if err := s.allowlist.Remove(ctx, asset, principal); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.New(apperrors.ErrNotWhitelisted, "principal is not whitelisted", nil).
				WithRecord("asset", asset.String()).
				WithRecord("principal", principal.String())
		}
		return apperrors.Wrap(err)
	}
	return nil
}

func (s *PolicyService) GetPolicy(ctx context.Context, asset model.AssetID) (*model.Policy, error) {
	policy, err := s.policies.Get(ctx, nil, asset)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "no policy for asset", nil).
				WithRecord("asset", asset.String())
		}
		return nil, apperrors.Wrap(err)
	}
	return policy, nil
}

func (s *PolicyService) IsWhitelisted(ctx context.Context, asset model.AssetID, principal model.Identity) (bool, error) {
	ok, err := s.allowlist.Contains(ctx, asset, principal)
	if err != nil {
		return false, apperrors.Wrap(err)
	}
	return ok, nil
}

// getOwned loads the policy and enforces the owner check every mutation
// shares.
func (s *PolicyService) getOwned(ctx context.Context, tx ledger.Tx, caller model.Identity, asset model.AssetID) (*model.Policy, error) {
	policy, err := s.policies.Get(ctx, tx, asset)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "no policy for asset", nil).
				WithRecord("asset", asset.String())
		}
		return nil, err
	}
	if policy.Owner != caller {
		return nil, apperrors.New(apperrors.ErrUnauthorized, "caller is not the policy owner", nil).
			WithRecord("asset", asset.String()).
			WithRecord("caller", caller.String())
	}
	return policy, nil
}

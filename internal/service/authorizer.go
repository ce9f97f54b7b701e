package service

import (
	"context"
	"errors"

	"github.com/GoLaunchpad/launchgate/internal/clock"
	"github.com/GoLaunchpad/launchgate/internal/ledger"
	"github.com/GoLaunchpad/launchgate/internal/model"
	"github.com/GoLaunchpad/launchgate/internal/pkg/apperrors"
	"github.com/GoLaunchpad/launchgate/internal/pkg/metrics"
	"github.com/GoLaunchpad/launchgate/internal/repository"
)

// TransferContext is the host-supplied call context for one transfer of a
// policy-controlled asset.
type TransferContext struct {
	Asset     model.AssetID
	Sender    model.Identity
	Recipient model.Identity
	Amount    uint64
}

// Authorizer evaluates the gate pipeline against the current policy. It is a
// pure check: it never moves balances and never touches policy state, so two
// evaluations against unchanged state give the same verdict.
type Authorizer struct {
	policies  repository.PolicyStore
	allowlist repository.AllowlistStore
	ledger    ledger.Ledger
	clock     clock.Clock
}

func NewAuthorizer(policies repository.PolicyStore, allowlist repository.AllowlistStore, l ledger.Ledger, c clock.Clock) *Authorizer {
	return &Authorizer{policies: policies, allowlist: allowlist, ledger: l, clock: c}
}

// Gate-reject reasons, also the metric label values.
const (
	RejectAmountOutOfRange  = "amount_out_of_range"
	RejectOutsideWindow     = "outside_trading_window"
	RejectNotWhitelisted    = "sender_not_whitelisted"
	RejectMissingCredential = "missing_required_credential"
)

// Authorize runs the enabled gates in fixed order: amount bounds, trading
// hours, whitelist, credential. The first failing gate decides; disabled
// gates are skipped entirely, so a gate misconfigured while switched off
// cannot block transfers.
func (a *Authorizer) Authorize(ctx context.Context, tc TransferContext) error {
	policy, err := a.policies.Get(ctx, nil, tc.Asset)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.New(apperrors.ErrNotFound, "no policy for asset", nil).
				WithRecord("asset", tc.Asset.String())
		}
		return apperrors.Wrap(err)
	}

	if policy.MaxTransferEnabled {
		if tc.Amount < policy.MinTransferAmount || tc.Amount > policy.MaxTransferAmount {
			metrics.GateRejects.WithLabelValues(RejectAmountOutOfRange).Inc()
			return apperrors.Newf(apperrors.ErrAmountOutOfRange,
				"amount %d outside bounds [%d, %d]", tc.Amount, policy.MinTransferAmount, policy.MaxTransferAmount).
				WithRecord("asset", tc.Asset.String())
		}
	}

	if policy.TradingTimeEnabled && policy.Window != nil {
		// Minute of the UTC day from the unix timestamp.
		minute := uint16(a.clock.Now() % 86400 / 60)
		if !policy.Window.Contains(minute) {
			metrics.GateRejects.WithLabelValues(RejectOutsideWindow).Inc()
			return apperrors.Newf(apperrors.ErrOutsideTradingWindow,
				"minute %d outside trading window [%d, %d)", minute, policy.Window.OpenMinute, policy.Window.CloseMinute).
				WithRecord("asset", tc.Asset.String())
		}
	}

	if policy.WhitelistEnabled {
		ok, err := a.allowlist.Contains(ctx, tc.Asset, tc.Sender)
		if err != nil {
			return apperrors.Wrap(err)
		}
		if !ok {
			metrics.GateRejects.WithLabelValues(RejectNotWhitelisted).Inc()
			return apperrors.New(apperrors.ErrSenderNotWhitelisted, "sender is not on the asset whitelist", nil).
				WithRecord("asset", tc.Asset.String()).
				WithRecord("sender", tc.Sender.String())
		}
	}

	if policy.NFTGated {
		var bal uint64
		err := a.ledger.View(ctx, func(tx ledger.Tx) error {
			var err error
			bal, err = tx.Balance(ctx, policy.RequiredCredentialAsset, tc.Sender)
			return err
		})
		if err != nil {
			return apperrors.Wrap(err)
		}
		if bal < 1 {
			metrics.GateRejects.WithLabelValues(RejectMissingCredential).Inc()
			return apperrors.New(apperrors.ErrMissingRequiredCredential, "sender holds no unit of the required credential asset", nil).
				WithRecord("asset", tc.Asset.String()).
				WithRecord("credential", policy.RequiredCredentialAsset.String())
		}
	}

	return nil
}

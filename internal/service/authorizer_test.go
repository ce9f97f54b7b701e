package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoLaunchpad/launchgate/internal/clock"
	"github.com/GoLaunchpad/launchgate/internal/ledger"
	"github.com/GoLaunchpad/launchgate/internal/model"
	"github.com/GoLaunchpad/launchgate/internal/pkg/apperrors"
	"github.com/GoLaunchpad/launchgate/internal/repository"
)

var (
	gatedAsset      = model.AssetID{0x40}
	credentialAsset = model.AssetID{0x41}
	sender          = model.Identity{0x51}
	recipient       = model.Identity{0x52}
)

type authEnv struct {
	authorizer *Authorizer
	policies   *repository.MemoryPolicyStore
	allowlist  *repository.MemoryAllowlist
	ledger     *ledger.Memory
}

// nineAM is 09:00 UTC as a Unix timestamp (minute-of-day 540).
const nineAM = int64(540 * 60)

func newAuthEnv(t *testing.T, now int64, policy model.Policy) *authEnv {
	t.Helper()
	env := &authEnv{
		policies:  repository.NewMemoryPolicyStore(),
		allowlist: repository.NewMemoryAllowlist(),
		ledger:    ledger.NewMemory(),
	}
	policy.Owner = model.Identity{0x01}
	policy.Asset = gatedAsset
	require.NoError(t, env.policies.Create(context.Background(), nil, &policy))
	env.authorizer = NewAuthorizer(env.policies, env.allowlist, env.ledger, clock.Fixed(now))
	return env
}

func transfer(amount uint64) TransferContext {
	return TransferContext{
		Asset:     gatedAsset,
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
	}
}

func TestAllGatesDisabledPermitsEverything(t *testing.T) {
	env := newAuthEnv(t, nineAM, model.Policy{
		// Parameters configured but every switch off: none may fire.
		Window:                  &model.TradingWindow{OpenMinute: 0, CloseMinute: 1},
		MaxTransferAmount:       1,
		MinTransferAmount:       1,
		RequiredCredentialAsset: credentialAsset,
	})

	assert.NoError(t, env.authorizer.Authorize(context.Background(), transfer(999_999)))
}

func TestAmountGate(t *testing.T) {
	// min 0.001 token, max 500 tokens at 9 decimals.
	env := newAuthEnv(t, nineAM, model.Policy{
		MaxTransferEnabled: true,
		MinTransferAmount:  1_000_000,
		MaxTransferAmount:  500_000_000_000,
	})

	assert.NoError(t, env.authorizer.Authorize(context.Background(), transfer(1_000_000)))
	assert.NoError(t, env.authorizer.Authorize(context.Background(), transfer(500_000_000_000)))

	err := env.authorizer.Authorize(context.Background(), transfer(999_999))
	assert.Equal(t, apperrors.ErrAmountOutOfRange, errType(t, err))
	err = env.authorizer.Authorize(context.Background(), transfer(500_000_000_001))
	assert.Equal(t, apperrors.ErrAmountOutOfRange, errType(t, err))
}

func TestTradingTimeGate(t *testing.T) {
	policy := model.Policy{
		TradingTimeEnabled: true,
		Window:             &model.TradingWindow{OpenMinute: 540, CloseMinute: 1020},
	}

	assert.NoError(t, newAuthEnv(t, nineAM, policy).authorizer.Authorize(context.Background(), transfer(1)))

	// One minute before open.
	err := newAuthEnv(t, nineAM-60, policy).authorizer.Authorize(context.Background(), transfer(1))
	assert.Equal(t, apperrors.ErrOutsideTradingWindow, errType(t, err))

	// Exactly at close (17:00): the window is half-open.
	err = newAuthEnv(t, int64(1020*60), policy).authorizer.Authorize(context.Background(), transfer(1))
	assert.Equal(t, apperrors.ErrOutsideTradingWindow, errType(t, err))

	// The minute-of-day comes from the timestamp regardless of which day.
	assert.NoError(t, newAuthEnv(t, 86400*100+nineAM, policy).authorizer.Authorize(context.Background(), transfer(1)))
}

func TestWhitelistGate(t *testing.T) {
	env := newAuthEnv(t, nineAM, model.Policy{WhitelistEnabled: true})

	err := env.authorizer.Authorize(context.Background(), transfer(1))
	assert.Equal(t, apperrors.ErrSenderNotWhitelisted, errType(t, err))

	require.NoError(t, env.allowlist.Add(context.Background(), gatedAsset, sender))
	assert.NoError(t, env.authorizer.Authorize(context.Background(), transfer(1)))

	// Membership is per sender, not per pair: the recipient never matters.
	require.NoError(t, env.allowlist.Remove(context.Background(), gatedAsset, sender))
	require.NoError(t, env.allowlist.Add(context.Background(), gatedAsset, recipient))
	err = env.authorizer.Authorize(context.Background(), transfer(1))
	assert.Equal(t, apperrors.ErrSenderNotWhitelisted, errType(t, err))
}

func TestCredentialGate(t *testing.T) {
	env := newAuthEnv(t, nineAM, model.Policy{
		NFTGated:                true,
		RequiredCredentialAsset: credentialAsset,
	})

	err := env.authorizer.Authorize(context.Background(), transfer(1))
	assert.Equal(t, apperrors.ErrMissingRequiredCredential, errType(t, err))

	require.NoError(t, env.ledger.Settle(context.Background(), func(tx ledger.Tx) error {
		return tx.Mint(context.Background(), credentialAsset, sender, 1)
	}))
	assert.NoError(t, env.authorizer.Authorize(context.Background(), transfer(1)))
}

func TestGateOrderIsDeterministic(t *testing.T) {
	// Amount and whitelist would both reject; the amount gate runs first, so
	// the reported reason never depends on evaluation luck.
	env := newAuthEnv(t, nineAM, model.Policy{
		MaxTransferEnabled: true,
		MinTransferAmount:  100,
		MaxTransferAmount:  200,
		WhitelistEnabled:   true,
	})

	err := env.authorizer.Authorize(context.Background(), transfer(1))
	assert.Equal(t, apperrors.ErrAmountOutOfRange, errType(t, err))

	// With the amount in range the whitelist gate becomes the first failure.
	err = env.authorizer.Authorize(context.Background(), transfer(150))
	assert.Equal(t, apperrors.ErrSenderNotWhitelisted, errType(t, err))
}

func TestAuthorizeIsPure(t *testing.T) {
	env := newAuthEnv(t, nineAM, model.Policy{WhitelistEnabled: true})

	for i := 0; i < 3; i++ {
		err := env.authorizer.Authorize(context.Background(), transfer(1))
		assert.Equal(t, apperrors.ErrSenderNotWhitelisted, errType(t, err))
	}

	// Rejections leave no trace in the ledger.
	bal, err := env.ledger.Balance(context.Background(), gatedAsset, sender)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bal)
}

func TestAuthorizeNoPolicy(t *testing.T) {
	env := newAuthEnv(t, nineAM, model.Policy{})
	tc := transfer(1)
	tc.Asset = model.AssetID{0xee}
	err := env.authorizer.Authorize(context.Background(), tc)
	assert.Equal(t, apperrors.ErrNotFound, errType(t, err))
}

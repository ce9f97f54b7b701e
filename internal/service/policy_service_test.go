package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoLaunchpad/launchgate/internal/ledger"
	"github.com/GoLaunchpad/launchgate/internal/model"
	"github.com/GoLaunchpad/launchgate/internal/pkg/apperrors"
	"github.com/GoLaunchpad/launchgate/internal/repository"
)

var (
	policyAsset = model.AssetID{0x60}
	issuer      = model.Identity{0x61}
	treasury    = model.Identity{0x62}
	member      = model.Identity{0x63}
)

type policyEnv struct {
	svc    *PolicyService
	ledger *ledger.Memory
}

func newPolicyEnv(t *testing.T, fee uint64) *policyEnv {
	t.Helper()
	registry := repository.NewMemoryRegistry()
	require.NoError(t, registry.Init(context.Background(), &model.GlobalConfig{
		Owner:    model.Identity{0x01},
		Fee:      fee,
		Treasury: treasury,
	}))
	l := ledger.NewMemory()
	return &policyEnv{
		svc:    NewPolicyService(registry, repository.NewMemoryPolicyStore(), repository.NewMemoryAllowlist(), l, nil),
		ledger: l,
	}
}

func (e *policyEnv) fund(t *testing.T, holder model.Identity, amount uint64) {
	t.Helper()
	require.NoError(t, e.ledger.Settle(context.Background(), func(tx ledger.Tx) error {
		return tx.Mint(context.Background(), model.PaymentAsset, holder, amount)
	}))
}

func TestInitializePolicyChargesFee(t *testing.T) {
	env := newPolicyEnv(t, 1000)
	env.fund(t, issuer, 1500)

	policy, err := env.svc.InitializePolicy(context.Background(), issuer, policyAsset, PolicyParams{})
	require.NoError(t, err)

	// Every gate starts off regardless of supplied parameters.
	assert.False(t, policy.WhitelistEnabled)
	assert.False(t, policy.TradingTimeEnabled)
	assert.False(t, policy.MaxTransferEnabled)
	assert.False(t, policy.NFTGated)

	tBal, _ := env.ledger.Balance(context.Background(), model.PaymentAsset, treasury)
	iBal, _ := env.ledger.Balance(context.Background(), model.PaymentAsset, issuer)
	assert.Equal(t, uint64(1000), tBal)
	assert.Equal(t, uint64(500), iBal)
}

func TestInitializePolicyFeeFailureLeavesNoRecord(t *testing.T) {
	env := newPolicyEnv(t, 1000)
	env.fund(t, issuer, 999)

	_, err := env.svc.InitializePolicy(context.Background(), issuer, policyAsset, PolicyParams{})
	assert.Equal(t, apperrors.ErrFeePaymentFailed, errType(t, err))

	_, err = env.svc.GetPolicy(context.Background(), policyAsset)
	assert.Equal(t, apperrors.ErrNotFound, errType(t, err))

	// Funded retry succeeds.
	env.fund(t, issuer, 1)
	_, err = env.svc.InitializePolicy(context.Background(), issuer, policyAsset, PolicyParams{})
	assert.NoError(t, err)
}

func TestInitializePolicyZeroFeeSkipsTransfer(t *testing.T) {
	env := newPolicyEnv(t, 0)

	// No payment balance at all and it still works.
	_, err := env.svc.InitializePolicy(context.Background(), issuer, policyAsset, PolicyParams{})
	assert.NoError(t, err)
}

func TestInitializePolicyTwice(t *testing.T) {
	env := newPolicyEnv(t, 0)
	_, err := env.svc.InitializePolicy(context.Background(), issuer, policyAsset, PolicyParams{})
	require.NoError(t, err)
	_, err = env.svc.InitializePolicy(context.Background(), issuer, policyAsset, PolicyParams{})
	assert.Equal(t, apperrors.ErrAlreadyInitialized, errType(t, err))
}

func TestEditPolicyReplacesParametersNotFlags(t *testing.T) {
	env := newPolicyEnv(t, 0)
	_, err := env.svc.InitializePolicy(context.Background(), issuer, policyAsset, PolicyParams{
		Window:            &model.TradingWindow{OpenMinute: 540, CloseMinute: 1020},
		MaxTransferAmount: 100,
	})
	require.NoError(t, err)

	_, err = env.svc.UpdateFlags(context.Background(), issuer, policyAsset, PolicyFlags{TradingTimeEnabled: true})
	require.NoError(t, err)

	policy, err := env.svc.EditPolicy(context.Background(), issuer, policyAsset, PolicyParams{
		MaxTransferAmount: 200,
		MinTransferAmount: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(200), policy.MaxTransferAmount)
	assert.Equal(t, uint64(10), policy.MinTransferAmount)
	assert.Nil(t, policy.Window)
	// The edit replaced parameters; the armed flag survives.
	assert.True(t, policy.TradingTimeEnabled)
}

func TestEditPolicyValidation(t *testing.T) {
	env := newPolicyEnv(t, 0)
	_, err := env.svc.InitializePolicy(context.Background(), issuer, policyAsset, PolicyParams{})
	require.NoError(t, err)

	_, err = env.svc.EditPolicy(context.Background(), issuer, policyAsset, PolicyParams{
		Window: &model.TradingWindow{OpenMinute: 1020, CloseMinute: 540},
	})
	assert.Equal(t, apperrors.ErrInvalidRequest, errType(t, err))

	_, err = env.svc.EditPolicy(context.Background(), issuer, policyAsset, PolicyParams{
		MinTransferAmount: 10,
		MaxTransferAmount: 5,
	})
	assert.Equal(t, apperrors.ErrInvalidRequest, errType(t, err))
}

func TestPolicyMutationsAreOwnerGated(t *testing.T) {
	env := newPolicyEnv(t, 0)
	_, err := env.svc.InitializePolicy(context.Background(), issuer, policyAsset, PolicyParams{})
	require.NoError(t, err)

	stranger := model.Identity{0x99}

	_, err = env.svc.EditPolicy(context.Background(), stranger, policyAsset, PolicyParams{})
	assert.Equal(t, apperrors.ErrUnauthorized, errType(t, err))
	_, err = env.svc.UpdateFlags(context.Background(), stranger, policyAsset, PolicyFlags{})
	assert.Equal(t, apperrors.ErrUnauthorized, errType(t, err))
	err = env.svc.AddToWhitelist(context.Background(), stranger, policyAsset, member)
	assert.Equal(t, apperrors.ErrUnauthorized, errType(t, err))
	err = env.svc.RemoveFromWhitelist(context.Background(), stranger, policyAsset, member)
	assert.Equal(t, apperrors.ErrUnauthorized, errType(t, err))
}

func TestUpdateFlagsReplacesAllFour(t *testing.T) {
	env := newPolicyEnv(t, 0)
	_, err := env.svc.InitializePolicy(context.Background(), issuer, policyAsset, PolicyParams{})
	require.NoError(t, err)

	policy, err := env.svc.UpdateFlags(context.Background(), issuer, policyAsset, PolicyFlags{
		WhitelistEnabled: true,
		NFTGated:         true,
	})
	require.NoError(t, err)
	assert.True(t, policy.WhitelistEnabled)
	assert.True(t, policy.NFTGated)
	assert.False(t, policy.TradingTimeEnabled)

	// The next update carries all four again; omitted means off.
	policy, err = env.svc.UpdateFlags(context.Background(), issuer, policyAsset, PolicyFlags{
		MaxTransferEnabled: true,
	})
	require.NoError(t, err)
	assert.True(t, policy.MaxTransferEnabled)
	assert.False(t, policy.WhitelistEnabled)
	assert.False(t, policy.NFTGated)
}

func TestWhitelistMembership(t *testing.T) {
	env := newPolicyEnv(t, 0)
	_, err := env.svc.InitializePolicy(context.Background(), issuer, policyAsset, PolicyParams{})
	require.NoError(t, err)

	ok, err := env.svc.IsWhitelisted(context.Background(), policyAsset, member)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, env.svc.AddToWhitelist(context.Background(), issuer, policyAsset, member))
	ok, _ = env.svc.IsWhitelisted(context.Background(), policyAsset, member)
	assert.True(t, ok)

	err = env.svc.AddToWhitelist(context.Background(), issuer, policyAsset, member)
	assert.Equal(t, apperrors.ErrAlreadyWhitelisted, errType(t, err))

	require.NoError(t, env.svc.RemoveFromWhitelist(context.Background(), issuer, policyAsset, member))
	ok, _ = env.svc.IsWhitelisted(context.Background(), policyAsset, member)
	assert.False(t, ok)

	err = env.svc.RemoveFromWhitelist(context.Background(), issuer, policyAsset, member)
	assert.Equal(t, apperrors.ErrNotWhitelisted, errType(t, err))
}

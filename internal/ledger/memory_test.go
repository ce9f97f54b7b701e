package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoLaunchpad/launchgate/internal/model"
)

var (
	testAsset = model.AssetID{0x01}
	alice     = model.Identity{0xa1}
	bob       = model.Identity{0xb0}
)

func fund(t *testing.T, l *Memory, asset model.AssetID, holder model.Identity, amount uint64) {
	t.Helper()
	err := l.Settle(context.Background(), func(tx Tx) error {
		return tx.Mint(context.Background(), asset, holder, amount)
	})
	require.NoError(t, err)
}

func TestTransferMovesBalance(t *testing.T) {
	l := NewMemory()
	fund(t, l, testAsset, alice, 100)

	err := l.Settle(context.Background(), func(tx Tx) error {
		return tx.Transfer(context.Background(), testAsset, alice, bob, 30)
	})
	require.NoError(t, err)

	aBal, _ := l.Balance(context.Background(), testAsset, alice)
	bBal, _ := l.Balance(context.Background(), testAsset, bob)
	assert.Equal(t, uint64(70), aBal)
	assert.Equal(t, uint64(30), bBal)
}

func TestTransferInsufficientFunds(t *testing.T) {
	l := NewMemory()
	fund(t, l, testAsset, alice, 10)

	err := l.Settle(context.Background(), func(tx Tx) error {
		return tx.Transfer(context.Background(), testAsset, alice, bob, 11)
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	aBal, _ := l.Balance(context.Background(), testAsset, alice)
	assert.Equal(t, uint64(10), aBal)
}

func TestSettleDiscardsOnError(t *testing.T) {
	l := NewMemory()
	fund(t, l, testAsset, alice, 100)

	boom := errors.New("boom")
	err := l.Settle(context.Background(), func(tx Tx) error {
		if err := tx.Transfer(context.Background(), testAsset, alice, bob, 50); err != nil {
			return err
		}
		// The first transfer succeeded inside the step; the step error must
		// discard it anyway.
		return boom
	})
	assert.ErrorIs(t, err, boom)

	aBal, _ := l.Balance(context.Background(), testAsset, alice)
	bBal, _ := l.Balance(context.Background(), testAsset, bob)
	assert.Equal(t, uint64(100), aBal)
	assert.Equal(t, uint64(0), bBal)
}

func TestSelfTransferIsNoop(t *testing.T) {
	l := NewMemory()
	fund(t, l, testAsset, alice, 100)

	err := l.Settle(context.Background(), func(tx Tx) error {
		return tx.Transfer(context.Background(), testAsset, alice, alice, 40)
	})
	require.NoError(t, err)

	aBal, _ := l.Balance(context.Background(), testAsset, alice)
	assert.Equal(t, uint64(100), aBal)
}

func TestViewRejectsMutation(t *testing.T) {
	l := NewMemory()
	fund(t, l, testAsset, alice, 100)

	err := l.View(context.Background(), func(tx Tx) error {
		return tx.Transfer(context.Background(), testAsset, alice, bob, 1)
	})
	assert.ErrorIs(t, err, ErrReadOnlyStep)

	err = l.View(context.Background(), func(tx Tx) error {
		bal, err := tx.Balance(context.Background(), testAsset, alice)
		assert.Equal(t, uint64(100), bal)
		return err
	})
	assert.NoError(t, err)
}

func TestStagedReadsSeeEarlierWrites(t *testing.T) {
	l := NewMemory()
	fund(t, l, testAsset, alice, 100)

	err := l.Settle(context.Background(), func(tx Tx) error {
		if err := tx.Transfer(context.Background(), testAsset, alice, bob, 60); err != nil {
			return err
		}
		bal, err := tx.Balance(context.Background(), testAsset, alice)
		if err != nil {
			return err
		}
		assert.Equal(t, uint64(40), bal)
		// Second debit past the staged balance must fail.
		return tx.Transfer(context.Background(), testAsset, alice, bob, 50)
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

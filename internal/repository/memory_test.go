package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoLaunchpad/launchgate/internal/model"
)

func TestMemorySaleStoreRoundTrip(t *testing.T) {
	store := NewMemorySaleStore()
	asset := model.AssetID{0x01}
	sale := &model.Sale{Asset: asset, SoftCap: 1, HardCap: 2, TotalOffered: 3}

	_, err := store.Get(context.Background(), nil, asset)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Create(context.Background(), nil, sale))
	assert.ErrorIs(t, store.Create(context.Background(), nil, sale), ErrAlreadyExists)

	require.NoError(t, store.SetTotalSold(context.Background(), nil, asset, 2))
	got, err := store.Get(context.Background(), nil, asset)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.TotalSold)

	// The store hands out copies, not aliases into its own state.
	got.TotalSold = 999
	again, _ := store.Get(context.Background(), nil, asset)
	assert.Equal(t, uint64(2), again.TotalSold)
}

func TestMemoryPolicyStoreClonesWindow(t *testing.T) {
	store := NewMemoryPolicyStore()
	asset := model.AssetID{0x02}
	policy := &model.Policy{
		Asset:  asset,
		Window: &model.TradingWindow{OpenMinute: 540, CloseMinute: 1020},
	}
	require.NoError(t, store.Create(context.Background(), nil, policy))

	got, err := store.Get(context.Background(), nil, asset)
	require.NoError(t, err)
	got.Window.OpenMinute = 0

	again, _ := store.Get(context.Background(), nil, asset)
	assert.Equal(t, uint16(540), again.Window.OpenMinute)
}

func TestMemoryAllowlist(t *testing.T) {
	store := NewMemoryAllowlist()
	asset := model.AssetID{0x03}
	p := model.Identity{0x04}

	ok, err := store.Contains(context.Background(), asset, p)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Add(context.Background(), asset, p))
	assert.ErrorIs(t, store.Add(context.Background(), asset, p), ErrAlreadyExists)

	ok, _ = store.Contains(context.Background(), asset, p)
	assert.True(t, ok)

	// Membership is scoped to the asset.
	ok, _ = store.Contains(context.Background(), model.AssetID{0x05}, p)
	assert.False(t, ok)

	require.NoError(t, store.Remove(context.Background(), asset, p))
	assert.ErrorIs(t, store.Remove(context.Background(), asset, p), ErrNotFound)
}

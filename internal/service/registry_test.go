package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoLaunchpad/launchgate/internal/model"
	"github.com/GoLaunchpad/launchgate/internal/pkg/apperrors"
	"github.com/GoLaunchpad/launchgate/internal/repository"
)

func TestRegistryInitializeOnce(t *testing.T) {
	svc := NewRegistryService(repository.NewMemoryRegistry())
	owner := model.Identity{0x11}

	cfg, err := svc.Initialize(context.Background(), owner, 1000, nil)
	require.NoError(t, err)
	assert.Equal(t, owner, cfg.Owner)
	assert.Equal(t, uint64(1000), cfg.Fee)
	// Treasury defaults to the owner when omitted.
	assert.Equal(t, owner, cfg.Treasury)

	_, err = svc.Initialize(context.Background(), model.Identity{0x22}, 5, nil)
	assert.Equal(t, apperrors.ErrAlreadyInitialized, errType(t, err))

	// The first init won; the second must not have touched anything.
	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, owner, got.Owner)
	assert.Equal(t, uint64(1000), got.Fee)
}

func TestRegistryExplicitTreasury(t *testing.T) {
	svc := NewRegistryService(repository.NewMemoryRegistry())
	owner := model.Identity{0x11}
	treasury := model.Identity{0x33}

	cfg, err := svc.Initialize(context.Background(), owner, 0, &treasury)
	require.NoError(t, err)
	assert.Equal(t, owner, cfg.Owner)
	assert.Equal(t, treasury, cfg.Treasury)
}

func TestRegistryGetBeforeInit(t *testing.T) {
	svc := NewRegistryService(repository.NewMemoryRegistry())
	_, err := svc.Get(context.Background())
	assert.Equal(t, apperrors.ErrNotFound, errType(t, err))
}

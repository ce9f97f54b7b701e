package service

import (
	"context"
	"errors"

	"github.com/GoLaunchpad/launchgate/internal/model"
	"github.com/GoLaunchpad/launchgate/internal/pkg/apperrors"
	"github.com/GoLaunchpad/launchgate/internal/repository"
)

// RegistryService owns the global config lifecycle: one-shot initialization,
// reads for fee routing and ownership checks.
type RegistryService struct {
	store repository.RegistryStore
}

func NewRegistryService(store repository.RegistryStore) *RegistryService {
	return &RegistryService{store: store}
}

// Initialize creates the singleton. The first caller becomes the owner; the
// treasury (setup-fee recipient) defaults to the owner.
func (s *RegistryService) Initialize(ctx context.Context, caller model.Identity, fee uint64, treasury *model.Identity) (*model.GlobalConfig, error) {
	cfg := &model.GlobalConfig{
		Owner:    caller,
		Fee:      fee,
		Treasury: caller,
	}
	if treasury != nil {
		cfg.Treasury = *treasury
	}

	if err := s.store.Init(ctx, cfg); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperrors.New(apperrors.ErrAlreadyInitialized, "global config already initialized", nil)
		}
		return nil, apperrors.Wrap(err)
	}
	return cfg, nil
}

func (s *RegistryService) Get(ctx context.Context) (*model.GlobalConfig, error) {
	cfg, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "global config not initialized", nil)
		}
		return nil, apperrors.Wrap(err)
	}
	return cfg, nil
}

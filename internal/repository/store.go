package repository

import (
	"context"
	"errors"

	"github.com/GoLaunchpad/launchgate/internal/ledger"
	"github.com/GoLaunchpad/launchgate/internal/model"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// RegistryStore holds the singleton global config.
type RegistryStore interface {
	// Init creates the config record; ErrAlreadyExists on re-invocation.
	Init(ctx context.Context, cfg *model.GlobalConfig) error
	Get(ctx context.Context) (*model.GlobalConfig, error)
}

// SaleStore holds per-asset sale records. Creation and counter updates accept
// the settlement step they belong to: database-backed stores persist within
// the same transaction, memory stores rely on the step's single-writer lock.
type SaleStore interface {
	Create(ctx context.Context, tx ledger.Tx, sale *model.Sale) error
	// Get inside a settlement step locks the record for that step's writer;
	// tx may be nil for plain queries.
	Get(ctx context.Context, tx ledger.Tx, asset model.AssetID) (*model.Sale, error)
	SetTotalSold(ctx context.Context, tx ledger.Tx, asset model.AssetID, total uint64) error
}

// PolicyStore holds per-asset transfer-policy records.
type PolicyStore interface {
	Create(ctx context.Context, tx ledger.Tx, policy *model.Policy) error
	// Get inside a settlement step locks the record for that step's writer;
	// tx may be nil for plain queries.
	Get(ctx context.Context, tx ledger.Tx, asset model.AssetID) (*model.Policy, error)
	// Update replaces the full record; callers stage the edited copy first so
	// the write is atomic.
	Update(ctx context.Context, tx ledger.Tx, policy *model.Policy) error
}

// AllowlistStore is the (asset, principal) membership registry.
// Presence is membership; there is no payload.
type AllowlistStore interface {
	// Add fails ErrAlreadyExists on duplicates so a caller bug is never
	// masked by a silent no-op.
	Add(ctx context.Context, asset model.AssetID, principal model.Identity) error
	Remove(ctx context.Context, asset model.AssetID, principal model.Identity) error
	Contains(ctx context.Context, asset model.AssetID, principal model.Identity) (bool, error)
}

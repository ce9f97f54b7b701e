// Package ledger is the asset-balance collaborator the engines settle against.
//
// Balance bookkeeping itself is out of the core's scope; the engines only need
// the interface: atomic debit/credit with insufficient-funds failure, and
// settlement steps that commit all-or-nothing with one writer at a time per
// record. The Postgres implementation leans on row locks for the per-record
// serialization; the in-memory one on a single mutex.
package ledger

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GoLaunchpad/launchgate/internal/model"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceOverflow   = errors.New("balance overflow")
	ErrReadOnlyStep      = errors.New("mutation inside read-only step")
)

// Tx is the view of the ledger inside a single settlement step.
type Tx interface {
	Balance(ctx context.Context, asset model.AssetID, holder model.Identity) (uint64, error)
	// Transfer atomically debits from and credits to. Fails with
	// ErrInsufficientFunds without touching either record.
	Transfer(ctx context.Context, asset model.AssetID, from, to model.Identity, amount uint64) error
	// Mint credits new units out of thin air. Account creation and funding
	// are collaborator concerns; the engines never call this.
	Mint(ctx context.Context, asset model.AssetID, holder model.Identity, amount uint64) error
}

// Execer is implemented by database-backed settlement steps so record stores
// can persist record mutations inside the same step.
type Execer interface {
	Ext() sqlx.ExtContext
}

// Ledger runs settlement steps. Steps are indivisible: if fn returns an
// error, nothing it did survives.
type Ledger interface {
	// Settle runs fn as one settlement step and commits iff fn returns nil.
	Settle(ctx context.Context, fn func(tx Tx) error) error
	// View runs fn against a snapshot; any mutation fails ErrReadOnlyStep.
	View(ctx context.Context, fn func(tx Tx) error) error
	Balance(ctx context.Context, asset model.AssetID, holder model.Identity) (uint64, error)
}

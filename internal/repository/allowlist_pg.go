package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GoLaunchpad/launchgate/internal/keys"
	"github.com/GoLaunchpad/launchgate/internal/model"
)

// PostgresAllowlist stores membership markers as bare rows keyed by derived
// address. Existence is membership; there is no payload to update, ever.
type PostgresAllowlist struct {
	db *sqlx.DB
}

func NewPostgresAllowlist(db *sqlx.DB) *PostgresAllowlist {
	repo := &PostgresAllowlist{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

func (r *PostgresAllowlist) Add(ctx context.Context, asset model.AssetID, principal model.Identity) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO allowlist_entries (address, asset, principal)
		VALUES ($1, $2, $3)
		ON CONFLICT (address) DO NOTHING
	`, keys.AllowListEntry(asset, principal).String(), asset.String(), principal.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (r *PostgresAllowlist) Remove(ctx context.Context, asset model.AssetID, principal model.Identity) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM allowlist_entries WHERE address = $1`,
		keys.AllowListEntry(asset, principal).String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresAllowlist) Contains(ctx context.Context, asset model.AssetID, principal model.Identity) (bool, error) {
	var exists bool
	err := r.db.QueryRowxContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM allowlist_entries WHERE address = $1)`,
		keys.AllowListEntry(asset, principal).String()).Scan(&exists)
	return exists, err
}

func (r *PostgresAllowlist) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS allowlist_entries (
			address TEXT PRIMARY KEY,
			asset TEXT NOT NULL,
			principal TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, _ = r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_allowlist_asset ON allowlist_entries(asset)`)
	return nil
}

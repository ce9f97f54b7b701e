package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GoLaunchpad/launchgate/internal/keys"
	"github.com/GoLaunchpad/launchgate/internal/model"
)

type PostgresRegistry struct {
	db *sqlx.DB
}

func NewPostgresRegistry(db *sqlx.DB) *PostgresRegistry {
	repo := &PostgresRegistry{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

// The singleton lives at its derived address; the primary key makes the
// at-most-once invariant a database fact rather than an application promise.
func (r *PostgresRegistry) Init(ctx context.Context, cfg *model.GlobalConfig) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO global_config (address, owner, fee, treasury)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO NOTHING
	`, keys.Config().String(), cfg.Owner.String(), u64str(cfg.Fee), cfg.Treasury.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (r *PostgresRegistry) Get(ctx context.Context) (*model.GlobalConfig, error) {
	var row struct {
		Owner    string `db:"owner"`
		Fee      string `db:"fee"`
		Treasury string `db:"treasury"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT owner, fee::text AS fee, treasury FROM global_config WHERE address = $1`,
		keys.Config().String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cfg := &model.GlobalConfig{}
	if cfg.Owner, err = model.ParseIdentity(row.Owner); err != nil {
		return nil, err
	}
	if cfg.Treasury, err = model.ParseIdentity(row.Treasury); err != nil {
		return nil, err
	}
	if cfg.Fee, err = parseU64(row.Fee); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *PostgresRegistry) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS global_config (
			address TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			fee NUMERIC(20,0) NOT NULL,
			treasury TEXT NOT NULL
		)
	`)
	return err
}

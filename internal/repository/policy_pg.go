package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GoLaunchpad/launchgate/internal/keys"
	"github.com/GoLaunchpad/launchgate/internal/ledger"
	"github.com/GoLaunchpad/launchgate/internal/model"
)

type PostgresPolicyStore struct {
	db *sqlx.DB
}

func NewPostgresPolicyStore(db *sqlx.DB) *PostgresPolicyStore {
	repo := &PostgresPolicyStore{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

type policyDB struct {
	Address            string        `db:"address"`
	Owner              string        `db:"owner"`
	Asset              string        `db:"asset"`
	WhitelistEnabled   bool          `db:"whitelist_enabled"`
	TradingTimeEnabled bool          `db:"trading_time_enabled"`
	MaxTransferEnabled bool          `db:"max_transfer_enabled"`
	NFTGated           bool          `db:"nft_gated"`
	OpenMinute         sql.NullInt16 `db:"open_minute"`
	CloseMinute        sql.NullInt16 `db:"close_minute"`
	MaxTransferAmount  string        `db:"max_transfer_amount"`
	MinTransferAmount  string        `db:"min_transfer_amount"`
	CredentialAsset    string        `db:"required_credential_asset"`
}

func (r *PostgresPolicyStore) Create(ctx context.Context, tx ledger.Tx, policy *model.Policy) error {
	row := toPolicyDB(policy)
	res, err := execer(tx, r.db).ExecContext(ctx, `
		INSERT INTO policies (address, owner, asset,
			whitelist_enabled, trading_time_enabled, max_transfer_enabled, nft_gated,
			open_minute, close_minute, max_transfer_amount, min_transfer_amount, required_credential_asset)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (address) DO NOTHING
	`, row.Address, row.Owner, row.Asset,
		row.WhitelistEnabled, row.TradingTimeEnabled, row.MaxTransferEnabled, row.NFTGated,
		row.OpenMinute, row.CloseMinute, row.MaxTransferAmount, row.MinTransferAmount, row.CredentialAsset)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (r *PostgresPolicyStore) Get(ctx context.Context, tx ledger.Tx, asset model.AssetID) (*model.Policy, error) {
	query := `
		SELECT address, owner, asset,
		       whitelist_enabled, trading_time_enabled, max_transfer_enabled, nft_gated,
		       open_minute, close_minute,
		       max_transfer_amount::text AS max_transfer_amount,
		       min_transfer_amount::text AS min_transfer_amount,
		       required_credential_asset
		FROM policies WHERE address = $1
	`
	ext := execer(tx, r.db)
	if _, ok := tx.(ledger.Execer); ok {
		query += ` FOR UPDATE`
	}
	var row policyDB
	err := sqlx.GetContext(ctx, ext, &row, query, keys.Policy(asset).String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// Update rewrites the whole record in one statement so editPolicy and
// updateFlags stay atomic at the row level.
func (r *PostgresPolicyStore) Update(ctx context.Context, tx ledger.Tx, policy *model.Policy) error {
	row := toPolicyDB(policy)
	res, err := execer(tx, r.db).ExecContext(ctx, `
		UPDATE policies SET
			owner = $2,
			whitelist_enabled = $3, trading_time_enabled = $4,
			max_transfer_enabled = $5, nft_gated = $6,
			open_minute = $7, close_minute = $8,
			max_transfer_amount = $9, min_transfer_amount = $10,
			required_credential_asset = $11
		WHERE address = $1
	`, row.Address, row.Owner,
		row.WhitelistEnabled, row.TradingTimeEnabled, row.MaxTransferEnabled, row.NFTGated,
		row.OpenMinute, row.CloseMinute, row.MaxTransferAmount, row.MinTransferAmount, row.CredentialAsset)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func toPolicyDB(p *model.Policy) *policyDB {
	row := &policyDB{
		Address:            keys.Policy(p.Asset).String(),
		Owner:              p.Owner.String(),
		Asset:              p.Asset.String(),
		WhitelistEnabled:   p.WhitelistEnabled,
		TradingTimeEnabled: p.TradingTimeEnabled,
		MaxTransferEnabled: p.MaxTransferEnabled,
		NFTGated:           p.NFTGated,
		MaxTransferAmount:  u64str(p.MaxTransferAmount),
		MinTransferAmount:  u64str(p.MinTransferAmount),
		CredentialAsset:    p.RequiredCredentialAsset.String(),
	}
	if p.Window != nil {
		row.OpenMinute = sql.NullInt16{Int16: int16(p.Window.OpenMinute), Valid: true}
		row.CloseMinute = sql.NullInt16{Int16: int16(p.Window.CloseMinute), Valid: true}
	}
	return row
}

func (row *policyDB) toDomain() (*model.Policy, error) {
	policy := &model.Policy{
		WhitelistEnabled:   row.WhitelistEnabled,
		TradingTimeEnabled: row.TradingTimeEnabled,
		MaxTransferEnabled: row.MaxTransferEnabled,
		NFTGated:           row.NFTGated,
	}
	var err error
	if policy.Owner, err = model.ParseIdentity(row.Owner); err != nil {
		return nil, err
	}
	if policy.Asset, err = model.ParseIdentity(row.Asset); err != nil {
		return nil, err
	}
	if policy.RequiredCredentialAsset, err = model.ParseIdentity(row.CredentialAsset); err != nil {
		return nil, err
	}
	if policy.MaxTransferAmount, err = parseU64(row.MaxTransferAmount); err != nil {
		return nil, err
	}
	if policy.MinTransferAmount, err = parseU64(row.MinTransferAmount); err != nil {
		return nil, err
	}
	if row.OpenMinute.Valid && row.CloseMinute.Valid {
		policy.Window = &model.TradingWindow{
			OpenMinute:  uint16(row.OpenMinute.Int16),
			CloseMinute: uint16(row.CloseMinute.Int16),
		}
	}
	return policy, nil
}

func (r *PostgresPolicyStore) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS policies (
			address TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			asset TEXT NOT NULL UNIQUE,
			whitelist_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			trading_time_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			max_transfer_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			nft_gated BOOLEAN NOT NULL DEFAULT FALSE,
			open_minute SMALLINT,
			close_minute SMALLINT,
			max_transfer_amount NUMERIC(20,0) NOT NULL DEFAULT 0,
			min_transfer_amount NUMERIC(20,0) NOT NULL DEFAULT 0,
			required_credential_asset TEXT NOT NULL,
			CHECK ((open_minute IS NULL) = (close_minute IS NULL)),
			CHECK (open_minute IS NULL OR (open_minute >= 0 AND close_minute < 1440 AND open_minute < close_minute))
		)
	`)
	return err
}

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

type PostgresSaleStore struct {
	db *sqlx.DB
}

func NewPostgresSaleStore(db *sqlx.DB) *PostgresSaleStore {
	repo := &PostgresSaleStore{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

type saleDB struct {
	Address          string `db:"address"`
	Creator          string `db:"creator"`
	Asset            string `db:"asset"`
	SoftCap          string `db:"soft_cap"`
	HardCap          string `db:"hard_cap"`
	StartTime        int64  `db:"start_time"`
	EndTime          int64  `db:"end_time"`
	TotalOffered     string `db:"total_offered"`
	PricePerBaseUnit string `db:"price_per_base_unit"`
	TotalSold        string `db:"total_sold"`
}

func (r *PostgresSaleStore) Create(ctx context.Context, tx ledger.Tx, sale *model.Sale) error {
	res, err := execer(tx, r.db).ExecContext(ctx, `
		INSERT INTO sales (address, creator, asset, soft_cap, hard_cap, start_time, end_time, total_offered, price_per_base_unit, total_sold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (address) DO NOTHING
	`, keys.Sale(sale.Asset).String(), sale.Creator.String(), sale.Asset.String(),
		u64str(sale.SoftCap), u64str(sale.HardCap), sale.StartTime, sale.EndTime,
		u64str(sale.TotalOffered), u64str(sale.PricePerBaseUnit), u64str(sale.TotalSold))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (r *PostgresSaleStore) Get(ctx context.Context, tx ledger.Tx, asset model.AssetID) (*model.Sale, error) {
	query := `
		SELECT address, creator, asset,
		       soft_cap::text AS soft_cap, hard_cap::text AS hard_cap,
		       start_time, end_time,
		       total_offered::text AS total_offered,
		       price_per_base_unit::text AS price_per_base_unit,
		       total_sold::text AS total_sold
		FROM sales WHERE address = $1
	`
	ext := execer(tx, r.db)
	if _, ok := tx.(ledger.Execer); ok {
		// Reading inside a settlement step takes the row lock, so two
		// purchases against one sale serialize instead of double-counting.
		query += ` FOR UPDATE`
	}
	var row saleDB
	err := sqlx.GetContext(ctx, ext, &row, query, keys.Sale(asset).String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (r *PostgresSaleStore) SetTotalSold(ctx context.Context, tx ledger.Tx, asset model.AssetID, total uint64) error {
	res, err := execer(tx, r.db).ExecContext(ctx,
		`UPDATE sales SET total_sold = $2 WHERE address = $1`,
		keys.Sale(asset).String(), u64str(total))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (row *saleDB) toDomain() (*model.Sale, error) {
	sale := &model.Sale{
		StartTime: row.StartTime,
		EndTime:   row.EndTime,
	}
	var err error
	if sale.Creator, err = model.ParseIdentity(row.Creator); err != nil {
		return nil, err
	}
	if sale.Asset, err = model.ParseIdentity(row.Asset); err != nil {
		return nil, err
	}
	if sale.SoftCap, err = parseU64(row.SoftCap); err != nil {
		return nil, err
	}
	if sale.HardCap, err = parseU64(row.HardCap); err != nil {
		return nil, err
	}
	if sale.TotalOffered, err = parseU64(row.TotalOffered); err != nil {
		return nil, err
	}
	if sale.PricePerBaseUnit, err = parseU64(row.PricePerBaseUnit); err != nil {
		return nil, err
	}
	if sale.TotalSold, err = parseU64(row.TotalSold); err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *PostgresSaleStore) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sales (
			address TEXT PRIMARY KEY,
			creator TEXT NOT NULL,
			asset TEXT NOT NULL UNIQUE,
			soft_cap NUMERIC(20,0) NOT NULL,
			hard_cap NUMERIC(20,0) NOT NULL,
			start_time BIGINT NOT NULL,
			end_time BIGINT NOT NULL,
			total_offered NUMERIC(20,0) NOT NULL,
			price_per_base_unit NUMERIC(20,0) NOT NULL,
			total_sold NUMERIC(20,0) NOT NULL DEFAULT 0,
			CHECK (soft_cap > 0),
			CHECK (soft_cap <= hard_cap),
			CHECK (hard_cap <= total_offered),
			CHECK (start_time < end_time),
			CHECK (total_sold <= hard_cap)
		)
	`)
	return err
}

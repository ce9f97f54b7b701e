package ledger

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/GoLaunchpad/launchgate/internal/model"
)

// Postgres keeps balance records in a balances table. Amounts are NUMERIC(20,0)
// because BIGINT cannot hold the full unsigned 64-bit range. Per-record writer
// serialization comes from SELECT ... FOR UPDATE row locks.
type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	l := &Postgres{db: db}
	_ = l.ensureSchema(context.Background())
	return l
}

func (l *Postgres) ensureSchema(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS balances (
			asset TEXT NOT NULL,
			holder TEXT NOT NULL,
			amount NUMERIC(20,0) NOT NULL DEFAULT 0 CHECK (amount >= 0),
			PRIMARY KEY (asset, holder)
		)
	`)
	return err
}

func (l *Postgres) Settle(ctx context.Context, fn func(tx Tx) error) error {
	dbtx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	step := &pgTx{tx: dbtx}
	if err := fn(step); err != nil {
		_ = dbtx.Rollback()
		return err
	}
	return dbtx.Commit()
}

func (l *Postgres) View(ctx context.Context, fn func(tx Tx) error) error {
	dbtx, err := l.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return err
	}
	defer func() { _ = dbtx.Rollback() }()
	return fn(&pgTx{tx: dbtx, readOnly: true})
}

func (l *Postgres) Balance(ctx context.Context, asset model.AssetID, holder model.Identity) (uint64, error) {
	var raw string
	err := l.db.QueryRowxContext(ctx,
		`SELECT amount::text FROM balances WHERE asset = $1 AND holder = $2`,
		asset.String(), holder.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(raw, 10, 64)
}

type pgTx struct {
	tx       *sqlx.Tx
	readOnly bool
}

func (t *pgTx) Ext() sqlx.ExtContext {
	return t.tx
}

func (t *pgTx) Balance(ctx context.Context, asset model.AssetID, holder model.Identity) (uint64, error) {
	return t.balance(ctx, asset, holder, false)
}

func (t *pgTx) balance(ctx context.Context, asset model.AssetID, holder model.Identity, forUpdate bool) (uint64, error) {
	query := `SELECT amount::text FROM balances WHERE asset = $1 AND holder = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var raw string
	err := t.tx.QueryRowxContext(ctx, query, asset.String(), holder.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(raw, 10, 64)
}

func (t *pgTx) Transfer(ctx context.Context, asset model.AssetID, from, to model.Identity, amount uint64) error {
	if t.readOnly {
		return ErrReadOnlyStep
	}
	// Lock both records in key order so concurrent opposing transfers cannot
	// deadlock each other.
	first, second := from, to
	if to.String() < from.String() {
		first, second = to, from
	}
	if _, err := t.balance(ctx, asset, first, true); err != nil {
		return err
	}
	if _, err := t.balance(ctx, asset, second, true); err != nil {
		return err
	}

	fromBal, err := t.balance(ctx, asset, from, false)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return ErrInsufficientFunds
	}
	if from == to {
		return nil
	}
	toBal, err := t.balance(ctx, asset, to, false)
	if err != nil {
		return err
	}
	if _, ok := model.CheckedAdd(toBal, amount); !ok {
		return ErrBalanceOverflow
	}

	if _, err := t.tx.ExecContext(ctx,
		`UPDATE balances SET amount = amount - $3 WHERE asset = $1 AND holder = $2`,
		asset.String(), from.String(), strconv.FormatUint(amount, 10)); err != nil {
		return err
	}
	return t.upsertAdd(ctx, asset, to, amount)
}

func (t *pgTx) Mint(ctx context.Context, asset model.AssetID, holder model.Identity, amount uint64) error {
	if t.readOnly {
		return ErrReadOnlyStep
	}
	bal, err := t.balance(ctx, asset, holder, true)
	if err != nil {
		return err
	}
	if _, ok := model.CheckedAdd(bal, amount); !ok {
		return ErrBalanceOverflow
	}
	return t.upsertAdd(ctx, asset, holder, amount)
}

func (t *pgTx) upsertAdd(ctx context.Context, asset model.AssetID, holder model.Identity, amount uint64) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO balances (asset, holder, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (asset, holder)
		DO UPDATE SET amount = balances.amount + $3
	`, asset.String(), holder.String(), strconv.FormatUint(amount, 10))
	return err
}

package repository

import (
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/GoLaunchpad/launchgate/internal/ledger"
)

// execer picks the settlement step's own transaction when the step is
// database-backed, so record writes commit or roll back with the balance
// moves of the same step. Memory-backed steps fall through to the pool.
func execer(tx ledger.Tx, db *sqlx.DB) sqlx.ExtContext {
	if e, ok := tx.(ledger.Execer); ok && e != nil {
		return e.Ext()
	}
	return db
}

// Unsigned amounts are stored as NUMERIC(20,0): BIGINT cannot represent the
// full u64 range. They travel as strings on both sides.
func u64str(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func parseU64(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 10, 64)
}

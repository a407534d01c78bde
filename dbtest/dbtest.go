// Package dbtest provisions throwaway in-memory databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/guilteater/backend/auth"
	"github.com/guilteater/backend/ledger"
	"github.com/guilteater/backend/linking"
)

var dbSeq atomic.Int64

// New returns an isolated in-memory database with the full schema applied.
// The handle is closed when the test finishes.
func New(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:dbtest%d?mode=memory&cache=shared", dbSeq.Add(1))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)

	// shared-cache in-memory DBs vanish when the last conn closes
	sqldb.SetMaxIdleConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	models := []any{
		(*auth.Account)(nil),
		(*linking.LinkingCode)(nil),
		(*ledger.Goal)(nil),
		(*ledger.WalletLedger)(nil),
		(*ledger.Violation)(nil),
		(*ledger.Transaction)(nil),
	}
	for _, model := range models {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	// same live-row uniqueness rules the production schema enforces
	_, err = db.ExecContext(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_linking_codes_code_live
		 ON linking_codes (code) WHERE is_consumed = 0`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_linking_codes_parent_live
		 ON linking_codes (parent_id) WHERE is_consumed = 0`)
	require.NoError(t, err)

	return db
}

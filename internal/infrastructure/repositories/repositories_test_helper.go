package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createWalletTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		currency TEXT NOT NULL,
		balance NUMERIC NOT NULL DEFAULT 0,
		in_order NUMERIC NOT NULL DEFAULT 0,
		address TEXT,
		status BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		UNIQUE(user_id, currency, type)
	);`)
}

func createTokenTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE tokens (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		currency TEXT NOT NULL,
		chain TEXT NOT NULL,
		network TEXT NOT NULL DEFAULT 'mainnet',
		contract_type TEXT NOT NULL DEFAULT 'PERMIT',
		contract TEXT,
		decimals INTEGER NOT NULL DEFAULT 18,
		confirmations INTEGER NOT NULL DEFAULT 12,
		status BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		UNIQUE(currency, chain)
	);`)
}

func createTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE transactions (
		id TEXT PRIMARY KEY,
		wallet_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		chain TEXT NOT NULL,
		currency TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		fee NUMERIC NOT NULL DEFAULT 0,
		trx_id TEXT NOT NULL,
		confirmations INTEGER NOT NULL DEFAULT 0,
		metadata TEXT NOT NULL DEFAULT '',
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		UNIQUE(wallet_id, trx_id)
	);`)
}

func seedToken(t *testing.T, db *gorm.DB, id, currency, chain, contractType string, confirmations int, status bool) {
	t.Helper()
	mustExec(t, db,
		`INSERT INTO tokens (id, name, currency, chain, network, contract_type, decimals, confirmations, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'mainnet', ?, 18, ?, ?, ?, ?)`,
		id, currency+" on "+chain, currency, chain, contractType, confirmations, status, time.Now(), time.Now())
}

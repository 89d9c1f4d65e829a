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

func createProcessedEventTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE processed_events (
		external_event_id TEXT PRIMARY KEY,
		processed_at DATETIME
	);`)
}

func createSettlementTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE settlement_requests (
		id TEXT PRIMARY KEY,
		external_event_id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		wallet_address TEXT NOT NULL,
		currency TEXT NOT NULL,
		gross_amount TEXT NOT NULL,
		net_amount TEXT NOT NULL,
		fee_amount TEXT NOT NULL,
		status TEXT NOT NULL,
		primary_tx_hash TEXT,
		fallback_tx_hash TEXT,
		primary_error TEXT,
		fallback_error TEXT,
		settled_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE fee_transfers (
		id TEXT PRIMARY KEY,
		settlement_id TEXT NOT NULL,
		recipient_id TEXT NOT NULL,
		address TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL,
		tx_hash TEXT,
		last_error TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createAlertTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE alerts (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		external_event_id TEXT,
		amount TEXT DEFAULT '0',
		message TEXT NOT NULL,
		primary_error TEXT,
		fallback_error TEXT,
		dispatched BOOLEAN NOT NULL DEFAULT 0,
		acknowledged BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME
	);`)
}

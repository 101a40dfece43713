package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddUniqueGuards creates the partial unique indexes behind the
// one-active-session-per-order and one-pending-exception-per-session
// invariants. Both Postgres and the SQLite fallback support partial
// indexes; MySQL does not, so the pass is skipped there.
func AddUniqueGuards(db *gorm.DB) error {
	name := db.Dialector.Name()
	if name != "postgres" && name != "sqlite" {
		return nil
	}

	guards := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active_per_order
			ON sessions (order_id) WHERE status = 'in_progress'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_exceptions_one_pending_per_session
			ON exceptions (session_id) WHERE status = 'pending'`,
	}
	for _, guard := range guards {
		if err := db.Exec(guard).Error; err != nil {
			return fmt.Errorf("failed to create unique guard index: %w", err)
		}
	}

	return nil
}

// AddIndexes adds performance-critical indexes to the database. The
// existence check reads pg_indexes, so the pass only runs against Postgres;
// MySQL and the SQLite fallback rely on the AutoMigrate indexes.
func AddIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Session lookups: active-session check and audit listings
		{"sessions", "idx_sessions_order_id_status", "order_id, status"},
		{"sessions", "idx_sessions_user_id", "user_id"},
		{"sessions", "idx_sessions_status", "status"},

		// Line lookups: scan resolution and metrics grouping
		{"lines", "idx_lines_session_id_scan_code", "session_id, scan_code"},
		{"lines", "idx_lines_scan_code", "scan_code"},

		// Event and photo lookups per session
		{"events", "idx_events_session_id", "session_id"},
		{"photos", "idx_photos_session_id", "session_id"},

		// Pending-exception check
		{"exceptions", "idx_exceptions_session_id_status", "session_id, status"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Scan(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

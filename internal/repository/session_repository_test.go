package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/magnate-systems/picking-api/internal/models"
)

// openMockDB builds a GORM handle over sqlmock with regexp query matching,
// so tests can assert the SQL shape the repository emits against Postgres.
func openMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestCreateWithLinesTranslatesDuplicateActiveSession(t *testing.T) {
	db, mock := openMockDB(t)
	repo := NewSessionRepository(db)

	// The insert itself is the guard: the first statement in the
	// transaction is a plain INSERT, no count pre-check and no locking
	// clause. A violation of the partial unique index on active sessions
	// maps to the conflict sentinel.
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "sessions"`).
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	session := &models.Session{
		OrderID: 100,
		UserID:  uuid.New(),
		Status:  models.SessionInProgress,
	}
	lines := []models.Line{
		{ProductID: 7, ScanCode: "SKU-A", ExpectedQty: 2, Status: models.LinePending},
	}

	err := repo.CreateWithLines(session, lines)
	assert.ErrorIs(t, err, ErrActiveSessionExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterScanLocksLineRow(t *testing.T) {
	db, mock := openMockDB(t)
	repo := NewSessionRepository(db)

	sessionID := uuid.New()
	lineID := uuid.New()

	mock.ExpectBegin()
	// The line lookup must take a row lock; a saturated line commits
	// without any mutation or event.
	mock.ExpectQuery(`SELECT .* FROM "lines" WHERE session_id = .* AND scan_code = .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "product_id", "scan_code", "expected_qty", "picked_qty", "status"}).
			AddRow(lineID.String(), sessionID.String(), int64(7), "SKU-A", 2, 2, "completed"))
	mock.ExpectCommit()

	line, changed, err := repo.RegisterScan(sessionID, "SKU-A", uuid.New())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 2, line.PickedQty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterScanUnknownCodeRollsBack(t *testing.T) {
	db, mock := openMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "lines" WHERE session_id = .* AND scan_code = .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, _, err := repo.RegisterScan(uuid.New(), "SKU-X", uuid.New())
	assert.ErrorIs(t, err, ErrLineNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinishChecksGatesUnderLock(t *testing.T) {
	db, mock := openMockDB(t)
	repo := NewSessionRepository(db)

	sessionID := uuid.New()
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "sessions" WHERE id = .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "user_id", "status"}).
			AddRow(sessionID.String(), int64(100), userID.String(), "in_progress"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "photos" WHERE session_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	_, err := repo.Finish(sessionID, time.Now())
	assert.ErrorIs(t, err, ErrNoPhotos)
	assert.NoError(t, mock.ExpectationsWereMet())
}

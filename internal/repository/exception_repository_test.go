package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/magnate-systems/picking-api/internal/models"
)

func TestCreateExceptionTranslatesDuplicatePending(t *testing.T) {
	db, mock := openMockDB(t)
	repo := NewExceptionRepository(db)

	sessionID := uuid.New()
	pickerID := uuid.New()

	// Same guard shape as session creation: the first statement in the
	// transaction is the INSERT, and a violation of the partial unique
	// index on pending exceptions maps to the conflict sentinel.
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "exceptions"`).
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	exception := &models.Exception{
		SessionID: sessionID,
		PickerID:  pickerID,
		Reason:    "shelf empty",
		Status:    models.ExceptionPending,
	}
	event, err := models.NewEvent(sessionID, pickerID, models.EventExceptionCreated, map[string]any{
		"reason": "shelf empty",
	})
	require.NoError(t, err)

	err = repo.Create(exception, event)
	assert.ErrorIs(t, err, ErrPendingExceptionExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

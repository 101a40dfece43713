package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/models"
)

// SessionRepository defines data access for sessions, lines, photos and the
// event log. State-changing operations are transactional: an event row is
// never committed without the mutation it describes.
type SessionRepository interface {
	// CreateWithLines creates a session and seeds its lines atomically.
	// Fails with ErrActiveSessionExists when the order already has an
	// in_progress session; partial seeding is never observable.
	CreateWithLines(session *models.Session, lines []models.Line) error

	// FindByID finds a session by ID with optional preloading
	FindByID(id uuid.UUID, preload ...string) (*models.Session, error)

	// ListAll returns every session, newest first
	ListAll() ([]models.Session, error)

	// ListByOrderID returns the sessions recorded for an order
	ListByOrderID(orderID int64) ([]models.Session, error)

	// ListLines returns the lines of a session
	ListLines(sessionID uuid.UUID) ([]models.Line, error)

	// RegisterScan increments the matching line by one under a row lock
	// and appends the scan event in the same transaction. Returns the
	// line and whether anything changed; a saturated line is a no-op
	// with changed=false and no event. Fails with ErrLineNotFound when
	// no line of the session carries the scan code.
	RegisterScan(sessionID uuid.UUID, scanCode string, actorID uuid.UUID) (*models.Line, bool, error)

	// CreatePhoto persists a photo row and its event atomically
	CreatePhoto(photo *models.Photo, event *models.Event) error

	// Finish marks the session finished after re-checking the completion
	// gates under a session row lock. Fails with ErrSessionNotActive,
	// ErrNoPhotos or ErrLinesIncomplete.
	Finish(sessionID uuid.UUID, at time.Time) (*models.Session, error)

	// AppendEvent writes a single audit event
	AppendEvent(event *models.Event) error
}

// ExceptionRepository defines data access for the exception workflow.
type ExceptionRepository interface {
	// Create records a pending exception and its event atomically. Fails
	// with ErrPendingExceptionExists when the session already has one.
	Create(exception *models.Exception, event *models.Event) error

	// FindByID finds an exception by ID
	FindByID(id uuid.UUID) (*models.Exception, error)

	// ListPending returns the unresolved exceptions, oldest first
	ListPending() ([]models.Exception, error)

	// Resolve marks a pending exception approved or rejected; on approval
	// the session is forced to finished in the same transaction. Fails
	// with ErrAlreadyResolved when the exception is not pending. Returns
	// the updated exception and its session.
	Resolve(id uuid.UUID, approved bool, supervisorID uuid.UUID, at time.Time) (*models.Exception, *models.Session, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uuid.UUID) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	List() ([]models.User, error)
	Update(user *models.User) error

	// Delete removes a user. Fails with ErrUserReferenced when sessions,
	// events or exceptions still reference the user.
	Delete(id uuid.UUID) error
}

// WarehouseRepository defines data access for warehouses.
type WarehouseRepository interface {
	Create(warehouse *models.Warehouse) error
	FindByID(id uuid.UUID) (*models.Warehouse, error)
	FindByCode(code string) (*models.Warehouse, error)
	List() ([]models.Warehouse, error)
}

// ConfigRepository defines access to admin-managed system configuration.
type ConfigRepository interface {
	GetAll() ([]models.SystemConfig, error)
	Set(key string, value []byte) error
}

// PickerStat is a per-user aggregate over finished sessions.
type PickerStat struct {
	UserID          uuid.UUID
	Username        string
	Role            models.Role
	CompletedOrders int64
	TotalItems      int64
}

// ErrorProductStat is a per-scan-code aggregate over mismatched lines.
type ErrorProductStat struct {
	ScanCode    string
	ErrorCount  int64
	TotalPicked int64
}

// MetricsRepository defines the read-side queries behind reporting. No
// method mutates state.
type MetricsRepository interface {
	CountSessionsByStatus(status models.SessionStatus) (int64, error)

	// FinishedSessions returns finished sessions with a non-null finish
	// timestamp, user preloaded.
	FinishedSessions() ([]models.Session, error)

	// PickerStats aggregates completed-order and item counts per user
	// over finished sessions.
	PickerStats() ([]PickerStat, error)

	// ErrorProducts groups mismatched lines by scan code, ranked by
	// occurrence count descending, capped at limit.
	ErrorProducts(limit int) ([]ErrorProductStat, error)

	// CountLinesByScanCode counts every line carrying the code,
	// mismatched or not.
	CountLinesByScanCode(code string) (int64, error)

	// CountIncidents counts distinct finished sessions with at least one
	// under-picked line.
	CountIncidents() (int64, error)
}

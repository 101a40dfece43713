package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/logging"
	"github.com/magnate-systems/picking-api/internal/models"
	"github.com/magnate-systems/picking-api/internal/repository"
	"github.com/magnate-systems/picking-api/internal/storage"
	"github.com/magnate-systems/picking-api/internal/woocommerce"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionConflict     = errors.New("a session is already in progress for this order")
	ErrScanCodeNotFound    = errors.New("scan code not part of this order")
	ErrSessionNotActive    = errors.New("session is not in progress")
	ErrNoPhotos            = errors.New("at least one photo is required")
	ErrLinesIncomplete     = errors.New("not all items have been picked")
	ErrPhotoStorage        = errors.New("failed to store photo")
	ErrSessionAccessDenied = errors.New("access to this session is denied")
)

// OrderSource is the upstream commerce capability: fetch open orders and
// product metadata, push status updates back.
type OrderSource interface {
	FetchOpenOrders() []woocommerce.Order
	FetchOrder(orderID int64) (*woocommerce.Order, bool)
	FetchProductDetails(productID int64) *woocommerce.Product
	PushOrderStatus(orderID int64, status string) bool
}

// SessionService owns the picking session lifecycle: start, scan, photo,
// finish. Every state change appends an audit event in the same unit of
// work as the mutation.
type SessionService struct {
	sessionRepo repository.SessionRepository
	orderSource OrderSource
	photoStore  storage.PhotoStore
}

// NewSessionService creates a new SessionService
func NewSessionService(sessionRepo repository.SessionRepository, orderSource OrderSource, photoStore storage.PhotoStore) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		orderSource: orderSource,
		photoStore:  photoStore,
	}
}

// ScanResult reports the line counts after a scan.
type ScanResult struct {
	PickedQty   int
	ExpectedQty int
	LineStatus  models.LineStatus
	Changed     bool
}

// LineDetail is a session line enriched with upstream product metadata.
type LineDetail struct {
	Line        models.Line
	ProductName string
	ImageURL    string
}

// Start creates an in_progress session for the order with the caller as
// assignee and seeds one line per order item, all atomically.
func (s *SessionService) Start(orderID int64, actor *models.User) (*models.Session, error) {
	order, ok := s.orderSource.FetchOrder(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}

	session := &models.Session{
		OrderID:     orderID,
		UserID:      actor.ID,
		WarehouseID: actor.WarehouseID,
		Status:      models.SessionInProgress,
		StartedAt:   time.Now(),
	}

	lines := make([]models.Line, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		lines = append(lines, models.Line{
			ProductID:   item.ProductID,
			ScanCode:    item.SKU,
			ExpectedQty: item.Quantity,
			PickedQty:   0,
			Status:      models.LinePending,
		})
	}

	if err := s.sessionRepo.CreateWithLines(session, lines); err != nil {
		if errors.Is(err, repository.ErrActiveSessionExists) {
			return nil, ErrSessionConflict
		}
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	return session, nil
}

// RegisterScan increments the matching line by one. Scanning a saturated
// line is an idempotent no-op that still reports the current counts.
func (s *SessionService) RegisterScan(sessionID uuid.UUID, scanCode string, actor *models.User) (*ScanResult, error) {
	if _, err := s.findSession(sessionID); err != nil {
		return nil, err
	}

	line, changed, err := s.sessionRepo.RegisterScan(sessionID, scanCode, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrLineNotFound) {
			return nil, ErrScanCodeNotFound
		}
		return nil, fmt.Errorf("failed to register scan: %w", err)
	}

	return &ScanResult{
		PickedQty:   line.PickedQty,
		ExpectedQty: line.ExpectedQty,
		LineStatus:  line.Status,
		Changed:     changed,
	}, nil
}

// UploadPhoto stores the image and records the photo row plus its event.
// The blob is stored first: a storage failure leaves no orphaned row.
func (s *SessionService) UploadPhoto(ctx context.Context, sessionID uuid.UUID, filename string, data []byte, contentType string, actor *models.User) (*models.Photo, error) {
	if _, err := s.findSession(sessionID); err != nil {
		return nil, err
	}

	url, err := s.photoStore.Store(ctx, sessionID, filename, data, contentType)
	if err != nil {
		logging.LogError(logging.GetLogger(), "services", "UploadPhoto", sessionID.String(), err)
		return nil, ErrPhotoStorage
	}

	photo := &models.Photo{
		SessionID: sessionID,
		URL:       url,
	}
	event, err := models.NewEvent(sessionID, actor.ID, models.EventPhoto, map[string]any{
		"url": url,
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.CreatePhoto(photo, event); err != nil {
		return nil, fmt.Errorf("failed to record photo: %w", err)
	}

	return photo, nil
}

// Finish completes the session once both gates hold: at least one photo and
// every line fully picked. Local completion is authoritative; the upstream
// push happens after commit and a failed push only suppresses the
// confirming event.
func (s *SessionService) Finish(sessionID uuid.UUID, actor *models.User) (*models.Session, error) {
	session, err := s.sessionRepo.Finish(sessionID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrSessionNotFound
		case errors.Is(err, repository.ErrSessionNotActive):
			return nil, ErrSessionNotActive
		case errors.Is(err, repository.ErrNoPhotos):
			return nil, ErrNoPhotos
		case errors.Is(err, repository.ErrLinesIncomplete):
			return nil, ErrLinesIncomplete
		}
		return nil, fmt.Errorf("failed to finish session: %w", err)
	}

	if s.orderSource.PushOrderStatus(session.OrderID, "completed") {
		event, err := models.NewEvent(sessionID, actor.ID, models.EventFinish, map[string]any{
			"order_status": "completed",
		})
		if err != nil {
			logging.LogError(logging.GetLogger(), "services", "Finish", sessionID.String(), err)
		} else if err := s.sessionRepo.AppendEvent(event); err != nil {
			logging.LogError(logging.GetLogger(), "services", "Finish", sessionID.String(), err)
		}
	} else {
		logging.GetLogger().WithFields(map[string]interface{}{
			"session_id": sessionID.String(),
			"order_id":   session.OrderID,
		}).Warn("Session finished locally but upstream status push failed")
	}

	return session, nil
}

// Lines returns the session's lines enriched with product metadata. Only
// the assignee and supervising roles may read them.
func (s *SessionService) Lines(sessionID uuid.UUID, actor *models.User) ([]LineDetail, error) {
	session, err := s.findSession(sessionID)
	if err != nil {
		return nil, err
	}

	if session.UserID != actor.ID && !actor.Role.CanSupervise() {
		return nil, ErrSessionAccessDenied
	}

	lines, err := s.sessionRepo.ListLines(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lines: %w", err)
	}

	details := make([]LineDetail, 0, len(lines))
	for _, line := range lines {
		detail := LineDetail{
			Line:        line,
			ProductName: fmt.Sprintf("Product %s", line.ScanCode),
		}
		if product := s.orderSource.FetchProductDetails(line.ProductID); product != nil {
			detail.ProductName = product.Name
			detail.ImageURL = product.ImageURL
		}
		details = append(details, detail)
	}

	return details, nil
}

// ListAll returns every session for the audit view.
func (s *SessionService) ListAll() ([]models.Session, error) {
	return s.sessionRepo.ListAll()
}

// ListByOrderID returns the sessions recorded for an order.
func (s *SessionService) ListByOrderID(orderID int64) ([]models.Session, error) {
	return s.sessionRepo.ListByOrderID(orderID)
}

func (s *SessionService) findSession(id uuid.UUID) (*models.Session, error) {
	session, err := s.sessionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/database"
	"github.com/magnate-systems/picking-api/internal/models"
	"github.com/magnate-systems/picking-api/internal/repository"
	"github.com/magnate-systems/picking-api/internal/woocommerce"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeOrderSource is an in-memory OrderSource for tests
type fakeOrderSource struct {
	orders   map[int64]woocommerce.Order
	products map[int64]woocommerce.Product
	pushOK   bool
	pushes   []string
}

func newFakeOrderSource() *fakeOrderSource {
	return &fakeOrderSource{
		orders:   make(map[int64]woocommerce.Order),
		products: make(map[int64]woocommerce.Product),
		pushOK:   true,
	}
}

func (f *fakeOrderSource) FetchOpenOrders() []woocommerce.Order {
	orders := make([]woocommerce.Order, 0, len(f.orders))
	for _, order := range f.orders {
		orders = append(orders, order)
	}
	return orders
}

func (f *fakeOrderSource) FetchOrder(orderID int64) (*woocommerce.Order, bool) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, false
	}
	return &order, true
}

func (f *fakeOrderSource) FetchProductDetails(productID int64) *woocommerce.Product {
	product, ok := f.products[productID]
	if !ok {
		return nil
	}
	return &product
}

func (f *fakeOrderSource) PushOrderStatus(orderID int64, status string) bool {
	f.pushes = append(f.pushes, status)
	return f.pushOK
}

// fakePhotoStore records stored blobs or fails on demand
type fakePhotoStore struct {
	fail   bool
	stored int
}

func (f *fakePhotoStore) Store(ctx context.Context, sessionID uuid.UUID, filename string, data []byte, contentType string) (string, error) {
	if f.fail {
		return "", errors.New("storage down")
	}
	f.stored++
	return "https://photos.test/" + sessionID.String() + "/" + filename, nil
}

// SessionServiceTestSuite defines the test suite for SessionService
type SessionServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	source  *fakeOrderSource
	photos  *fakePhotoStore
	service *SessionService
	picker  *models.User
}

// SetupTest runs before each test
func (suite *SessionServiceTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Warehouse{},
		&models.Session{},
		&models.Line{},
		&models.Photo{},
		&models.Event{},
		&models.Exception{},
	)
	suite.Require().NoError(err)
	suite.Require().NoError(database.AddUniqueGuards(suite.db))

	suite.source = newFakeOrderSource()
	suite.source.orders[100] = woocommerce.Order{
		ID:     100,
		Number: "100",
		Status: "processing",
		LineItems: []woocommerce.LineItem{
			{ProductID: 11, Name: "Widget", SKU: "SKU-A", Quantity: 2},
			{ProductID: 12, Name: "Gadget", SKU: "SKU-B", Quantity: 1},
		},
	}
	suite.photos = &fakePhotoStore{}

	sessionRepo := repository.NewSessionRepository(suite.db)
	suite.service = NewSessionService(sessionRepo, suite.source, suite.photos)

	suite.picker = suite.createUser("alice", models.RolePicker)
}

func (suite *SessionServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *SessionServiceTestSuite) createUser(username string, role models.Role) *models.User {
	user := &models.User{
		Username:     username,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *SessionServiceTestSuite) countEvents(sessionID uuid.UUID, eventType models.EventType) int64 {
	var count int64
	suite.db.Model(&models.Event{}).
		Where("session_id = ? AND type = ?", sessionID, eventType).
		Count(&count)
	return count
}

func (suite *SessionServiceTestSuite) TestStartSeedsLines() {
	session, err := suite.service.Start(100, suite.picker)
	suite.Require().NoError(err)

	suite.Equal(models.SessionInProgress, session.Status)
	suite.Equal(int64(100), session.OrderID)
	suite.Equal(suite.picker.ID, session.UserID)

	var lines []models.Line
	suite.db.Where("session_id = ?", session.ID).Order("scan_code").Find(&lines)
	suite.Require().Len(lines, 2)
	suite.Equal("SKU-A", lines[0].ScanCode)
	suite.Equal(2, lines[0].ExpectedQty)
	suite.Equal(0, lines[0].PickedQty)
	suite.Equal(models.LinePending, lines[0].Status)
	suite.Equal("SKU-B", lines[1].ScanCode)
}

func (suite *SessionServiceTestSuite) TestStartUnknownOrder() {
	_, err := suite.service.Start(999, suite.picker)
	suite.ErrorIs(err, ErrOrderNotFound)
}

func (suite *SessionServiceTestSuite) TestStartConflictsWithActiveSession() {
	_, err := suite.service.Start(100, suite.picker)
	suite.Require().NoError(err)

	bob := suite.createUser("bob", models.RolePicker)
	_, err = suite.service.Start(100, bob)
	suite.ErrorIs(err, ErrSessionConflict)

	var count int64
	suite.db.Model(&models.Session{}).Where("order_id = ?", 100).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *SessionServiceTestSuite) TestStartAllowedAfterPriorSessionFinished() {
	session, err := suite.service.Start(100, suite.picker)
	suite.Require().NoError(err)
	suite.pickEverything(session)

	_, err = suite.service.UploadPhoto(context.Background(), session.ID, "box.jpg", []byte("jpeg"), "image/jpeg", suite.picker)
	suite.Require().NoError(err)
	_, err = suite.service.Finish(session.ID, suite.picker)
	suite.Require().NoError(err)

	_, err = suite.service.Start(100, suite.picker)
	suite.NoError(err)
}

func (suite *SessionServiceTestSuite) TestScanIncrementsByOne() {
	session, err := suite.service.Start(100, suite.picker)
	suite.Require().NoError(err)

	result, err := suite.service.RegisterScan(session.ID, "SKU-A", suite.picker)
	suite.Require().NoError(err)
	suite.Equal(1, result.PickedQty)
	suite.Equal(2, result.ExpectedQty)
	suite.Equal(models.LineInProgress, result.LineStatus)
	suite.True(result.Changed)

	result, err = suite.service.RegisterScan(session.ID, "SKU-A", suite.picker)
	suite.Require().NoError(err)
	suite.Equal(2, result.PickedQty)
	suite.Equal(models.LineCompleted, result.LineStatus)
	suite.True(result.Changed)

	suite.Equal(int64(2), suite.countEvents(session.ID, models.EventScan))
}

func (suite *SessionServiceTestSuite) TestScanSaturatedLineIsNoOp() {
	session, err := suite.service.Start(100, suite.picker)
	suite.Require().NoError(err)

	_, err = suite.service.RegisterScan(session.ID, "SKU-B", suite.picker)
	suite.Require().NoError(err)

	result, err := suite.service.RegisterScan(session.ID, "SKU-B", suite.picker)
	suite.Require().NoError(err)
	suite.Equal(1, result.PickedQty)
	suite.Equal(models.LineCompleted, result.LineStatus)
	suite.False(result.Changed)

	// The no-op leaves no trace in the event log.
	suite.Equal(int64(1), suite.countEvents(session.ID, models.EventScan))
}

func (suite *SessionServiceTestSuite) TestScanUnknownCode() {
	session, err := suite.service.Start(100, suite.picker)
	suite.Require().NoError(err)

	_, err = suite.service.RegisterScan(session.ID, "SKU-X", suite.picker)
	suite.ErrorIs(err, ErrScanCodeNotFound)
	suite.Equal(int64(0), suite.countEvents(session.ID, models.EventScan))
}

func (suite *SessionServiceTestSuite) TestUploadPhoto() {
	session, err := suite.service.Start(100, suite.picker)
	suite.Require().NoError(err)

	photo, err := suite.service.UploadPhoto(context.Background(), session.ID, "box.jpg", []byte("jpeg"), "image/jpeg", suite.picker)
	suite.Require().NoError(err)
	suite.Contains(photo.URL, session.ID.String())

	suite.Equal(1, suite.photos.stored)
	suite.Equal(int64(1), suite.countEvents(session.ID, models.EventPhoto))
}

func (suite *SessionServiceTestSuite) TestUploadPhotoStorageFailure() {
	session, err := suite.service.Start(100, suite.picker)
	suite.Require().NoError(err)

	suite.photos.fail = true
	_, err = suite.service.UploadPhoto(context.Background(), session.ID, "box.jpg", []byte("jpeg"), "image/jpeg", suite.picker)
	suite.ErrorIs(err, ErrPhotoStorage)

	var count int64
	suite.db.Model(&models.Photo{}).Where("session_id = ?", session.ID).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *SessionServiceTestSuite) pickEverything(session *models.Session) {
	for _, scan := range []string{"SKU-A", "SKU-A", "SKU-B"} {
		_, err := suite.service.RegisterScan(session.ID, scan, suite.picker)
		suite.Require().NoError(err)
	}
}

func (suite *SessionServiceTestSuite) TestFinishRequiresPhoto() {
	session, err := suite.service.Start(100, suite.picker)
	suite.Require().NoError(err)
	suite.pickEverything(session)

	_, err = suite.service.Finish(session.ID, suite.picker)
	suite.ErrorIs(err, ErrNoPhotos)

	var stored models.Session
	suite.db.First(&stored, "id = ?", session.ID)
	suite.Equal(models.SessionInProgress, stored.Status)
}

func (suite *SessionServiceTestSuite) TestFinishRequiresCompleteLines() {
	session, err := suite.service.Start(100, suite.picker)
	suite.Require().NoError(err)

	_, err = suite.service.UploadPhoto(context.Background(), session.ID, "box.jpg", []byte("jpeg"), "image/jpeg", suite.picker)
	suite.Require().NoError(err)

	_, err = suite.service.Finish(session.ID, suite.picker)
	suite.ErrorIs(err, ErrLinesIncomplete)
}

func (suite *SessionServiceTestSuite) TestFinishHappyPath() {
	session, err := suite.service.Start(100, suite.picker)
	suite.Require().NoError(err)
	suite.pickEverything(session)

	_, err = suite.service.UploadPhoto(context.Background(), session.ID, "box.jpg", []byte("jpeg"), "image/jpeg", suite.picker)
	suite.Require().NoError(err)

	finished, err := suite.service.Finish(session.ID, suite.picker)
	suite.Require().NoError(err)
	suite.Equal(models.SessionFinished, finished.Status)
	suite.Require().NotNil(finished.FinishedAt)
	suite.WithinDuration(time.Now(), *finished.FinishedAt, 5*time.Second)

	suite.Equal([]string{"completed"}, suite.source.pushes)
	suite.Equal(int64(1), suite.countEvents(session.ID, models.EventFinish))
}

func (suite *SessionServiceTestSuite) TestFinishSurvivesPushFailure() {
	session, err := suite.service.Start(100, suite.picker)
	suite.Require().NoError(err)
	suite.pickEverything(session)

	_, err = suite.service.UploadPhoto(context.Background(), session.ID, "box.jpg", []byte("jpeg"), "image/jpeg", suite.picker)
	suite.Require().NoError(err)

	suite.source.pushOK = false
	finished, err := suite.service.Finish(session.ID, suite.picker)
	suite.Require().NoError(err)
	suite.Equal(models.SessionFinished, finished.Status)

	// Local completion stands; only the confirming event is withheld.
	suite.Equal(int64(0), suite.countEvents(session.ID, models.EventFinish))
}

func (suite *SessionServiceTestSuite) TestFinishTwice() {
	session, err := suite.service.Start(100, suite.picker)
	suite.Require().NoError(err)
	suite.pickEverything(session)

	_, err = suite.service.UploadPhoto(context.Background(), session.ID, "box.jpg", []byte("jpeg"), "image/jpeg", suite.picker)
	suite.Require().NoError(err)

	_, err = suite.service.Finish(session.ID, suite.picker)
	suite.Require().NoError(err)

	_, err = suite.service.Finish(session.ID, suite.picker)
	suite.ErrorIs(err, ErrSessionNotActive)
}

func (suite *SessionServiceTestSuite) TestLinesEnrichedAndGuarded() {
	suite.source.products[11] = woocommerce.Product{ID: 11, Name: "Widget Deluxe", ImageURL: "https://img.test/11.png"}

	session, err := suite.service.Start(100, suite.picker)
	suite.Require().NoError(err)

	details, err := suite.service.Lines(session.ID, suite.picker)
	suite.Require().NoError(err)
	suite.Require().Len(details, 2)

	byCode := make(map[string]LineDetail)
	for _, detail := range details {
		byCode[detail.Line.ScanCode] = detail
	}
	suite.Equal("Widget Deluxe", byCode["SKU-A"].ProductName)
	suite.Equal("https://img.test/11.png", byCode["SKU-A"].ImageURL)

	// Another picker cannot read the lines; a supervisor can.
	bob := suite.createUser("bob", models.RolePicker)
	_, err = suite.service.Lines(session.ID, bob)
	suite.ErrorIs(err, ErrSessionAccessDenied)

	boss := suite.createUser("boss", models.RoleSupervisor)
	_, err = suite.service.Lines(session.ID, boss)
	suite.NoError(err)
}

func TestSessionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceTestSuite))
}

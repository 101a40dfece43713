package services

import (
	"testing"
	"time"

	"github.com/magnate-systems/picking-api/internal/database"
	"github.com/magnate-systems/picking-api/internal/models"
	"github.com/magnate-systems/picking-api/internal/repository"
	"github.com/magnate-systems/picking-api/internal/woocommerce"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ExceptionServiceTestSuite defines the test suite for ExceptionService
type ExceptionServiceTestSuite struct {
	suite.Suite
	db         *gorm.DB
	source     *fakeOrderSource
	service    *ExceptionService
	sessions   *SessionService
	picker     *models.User
	supervisor *models.User
}

// SetupTest runs before each test
func (suite *ExceptionServiceTestSuite) SetupTest() {
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
	suite.source.orders[200] = woocommerce.Order{
		ID:     200,
		Number: "200",
		Status: "processing",
		LineItems: []woocommerce.LineItem{
			{ProductID: 21, Name: "Widget", SKU: "SKU-A", Quantity: 3},
		},
	}

	sessionRepo := repository.NewSessionRepository(suite.db)
	exceptionRepo := repository.NewExceptionRepository(suite.db)
	suite.sessions = NewSessionService(sessionRepo, suite.source, &fakePhotoStore{})
	suite.service = NewExceptionService(exceptionRepo, sessionRepo, suite.source)

	suite.picker = suite.createUser("alice", models.RolePicker)
	suite.supervisor = suite.createUser("boss", models.RoleSupervisor)
}

func (suite *ExceptionServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ExceptionServiceTestSuite) createUser(username string, role models.Role) *models.User {
	user := &models.User{
		Username:     username,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *ExceptionServiceTestSuite) startSession() *models.Session {
	session, err := suite.sessions.Start(200, suite.picker)
	suite.Require().NoError(err)
	return session
}

func (suite *ExceptionServiceTestSuite) TestCreatePending() {
	session := suite.startSession()

	exception, err := suite.service.Create(session.ID, "item damaged", suite.picker)
	suite.Require().NoError(err)
	suite.Equal(models.ExceptionPending, exception.Status)
	suite.Equal(suite.picker.ID, exception.PickerID)

	var count int64
	suite.db.Model(&models.Event{}).
		Where("session_id = ? AND type = ?", session.ID, models.EventExceptionCreated).
		Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *ExceptionServiceTestSuite) TestCreateRequiresAssignee() {
	session := suite.startSession()

	mallory := suite.createUser("mallory", models.RolePicker)
	_, err := suite.service.Create(session.ID, "not my session", mallory)
	suite.ErrorIs(err, ErrNotSessionAssignee)
}

func (suite *ExceptionServiceTestSuite) TestCreateRejectsSecondPending() {
	session := suite.startSession()

	_, err := suite.service.Create(session.ID, "item damaged", suite.picker)
	suite.Require().NoError(err)

	_, err = suite.service.Create(session.ID, "still damaged", suite.picker)
	suite.ErrorIs(err, ErrExceptionExists)
}

func (suite *ExceptionServiceTestSuite) TestApproveForceFinishesSession() {
	session := suite.startSession()

	// One of three picked; the normal finish gates would reject this.
	_, err := suite.sessions.RegisterScan(session.ID, "SKU-A", suite.picker)
	suite.Require().NoError(err)

	exception, err := suite.service.Create(session.ID, "item out of stock", suite.picker)
	suite.Require().NoError(err)

	resolved, err := suite.service.Resolve(exception.ID, true, "confirmed by phone", suite.supervisor)
	suite.Require().NoError(err)
	suite.Equal(models.ExceptionApproved, resolved.Status)
	suite.Require().NotNil(resolved.SupervisorID)
	suite.Equal(suite.supervisor.ID, *resolved.SupervisorID)
	suite.Require().NotNil(resolved.ResolvedAt)
	suite.WithinDuration(time.Now(), *resolved.ResolvedAt, 5*time.Second)

	var stored models.Session
	suite.db.First(&stored, "id = ?", session.ID)
	suite.Equal(models.SessionFinished, stored.Status)
	suite.NotNil(stored.FinishedAt)

	// An approved shortfall still completes the order upstream, exactly
	// like a normal finish.
	suite.Equal([]string{"completed"}, suite.source.pushes)

	var count int64
	suite.db.Model(&models.Event{}).
		Where("session_id = ? AND type = ?", session.ID, models.EventExceptionApproved).
		Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *ExceptionServiceTestSuite) TestRejectLeavesSessionOpen() {
	session := suite.startSession()

	exception, err := suite.service.Create(session.ID, "item damaged", suite.picker)
	suite.Require().NoError(err)

	resolved, err := suite.service.Resolve(exception.ID, false, "pick it anyway", suite.supervisor)
	suite.Require().NoError(err)
	suite.Equal(models.ExceptionRejected, resolved.Status)

	var stored models.Session
	suite.db.First(&stored, "id = ?", session.ID)
	suite.Equal(models.SessionInProgress, stored.Status)

	// Rejection does not touch the upstream order.
	suite.Empty(suite.source.pushes)

	// The session may raise a new exception after the rejection.
	_, err = suite.service.Create(session.ID, "second opinion", suite.picker)
	suite.NoError(err)
}

func (suite *ExceptionServiceTestSuite) TestResolveTwice() {
	session := suite.startSession()

	exception, err := suite.service.Create(session.ID, "item damaged", suite.picker)
	suite.Require().NoError(err)

	_, err = suite.service.Resolve(exception.ID, false, "", suite.supervisor)
	suite.Require().NoError(err)

	_, err = suite.service.Resolve(exception.ID, true, "", suite.supervisor)
	suite.ErrorIs(err, ErrExceptionResolved)
}

func (suite *ExceptionServiceTestSuite) TestListPendingOldestFirst() {
	first := suite.startSession()
	_, err := suite.service.Create(first.ID, "first", suite.picker)
	suite.Require().NoError(err)

	pending, err := suite.service.ListPending()
	suite.Require().NoError(err)
	suite.Require().Len(pending, 1)
	suite.Equal("first", pending[0].Reason)
}

func TestExceptionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExceptionServiceTestSuite))
}

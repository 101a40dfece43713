package services

import (
	"testing"
	"time"

	"github.com/magnate-systems/picking-api/internal/models"
	"github.com/magnate-systems/picking-api/internal/repository"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// UserServiceTestSuite defines the test suite for UserService
type UserServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *UserService
	admin   *models.User
}

// SetupTest runs before each test
func (suite *UserServiceTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Warehouse{},
		&models.Session{},
		&models.Line{},
		&models.Event{},
		&models.Exception{},
	)
	suite.Require().NoError(err)

	suite.service = NewUserService(
		repository.NewUserRepository(suite.db),
		repository.NewWarehouseRepository(suite.db),
	)
	suite.admin = suite.createUser("root", models.RoleAdmin)
}

func (suite *UserServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *UserServiceTestSuite) createUser(username string, role models.Role) *models.User {
	user := &models.User{
		Username:     username,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *UserServiceTestSuite) TestUpdateAppliesOnlyGivenFields() {
	alice := suite.createUser("alice", models.RolePicker)

	role := models.RoleSupervisor
	updated, err := suite.service.Update(alice.ID, UserUpdate{Role: &role})
	suite.Require().NoError(err)
	suite.Equal(models.RoleSupervisor, updated.Role)
	suite.Equal("hashedpassword", updated.PasswordHash)

	password := "new-password"
	updated, err = suite.service.Update(alice.ID, UserUpdate{Password: &password})
	suite.Require().NoError(err)
	suite.NoError(bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(password)))
	suite.Equal(models.RoleSupervisor, updated.Role)
}

func (suite *UserServiceTestSuite) TestUpdateWarehouseAssignment() {
	alice := suite.createUser("alice", models.RolePicker)
	warehouse := &models.Warehouse{Code: "WH1", Name: "Main"}
	suite.Require().NoError(suite.db.Create(warehouse).Error)

	updated, err := suite.service.Update(alice.ID, UserUpdate{WarehouseID: &warehouse.ID})
	suite.Require().NoError(err)
	suite.Require().NotNil(updated.WarehouseID)
	suite.Equal(warehouse.ID, *updated.WarehouseID)

	updated, err = suite.service.Update(alice.ID, UserUpdate{ClearWarehouse: true})
	suite.Require().NoError(err)
	suite.Nil(updated.WarehouseID)
}

func (suite *UserServiceTestSuite) TestUpdateRejectsInvalidRole() {
	alice := suite.createUser("alice", models.RolePicker)

	role := models.Role("janitor")
	_, err := suite.service.Update(alice.ID, UserUpdate{Role: &role})
	suite.ErrorIs(err, ErrInvalidRole)
}

func (suite *UserServiceTestSuite) TestDeleteUnreferencedUser() {
	alice := suite.createUser("alice", models.RolePicker)

	err := suite.service.Delete(alice.ID, suite.admin)
	suite.Require().NoError(err)

	var count int64
	suite.db.Model(&models.User{}).Where("id = ?", alice.ID).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *UserServiceTestSuite) TestDeleteRejectsSelf() {
	err := suite.service.Delete(suite.admin.ID, suite.admin)
	suite.ErrorIs(err, ErrSelfDeletion)
}

func (suite *UserServiceTestSuite) TestDeleteRejectsReferencedUser() {
	alice := suite.createUser("alice", models.RolePicker)
	session := &models.Session{
		OrderID:   1,
		UserID:    alice.ID,
		Status:    models.SessionInProgress,
		StartedAt: time.Now(),
	}
	suite.Require().NoError(suite.db.Create(session).Error)

	err := suite.service.Delete(alice.ID, suite.admin)
	suite.ErrorIs(err, ErrUserReferenced)

	var count int64
	suite.db.Model(&models.User{}).Where("id = ?", alice.ID).Count(&count)
	suite.Equal(int64(1), count)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

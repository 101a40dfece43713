package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/magnate-systems/picking-api/internal/config"
	"github.com/magnate-systems/picking-api/internal/middleware"
	"github.com/magnate-systems/picking-api/internal/models"
	"github.com/magnate-systems/picking-api/internal/repository"
	"github.com/magnate-systems/picking-api/internal/services"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// AuthHandlerTestSuite defines the test suite for AuthHandler
type AuthHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *AuthHandlerTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{}, &models.Warehouse{})
	suite.Require().NoError(err)

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		TokenExpiryHours: 1,
	}
	userRepo := repository.NewUserRepository(suite.db)
	handler := NewAuthHandler(services.NewAuthService(userRepo, cfg))

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.router.POST("/api/auth/login", handler.Login)
	suite.router.POST("/api/auth/register", handler.Register)
	suite.router.GET("/api/auth/me", middleware.RequireAuth(cfg, userRepo), handler.Me)
}

func (suite *AuthHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AuthHandlerTestSuite) postJSON(url string, body any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	suite.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AuthHandlerTestSuite) register(username, password string) *httptest.ResponseRecorder {
	return suite.postJSON("/api/auth/register", gin.H{
		"username": username,
		"password": password,
		"role":     "picker",
	})
}

func (suite *AuthHandlerTestSuite) TestRegisterLoginAndMe() {
	w := suite.register("alice", "s3cret-pass")
	suite.Equal(http.StatusCreated, w.Code)

	w = suite.postJSON("/api/auth/login", gin.H{"username": "alice", "password": "s3cret-pass"})
	suite.Require().Equal(http.StatusOK, w.Code)

	var login struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &login))
	suite.NotEmpty(login.Token)
	suite.Equal("alice", login.User.Username)
	suite.Equal("picker", login.User.Role)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	me := httptest.NewRecorder()
	suite.router.ServeHTTP(me, req)
	suite.Equal(http.StatusOK, me.Code)
	suite.Contains(me.Body.String(), "alice")
}

func (suite *AuthHandlerTestSuite) TestLoginWrongPassword() {
	suite.register("alice", "s3cret-pass")

	w := suite.postJSON("/api/auth/login", gin.H{"username": "alice", "password": "wrong"})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "UNAUTHORIZED")
}

func (suite *AuthHandlerTestSuite) TestRegisterDuplicate() {
	suite.register("alice", "s3cret-pass")

	w := suite.register("alice", "other-pass-1")
	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "CONFLICT")
}

func (suite *AuthHandlerTestSuite) TestRegisterRejectsShortPassword() {
	w := suite.register("alice", "short")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AuthHandlerTestSuite) TestMeRequiresToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

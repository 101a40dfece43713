package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/database"
	"github.com/magnate-systems/picking-api/internal/dto"
	apierrors "github.com/magnate-systems/picking-api/internal/errors"
	"github.com/magnate-systems/picking-api/internal/middleware"
	"github.com/magnate-systems/picking-api/internal/models"
	"github.com/magnate-systems/picking-api/internal/services"
	"github.com/magnate-systems/picking-api/internal/utils"
)

type AdminHandler struct {
	userService    *services.UserService
	authService    *services.AuthService
	configService  *services.ConfigService
	orderService   *services.OrderService
	sessionService *services.SessionService
}

func NewAdminHandler(userService *services.UserService, authService *services.AuthService, configService *services.ConfigService, orderService *services.OrderService, sessionService *services.SessionService) *AdminHandler {
	return &AdminHandler{
		userService:    userService,
		authService:    authService,
		configService:  configService,
		orderService:   orderService,
		sessionService: sessionService,
	}
}

// ListUsers returns every user account
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	result := make([]dto.UserDTO, 0, len(users))
	for _, user := range users {
		result = append(result, dto.ToUserDTO(user))
	}
	c.JSON(http.StatusOK, gin.H{"users": result})
}

// CreateUser creates an account on behalf of an admin
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	user, err := h.authService.Register(req.Username, req.Password, req.Role, req.WarehouseID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			apierrors.Conflict(c, "Username already taken")
		case errors.Is(err, services.ErrInvalidRole):
			apierrors.BadRequest(c, "Invalid role")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// UpdateUser applies optional edits to a user account. Unknown JSON keys
// are rejected so typos do not silently become no-ops.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	var req dto.UpdateUserRequest
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Update(id, services.UserUpdate{
		Password:       req.Password,
		Role:           req.Role,
		WarehouseID:    req.WarehouseID,
		ClearWarehouse: req.ClearWarehouse,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, "User not found")
		case errors.Is(err, services.ErrInvalidRole):
			apierrors.BadRequest(c, "Invalid role")
		case errors.Is(err, services.ErrWarehouseNotFound):
			apierrors.NotFound(c, "Warehouse not found")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser removes an account with no picking history
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.userService.Delete(id, actor); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, "User not found")
		case errors.Is(err, services.ErrSelfDeletion):
			apierrors.Conflict(c, "Cannot delete your own account")
		case errors.Is(err, services.ErrUserReferenced):
			apierrors.Conflict(c, "User is referenced by picking history")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetConfig returns the admin-managed runtime settings
func (h *AdminHandler) GetConfig(c *gin.Context) {
	values, err := h.configService.GetAll()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, values)
}

// SetConfig upserts runtime settings
func (h *AdminHandler) SetConfig(c *gin.Context) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if len(values) == 0 {
		apierrors.BadRequest(c, "No settings provided")
		return
	}

	if err := h.configService.Set(values); err != nil {
		apierrors.InternalError(c, "")
		return
	}

	values, err := h.configService.GetAll()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, values)
}

// AuditSessions returns the paginated session history
func (h *AdminHandler) AuditSessions(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	query := database.GetDB().Model(&models.Session{}).Order("started_at DESC")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		apierrors.InternalError(c, "")
		return
	}

	var sessions []models.Session
	if err := query.Preload("User").Scopes(database.Paginate(params)).Find(&sessions).Error; err != nil {
		apierrors.InternalError(c, "")
		return
	}

	result := make([]dto.SessionDTO, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, dto.ToSessionDTO(session))
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": result,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// AuditOrders joins the open upstream orders with their local sessions
func (h *AdminHandler) AuditOrders(c *gin.Context) {
	summaries, err := h.orderService.List()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	type orderAudit struct {
		Order    dto.OrderDTO     `json:"order"`
		Sessions []dto.SessionDTO `json:"sessions"`
	}

	result := make([]orderAudit, 0, len(summaries))
	for _, summary := range summaries {
		sessions, err := h.sessionService.ListByOrderID(summary.Order.ID)
		if err != nil {
			apierrors.InternalError(c, "")
			return
		}

		entry := orderAudit{
			Order:    dto.ToOrderSummaryDTO(summary),
			Sessions: make([]dto.SessionDTO, 0, len(sessions)),
		}
		for _, session := range sessions {
			entry.Sessions = append(entry.Sessions, dto.ToSessionDTO(session))
		}
		result = append(result, entry)
	}

	c.JSON(http.StatusOK, gin.H{"orders": result})
}

// AuditEvents returns the event log of one session, oldest first
func (h *AdminHandler) AuditEvents(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	var events []models.Event
	if err := database.GetDB().
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		apierrors.InternalError(c, "")
		return
	}

	result := make([]dto.EventDTO, 0, len(events))
	for _, event := range events {
		result = append(result, dto.ToEventDTO(event))
	}
	c.JSON(http.StatusOK, gin.H{"events": result})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/dto"
	apierrors "github.com/magnate-systems/picking-api/internal/errors"
	"github.com/magnate-systems/picking-api/internal/middleware"
	"github.com/magnate-systems/picking-api/internal/services"
)

type ExceptionHandler struct {
	exceptionService *services.ExceptionService
}

func NewExceptionHandler(exceptionService *services.ExceptionService) *ExceptionHandler {
	return &ExceptionHandler{exceptionService: exceptionService}
}

// Create raises an exception on a session
func (h *ExceptionHandler) Create(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	var req dto.CreateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	exception, err := h.exceptionService.Create(sessionID, req.Reason, user)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			apierrors.NotFound(c, "Session not found")
		case errors.Is(err, services.ErrNotSessionAssignee):
			apierrors.Forbidden(c, "Only the session assignee may raise an exception")
		case errors.Is(err, services.ErrExceptionSessionClosed):
			apierrors.Conflict(c, "Session is not in progress")
		case errors.Is(err, services.ErrExceptionExists):
			apierrors.Conflict(c, "Session already has a pending exception")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToExceptionDTO(*exception))
}

// ListPending returns the supervisor queue of unresolved exceptions
func (h *ExceptionHandler) ListPending(c *gin.Context) {
	exceptions, err := h.exceptionService.ListPending()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	result := make([]dto.ExceptionDTO, 0, len(exceptions))
	for _, exception := range exceptions {
		result = append(result, dto.ToExceptionDTO(exception))
	}

	c.JSON(http.StatusOK, gin.H{"exceptions": result})
}

// Approve resolves an exception in the picker's favor, closing the session
func (h *ExceptionHandler) Approve(c *gin.Context) {
	h.resolve(c, true)
}

// Reject resolves an exception against the picker; the session stays open
func (h *ExceptionHandler) Reject(c *gin.Context) {
	h.resolve(c, false)
}

func (h *ExceptionHandler) resolve(c *gin.Context, approved bool) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid exception ID")
		return
	}

	// The body is optional; supervisors may attach notes.
	var req dto.ResolveExceptionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, err.Error())
			return
		}
	}

	exception, err := h.exceptionService.Resolve(id, approved, req.Notes, user)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrExceptionNotFound):
			apierrors.NotFound(c, "Exception not found")
		case errors.Is(err, services.ErrExceptionResolved):
			apierrors.Conflict(c, "Exception has already been resolved")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToExceptionDTO(*exception))
}

package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/dto"
	apierrors "github.com/magnate-systems/picking-api/internal/errors"
	"github.com/magnate-systems/picking-api/internal/middleware"
	"github.com/magnate-systems/picking-api/internal/services"
)

// Uploads beyond this size are rejected before buffering.
const maxPhotoBytes = 10 << 20

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Start begins a picking session for an order
func (h *SessionHandler) Start(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Start(orderID, user)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			apierrors.NotFound(c, "Order not found")
		case errors.Is(err, services.ErrSessionConflict):
			apierrors.Conflict(c, "A session is already in progress for this order")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToSessionDTO(*session))
}

// Scan registers a product scan against the session
func (h *SessionHandler) Scan(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	result, err := h.sessionService.RegisterScan(sessionID, req.ScanCode, user)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			apierrors.NotFound(c, "Session not found")
		case errors.Is(err, services.ErrScanCodeNotFound):
			apierrors.NotFound(c, "Scan code not part of this order")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ScanResponse{
		ScanCode:    req.ScanCode,
		PickedQty:   result.PickedQty,
		ExpectedQty: result.ExpectedQty,
		LineStatus:  result.LineStatus,
		Changed:     result.Changed,
	})
}

// UploadPhoto attaches a proof-of-pick photo to the session
func (h *SessionHandler) UploadPhoto(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		apierrors.BadRequest(c, "A photo file is required")
		return
	}
	if file.Size > maxPhotoBytes {
		apierrors.BadRequest(c, "Photo exceeds the maximum size")
		return
	}

	src, err := file.Open()
	if err != nil {
		apierrors.BadRequest(c, "Could not read the uploaded file")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxPhotoBytes))
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	photo, err := h.sessionService.UploadPhoto(c.Request.Context(), sessionID, file.Filename, data, file.Header.Get("Content-Type"), user)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			apierrors.NotFound(c, "Session not found")
		case errors.Is(err, services.ErrPhotoStorage):
			apierrors.InternalError(c, "Failed to store the photo")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToPhotoDTO(*photo))
}

// Finish completes the session once its gates hold
func (h *SessionHandler) Finish(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Finish(sessionID, user)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			apierrors.NotFound(c, "Session not found")
		case errors.Is(err, services.ErrSessionNotActive):
			apierrors.Conflict(c, "Session is not in progress")
		case errors.Is(err, services.ErrNoPhotos):
			apierrors.PreconditionFailed(c, "At least one photo is required before finishing")
		case errors.Is(err, services.ErrLinesIncomplete):
			apierrors.PreconditionFailed(c, "Not all items have been picked")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionDTO(*session))
}

// Lines returns the session's lines with product metadata
func (h *SessionHandler) Lines(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	details, err := h.sessionService.Lines(sessionID, user)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			apierrors.NotFound(c, "Session not found")
		case errors.Is(err, services.ErrSessionAccessDenied):
			apierrors.Forbidden(c, "")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	lines := make([]dto.LineDTO, 0, len(details))
	for _, detail := range details {
		lines = append(lines, dto.ToLineDTO(detail))
	}

	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"board-sync/internal/dto"
	"board-sync/internal/response"
	"board-sync/internal/service"
)

type FieldHandler struct {
	fieldService service.FieldService
}

func NewFieldHandler(fieldService service.FieldService) *FieldHandler {
	return &FieldHandler{
		fieldService: fieldService,
	}
}

// ListFields returns the active fields of a team ordered by position. The
// user is carried on the context so a first read can seed the starter board.
func (h *FieldHandler) ListFields(c *gin.Context) {
	teamID, ok := parseUUIDParam(c, "teamId")
	if !ok {
		return
	}

	ctx, ok := requestContextWithUser(c)
	if !ok {
		return
	}

	fields, err := h.fieldService.ListFields(ctx, teamID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, fields)
}

// CreateField creates a new field in a team's board
func (h *FieldHandler) CreateField(c *gin.Context) {
	teamID, ok := parseUUIDParam(c, "teamId")
	if !ok {
		return
	}

	var req dto.CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := requestContextWithUser(c)
	if !ok {
		return
	}

	field, err := h.fieldService.CreateField(ctx, teamID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, field)
}

// UpdateField applies a partial update to a field
func (h *FieldHandler) UpdateField(c *gin.Context) {
	fieldID, ok := parseUUIDParam(c, "fieldId")
	if !ok {
		return
	}

	var req dto.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	field, err := h.fieldService.UpdateField(c.Request.Context(), fieldID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, field)
}

// ArchiveField hides a field from the board without deleting it
func (h *FieldHandler) ArchiveField(c *gin.Context) {
	fieldID, ok := parseUUIDParam(c, "fieldId")
	if !ok {
		return
	}

	if err := h.fieldService.ArchiveField(c.Request.Context(), fieldID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, gin.H{"archived": true})
}

// parseUUIDParam parses a UUID path parameter, writing a validation error on failure
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// requestContextWithUser copies the authenticated user ID from the gin context
// onto the request context for the service layer
func requestContextWithUser(c *gin.Context) (context.Context, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "User ID not found in context")
		return nil, false
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid user ID format")
		return nil, false
	}
	return context.WithValue(c.Request.Context(), "user_id", userUUID), true
}

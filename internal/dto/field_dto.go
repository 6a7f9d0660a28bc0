package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateFieldRequest represents the request to create a new board field
type CreateFieldRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"max=2000"`
	Color       string `json:"color" binding:"omitempty,max=20"`
	Icon        string `json:"icon" binding:"omitempty,max=50"`
	Position    *int   `json:"position" binding:"omitempty,min=0"`
}

// UpdateFieldRequest represents the request to update a board field.
// All fields are optional; absent fields keep their current value.
type UpdateFieldRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Color       *string `json:"color" binding:"omitempty,max=20"`
	Icon        *string `json:"icon" binding:"omitempty,max=50"`
	Position    *int    `json:"position" binding:"omitempty,min=0"`
}

// FieldResponse represents the board field response
type FieldResponse struct {
	ID          uuid.UUID `json:"fieldId"`
	TeamID      uuid.UUID `json:"teamId"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	Position    int       `json:"position"`
	IsArchived  bool      `json:"isArchived"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

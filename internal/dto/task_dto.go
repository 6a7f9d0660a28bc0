package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest represents the request to create a new task
type CreateTaskRequest struct {
	FieldID     uuid.UUID  `json:"fieldId" binding:"required"`
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description" binding:"max=4000"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssigneeID  *uuid.UUID `json:"assigneeId,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// UpdateTaskRequest represents the request to update a task.
// All fields are optional; absent fields keep their current value.
// Completed toggles the completion timestamp.
type UpdateTaskRequest struct {
	FieldID     *uuid.UUID `json:"fieldId,omitempty"`
	Title       *string    `json:"title" binding:"omitempty,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=4000"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssigneeID  *uuid.UUID `json:"assigneeId,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
}

// TaskResponse represents the task response
type TaskResponse struct {
	ID          uuid.UUID  `json:"taskId"`
	TeamID      uuid.UUID  `json:"teamId"`
	FieldID     uuid.UUID  `json:"fieldId"`
	CreatorID   uuid.UUID  `json:"creatorId"`
	AssigneeID  *uuid.UUID `json:"assigneeId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

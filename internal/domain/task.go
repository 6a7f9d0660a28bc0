package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskPriority represents the urgency of a task
type TaskPriority string

// TaskPriority constants
const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// ValidTaskPriority reports whether p is a known priority value
func ValidTaskPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task represents one unit of work on a team's board.
// FieldID is the placement key: the column the task currently occupies.
// There is no foreign key constraint on FieldID; a task may reference an
// archived field indefinitely and is then simply not shown in any active
// column (dangling references are accepted, never reassigned).
type Task struct {
	BaseModel
	TeamID      uuid.UUID    `gorm:"type:uuid;not null;index:idx_tasks_team_id" json:"team_id"`
	FieldID     uuid.UUID    `gorm:"type:uuid;not null;index:idx_tasks_field_id" json:"field_id"`
	CreatorID   uuid.UUID    `gorm:"type:uuid;not null" json:"creator_id"`
	AssigneeID  *uuid.UUID   `gorm:"type:uuid;index:idx_tasks_assignee_id" json:"assignee_id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Deadline    *time.Time   `gorm:"type:timestamp;index:idx_tasks_deadline" json:"deadline"`
	CompletedAt *time.Time   `gorm:"type:timestamp" json:"completed_at"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}

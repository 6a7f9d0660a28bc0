package view

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"board-sync/internal/dto"
)

// DeadlineBucket selects tasks by how soon their deadline falls
type DeadlineBucket string

const (
	DeadlineAll     DeadlineBucket = "all"
	DeadlineOverdue DeadlineBucket = "overdue"
	DeadlineToday   DeadlineBucket = "today"
	DeadlineWeek    DeadlineBucket = "week"
	DeadlineMonth   DeadlineBucket = "month"
)

// Filter is the ephemeral per-view filter state. The zero value matches
// every task. Filters only shape projections; they never touch the cache.
type Filter struct {
	Search     string
	Priority   string
	AssigneeID *uuid.UUID
	CreatorID  *uuid.UUID
	Deadline   DeadlineBucket
}

// Column pairs a field with the tasks currently placed in it
type Column struct {
	Field dto.FieldResponse
	Tasks []dto.TaskResponse
}

// SortFields returns the fields ordered by position ascending, ties
// broken by identifier string so rendering is stable. The input is not
// modified.
func SortFields(fields []dto.FieldResponse) []dto.FieldResponse {
	out := make([]dto.FieldResponse, len(fields))
	copy(out, fields)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// FilterTasks returns the tasks matching every set filter field. now
// anchors the deadline buckets and is the one impure input; callers pass
// time.Now() in production and a fixed instant in tests.
func FilterTasks(tasks []dto.TaskResponse, filter Filter, now time.Time) []dto.TaskResponse {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var out []dto.TaskResponse
	for _, task := range tasks {
		if search != "" &&
			!strings.Contains(strings.ToLower(task.Title), search) &&
			!strings.Contains(strings.ToLower(task.Description), search) {
			continue
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		if filter.AssigneeID != nil && (task.AssigneeID == nil || *task.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if filter.CreatorID != nil && task.CreatorID != *filter.CreatorID {
			continue
		}
		if !matchesDeadline(task.Deadline, filter.Deadline, now) {
			continue
		}
		out = append(out, task)
	}
	return out
}

func matchesDeadline(deadline *time.Time, bucket DeadlineBucket, now time.Time) bool {
	if bucket == "" || bucket == DeadlineAll {
		return true
	}
	if deadline == nil {
		return false
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch bucket {
	case DeadlineOverdue:
		return deadline.Before(now)
	case DeadlineToday:
		return !deadline.Before(dayStart) && deadline.Before(dayStart.Add(24*time.Hour))
	case DeadlineWeek:
		return !deadline.Before(dayStart) && deadline.Before(dayStart.Add(7*24*time.Hour))
	case DeadlineMonth:
		return !deadline.Before(dayStart) && deadline.Before(dayStart.Add(30*24*time.Hour))
	}
	return true
}

// GroupByPlacement partitions tasks into one column per field, columns
// ordered like SortFields and tasks keeping their incoming order. Tasks
// whose field reference matches no given field are dropped from the
// projection; the reference itself is left alone.
func GroupByPlacement(tasks []dto.TaskResponse, fields []dto.FieldResponse) []Column {
	sorted := SortFields(fields)

	index := make(map[uuid.UUID]int, len(sorted))
	columns := make([]Column, len(sorted))
	for i, field := range sorted {
		index[field.ID] = i
		columns[i] = Column{Field: field}
	}

	for _, task := range tasks {
		if i, ok := index[task.FieldID]; ok {
			columns[i].Tasks = append(columns[i].Tasks, task)
		}
	}
	return columns
}

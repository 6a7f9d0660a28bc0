package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"board-sync/internal/domain"
	"board-sync/internal/dto"
	"board-sync/internal/metrics"
	"board-sync/internal/repository"
	"board-sync/internal/response"
)

// TaskService defines the interface for task business logic
type TaskService interface {
	ListTasks(ctx context.Context, teamID uuid.UUID) ([]*dto.TaskResponse, error)
	CreateTask(ctx context.Context, teamID uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	UpdateTask(ctx context.Context, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	DeleteTask(ctx context.Context, taskID uuid.UUID) error
}

// taskServiceImpl is the implementation of TaskService
type taskServiceImpl struct {
	taskRepo  repository.TaskRepository
	publisher ChangePublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewTaskService creates a new instance of TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	publisher ChangePublisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) TaskService {
	return &taskServiceImpl{
		taskRepo:  taskRepo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListTasks returns all tasks of a team, newest first
func (s *taskServiceImpl) ListTasks(ctx context.Context, teamID uuid.UUID) ([]*dto.TaskResponse, error) {
	tasks, err := s.taskRepo.FindByTeam(ctx, teamID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list tasks", err.Error())
	}

	responses := make([]*dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, toTaskResponse(task))
	}
	return responses, nil
}

// CreateTask creates a new task in a team. The field reference is stored as
// given: placement is an opaque pointer, not validated against live fields, so
// clients can keep tasks in columns that were archived concurrently.
func (s *taskServiceImpl) CreateTask(ctx context.Context, teamID uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	creatorID, exists := ctx.Value("user_id").(uuid.UUID)
	if !exists {
		return nil, response.NewAppError(response.ErrCodeUnauthorized, "User ID not found in context", "")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, response.NewAppError(response.ErrCodeValidation, "Task title must not be empty", "")
	}
	if req.FieldID == uuid.Nil {
		return nil, response.NewAppError(response.ErrCodeValidation, "Task must reference a field", "")
	}

	priority := domain.TaskPriority(req.Priority)
	if req.Priority == "" {
		priority = domain.PriorityMedium
	} else if !domain.ValidTaskPriority(priority) {
		return nil, response.NewAppError(response.ErrCodeValidation, "Unknown task priority", req.Priority)
	}

	task := &domain.Task{
		TeamID:      teamID,
		FieldID:     req.FieldID,
		CreatorID:   creatorID,
		AssigneeID:  req.AssigneeID,
		Title:       title,
		Description: req.Description,
		Priority:    priority,
		Deadline:    req.Deadline,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create task", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementTaskCreated()
	}
	s.publishChange(ctx, teamID, "insert")

	return toTaskResponse(task), nil
}

// UpdateTask applies a partial update to a task. The completed flag drives the
// completion timestamp: true stamps it once, false clears it.
func (s *taskServiceImpl) UpdateTask(ctx context.Context, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Task not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load task", err.Error())
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, response.NewAppError(response.ErrCodeValidation, "Task title must not be empty", "")
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.FieldID != nil {
		if *req.FieldID == uuid.Nil {
			return nil, response.NewAppError(response.ErrCodeValidation, "Task must reference a field", "")
		}
		task.FieldID = *req.FieldID
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		if !domain.ValidTaskPriority(priority) {
			return nil, response.NewAppError(response.ErrCodeValidation, "Unknown task priority", *req.Priority)
		}
		task.Priority = priority
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}
	if req.Deadline != nil {
		task.Deadline = req.Deadline
	}
	if req.Completed != nil {
		if *req.Completed {
			if task.CompletedAt == nil {
				completedAt := s.now()
				task.CompletedAt = &completedAt
			}
		} else {
			task.CompletedAt = nil
		}
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update task", err.Error())
	}

	s.publishChange(ctx, task.TeamID, "update")

	return toTaskResponse(task), nil
}

// DeleteTask permanently removes a task
func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewAppError(response.ErrCodeNotFound, "Task not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to load task", err.Error())
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete task", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementTaskDeleted()
	}
	s.publishChange(ctx, task.TeamID, "delete")

	return nil
}

func (s *taskServiceImpl) publishChange(ctx context.Context, teamID uuid.UUID, action string) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishChange(ctx, teamID, "tasks", action)
	if s.metrics != nil {
		s.metrics.RecordFeedEventPublished("tasks", action)
	}
}

func toTaskResponse(task *domain.Task) *dto.TaskResponse {
	return &dto.TaskResponse{
		ID:          task.ID,
		TeamID:      task.TeamID,
		FieldID:     task.FieldID,
		CreatorID:   task.CreatorID,
		AssigneeID:  task.AssigneeID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		Deadline:    task.Deadline,
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"board-sync/internal/domain"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	FindByTeam(ctx context.Context, teamID uuid.UUID) ([]*domain.Task, error)
	FindByField(ctx context.Context, fieldID uuid.UUID) ([]*domain.Task, error)
	CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// taskRepositoryImpl is the GORM implementation of TaskRepository
type taskRepositoryImpl struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepositoryImpl{db: db}
}

// Create creates a new task
func (r *taskRepositoryImpl) Create(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return err
	}
	return nil
}

// FindByID finds a task by ID
func (r *taskRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByTeam finds all tasks of a team, newest first. The id tiebreak keeps
// the order stable when tasks share a creation timestamp.
func (r *taskRepositoryImpl) FindByTeam(ctx context.Context, teamID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at DESC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByField finds all tasks placed in a field, newest first
func (r *taskRepositoryImpl) FindByField(ctx context.Context, fieldID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := r.db.WithContext(ctx).
		Where("field_id = ?", fieldID).
		Order("created_at DESC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountByTeam counts the tasks of a team
func (r *taskRepositoryImpl) CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("team_id = ?", teamID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Update updates a task
func (r *taskRepositoryImpl) Update(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return err
	}
	return nil
}

// Delete permanently removes a task
func (r *taskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Task{}, id).Error; err != nil {
		return err
	}
	return nil
}

package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"board-sync/internal/domain"
)

// MockFieldRepository is a mock implementation of FieldRepository
type MockFieldRepository struct {
	CreateFunc            func(ctx context.Context, field *domain.Field) error
	CreateBatchFunc       func(ctx context.Context, fields []*domain.Field) error
	FindByIDFunc          func(ctx context.Context, id uuid.UUID) (*domain.Field, error)
	FindActiveByTeamFunc  func(ctx context.Context, teamID uuid.UUID) ([]*domain.Field, error)
	CountActiveByTeamFunc func(ctx context.Context, teamID uuid.UUID) (int64, error)
	CountByTeamFunc       func(ctx context.Context, teamID uuid.UUID) (int64, error)
	UpdateFunc            func(ctx context.Context, field *domain.Field) error
	ArchiveFunc           func(ctx context.Context, id uuid.UUID) error
}

func (m *MockFieldRepository) Create(ctx context.Context, field *domain.Field) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, field)
	}
	return nil
}

func (m *MockFieldRepository) CreateBatch(ctx context.Context, fields []*domain.Field) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, fields)
	}
	return nil
}

func (m *MockFieldRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Field, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockFieldRepository) FindActiveByTeam(ctx context.Context, teamID uuid.UUID) ([]*domain.Field, error) {
	if m.FindActiveByTeamFunc != nil {
		return m.FindActiveByTeamFunc(ctx, teamID)
	}
	return nil, nil
}

func (m *MockFieldRepository) CountActiveByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	if m.CountActiveByTeamFunc != nil {
		return m.CountActiveByTeamFunc(ctx, teamID)
	}
	return 0, nil
}

func (m *MockFieldRepository) CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	if m.CountByTeamFunc != nil {
		return m.CountByTeamFunc(ctx, teamID)
	}
	return 0, nil
}

func (m *MockFieldRepository) Update(ctx context.Context, field *domain.Field) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, field)
	}
	return nil
}

func (m *MockFieldRepository) Archive(ctx context.Context, id uuid.UUID) error {
	if m.ArchiveFunc != nil {
		return m.ArchiveFunc(ctx, id)
	}
	return nil
}

// MockTaskRepository is a mock implementation of TaskRepository
type MockTaskRepository struct {
	CreateFunc      func(ctx context.Context, task *domain.Task) error
	FindByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	FindByTeamFunc  func(ctx context.Context, teamID uuid.UUID) ([]*domain.Task, error)
	FindByFieldFunc func(ctx context.Context, fieldID uuid.UUID) ([]*domain.Task, error)
	CountByTeamFunc func(ctx context.Context, teamID uuid.UUID) (int64, error)
	UpdateFunc      func(ctx context.Context, task *domain.Task) error
	DeleteFunc      func(ctx context.Context, id uuid.UUID) error
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, task)
	}
	return nil
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTaskRepository) FindByTeam(ctx context.Context, teamID uuid.UUID) ([]*domain.Task, error) {
	if m.FindByTeamFunc != nil {
		return m.FindByTeamFunc(ctx, teamID)
	}
	return nil, nil
}

func (m *MockTaskRepository) FindByField(ctx context.Context, fieldID uuid.UUID) ([]*domain.Task, error) {
	if m.FindByFieldFunc != nil {
		return m.FindByFieldFunc(ctx, fieldID)
	}
	return nil, nil
}

func (m *MockTaskRepository) CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	if m.CountByTeamFunc != nil {
		return m.CountByTeamFunc(ctx, teamID)
	}
	return 0, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, task)
	}
	return nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// publishedEvent captures one change broadcast
type publishedEvent struct {
	TeamID uuid.UUID
	Table  string
	Action string
}

// MockPublisher records published change events
type MockPublisher struct {
	mu     sync.Mutex
	Events []publishedEvent
}

func (m *MockPublisher) PublishChange(ctx context.Context, teamID uuid.UUID, table, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, publishedEvent{TeamID: teamID, Table: table, Action: action})
}

func (m *MockPublisher) Published() []publishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]publishedEvent, len(m.Events))
	copy(out, m.Events)
	return out
}

package board

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"board-sync/internal/dto"
	"board-sync/internal/response"
)

// MockRemoteStore is a configurable RemoteStore test double
type MockRemoteStore struct {
	ListFieldsFunc   func(ctx context.Context, teamID uuid.UUID) ([]dto.FieldResponse, error)
	ListTasksFunc    func(ctx context.Context, teamID uuid.UUID) ([]dto.TaskResponse, error)
	CreateFieldFunc  func(ctx context.Context, teamID uuid.UUID, req dto.CreateFieldRequest) (*dto.FieldResponse, error)
	UpdateFieldFunc  func(ctx context.Context, fieldID uuid.UUID, req dto.UpdateFieldRequest) (*dto.FieldResponse, error)
	ArchiveFieldFunc func(ctx context.Context, fieldID uuid.UUID) (*dto.FieldResponse, error)
	CreateTaskFunc   func(ctx context.Context, teamID uuid.UUID, req dto.CreateTaskRequest) (*dto.TaskResponse, error)
	UpdateTaskFunc   func(ctx context.Context, taskID uuid.UUID, req dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	DeleteTaskFunc   func(ctx context.Context, taskID uuid.UUID) error
	SubscribeFunc    func(ctx context.Context, teamID uuid.UUID, onChange func()) (func(), error)
}

func (m *MockRemoteStore) ListFields(ctx context.Context, teamID uuid.UUID) ([]dto.FieldResponse, error) {
	if m.ListFieldsFunc != nil {
		return m.ListFieldsFunc(ctx, teamID)
	}
	return nil, nil
}

func (m *MockRemoteStore) ListTasks(ctx context.Context, teamID uuid.UUID) ([]dto.TaskResponse, error) {
	if m.ListTasksFunc != nil {
		return m.ListTasksFunc(ctx, teamID)
	}
	return nil, nil
}

func (m *MockRemoteStore) CreateField(ctx context.Context, teamID uuid.UUID, req dto.CreateFieldRequest) (*dto.FieldResponse, error) {
	return m.CreateFieldFunc(ctx, teamID, req)
}

func (m *MockRemoteStore) UpdateField(ctx context.Context, fieldID uuid.UUID, req dto.UpdateFieldRequest) (*dto.FieldResponse, error) {
	return m.UpdateFieldFunc(ctx, fieldID, req)
}

func (m *MockRemoteStore) ArchiveField(ctx context.Context, fieldID uuid.UUID) (*dto.FieldResponse, error) {
	return m.ArchiveFieldFunc(ctx, fieldID)
}

func (m *MockRemoteStore) CreateTask(ctx context.Context, teamID uuid.UUID, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	return m.CreateTaskFunc(ctx, teamID, req)
}

func (m *MockRemoteStore) UpdateTask(ctx context.Context, taskID uuid.UUID, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	return m.UpdateTaskFunc(ctx, taskID, req)
}

func (m *MockRemoteStore) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	return m.DeleteTaskFunc(ctx, taskID)
}

func (m *MockRemoteStore) Subscribe(ctx context.Context, teamID uuid.UUID, onChange func()) (func(), error) {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, teamID, onChange)
	}
	return func() {}, nil
}

func makeTask(teamID, fieldID uuid.UUID, title string) dto.TaskResponse {
	return dto.TaskResponse{
		ID:        uuid.New(),
		TeamID:    teamID,
		FieldID:   fieldID,
		CreatorID: uuid.New(),
		Title:     title,
		Priority:  "medium",
		CreatedAt: time.Now(),
	}
}

func makeField(teamID uuid.UUID, name string, position int) dto.FieldResponse {
	return dto.FieldResponse{
		ID:        uuid.New(),
		TeamID:    teamID,
		CreatedBy: uuid.New(),
		Name:      name,
		Color:     "blue",
		Position:  position,
		CreatedAt: time.Now(),
	}
}

func TestStore_Load(t *testing.T) {
	teamID := uuid.New()
	field := makeField(teamID, "Todo", 0)
	task := makeTask(teamID, field.ID, "Fix bug")

	mock := &MockRemoteStore{
		ListFieldsFunc: func(ctx context.Context, id uuid.UUID) ([]dto.FieldResponse, error) {
			assert.Equal(t, teamID, id)
			return []dto.FieldResponse{field}, nil
		},
		ListTasksFunc: func(ctx context.Context, id uuid.UUID) ([]dto.TaskResponse, error) {
			return []dto.TaskResponse{task}, nil
		},
	}

	s := NewStore(mock, teamID, zap.NewNop())
	assert.Equal(t, StateUnloaded, s.State())

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, StateLoaded, s.State())
	assert.Len(t, s.Fields(), 1)
	assert.Len(t, s.Tasks(), 1)
}

func TestStore_LoadFailureKeepsSnapshot(t *testing.T) {
	teamID := uuid.New()
	field := makeField(teamID, "Todo", 0)
	var fail atomic.Bool

	mock := &MockRemoteStore{
		ListFieldsFunc: func(ctx context.Context, id uuid.UUID) ([]dto.FieldResponse, error) {
			if fail.Load() {
				return nil, &response.AppError{Code: response.ErrCodeInternal, Message: "backend down"}
			}
			return []dto.FieldResponse{field}, nil
		},
	}

	s := NewStore(mock, teamID, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))

	fail.Store(true)
	err := s.Load(context.Background())
	require.Error(t, err)

	// prior snapshot survives the failed refresh
	assert.Equal(t, StateLoaded, s.State())
	assert.Len(t, s.Fields(), 1)
}

func TestStore_SupersededLoadIsDiscarded(t *testing.T) {
	teamID := uuid.New()
	stale := makeField(teamID, "Stale", 0)
	fresh := makeField(teamID, "Fresh", 0)

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls atomic.Int32

	mock := &MockRemoteStore{
		ListFieldsFunc: func(ctx context.Context, id uuid.UUID) ([]dto.FieldResponse, error) {
			if calls.Add(1) == 1 {
				close(firstStarted)
				<-releaseFirst
				return []dto.FieldResponse{stale}, nil
			}
			return []dto.FieldResponse{fresh}, nil
		},
	}

	s := NewStore(mock, teamID, zap.NewNop())

	firstDone := make(chan error, 1)
	go func() { firstDone <- s.Load(context.Background()) }()
	<-firstStarted

	// a newer load completes while the first is still in flight
	require.NoError(t, s.Load(context.Background()))
	require.Len(t, s.Fields(), 1)
	assert.Equal(t, "Fresh", s.Fields()[0].Name)

	close(releaseFirst)
	require.NoError(t, <-firstDone)

	// the superseded result did not overwrite the newer one
	require.Len(t, s.Fields(), 1)
	assert.Equal(t, "Fresh", s.Fields()[0].Name)
}

func TestStore_CreateTaskOptimisticInsert(t *testing.T) {
	teamID := uuid.New()
	fieldID := uuid.New()
	created := makeTask(teamID, fieldID, "New task")

	mock := &MockRemoteStore{
		ListTasksFunc: func(ctx context.Context, id uuid.UUID) ([]dto.TaskResponse, error) {
			return []dto.TaskResponse{makeTask(teamID, fieldID, "Existing")}, nil
		},
		CreateTaskFunc: func(ctx context.Context, id uuid.UUID, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
			return &created, nil
		},
	}

	s := NewStore(mock, teamID, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))

	task, err := s.CreateTask(context.Background(), dto.CreateTaskRequest{FieldID: fieldID, Title: "New task"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, task.ID)

	tasks := s.Tasks()
	require.Len(t, tasks, 2)
	// newest first
	assert.Equal(t, created.ID, tasks[0].ID)
}

func TestStore_RefetchThenConfirmNoDuplicate(t *testing.T) {
	// A change feed refresh lands before the create response arrives.
	// The refetch already contains the task; the optimistic insert must
	// not duplicate it.
	teamID := uuid.New()
	fieldID := uuid.New()
	created := makeTask(teamID, fieldID, "Task X")

	mock := &MockRemoteStore{
		ListTasksFunc: func(ctx context.Context, id uuid.UUID) ([]dto.TaskResponse, error) {
			return []dto.TaskResponse{created}, nil
		},
		CreateTaskFunc: func(ctx context.Context, id uuid.UUID, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
			return &created, nil
		},
	}

	s := NewStore(mock, teamID, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))

	_, err := s.CreateTask(context.Background(), dto.CreateTaskRequest{FieldID: fieldID, Title: "Task X"})
	require.NoError(t, err)

	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
}

func TestStore_CreateTaskValidation(t *testing.T) {
	var backendCalled atomic.Bool
	mock := &MockRemoteStore{
		CreateTaskFunc: func(ctx context.Context, id uuid.UUID, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
			backendCalled.Store(true)
			return nil, nil
		},
	}

	s := NewStore(mock, uuid.New(), zap.NewNop())

	tests := []struct {
		name string
		req  dto.CreateTaskRequest
	}{
		{"empty title", dto.CreateTaskRequest{FieldID: uuid.New()}},
		{"whitespace title", dto.CreateTaskRequest{FieldID: uuid.New(), Title: "   "}},
		{"missing field", dto.CreateTaskRequest{Title: "ok"}},
		{"bad priority", dto.CreateTaskRequest{FieldID: uuid.New(), Title: "ok", Priority: "asap"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateTask(context.Background(), tt.req)
			require.Error(t, err)

			appErr, ok := err.(*response.AppError)
			require.True(t, ok)
			assert.Equal(t, response.ErrCodeValidation, appErr.Code)
			assert.False(t, backendCalled.Load())
			assert.Empty(t, s.Tasks())
		})
	}
}

func TestStore_UpdateTaskMovesField(t *testing.T) {
	teamID := uuid.New()
	todo := makeField(teamID, "Todo", 0)
	done := makeField(teamID, "Done", 1)
	task := makeTask(teamID, todo.ID, "Ship it")

	mock := &MockRemoteStore{
		ListFieldsFunc: func(ctx context.Context, id uuid.UUID) ([]dto.FieldResponse, error) {
			return []dto.FieldResponse{todo, done}, nil
		},
		ListTasksFunc: func(ctx context.Context, id uuid.UUID) ([]dto.TaskResponse, error) {
			return []dto.TaskResponse{task}, nil
		},
		UpdateTaskFunc: func(ctx context.Context, taskID uuid.UUID, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
			updated := task
			updated.FieldID = *req.FieldID
			return &updated, nil
		},
	}

	s := NewStore(mock, teamID, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))
	require.Len(t, s.TasksInField(todo.ID), 1)

	_, err := s.UpdateTask(context.Background(), task.ID, dto.UpdateTaskRequest{FieldID: &done.ID})
	require.NoError(t, err)

	assert.Empty(t, s.TasksInField(todo.ID))
	require.Len(t, s.TasksInField(done.ID), 1)
	assert.Equal(t, task.ID, s.TasksInField(done.ID)[0].ID)
}

func TestStore_ArchiveFieldKeepsTaskReferences(t *testing.T) {
	teamID := uuid.New()
	field := makeField(teamID, "Old lane", 0)
	tasks := []dto.TaskResponse{
		makeTask(teamID, field.ID, "a"),
		makeTask(teamID, field.ID, "b"),
		makeTask(teamID, field.ID, "c"),
	}

	mock := &MockRemoteStore{
		ListFieldsFunc: func(ctx context.Context, id uuid.UUID) ([]dto.FieldResponse, error) {
			return []dto.FieldResponse{field}, nil
		},
		ListTasksFunc: func(ctx context.Context, id uuid.UUID) ([]dto.TaskResponse, error) {
			return tasks, nil
		},
		ArchiveFieldFunc: func(ctx context.Context, fieldID uuid.UUID) (*dto.FieldResponse, error) {
			archived := field
			archived.IsArchived = true
			return &archived, nil
		},
	}

	s := NewStore(mock, teamID, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, s.ArchiveField(context.Background(), field.ID))

	assert.Empty(t, s.Fields())
	// dangling references are preserved, not reassigned
	require.Len(t, s.Tasks(), 3)
	for _, task := range s.Tasks() {
		assert.Equal(t, field.ID, task.FieldID)
	}
}

func TestStore_DeleteTask(t *testing.T) {
	teamID := uuid.New()
	fieldID := uuid.New()
	task := makeTask(teamID, fieldID, "doomed")

	mock := &MockRemoteStore{
		ListTasksFunc: func(ctx context.Context, id uuid.UUID) ([]dto.TaskResponse, error) {
			return []dto.TaskResponse{task}, nil
		},
		DeleteTaskFunc: func(ctx context.Context, taskID uuid.UUID) error {
			assert.Equal(t, task.ID, taskID)
			return nil
		},
	}

	s := NewStore(mock, teamID, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, s.DeleteTask(context.Background(), task.ID))
	assert.Empty(t, s.Tasks())
}

func TestStore_FailedMutationLeavesCacheUnchanged(t *testing.T) {
	teamID := uuid.New()
	fieldID := uuid.New()
	task := makeTask(teamID, fieldID, "keep me")

	mock := &MockRemoteStore{
		ListTasksFunc: func(ctx context.Context, id uuid.UUID) ([]dto.TaskResponse, error) {
			return []dto.TaskResponse{task}, nil
		},
		DeleteTaskFunc: func(ctx context.Context, taskID uuid.UUID) error {
			return &response.AppError{Code: response.ErrCodeInternal, Message: "backend down"}
		},
	}

	s := NewStore(mock, teamID, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))

	require.Error(t, s.DeleteTask(context.Background(), task.ID))
	require.Len(t, s.Tasks(), 1)
}

func TestStore_StartTriggersRefreshOnSignal(t *testing.T) {
	teamID := uuid.New()
	var listCalls atomic.Int32
	var onChange func()

	mock := &MockRemoteStore{
		ListFieldsFunc: func(ctx context.Context, id uuid.UUID) ([]dto.FieldResponse, error) {
			listCalls.Add(1)
			return nil, nil
		},
		SubscribeFunc: func(ctx context.Context, id uuid.UUID, cb func()) (func(), error) {
			onChange = cb
			return func() {}, nil
		},
	}

	s := NewStore(mock, teamID, zap.NewNop())
	defer s.Close()
	refreshed := make(chan struct{}, 1)
	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.Start(context.Background(), func() {
		refreshed <- struct{}{}
	}))
	require.NotNil(t, onChange)

	before := listCalls.Load()
	onChange()

	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh notification not delivered")
	}
	assert.Greater(t, listCalls.Load(), before)
}

func TestStore_CloseReleasesFeedOnce(t *testing.T) {
	var unsubCalls atomic.Int32
	mock := &MockRemoteStore{
		SubscribeFunc: func(ctx context.Context, id uuid.UUID, cb func()) (func(), error) {
			return func() { unsubCalls.Add(1) }, nil
		},
	}

	s := NewStore(mock, uuid.New(), zap.NewNop())
	require.NoError(t, s.Start(context.Background(), nil))

	s.Close()
	s.Close()

	assert.Equal(t, int32(1), unsubCalls.Load())
	assert.Equal(t, StateUnloaded, s.State())

	// mutations after close are rejected before reaching the backend
	err := s.Load(context.Background())
	require.Error(t, err)
}

func TestStore_TaskIDsStayUnique(t *testing.T) {
	teamID := uuid.New()
	fieldID := uuid.New()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("repeated optimistic inserts never duplicate a task", prop.ForAll(
		func(repeats int) bool {
			created := makeTask(teamID, fieldID, "same task")
			mock := &MockRemoteStore{
				CreateTaskFunc: func(ctx context.Context, id uuid.UUID, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
					return &created, nil
				},
			}
			s := NewStore(mock, teamID, zap.NewNop())
			for i := 0; i < repeats; i++ {
				if _, err := s.CreateTask(context.Background(), dto.CreateTaskRequest{FieldID: fieldID, Title: "same task"}); err != nil {
					return false
				}
			}
			seen := map[uuid.UUID]bool{}
			for _, task := range s.Tasks() {
				if seen[task.ID] {
					return false
				}
				seen[task.ID] = true
			}
			return len(s.Tasks()) == 1
		},
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}

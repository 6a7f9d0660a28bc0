package board

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"board-sync/internal/domain"
	"board-sync/internal/dto"
	"board-sync/internal/remote"
	"board-sync/internal/response"
)

// RemoteStore is what the cache needs from the backend gateway.
// Subscribe returns an unsubscribe handle that must be invoked exactly
// once to release the feed.
type RemoteStore interface {
	ListFields(ctx context.Context, teamID uuid.UUID) ([]dto.FieldResponse, error)
	ListTasks(ctx context.Context, teamID uuid.UUID) ([]dto.TaskResponse, error)
	CreateField(ctx context.Context, teamID uuid.UUID, req dto.CreateFieldRequest) (*dto.FieldResponse, error)
	UpdateField(ctx context.Context, fieldID uuid.UUID, req dto.UpdateFieldRequest) (*dto.FieldResponse, error)
	ArchiveField(ctx context.Context, fieldID uuid.UUID) (*dto.FieldResponse, error)
	CreateTask(ctx context.Context, teamID uuid.UUID, req dto.CreateTaskRequest) (*dto.TaskResponse, error)
	UpdateTask(ctx context.Context, taskID uuid.UUID, req dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	DeleteTask(ctx context.Context, taskID uuid.UUID) error
	Subscribe(ctx context.Context, teamID uuid.UUID, onChange func()) (unsubscribe func(), err error)
}

// clientStore adapts *remote.Client to RemoteStore
type clientStore struct {
	client *remote.Client
}

// NewClientStore wraps a remote.Client so it can back a Store
func NewClientStore(client *remote.Client) RemoteStore {
	return clientStore{client: client}
}

func (a clientStore) ListFields(ctx context.Context, teamID uuid.UUID) ([]dto.FieldResponse, error) {
	return a.client.ListFields(ctx, teamID)
}

func (a clientStore) ListTasks(ctx context.Context, teamID uuid.UUID) ([]dto.TaskResponse, error) {
	return a.client.ListTasks(ctx, teamID)
}

func (a clientStore) CreateField(ctx context.Context, teamID uuid.UUID, req dto.CreateFieldRequest) (*dto.FieldResponse, error) {
	return a.client.CreateField(ctx, teamID, req)
}

func (a clientStore) UpdateField(ctx context.Context, fieldID uuid.UUID, req dto.UpdateFieldRequest) (*dto.FieldResponse, error) {
	return a.client.UpdateField(ctx, fieldID, req)
}

func (a clientStore) ArchiveField(ctx context.Context, fieldID uuid.UUID) (*dto.FieldResponse, error) {
	return a.client.ArchiveField(ctx, fieldID)
}

func (a clientStore) CreateTask(ctx context.Context, teamID uuid.UUID, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	return a.client.CreateTask(ctx, teamID, req)
}

func (a clientStore) UpdateTask(ctx context.Context, taskID uuid.UUID, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	return a.client.UpdateTask(ctx, taskID, req)
}

func (a clientStore) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	return a.client.DeleteTask(ctx, taskID)
}

func (a clientStore) Subscribe(ctx context.Context, teamID uuid.UUID, onChange func()) (func(), error) {
	sub, err := a.client.Subscribe(ctx, teamID, onChange)
	if err != nil {
		return nil, err
	}
	return sub.Close, nil
}

// State describes the cache lifecycle for one team
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "unloaded"
	}
}

// Store is the in-memory cache of one team's board. It is the single
// source of truth consumers render from: mutations apply an optimistic
// local patch after the backend acknowledges, and change feed signals
// trigger a full re-fetch that replaces both collections wholesale.
//
// Consistency is last-refresh-wins. A load that was superseded by a
// newer one before completing is discarded, never merged.
type Store struct {
	store  RemoteStore
	teamID uuid.UUID
	logger *zap.Logger

	mu          sync.Mutex
	state       State
	fields      []dto.FieldResponse
	tasks       []dto.TaskResponse
	loadGen     uint64
	unsubscribe func()
	closed      bool
}

// NewStore creates an unloaded cache for the given team
func NewStore(store RemoteStore, teamID uuid.UUID, logger *zap.Logger) *Store {
	return &Store{
		store:  store,
		teamID: teamID,
		logger: logger,
	}
}

// State returns the current lifecycle state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Fields returns a snapshot of the cached fields
func (s *Store) Fields() []dto.FieldResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dto.FieldResponse, len(s.fields))
	copy(out, s.fields)
	return out
}

// Tasks returns a snapshot of the cached tasks, newest-created first
func (s *Store) Tasks() []dto.TaskResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dto.TaskResponse, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// TasksInField returns the cached tasks placed in the given field.
// Plain scan, no index; boards are small.
func (s *Store) TasksInField(fieldID uuid.UUID) []dto.TaskResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []dto.TaskResponse
	for _, task := range s.tasks {
		if task.FieldID == fieldID {
			out = append(out, task)
		}
	}
	return out
}

// Load fetches fields and tasks concurrently and replaces the cache
// wholesale with the result. If another Load starts before this one
// finishes, this one's result is discarded. On failure the previous
// snapshot stays visible.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return response.NewAppError(response.ErrCodeValidation, "board store is closed", "")
	}
	s.loadGen++
	gen := s.loadGen
	s.state = StateLoading
	s.mu.Unlock()

	var (
		wg        sync.WaitGroup
		fields    []dto.FieldResponse
		tasks     []dto.TaskResponse
		fieldsErr error
		tasksErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		fields, fieldsErr = s.store.ListFields(ctx, s.teamID)
	}()
	go func() {
		defer wg.Done()
		tasks, tasksErr = s.store.ListTasks(ctx, s.teamID)
	}()
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	// A later load superseded this one; drop the result
	if gen != s.loadGen {
		return nil
	}

	if fieldsErr != nil || tasksErr != nil {
		// Stay on the last known good snapshot
		if len(s.fields) > 0 || len(s.tasks) > 0 {
			s.state = StateLoaded
		} else {
			s.state = StateUnloaded
		}
		if fieldsErr != nil {
			return fieldsErr
		}
		return tasksErr
	}

	s.fields = fields
	s.tasks = tasks
	s.state = StateLoaded
	return nil
}

// Start opens the team's change feed. Every signal triggers a full
// re-fetch; the feed carries no row data and is never parsed for deltas.
// onRefresh, when non-nil, runs after each successful feed-triggered
// refresh so consumers can re-render.
func (s *Store) Start(ctx context.Context, onRefresh func()) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return response.NewAppError(response.ErrCodeValidation, "board store is closed", "")
	}
	if s.unsubscribe != nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	unsubscribe, err := s.store.Subscribe(ctx, s.teamID, func() {
		go func() {
			if err := s.Load(context.Background()); err != nil {
				s.logger.Warn("Change feed refresh failed",
					zap.String("team_id", s.teamID.String()),
					zap.Error(err),
				)
				return
			}
			if onRefresh != nil {
				onRefresh()
			}
		}()
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsubscribe()
		return nil
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	return nil
}

// Close releases the change feed and empties the cache. Safe to call
// more than once.
func (s *Store) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.closed = true
	s.fields = nil
	s.tasks = nil
	s.state = StateUnloaded
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// CreateField validates, creates the field on the backend and appends
// the confirmed record to the cache.
func (s *Store) CreateField(ctx context.Context, req dto.CreateFieldRequest) (*dto.FieldResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, response.NewAppError(response.ErrCodeValidation, "field name is required", "")
	}
	if req.Color != "" && !domain.ValidFieldColor(domain.FieldColor(req.Color)) {
		return nil, response.NewAppError(response.ErrCodeValidation, "invalid field color", req.Color)
	}

	field, err := s.store.CreateField(ctx, s.teamID, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.fields = append(removeField(s.fields, field.ID), *field)
	}
	return field, nil
}

// UpdateField applies a partial update and replaces the cached record
func (s *Store) UpdateField(ctx context.Context, fieldID uuid.UUID, req dto.UpdateFieldRequest) (*dto.FieldResponse, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, response.NewAppError(response.ErrCodeValidation, "field name cannot be empty", "")
	}
	if req.Color != nil && !domain.ValidFieldColor(domain.FieldColor(*req.Color)) {
		return nil, response.NewAppError(response.ErrCodeValidation, "invalid field color", *req.Color)
	}

	field, err := s.store.UpdateField(ctx, fieldID, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		for i := range s.fields {
			if s.fields[i].ID == field.ID {
				s.fields[i] = *field
				break
			}
		}
	}
	return field, nil
}

// ArchiveField archives the field and removes it from the cached active
// list. Tasks referencing it keep their field reference untouched.
func (s *Store) ArchiveField(ctx context.Context, fieldID uuid.UUID) error {
	if _, err := s.store.ArchiveField(ctx, fieldID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.fields = removeField(s.fields, fieldID)
	}
	return nil
}

// CreateTask validates, creates the task on the backend and prepends
// the confirmed record so newest-first ordering holds.
func (s *Store) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, response.NewAppError(response.ErrCodeValidation, "task title is required", "")
	}
	if req.FieldID == uuid.Nil {
		return nil, response.NewAppError(response.ErrCodeValidation, "field is required", "")
	}
	if req.Priority != "" && !domain.ValidTaskPriority(domain.TaskPriority(req.Priority)) {
		return nil, response.NewAppError(response.ErrCodeValidation, "invalid task priority", req.Priority)
	}

	task, err := s.store.CreateTask(ctx, s.teamID, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.tasks = append([]dto.TaskResponse{*task}, removeTask(s.tasks, task.ID)...)
	}
	return task, nil
}

// UpdateTask applies a partial update and replaces the cached record
func (s *Store) UpdateTask(ctx context.Context, taskID uuid.UUID, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, response.NewAppError(response.ErrCodeValidation, "task title cannot be empty", "")
	}
	if req.Priority != nil && !domain.ValidTaskPriority(domain.TaskPriority(*req.Priority)) {
		return nil, response.NewAppError(response.ErrCodeValidation, "invalid task priority", *req.Priority)
	}

	task, err := s.store.UpdateTask(ctx, taskID, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		for i := range s.tasks {
			if s.tasks[i].ID == task.ID {
				s.tasks[i] = *task
				break
			}
		}
	}
	return task, nil
}

// DeleteTask permanently deletes the task and drops it from the cache
func (s *Store) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.tasks = removeTask(s.tasks, taskID)
	}
	return nil
}

func removeField(fields []dto.FieldResponse, id uuid.UUID) []dto.FieldResponse {
	out := fields[:0]
	for _, f := range fields {
		if f.ID != id {
			out = append(out, f)
		}
	}
	return out
}

func removeTask(tasks []dto.TaskResponse, id uuid.UUID) []dto.TaskResponse {
	out := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"board-sync/internal/domain"
)

func setupTaskTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	// Create tasks table for SQLite compatibility
	db.Exec(`CREATE TABLE tasks (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		team_id TEXT NOT NULL,
		field_id TEXT NOT NULL,
		creator_id TEXT NOT NULL,
		assignee_id TEXT,
		title TEXT NOT NULL,
		description TEXT,
		priority TEXT NOT NULL DEFAULT 'medium',
		deadline DATETIME,
		completed_at DATETIME
	)`)

	return db
}

func newTestTask(teamID, fieldID uuid.UUID, title string, createdAt time.Time) *domain.Task {
	return &domain.Task{
		BaseModel: domain.BaseModel{
			ID:        uuid.New(),
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
		TeamID:    teamID,
		FieldID:   fieldID,
		CreatorID: uuid.New(),
		Title:     title,
		Priority:  domain.PriorityMedium,
	}
}

func TestTaskRepository_FindByTeam_NewestFirst(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	teamID := uuid.New()
	fieldID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Insert oldest first, expect newest first back
	db.Create(newTestTask(teamID, fieldID, "oldest", base))
	db.Create(newTestTask(teamID, fieldID, "middle", base.Add(time.Hour)))
	db.Create(newTestTask(teamID, fieldID, "newest", base.Add(2*time.Hour)))

	// Another team's task must not show up
	db.Create(newTestTask(uuid.New(), fieldID, "foreign", base.Add(3*time.Hour)))

	tasks, err := repo.FindByTeam(ctx, teamID)
	if err != nil {
		t.Fatalf("FindByTeam() error = %v", err)
	}

	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	wantTitles := []string{"newest", "middle", "oldest"}
	for i, want := range wantTitles {
		if tasks[i].Title != want {
			t.Errorf("tasks[%d].Title = %q, want %q", i, tasks[i].Title, want)
		}
	}
}

func TestTaskRepository_FindByTeam_StableOrderForEqualTimestamps(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	teamID := uuid.New()
	fieldID := uuid.New()
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Same created_at for all three: the id tiebreak must keep the order
	// identical across repeated reads.
	for _, title := range []string{"a", "b", "c"} {
		db.Create(newTestTask(teamID, fieldID, title, createdAt))
	}

	first, err := repo.FindByTeam(ctx, teamID)
	if err != nil {
		t.Fatalf("FindByTeam() error = %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(first))
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].ID.String() >= first[i].ID.String() {
			t.Errorf("ids not ascending at %d: %s >= %s", i, first[i-1].ID, first[i].ID)
		}
	}

	for n := 0; n < 3; n++ {
		again, err := repo.FindByTeam(ctx, teamID)
		if err != nil {
			t.Fatalf("FindByTeam() error = %v", err)
		}
		for i := range first {
			if again[i].ID != first[i].ID {
				t.Fatalf("order changed between reads at index %d", i)
			}
		}
	}
}

func TestTaskRepository_FindByField(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	teamID := uuid.New()
	fieldA := uuid.New()
	fieldB := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db.Create(newTestTask(teamID, fieldA, "in A", base))
	db.Create(newTestTask(teamID, fieldB, "in B", base.Add(time.Minute)))

	tasks, err := repo.FindByField(ctx, fieldA)
	if err != nil {
		t.Fatalf("FindByField() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task in field A, got %d", len(tasks))
	}
	if tasks[0].Title != "in A" {
		t.Errorf("Title = %q, want %q", tasks[0].Title, "in A")
	}
}

func TestTaskRepository_Update(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task := newTestTask(uuid.New(), uuid.New(), "write report", time.Now().UTC())
	db.Create(task)

	// Move to another column and complete it
	newField := uuid.New()
	completedAt := time.Now().UTC()
	task.FieldID = newField
	task.Priority = domain.PriorityUrgent
	task.CompletedAt = &completedAt
	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := repo.FindByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.FieldID != newField {
		t.Errorf("FieldID = %v, want %v", found.FieldID, newField)
	}
	if found.Priority != domain.PriorityUrgent {
		t.Errorf("Priority = %q, want %q", found.Priority, domain.PriorityUrgent)
	}
	if found.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
}

func TestTaskRepository_Delete(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	teamID := uuid.New()
	task := newTestTask(teamID, uuid.New(), "obsolete", time.Now().UTC())
	db.Create(task)
	keep := newTestTask(teamID, uuid.New(), "keep", time.Now().UTC())
	db.Create(keep)

	if err := repo.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// Hard delete: the row is gone for good
	_, err := repo.FindByID(ctx, task.ID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("FindByID() after delete error = %v, want gorm.ErrRecordNotFound", err)
	}

	count, err := repo.CountByTeam(ctx, teamID)
	if err != nil {
		t.Fatalf("CountByTeam() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountByTeam() = %d, want 1", count)
	}
}

func TestTaskRepository_CountByTeam(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	teamID := uuid.New()
	db.Create(newTestTask(teamID, uuid.New(), "one", time.Now().UTC()))
	db.Create(newTestTask(teamID, uuid.New(), "two", time.Now().UTC()))
	db.Create(newTestTask(uuid.New(), uuid.New(), "foreign", time.Now().UTC()))

	count, err := repo.CountByTeam(ctx, teamID)
	if err != nil {
		t.Fatalf("CountByTeam() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountByTeam() = %d, want 2", count)
	}
}

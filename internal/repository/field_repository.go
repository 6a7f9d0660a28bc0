package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"board-sync/internal/domain"
)

// FieldRepository defines the interface for board field data access
type FieldRepository interface {
	Create(ctx context.Context, field *domain.Field) error
	CreateBatch(ctx context.Context, fields []*domain.Field) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Field, error)
	FindActiveByTeam(ctx context.Context, teamID uuid.UUID) ([]*domain.Field, error)
	CountActiveByTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
	CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
	Update(ctx context.Context, field *domain.Field) error
	Archive(ctx context.Context, id uuid.UUID) error
}

// fieldRepositoryImpl is the GORM implementation of FieldRepository
type fieldRepositoryImpl struct {
	db *gorm.DB
}

// NewFieldRepository creates a new instance of FieldRepository
func NewFieldRepository(db *gorm.DB) FieldRepository {
	return &fieldRepositoryImpl{db: db}
}

// Create creates a new field
func (r *fieldRepositoryImpl) Create(ctx context.Context, field *domain.Field) error {
	if err := r.db.WithContext(ctx).Create(field).Error; err != nil {
		return err
	}
	return nil
}

// CreateBatch creates multiple fields in a single insert
func (r *fieldRepositoryImpl) CreateBatch(ctx context.Context, fields []*domain.Field) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&fields).Error; err != nil {
		return err
	}
	return nil
}

// FindByID finds a field by ID, archived ones included
func (r *fieldRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Field, error) {
	var field domain.Field
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&field).Error; err != nil {
		return nil, err
	}
	return &field, nil
}

// FindActiveByTeam finds all non-archived fields of a team ordered by position.
// ID breaks ties so the ordering stays stable across fetches.
func (r *fieldRepositoryImpl) FindActiveByTeam(ctx context.Context, teamID uuid.UUID) ([]*domain.Field, error) {
	var fields []*domain.Field
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND is_archived = ?", teamID, false).
		Order("position ASC, id ASC").
		Find(&fields).Error; err != nil {
		return nil, err
	}
	return fields, nil
}

// CountActiveByTeam counts the non-archived fields of a team
func (r *fieldRepositoryImpl) CountActiveByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Field{}).
		Where("team_id = ? AND is_archived = ?", teamID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByTeam counts all fields of a team, archived ones included
func (r *fieldRepositoryImpl) CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Field{}).
		Where("team_id = ?", teamID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Update updates a field
func (r *fieldRepositoryImpl) Update(ctx context.Context, field *domain.Field) error {
	if err := r.db.WithContext(ctx).Save(field).Error; err != nil {
		return err
	}
	return nil
}

// Archive marks a field archived. The row stays in place so tasks that still
// reference the field keep resolving by ID.
func (r *fieldRepositoryImpl) Archive(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Model(&domain.Field{}).
		Where("id = ?", id).
		Update("is_archived", true).Error; err != nil {
		return err
	}
	return nil
}

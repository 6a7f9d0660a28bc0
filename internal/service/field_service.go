package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"board-sync/internal/domain"
	"board-sync/internal/dto"
	"board-sync/internal/metrics"
	"board-sync/internal/repository"
	"board-sync/internal/response"
)

// ChangePublisher broadcasts board change signals to subscribed clients.
// database.EventPublisher satisfies it.
type ChangePublisher interface {
	PublishChange(ctx context.Context, teamID uuid.UUID, table, action string)
}

// FieldService defines the interface for board field business logic
type FieldService interface {
	ListFields(ctx context.Context, teamID uuid.UUID) ([]*dto.FieldResponse, error)
	CreateField(ctx context.Context, teamID uuid.UUID, req *dto.CreateFieldRequest) (*dto.FieldResponse, error)
	UpdateField(ctx context.Context, fieldID uuid.UUID, req *dto.UpdateFieldRequest) (*dto.FieldResponse, error)
	ArchiveField(ctx context.Context, fieldID uuid.UUID) error
}

// fieldServiceImpl is the implementation of FieldService
type fieldServiceImpl struct {
	fieldRepo repository.FieldRepository
	publisher ChangePublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewFieldService creates a new instance of FieldService
func NewFieldService(
	fieldRepo repository.FieldRepository,
	publisher ChangePublisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) FieldService {
	return &fieldServiceImpl{
		fieldRepo: fieldRepo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// ListFields returns the active fields of a team ordered by position. A team
// that has never had any fields gets the starter board seeded on first read.
func (s *fieldServiceImpl) ListFields(ctx context.Context, teamID uuid.UUID) ([]*dto.FieldResponse, error) {
	fields, err := s.fieldRepo.FindActiveByTeam(ctx, teamID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list fields", err.Error())
	}

	if len(fields) == 0 {
		seeded, err := s.seedDefaultFields(ctx, teamID)
		if err != nil {
			return nil, err
		}
		fields = seeded
	}

	responses := make([]*dto.FieldResponse, 0, len(fields))
	for _, field := range fields {
		responses = append(responses, toFieldResponse(field))
	}
	return responses, nil
}

// seedDefaultFields creates the starter board for a team that has never had
// any fields. A team that archived every column keeps its empty board, so the
// check counts archived fields too. Without an authenticated user in the
// context the board is simply left empty.
func (s *fieldServiceImpl) seedDefaultFields(ctx context.Context, teamID uuid.UUID) ([]*domain.Field, error) {
	total, err := s.fieldRepo.CountByTeam(ctx, teamID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check board state", err.Error())
	}
	if total > 0 {
		return nil, nil
	}

	creatorID, ok := ctx.Value("user_id").(uuid.UUID)
	if !ok {
		return nil, nil
	}

	fields := getDefaultFields(teamID, creatorID)
	if err := s.fieldRepo.CreateBatch(ctx, fields); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to seed default fields", err.Error())
	}

	s.logger.Info("Seeded default board fields",
		zap.String("team_id", teamID.String()),
		zap.Int("count", len(fields)),
	)
	if s.metrics != nil {
		for range fields {
			s.metrics.IncrementFieldCreated()
		}
	}
	s.publishChange(ctx, teamID, "insert")

	return fields, nil
}

// CreateField creates a new field for a team. When no position is given the
// field is appended after the team's existing active fields.
func (s *fieldServiceImpl) CreateField(ctx context.Context, teamID uuid.UUID, req *dto.CreateFieldRequest) (*dto.FieldResponse, error) {
	// Extract user_id from context (set by auth middleware as uuid.UUID)
	creatorID, exists := ctx.Value("user_id").(uuid.UUID)
	if !exists {
		return nil, response.NewAppError(response.ErrCodeUnauthorized, "User ID not found in context", "")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewAppError(response.ErrCodeValidation, "Field name must not be empty", "")
	}

	color := domain.FieldColor(req.Color)
	if req.Color == "" {
		color = domain.FieldColorBlue
	} else if !domain.ValidFieldColor(color) {
		return nil, response.NewAppError(response.ErrCodeValidation, "Unknown field color", req.Color)
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		count, err := s.fieldRepo.CountActiveByTeam(ctx, teamID)
		if err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to determine field position", err.Error())
		}
		position = int(count)
	}

	field := &domain.Field{
		TeamID:      teamID,
		CreatedBy:   creatorID,
		Name:        name,
		Description: req.Description,
		Color:       color,
		Icon:        req.Icon,
		Position:    position,
	}

	if err := s.fieldRepo.Create(ctx, field); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create field", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementFieldCreated()
	}
	s.publishChange(ctx, teamID, "insert")

	return toFieldResponse(field), nil
}

// UpdateField applies a partial update to a field. Archived fields stay
// updatable; renaming a column must not depend on its visibility.
func (s *fieldServiceImpl) UpdateField(ctx context.Context, fieldID uuid.UUID, req *dto.UpdateFieldRequest) (*dto.FieldResponse, error) {
	field, err := s.fieldRepo.FindByID(ctx, fieldID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Field not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load field", err.Error())
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, response.NewAppError(response.ErrCodeValidation, "Field name must not be empty", "")
		}
		field.Name = name
	}
	if req.Description != nil {
		field.Description = *req.Description
	}
	if req.Color != nil {
		color := domain.FieldColor(*req.Color)
		if !domain.ValidFieldColor(color) {
			return nil, response.NewAppError(response.ErrCodeValidation, "Unknown field color", *req.Color)
		}
		field.Color = color
	}
	if req.Icon != nil {
		field.Icon = *req.Icon
	}
	if req.Position != nil {
		if *req.Position < 0 {
			return nil, response.NewAppError(response.ErrCodeValidation, "Position must not be negative", "")
		}
		field.Position = *req.Position
	}

	if err := s.fieldRepo.Update(ctx, field); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update field", err.Error())
	}

	s.publishChange(ctx, field.TeamID, "update")

	return toFieldResponse(field), nil
}

// ArchiveField hides a field from the active column list. Tasks referencing
// the field are left untouched.
func (s *fieldServiceImpl) ArchiveField(ctx context.Context, fieldID uuid.UUID) error {
	field, err := s.fieldRepo.FindByID(ctx, fieldID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewAppError(response.ErrCodeNotFound, "Field not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to load field", err.Error())
	}

	if field.IsArchived {
		// Archiving twice is a no-op, not an error
		return nil
	}

	if err := s.fieldRepo.Archive(ctx, fieldID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to archive field", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementFieldArchived()
	}
	s.publishChange(ctx, field.TeamID, "update")

	return nil
}

func (s *fieldServiceImpl) publishChange(ctx context.Context, teamID uuid.UUID, action string) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishChange(ctx, teamID, "fields", action)
	if s.metrics != nil {
		s.metrics.RecordFeedEventPublished("fields", action)
	}
}

func toFieldResponse(field *domain.Field) *dto.FieldResponse {
	return &dto.FieldResponse{
		ID:          field.ID,
		TeamID:      field.TeamID,
		CreatedBy:   field.CreatedBy,
		Name:        field.Name,
		Description: field.Description,
		Color:       string(field.Color),
		Icon:        field.Icon,
		Position:    field.Position,
		IsArchived:  field.IsArchived,
		CreatedAt:   field.CreatedAt,
		UpdatedAt:   field.UpdatedAt,
	}
}

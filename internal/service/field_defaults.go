package service

import (
	"github.com/google/uuid"

	"board-sync/internal/domain"
)

// fieldTemplate describes one column of the starter board
type fieldTemplate struct {
	Name  string
	Color domain.FieldColor
}

// defaultFieldTemplates is the board layout every team starts with
var defaultFieldTemplates = []fieldTemplate{
	{Name: "To Do", Color: domain.FieldColorGray},
	{Name: "In Progress", Color: domain.FieldColorBlue},
	{Name: "Review", Color: domain.FieldColorPurple},
	{Name: "Done", Color: domain.FieldColorGreen},
}

// getDefaultFields builds the starter fields for a team. IDs are assigned
// here so the batch insert does not rely on a database-side default.
func getDefaultFields(teamID, creatorID uuid.UUID) []*domain.Field {
	fields := make([]*domain.Field, 0, len(defaultFieldTemplates))
	for i, tpl := range defaultFieldTemplates {
		fields = append(fields, &domain.Field{
			BaseModel: domain.BaseModel{ID: uuid.New()},
			TeamID:    teamID,
			CreatedBy: creatorID,
			Name:      tpl.Name,
			Color:     tpl.Color,
			Position:  i,
		})
	}
	return fields
}

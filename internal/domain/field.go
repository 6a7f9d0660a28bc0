package domain

import "github.com/google/uuid"

// FieldColor is the color tag of a board column, limited to a fixed palette
type FieldColor string

// FieldColor constants
const (
	FieldColorGray   FieldColor = "gray"
	FieldColorRed    FieldColor = "red"
	FieldColorOrange FieldColor = "orange"
	FieldColorYellow FieldColor = "yellow"
	FieldColorGreen  FieldColor = "green"
	FieldColorTeal   FieldColor = "teal"
	FieldColorBlue   FieldColor = "blue"
	FieldColorPurple FieldColor = "purple"
	FieldColorPink   FieldColor = "pink"
)

// ValidFieldColor reports whether c is one of the palette colors
func ValidFieldColor(c FieldColor) bool {
	switch c {
	case FieldColorGray, FieldColorRed, FieldColorOrange, FieldColorYellow,
		FieldColorGreen, FieldColorTeal, FieldColorBlue, FieldColorPurple, FieldColorPink:
		return true
	}
	return false
}

// Field represents one column (lane) of a team's board.
// Positions define the left-to-right order within a team; they are not required
// to be unique, rendering breaks ties by ID. Archiving is a soft delete: an
// archived field is excluded from the active column list, but tasks referencing
// it keep their field_id untouched.
type Field struct {
	BaseModel
	TeamID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_fields_team_id" json:"team_id"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Color       FieldColor `gorm:"type:varchar(20);not null;default:'blue'" json:"color"`
	Icon        string     `gorm:"type:varchar(50)" json:"icon"`
	Position    int        `gorm:"type:int;not null;default:0;index:idx_fields_position" json:"position"`
	IsArchived  bool       `gorm:"type:boolean;not null;default:false;index:idx_fields_is_archived" json:"is_archived"`
}

// TableName specifies the table name for Field
func (Field) TableName() string {
	return "fields"
}

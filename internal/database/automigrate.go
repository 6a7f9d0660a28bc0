package database

import (
	"fmt"

	"gorm.io/gorm"

	"board-sync/internal/domain"
)

// AutoMigrate runs GORM auto-migration for all domain models.
// Tasks deliberately carry no foreign key to fields: an archived field may be
// referenced by live tasks indefinitely.
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&domain.Field{},
		&domain.Task{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}

	return nil
}

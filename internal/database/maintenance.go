package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/hmasuda/todo-api/internal/models"
)

// NormalizeLegacyRows fixes up rows written by earlier revisions of the
// schema: recurrence stored as an empty string or "none" instead of NULL,
// and next_recurrence left behind on todos that are no longer recurring.
func NormalizeLegacyRows(db *gorm.DB) error {
	if err := db.Model(&models.Todo{}).
		Where("recurrence IN ?", []string{"", "none"}).
		Update("recurrence", nil).Error; err != nil {
		return fmt.Errorf("failed to normalize recurrence values: %w", err)
	}

	if err := db.Model(&models.Todo{}).
		Where("recurrence IS NULL AND next_recurrence IS NOT NULL").
		Update("next_recurrence", nil).Error; err != nil {
		return fmt.Errorf("failed to clear stale next_recurrence values: %w", err)
	}

	return nil
}

package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/hmasuda/todo-api/internal/database"
	"github.com/hmasuda/todo-api/internal/models"
	"github.com/hmasuda/todo-api/internal/utils"
)

// GormTodoRepository is a GORM implementation of TodoRepository
type GormTodoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &GormTodoRepository{db: db}
}

// Create creates a new todo
func (r *GormTodoRepository) Create(todo *models.Todo) error {
	return r.db.Create(todo).Error
}

// FindByOwnerAndID finds a todo by ID, scoped to its owner
func (r *GormTodoRepository) FindByOwnerAndID(ownerID, id uint64) (*models.Todo, error) {
	var todo models.Todo
	if err := r.db.Where("owner_id = ?", ownerID).First(&todo, id).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

// List retrieves todos matching the filter, newest first
func (r *GormTodoRepository) List(filter TodoFilter) ([]models.Todo, int64, error) {
	var todos []models.Todo

	query := r.db.Model(&models.Todo{}).Where("owner_id = ?", filter.OwnerID)

	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Find(&todos).Error; err != nil {
		return nil, 0, err
	}

	return todos, total, nil
}

// Update persists all fields of a todo
func (r *GormTodoRepository) Update(todo *models.Todo) error {
	return r.db.Save(todo).Error
}

// Delete permanently deletes a todo
func (r *GormTodoRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Todo{}, id).Error
}

// CountByOwner counts all todos owned by a user
func (r *GormTodoRepository) CountByOwner(ownerID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Todo{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}

// Reorder reassigns sort positions for every todo owned by ownerID. A todo
// whose id appears in orderedIDs gets that position; any other owned todo
// gets position 0. Ids in orderedIDs that the owner does not hold are
// ignored. The whole reassignment runs in one transaction so a failure
// leaves every position untouched.
func (r *GormTodoRepository) Reorder(ownerID uint64, orderedIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var todos []models.Todo
		if err := tx.Where("owner_id = ?", ownerID).Find(&todos).Error; err != nil {
			return err
		}

		positions := make(map[uint64]int, len(orderedIDs))
		for i, id := range orderedIDs {
			positions[id] = i
		}

		for _, todo := range todos {
			pos := positions[todo.ID] // absent ids fall back to 0
			if err := tx.Model(&models.Todo{}).
				Where("id = ?", todo.ID).
				Update("sort_order", pos).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// FindDueRecurring returns recurring source todos whose next occurrence is
// due: either never scheduled or scheduled at or before now. Generated
// instances are excluded; only user-authored sources spawn.
func (r *GormTodoRepository) FindDueRecurring(now time.Time) ([]models.Todo, error) {
	var todos []models.Todo
	err := r.db.
		Where("recurrence IS NOT NULL").
		Where("is_recurring_instance = ?", false).
		Where("next_recurrence IS NULL OR next_recurrence <= ?", now).
		Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// UpdateNextRecurrence advances the next-occurrence pointer on a source todo
func (r *GormTodoRepository) UpdateNextRecurrence(id uint64, next time.Time) error {
	return r.db.Model(&models.Todo{}).
		Where("id = ?", id).
		Update("next_recurrence", next).Error
}

// DeleteCompletedBefore permanently deletes completed one-off todos dated
// strictly before cutoff. Todos without a date and generated recurring
// instances are never swept.
func (r *GormTodoRepository) DeleteCompletedBefore(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("recurrence IS NULL").
		Where("completed = ?", true).
		Where("date IS NOT NULL AND date < ?", cutoff).
		Where("is_recurring_instance = ?", false).
		Delete(&models.Todo{})
	return result.RowsAffected, result.Error
}

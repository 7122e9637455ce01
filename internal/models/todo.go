package models

import (
	"time"
)

type Recurrence string

const (
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

// Valid reports whether r is a supported recurrence kind.
func (r Recurrence) Valid() bool {
	return r == RecurrenceDaily || r == RecurrenceWeekly
}

type Todo struct {
	ID        uint64 `gorm:"primarykey" json:"id"`
	Text      string `gorm:"type:varchar(500);not null" json:"text"`
	Completed bool   `gorm:"not null;default:false" json:"completed"`
	OwnerID   uint64 `gorm:"not null;index" json:"owner_id"`

	// Date is the due date and, for recurring todos, the anchor the next
	// occurrence is computed from.
	Date *time.Time `gorm:"index" json:"date"`

	// Recurrence is nil for one-off todos.
	Recurrence     *Recurrence `gorm:"type:varchar(20)" json:"recurrence"`
	NextRecurrence *time.Time  `json:"next_recurrence"`

	// OriginalTodoID links a generated instance back to its source.
	// It is set at creation time and never changes.
	OriginalTodoID      *uint64 `json:"original_todo_id"`
	IsRecurringInstance bool    `gorm:"not null;default:false" json:"is_recurring_instance"`

	Order int `gorm:"column:sort_order;not null;default:0;index" json:"order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

// Package recurrence computes next-occurrence dates for recurring todos.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/hmasuda/todo-api/internal/models"
)

// ErrInvalidKind is returned for recurrence kinds other than daily or weekly.
var ErrInvalidKind = errors.New("invalid recurrence kind")

// NextOccurrence returns the next occurrence date for the given kind,
// anchored to the reference date. The reference is normalized to UTC
// midnight first, so generated instances always land on the same daily
// anchor no matter what time of day the generator runs.
func NextOccurrence(kind models.Recurrence, ref time.Time) (time.Time, error) {
	anchor := ref.UTC()
	anchor = time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)

	switch kind {
	case models.RecurrenceDaily:
		return anchor.AddDate(0, 0, 1), nil
	case models.RecurrenceWeekly:
		return anchor.AddDate(0, 0, 7), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
}

package workers

import (
	"time"

	"go.uber.org/zap"

	"github.com/hmasuda/todo-api/internal/repository"
)

// Sweeper permanently deletes stale completed one-off todos once per day at
// a fixed UTC hour.
type Sweeper struct {
	todoRepo repository.TodoRepository
	hourUTC  int
	log      *zap.SugaredLogger

	stop chan struct{}
	done chan struct{}
}

// NewSweeper creates a Sweeper that runs daily at hourUTC.
func NewSweeper(todoRepo repository.TodoRepository, hourUTC int, log *zap.SugaredLogger) *Sweeper {
	return &Sweeper{
		todoRepo: todoRepo,
		hourUTC:  hourUTC,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background loop.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)

		s.log.Infow("cleanup sweeper started", "hour_utc", s.hourUTC)

		timer := time.NewTimer(time.Until(s.nextRun(time.Now())))
		defer timer.Stop()

		for {
			select {
			case <-timer.C:
				s.RunOnce(time.Now())
				timer.Reset(time.Until(s.nextRun(time.Now())))
			case <-s.stop:
				s.log.Info("cleanup sweeper stopped")
				return
			}
		}
	}()
}

// Stop signals the loop to exit and waits for it.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

// RunOnce deletes completed, non-recurring todos dated strictly before the
// start of the previous UTC calendar day. Todos without a date are never
// swept. Returns the number of todos deleted.
func (s *Sweeper) RunOnce(now time.Time) int64 {
	cutoff := Cutoff(now)

	deleted, err := s.todoRepo.DeleteCompletedBefore(cutoff)
	if err != nil {
		s.log.Errorw("cleanup sweep failed", "cutoff", cutoff, "error", err)
		return 0
	}

	if deleted > 0 {
		s.log.Infow("cleanup sweep completed", "deleted", deleted, "cutoff", cutoff)
	}

	return deleted
}

// Cutoff returns the start of the previous UTC calendar day relative to now.
func Cutoff(now time.Time) time.Time {
	u := now.UTC()
	today := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -1)
}

// nextRun returns the next occurrence of the configured UTC hour.
func (s *Sweeper) nextRun(now time.Time) time.Time {
	u := now.UTC()
	next := time.Date(u.Year(), u.Month(), u.Day(), s.hourUTC, 0, 0, 0, time.UTC)
	if !next.After(u) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

package workers

import (
	"time"

	"go.uber.org/zap"

	"github.com/hmasuda/todo-api/internal/models"
	"github.com/hmasuda/todo-api/internal/recurrence"
	"github.com/hmasuda/todo-api/internal/repository"
)

// Generator materializes due recurring todos on a fixed interval. Each tick
// scans for sources whose next occurrence is due, appends a generated
// instance to the owner's list, and advances the source's next-occurrence
// pointer.
type Generator struct {
	todoRepo repository.TodoRepository
	interval time.Duration
	log      *zap.SugaredLogger

	stop chan struct{}
	done chan struct{}
}

// NewGenerator creates a Generator that ticks at the given interval.
func NewGenerator(todoRepo repository.TodoRepository, interval time.Duration, log *zap.SugaredLogger) *Generator {
	return &Generator{
		todoRepo: todoRepo,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background loop. The tick body runs inline, so an
// overlong run delays the next tick instead of overlapping it.
func (g *Generator) Start() {
	go func() {
		defer close(g.done)

		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()

		g.log.Infow("recurrence generator started", "interval", g.interval)

		for {
			select {
			case <-ticker.C:
				g.RunOnce(time.Now())
			case <-g.stop:
				g.log.Info("recurrence generator stopped")
				return
			}
		}
	}()
}

// Stop signals the loop to exit and waits for it.
func (g *Generator) Stop() {
	close(g.stop)
	<-g.done
}

// RunOnce processes every due source exactly once. Failures on one source
// are logged and do not block the rest of the batch. The next-occurrence
// pointer is advanced only after the instance insert succeeds, so a run
// that dies mid-batch reprocesses the source next tick rather than
// skipping it (at-least-once; duplicate instances are accepted).
// Returns the number of instances created.
func (g *Generator) RunOnce(now time.Time) int {
	sources, err := g.todoRepo.FindDueRecurring(now)
	if err != nil {
		g.log.Errorw("failed to select due recurring todos", "error", err)
		return 0
	}

	created := 0
	for _, source := range sources {
		if source.Recurrence == nil {
			continue
		}
		kind := *source.Recurrence

		ref := now
		if source.Date != nil {
			ref = *source.Date
		}

		newDate, err := recurrence.NextOccurrence(kind, ref)
		if err != nil {
			g.log.Errorw("skipping source with bad recurrence",
				"todo_id", source.ID, "recurrence", kind, "error", err)
			continue
		}

		count, err := g.todoRepo.CountByOwner(source.OwnerID)
		if err != nil {
			g.log.Errorw("failed to count todos for owner",
				"todo_id", source.ID, "owner_id", source.OwnerID, "error", err)
			continue
		}

		sourceID := source.ID
		instance := &models.Todo{
			Text:                source.Text,
			OwnerID:             source.OwnerID,
			Date:                &newDate,
			Recurrence:          &kind,
			OriginalTodoID:      &sourceID,
			IsRecurringInstance: true,
			Order:               int(count), // append at end of the owner's list
		}

		if err := g.todoRepo.Create(instance); err != nil {
			g.log.Errorw("failed to create recurring instance",
				"todo_id", source.ID, "error", err)
			continue
		}
		created++

		next, err := recurrence.NextOccurrence(kind, newDate)
		if err != nil {
			g.log.Errorw("failed to compute next recurrence",
				"todo_id", source.ID, "error", err)
			continue
		}

		if err := g.todoRepo.UpdateNextRecurrence(source.ID, next); err != nil {
			// The instance exists but the pointer did not move; the source
			// will be picked up again next tick.
			g.log.Errorw("failed to advance next_recurrence",
				"todo_id", source.ID, "error", err)
			continue
		}

		g.log.Debugw("generated recurring instance",
			"source_id", source.ID, "instance_id", instance.ID, "date", newDate)
	}

	if created > 0 {
		g.log.Infow("recurrence generation completed", "created", created)
	}

	return created
}

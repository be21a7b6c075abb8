// Package scheduler runs the due-soon reminder loop: a periodic scan for
// tasks whose due date falls within the next 24 hours, emitting task_due
// notifications to their assignees.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/actions"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
)

type Reminder struct {
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewReminder initializes a reminder loop that scans every interval.
func NewReminder(interval time.Duration) *Reminder {
	ctx, cancel := context.WithCancel(context.Background())
	return &Reminder{
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs an immediate scan and then keeps scanning on the interval
// until Stop is called.
func (r *Reminder) Start() {
	log.Printf("Starting due-date reminder (interval %s)", r.interval)

	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		r.Scan()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				r.Scan()
			}
		}
	}()
}

// Stop shuts the loop down and waits for an in-flight scan to finish.
func (r *Reminder) Stop() {
	log.Println("Stopping due-date reminder...")
	r.cancel()
	r.wg.Wait()
	log.Println("Due-date reminder stopped")
}

// Scan finds tasks due within the next 24 hours that are not completed and
// reminds their assignees. A task with an unread reminder already pending
// is skipped so repeated scans do not pile up duplicates.
func (r *Reminder) Scan() {
	now := time.Now()
	cutoff := now.Add(24 * time.Hour)

	var tasks []models.Task

	err := db.DB.
		Where("due_date IS NOT NULL AND due_date > ? AND due_date <= ?", now, cutoff).
		Where("status <> ?", types.TaskStatusCompleted).
		Find(&tasks).Error

	if err != nil {
		log.Printf("Reminder scan error: %v", err)
		return
	}

	reminded := 0

	for _, task := range tasks {
		if task.AssigneeID == nil {
			continue
		}

		var pending int64

		err := db.DB.Model(&models.Notification{}).
			Where("type = ? AND related_id = ? AND user_id = ? AND is_read = ?",
				types.NotificationTaskDue, task.ID, *task.AssigneeID, false).
			Count(&pending).Error

		if err != nil {
			log.Printf("Reminder scan error for task %d: %v", task.ID, err)
			continue
		}

		if pending > 0 {
			continue
		}

		actions.NotifyTaskDue(task.ID)
		reminded++
	}

	if reminded > 0 {
		log.Printf("Reminder scan emitted %d notifications", reminded)
	}
}

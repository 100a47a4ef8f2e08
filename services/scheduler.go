// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"skill-exchange-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartCompletionScheduler flips scheduled sessions to completed once their
// time window has passed, so stats and review listings pick them up without
// any manual confirmation step.
func (s *SessionService) StartCompletionScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			// Each tick gets its own deadline so a stuck store call cannot
			// pile up overlapping runs.
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			db := s.DB.WithContext(ctx)

			var sessions []models.Session
			now := time.Now()
			err := db.Where("status = ? AND scheduled_at <= ?", models.SessionStatusScheduled, now).
				Find(&sessions).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, sess := range sessions {
				if sess.EndsAt().After(now) {
					continue // still running
				}
				sess.Status = models.SessionStatusCompleted
				if err := db.Save(&sess).Error; err != nil {
					log.Printf("[Scheduler] Failed to complete session %s: %v", sess.ID, err)
				} else {
					log.Printf("✅ Auto-completed session: %s", sess.ID)
				}
			}
		}),
	)
}

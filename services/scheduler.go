// services/scheduler.go
package services

import (
	"fmt"
	"log"
	"time"

	"star-rewards-system/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// StartBattleScheduler closes battles whose window has passed. Staff used to
// flip the active flag by hand; this does it once a minute.
func (s *BattleService) StartBattleScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var battles []models.Battle
			now := time.Now()
			err := s.DB.Where("active = ? AND end_time < ?", true, now).
				Find(&battles).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, b := range battles {
				b.Active = false
				if err := s.DB.Save(&b).Error; err != nil {
					log.Printf("[Scheduler] Failed to close battle %s: %v", b.ID, err)
					continue
				}

				battleRef := b.ID
				notification := models.Notification{
					ID:       uuid.NewString(),
					Title:    fmt.Sprintf("Battle %s finished", b.Name),
					Message:  fmt.Sprintf("The battle %q ended at %s — results are on the way!", b.Name, b.EndTime.Format("02.01 15:04")),
					IsActive: true,
					BattleID: &battleRef,
				}
				if err := s.DB.Create(&notification).Error; err != nil {
					log.Printf("[Scheduler] Failed to announce battle %s: %v", b.ID, err)
				}

				log.Printf("✅ Auto-closed battle: %s", b.Name)
			}
		}),
	)
}

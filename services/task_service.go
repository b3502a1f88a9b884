package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"star-rewards-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewTaskService(db *gorm.DB, ledger *LedgerService) *TaskService {
	return &TaskService{DB: db, Ledger: ledger}
}

// CompleteTask awards the task's stars and logs the completion. Daily tasks
// are limited to one completion per calendar date; weekly and one_time tasks
// carry no repeat prevention.
func (s *TaskService) CompleteTask(externalUserID, taskID string) (*models.TaskCompletion, error) {
	var task models.Task
	if err := s.DB.First(&task, "id = ?", taskID).Error; err != nil {
		return nil, err
	}

	if task.TaskType == models.TaskTypeDaily {
		now := time.Now()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		var count int64
		if err := s.DB.Model(&models.TaskCompletion{}).
			Where("task_id = ? AND external_user_id = ? AND completed_at >= ? AND completed_at < ?",
				task.ID, externalUserID, dayStart, dayStart.AddDate(0, 0, 1)).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrAlreadyCompletedToday
		}
	}

	if _, err := s.Ledger.Credit(externalUserID, task.StarsReward); err != nil {
		return nil, err
	}

	completion := models.TaskCompletion{
		ID:             uuid.NewString(),
		TaskID:         task.ID,
		ExternalUserID: externalUserID,
		StarsAwarded:   task.StarsReward,
	}
	if err := s.DB.Create(&completion).Error; err != nil {
		return nil, err
	}

	notification := models.Notification{
		ID:       uuid.NewString(),
		Title:    "✅ Task completed!",
		Message:  fmt.Sprintf("You got %d ⭐ for the task '%s'", task.StarsReward, task.Title),
		IsActive: true,
	}
	if err := s.DB.Create(&notification).Error; err != nil {
		return nil, err
	}

	log.Printf("[TASKS] %s completed %q (+%d ⭐)", externalUserID, task.Title, task.StarsReward)
	return &completion, nil
}

// --- Handlers ---

// ListTasks returns the full task catalog (public).
func (s *TaskService) ListTasks(c *fiber.Ctx) error {
	var tasks []models.Task
	if err := s.DB.Order("created_at ASC").Find(&tasks).Error; err != nil {
		log.Printf("DB Error fetching tasks: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tasks"})
	}
	return c.JSON(tasks)
}

// CompleteTaskEndpoint handles POST /s/tasks/:id/complete for the
// authenticated user.
func (s *TaskService) CompleteTaskEndpoint(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	taskID := c.Params("id")
	if _, err := uuid.Parse(taskID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	completion, err := s.CompleteTask(userID, taskID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	case errors.Is(err, ErrAlreadyCompletedToday):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You already completed this task today"})
	case errors.Is(err, ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	case err != nil:
		log.Printf("DB Error completing task: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete task"})
	}

	return c.JSON(fiber.Map{
		"message":       fmt.Sprintf("You got %d ⭐ for the task!", completion.StarsAwarded),
		"stars_awarded": completion.StarsAwarded,
		"completion":    completion,
	})
}

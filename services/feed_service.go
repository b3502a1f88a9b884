package services

import (
	"errors"
	"log"

	"star-rewards-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FeedService serves the read-only pages: home feed, notifications,
// leaderboard and the personal profile view.
type FeedService struct {
	DB          *gorm.DB
	Progression *ProgressionService
}

func NewFeedService(db *gorm.DB, progression *ProgressionService) *FeedService {
	return &FeedService{DB: db, Progression: progression}
}

// Home returns the three most recent active notifications.
func (s *FeedService) Home(c *fiber.Ctx) error {
	var notifications []models.Notification
	if err := s.DB.Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(3).
		Find(&notifications).Error; err != nil {
		log.Printf("DB Error fetching home feed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch feed"})
	}
	return c.JSON(fiber.Map{"notifications": notifications})
}

// Notifications returns all active notifications, newest first.
func (s *FeedService) Notifications(c *fiber.Ctx) error {
	var notifications []models.Notification
	if err := s.DB.Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		log.Printf("DB Error fetching notifications: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch notifications"})
	}
	return c.JSON(notifications)
}

// Leaderboard returns the top 10 profiles by stars descending.
func (s *FeedService) Leaderboard(c *fiber.Ctx) error {
	var leaders []models.UserProfile
	if err := s.DB.Preload("Group").
		Order("stars DESC").
		Limit(10).
		Find(&leaders).Error; err != nil {
		log.Printf("DB Error fetching leaderboard: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch leaderboard"})
	}
	return c.JSON(leaders)
}

// Profile returns the caller's balance, progress, the next level (with a
// percent toward it) and the five most recent purchases.
func (s *FeedService) Profile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var profile models.UserProfile
	if err := s.DB.Preload("Group").Where("external_user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	prog, err := s.Progression.EnsureProgressRecord(s.DB, userID)
	if err != nil {
		log.Printf("DB Error ensuring progress: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if prog.CurrentLevelID != nil {
		var level models.Level
		err := s.DB.First(&level, "id = ?", *prog.CurrentLevelID).Error
		if err == nil {
			prog.CurrentLevel = &level
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}
	}

	nextLevel, err := s.Progression.NextLevel(&profile, prog)
	if err != nil {
		log.Printf("DB Error finding next level: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var progressPercent float64
	if nextLevel != nil && nextLevel.StarsRequired > 0 {
		progressPercent = float64(prog.StarsEarned) / float64(nextLevel.StarsRequired) * 100
		if progressPercent > 100 {
			progressPercent = 100
		}
	}

	var purchases []models.Purchase
	if err := s.DB.Preload("Prize").
		Where("external_user_id = ?", userID).
		Order("purchased_at DESC").
		Limit(5).
		Find(&purchases).Error; err != nil {
		log.Printf("DB Error fetching purchases: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(fiber.Map{
		"profile":          profile,
		"progress":         prog,
		"next_level":       nextLevel,
		"progress_percent": progressPercent,
		"recent_purchases": purchases,
	})
}

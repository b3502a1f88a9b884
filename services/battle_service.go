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

type BattleService struct {
	DB *gorm.DB
}

func NewBattleService(db *gorm.DB) *BattleService {
	return &BattleService{DB: db}
}

// Join idempotently adds the user to the battle roster and announces it.
// Joining has no balance or score effect.
func (s *BattleService) Join(externalUserID, battleID string) (*models.Battle, error) {
	var battle models.Battle
	if err := s.DB.First(&battle, "id = ?", battleID).Error; err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var joined int64
	if err := s.DB.Table("battle_participants").
		Where("battle_id = ? AND user_profile_id = ?", battle.ID, profile.ID).
		Count(&joined).Error; err != nil {
		return nil, err
	}
	if joined > 0 {
		return &battle, nil
	}

	if err := s.DB.Model(&battle).Association("Participants").Append(&profile); err != nil {
		return nil, err
	}

	battleRef := battle.ID
	notification := models.Notification{
		ID:       uuid.NewString(),
		Title:    fmt.Sprintf("You are in the battle %s", battle.Name),
		Message:  fmt.Sprintf("The battle starts %s", battle.StartTime.Format("02.01 at 15:04")),
		IsActive: true,
		BattleID: &battleRef,
	}
	if err := s.DB.Create(&notification).Error; err != nil {
		return nil, err
	}

	log.Printf("[BATTLES] %s joined %q", externalUserID, battle.Name)
	return &battle, nil
}

// BattleView annotates an active battle with the requesting user's own result.
type BattleView struct {
	models.Battle
	UserResult *models.BattleResult `json:"user_result,omitempty"`
}

// BattleListing partitions battles: currently running, the three soonest
// upcoming, and the five most recently finished.
type BattleListing struct {
	Active    []BattleView    `json:"active"`
	Upcoming  []models.Battle `json:"upcoming"`
	Completed []models.Battle `json:"completed"`
}

// List builds the partitioned listing. externalUserID may be empty (public
// view); then active battles carry no result annotation.
func (s *BattleService) List(externalUserID string) (*BattleListing, error) {
	now := time.Now()

	var active []models.Battle
	if err := s.DB.Preload("BattleType").
		Where("active = ? AND start_time <= ? AND end_time >= ?", true, now, now).
		Order("start_time ASC").
		Find(&active).Error; err != nil {
		return nil, err
	}

	var upcoming []models.Battle
	if err := s.DB.Preload("BattleType").
		Where("active = ? AND start_time > ?", true, now).
		Order("start_time ASC").
		Limit(3).
		Find(&upcoming).Error; err != nil {
		return nil, err
	}

	var completed []models.Battle
	if err := s.DB.Preload("BattleType").
		Where("active = ? AND end_time < ?", false, now).
		Order("end_time DESC").
		Limit(5).
		Find(&completed).Error; err != nil {
		return nil, err
	}

	listing := &BattleListing{Upcoming: upcoming, Completed: completed}
	for _, battle := range active {
		view := BattleView{Battle: battle}
		if externalUserID != "" {
			var result models.BattleResult
			err := s.DB.Where("battle_id = ? AND external_user_id = ?", battle.ID, externalUserID).
				First(&result).Error
			if err == nil {
				view.UserResult = &result
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
		listing.Active = append(listing.Active, view)
	}

	return listing, nil
}

// RewardForPosition resolves a finishing position against the battle type's
// position→stars mapping. Applying it is a staff action, not automatic.
func RewardForPosition(bt *models.BattleType, position int) int64 {
	if bt == nil || bt.StarsReward == nil {
		return 0
	}
	return bt.StarsReward[fmt.Sprintf("%d", position)]
}

// --- Handlers ---

// ListBattles handles GET /battles. The user context is optional here.
func (s *BattleService) ListBattles(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	listing, err := s.List(userID)
	if err != nil {
		log.Printf("DB Error listing battles: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch battles"})
	}
	return c.JSON(listing)
}

// JoinBattleEndpoint handles POST /s/battles/:id/join.
func (s *BattleService) JoinBattleEndpoint(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	battleID := c.Params("id")
	if _, err := uuid.Parse(battleID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid battle ID"})
	}

	battle, err := s.Join(userID, battleID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Battle not found"})
	case errors.Is(err, ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	case err != nil:
		log.Printf("DB Error joining battle: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to join battle"})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("You joined the battle %q!", battle.Name),
		"battle":  battle,
	})
}

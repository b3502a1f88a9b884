package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"star-rewards-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminService is the staff back-office: CRUD over every entity plus the
// administrative actions the core treats as external (battle scoring, manual
// star grants, group assignment).
type AdminService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewAdminService(db *gorm.DB, ledger *LedgerService) *AdminService {
	return &AdminService{DB: db, Ledger: ledger}
}

func parseIDParam(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", err
	}
	return id, nil
}

// --- Groups ---

func (s *AdminService) ListGroups(c *fiber.Ctx) error {
	query := s.DB.Order("name ASC")
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", strings.EqualFold(active, "true"))
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var groups []models.Group
	if err := query.Find(&groups).Error; err != nil {
		log.Printf("DB Error fetching groups: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch groups"})
	}
	return c.JSON(groups)
}

func (s *AdminService) CreateGroup(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsActive    *bool  `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	group := models.Group{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		group.IsActive = *req.IsActive
	}

	if err := s.DB.Create(&group).Error; err != nil {
		log.Printf("DB Error creating group: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create group"})
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

func (s *AdminService) UpdateGroup(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group ID"})
	}

	var group models.Group
	if err := s.DB.First(&group, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Group not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.Description != nil {
		group.Description = *req.Description
	}
	if req.IsActive != nil {
		group.IsActive = *req.IsActive
	}

	if err := s.DB.Save(&group).Error; err != nil {
		log.Printf("DB Error updating group: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update group"})
	}
	return c.JSON(group)
}

// DeleteGroup removes a group and cascades to its levels. Profiles in the
// group are detached (group unset), and any progress row pointing at one of
// the deleted levels loses its current level without being recomputed.
func (s *AdminService) DeleteGroup(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group ID"})
	}

	var group models.Group
	if err := s.DB.First(&group, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Group not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var levelIDs []string
		if err := tx.Model(&models.Level{}).Where("group_id = ?", group.ID).Pluck("id", &levelIDs).Error; err != nil {
			return err
		}

		if len(levelIDs) > 0 {
			if err := tx.Model(&models.UserProgress{}).
				Where("current_level_id IN ?", levelIDs).
				Update("current_level_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("group_id = ?", group.ID).Delete(&models.Level{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.UserProfile{}).
			Where("group_id = ?", group.ID).
			Update("group_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&group).Error
	})
	if err != nil {
		log.Printf("DB Error deleting group: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete group"})
	}

	return c.JSON(fiber.Map{"message": "Group deleted successfully"})
}

// --- Levels ---

func (s *AdminService) ListLevels(c *fiber.Ctx) error {
	query := s.DB.Order("stars_required ASC")
	if groupID := c.Query("group_id"); groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}

	var levels []models.Level
	if err := query.Find(&levels).Error; err != nil {
		log.Printf("DB Error fetching levels: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch levels"})
	}
	return c.JSON(levels)
}

func (s *AdminService) CreateLevel(c *fiber.Ctx) error {
	var req struct {
		Name          string `json:"name"`
		GroupID       string `json:"group_id"`
		StarsRequired int64  `json:"stars_required"`
		BonusStars    int64  `json:"bonus_stars"`
		Description   string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.GroupID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and group_id are required"})
	}
	if err := s.DB.First(&models.Group{}, "id = ?", req.GroupID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown group"})
	}

	level := models.Level{
		ID:            uuid.NewString(),
		Name:          req.Name,
		GroupID:       req.GroupID,
		StarsRequired: req.StarsRequired,
		BonusStars:    req.BonusStars,
		Description:   req.Description,
	}
	if err := s.DB.Create(&level).Error; err != nil {
		log.Printf("DB Error creating level: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create level"})
	}
	return c.Status(fiber.StatusCreated).JSON(level)
}

func (s *AdminService) UpdateLevel(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid level ID"})
	}

	var level models.Level
	if err := s.DB.First(&level, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Level not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Name          *string `json:"name"`
		StarsRequired *int64  `json:"stars_required"`
		BonusStars    *int64  `json:"bonus_stars"`
		Description   *string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name != nil {
		level.Name = *req.Name
	}
	if req.StarsRequired != nil {
		level.StarsRequired = *req.StarsRequired
	}
	if req.BonusStars != nil {
		level.BonusStars = *req.BonusStars
	}
	if req.Description != nil {
		level.Description = *req.Description
	}

	if err := s.DB.Save(&level).Error; err != nil {
		log.Printf("DB Error updating level: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update level"})
	}
	return c.JSON(level)
}

func (s *AdminService) DeleteLevel(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid level ID"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.UserProgress{}).
			Where("current_level_id = ?", id).
			Update("current_level_id", nil).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Level{}, "id = ?", id).Error
	})
	if err != nil {
		log.Printf("DB Error deleting level: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete level"})
	}
	return c.JSON(fiber.Map{"message": "Level deleted successfully"})
}

// --- Tasks ---

func (s *AdminService) CreateTask(c *fiber.Ctx) error {
	var req struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		StarsReward int64           `json:"stars_reward"`
		TaskType    models.TaskType `json:"task_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}
	switch req.TaskType {
	case models.TaskTypeDaily, models.TaskTypeWeekly, models.TaskTypeOneTime:
	case "":
		req.TaskType = models.TaskTypeDaily
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "task_type must be daily, weekly or one_time"})
	}
	if req.StarsReward <= 0 {
		req.StarsReward = 1
	}

	task := models.Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		StarsReward: req.StarsReward,
		TaskType:    req.TaskType,
	}
	if err := s.DB.Create(&task).Error; err != nil {
		log.Printf("DB Error creating task: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create task"})
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (s *AdminService) UpdateTask(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	var task models.Task
	if err := s.DB.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Title       *string          `json:"title"`
		Description *string          `json:"description"`
		StarsReward *int64           `json:"stars_reward"`
		TaskType    *models.TaskType `json:"task_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.StarsReward != nil {
		task.StarsReward = *req.StarsReward
	}
	if req.TaskType != nil {
		task.TaskType = *req.TaskType
	}

	if err := s.DB.Save(&task).Error; err != nil {
		log.Printf("DB Error updating task: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update task"})
	}
	return c.JSON(task)
}

func (s *AdminService) DeleteTask(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}
	if err := s.DB.Delete(&models.Task{}, "id = ?", id).Error; err != nil {
		log.Printf("DB Error deleting task: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete task"})
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}

// --- Prizes ---

func (s *AdminService) CreatePrize(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		CostInStars int64  `json:"cost_in_stars"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.CostInStars <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and a positive cost_in_stars are required"})
	}

	prize := models.Prize{
		ID:          uuid.NewString(),
		Name:        req.Name,
		CostInStars: req.CostInStars,
		Description: req.Description,
	}
	if err := s.DB.Create(&prize).Error; err != nil {
		log.Printf("DB Error creating prize: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create prize"})
	}
	return c.Status(fiber.StatusCreated).JSON(prize)
}

func (s *AdminService) UpdatePrize(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid prize ID"})
	}

	var prize models.Prize
	if err := s.DB.First(&prize, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Prize not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Name        *string `json:"name"`
		CostInStars *int64  `json:"cost_in_stars"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name != nil {
		prize.Name = *req.Name
	}
	if req.CostInStars != nil {
		prize.CostInStars = *req.CostInStars
	}
	if req.Description != nil {
		prize.Description = *req.Description
	}

	if err := s.DB.Save(&prize).Error; err != nil {
		log.Printf("DB Error updating prize: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update prize"})
	}
	return c.JSON(prize)
}

func (s *AdminService) DeletePrize(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid prize ID"})
	}
	if err := s.DB.Delete(&models.Prize{}, "id = ?", id).Error; err != nil {
		log.Printf("DB Error deleting prize: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete prize"})
	}
	return c.JSON(fiber.Map{"message": "Prize deleted successfully"})
}

// --- Battle types ---

func (s *AdminService) ListBattleTypes(c *fiber.Ctx) error {
	var types []models.BattleType
	if err := s.DB.Order("name ASC").Find(&types).Error; err != nil {
		log.Printf("DB Error fetching battle types: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch battle types"})
	}
	return c.JSON(types)
}

func (s *AdminService) CreateBattleType(c *fiber.Ctx) error {
	var req struct {
		Name        string           `json:"name"`
		Description string           `json:"description"`
		StarsReward map[string]int64 `json:"stars_reward"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	if req.StarsReward == nil {
		req.StarsReward = map[string]int64{}
	}

	bt := models.BattleType{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		StarsReward: req.StarsReward,
	}
	if err := s.DB.Create(&bt).Error; err != nil {
		log.Printf("DB Error creating battle type: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create battle type"})
	}
	return c.Status(fiber.StatusCreated).JSON(bt)
}

func (s *AdminService) DeleteBattleType(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid battle type ID"})
	}
	if err := s.DB.Delete(&models.BattleType{}, "id = ?", id).Error; err != nil {
		log.Printf("DB Error deleting battle type: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete battle type"})
	}
	return c.JSON(fiber.Map{"message": "Battle type deleted successfully"})
}

// --- Battles ---

func (s *AdminService) CreateBattle(c *fiber.Ctx) error {
	var req struct {
		Name         string    `json:"name"`
		BattleTypeID string    `json:"battle_type_id"`
		StartTime    time.Time `json:"start_time"`
		EndTime      time.Time `json:"end_time"`
		Active       *bool     `json:"active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.BattleTypeID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and battle_type_id are required"})
	}
	if !req.EndTime.After(req.StartTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_time must be after start_time"})
	}
	if err := s.DB.First(&models.BattleType{}, "id = ?", req.BattleTypeID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown battle type"})
	}

	battle := models.Battle{
		ID:           uuid.NewString(),
		Name:         req.Name,
		BattleTypeID: req.BattleTypeID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Active:       true,
	}
	if req.Active != nil {
		battle.Active = *req.Active
	}

	if err := s.DB.Create(&battle).Error; err != nil {
		log.Printf("DB Error creating battle: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create battle"})
	}
	return c.Status(fiber.StatusCreated).JSON(battle)
}

func (s *AdminService) ToggleBattleActive(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid battle ID"})
	}

	var battle models.Battle
	if err := s.DB.First(&battle, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Battle not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	battle.Active = !battle.Active
	if err := s.DB.Save(&battle).Error; err != nil {
		log.Printf("DB Error toggling battle: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update battle"})
	}
	return c.JSON(battle)
}

func (s *AdminService) DeleteBattle(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid battle ID"})
	}
	if err := s.DB.Delete(&models.Battle{}, "id = ?", id).Error; err != nil {
		log.Printf("DB Error deleting battle: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete battle"})
	}
	return c.JSON(fiber.Map{"message": "Battle deleted successfully"})
}

// SetBattleResult upserts a participant's score and position. This is the
// administrative scoring action — no automatic reward distribution happens,
// staff grant battle rewards explicitly via GrantStars.
func (s *AdminService) SetBattleResult(c *fiber.Ctx) error {
	battleID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid battle ID"})
	}

	var req struct {
		ExternalUserID string `json:"external_user_id"`
		Score          int64  `json:"score"`
		Position       *int   `json:"position"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ExternalUserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "external_user_id is required"})
	}

	if err := s.DB.First(&models.Battle{}, "id = ?", battleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Battle not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var result models.BattleResult
	err = s.DB.Where("battle_id = ? AND external_user_id = ?", battleID, req.ExternalUserID).First(&result).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		result = models.BattleResult{
			ID:             uuid.NewString(),
			BattleID:       battleID,
			ExternalUserID: req.ExternalUserID,
			Score:          req.Score,
			Position:       req.Position,
		}
		err = s.DB.Create(&result).Error
	case err == nil:
		result.Score = req.Score
		result.Position = req.Position
		err = s.DB.Save(&result).Error
	}
	if err != nil {
		log.Printf("DB Error upserting battle result: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save battle result"})
	}

	return c.JSON(result)
}

// --- Notifications ---

func (s *AdminService) CreateNotification(c *fiber.Ctx) error {
	authorID := c.Locals("user_id").(string)

	var req struct {
		Title    string  `json:"title"`
		Message  string  `json:"message"`
		BattleID *string `json:"battle_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}

	notification := models.Notification{
		ID:       uuid.NewString(),
		Title:    req.Title,
		Message:  req.Message,
		IsActive: true,
		BattleID: req.BattleID,
		AuthorID: &authorID,
	}
	if err := s.DB.Create(&notification).Error; err != nil {
		log.Printf("DB Error creating notification: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create notification"})
	}
	return c.Status(fiber.StatusCreated).JSON(notification)
}

func (s *AdminService) DeactivateNotification(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification ID"})
	}

	result := s.DB.Model(&models.Notification{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		log.Printf("DB Error deactivating notification: %v", result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate notification"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
	}
	return c.JSON(fiber.Map{"message": "Notification deactivated"})
}

// --- Profiles ---

func (s *AdminService) ListProfiles(c *fiber.Ctx) error {
	query := s.DB.Preload("Group").Order("stars DESC")
	if q := c.Query("q"); q != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ?", term, term)
	}
	if groupID := c.Query("group_id"); groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}

	var profiles []models.UserProfile
	if err := query.Find(&profiles).Error; err != nil {
		log.Printf("DB Error fetching profiles: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profiles"})
	}
	return c.JSON(profiles)
}

// SetProfileGroup moves a profile into a group (or out of all groups with a
// null group_id) and re-evaluates progression against the new group's levels.
func (s *AdminService) SetProfileGroup(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid profile ID"})
	}

	var req struct {
		GroupID *string `json:"group_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var profile models.UserProfile
	if err := s.DB.First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if req.GroupID != nil {
		if err := s.DB.First(&models.Group{}, "id = ?", *req.GroupID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown group"})
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		profile.GroupID = req.GroupID
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}
		return s.Ledger.Progression.Sync(tx, &profile)
	})
	if err != nil {
		log.Printf("DB Error moving profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(profile)
}

// GrantStars credits stars to a profile through the ledger (cascades
// progression like any other credit).
func (s *AdminService) GrantStars(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid profile ID"})
	}

	var req struct {
		Stars  int64  `json:"stars"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Stars <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "stars must be positive"})
	}

	var profile models.UserProfile
	if err := s.DB.First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	updated, err := s.Ledger.Credit(profile.ExternalUserID, req.Stars)
	if err != nil {
		log.Printf("Grant failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to grant stars"})
	}

	log.Printf("[ADMIN] Granted %d ⭐ to %s (reason: %s)", req.Stars, profile.Username, req.Reason)
	return c.JSON(fiber.Map{
		"message": "Stars granted successfully",
		"profile": updated,
	})
}

package services

import (
	"errors"
	"fmt"
	"log"

	"star-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxCascadeDepth bounds the bonus cascade. Termination is provable for sane
// level data (bonuses strictly raise the balance or the selection stabilizes),
// the cap only guards against misconfigured levels that reopen themselves.
const maxCascadeDepth = 16

// ProgressionService recomputes a user's level whenever their balance changes.
// It is invoked by the ledger inside the same transaction as the mutation.
type ProgressionService struct {
	DB *gorm.DB
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db}
}

// EnsureProgressRecord ensures a UserProgress row exists (idempotent)
func (s *ProgressionService) EnsureProgressRecord(tx *gorm.DB, externalUserID string) (*models.UserProgress, error) {
	var prog models.UserProgress
	err := tx.Where("external_user_id = ?", externalUserID).First(&prog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prog = models.UserProgress{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
		}
		if err := tx.Create(&prog).Error; err != nil {
			return nil, err
		}
		return &prog, nil
	}
	if err != nil {
		return nil, err
	}
	return &prog, nil
}

// Sync re-evaluates level attainment for the given profile. On advancement it
// grants the level's bonus stars directly onto the profile and loops, so one
// logical balance change settles all thresholds it unlocks. The profile's
// Stars field reflects the settled balance when Sync returns.
func (s *ProgressionService) Sync(tx *gorm.DB, profile *models.UserProfile) error {
	prog, err := s.EnsureProgressRecord(tx, profile.ExternalUserID)
	if err != nil {
		return err
	}

	for i := 0; i < maxCascadeDepth; i++ {
		prog.StarsEarned = profile.Stars

		if profile.GroupID == nil {
			prog.CurrentLevelID = nil
			return tx.Save(prog).Error
		}

		var level models.Level
		err := tx.Where("group_id = ? AND stars_required <= ?", *profile.GroupID, profile.Stars).
			Order("stars_required DESC, id ASC"). // ties broken deterministically by lowest id
			First(&level).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			prog.CurrentLevelID = nil
			return tx.Save(prog).Error
		}
		if err != nil {
			return err
		}

		if prog.CurrentLevelID != nil && *prog.CurrentLevelID == level.ID {
			return tx.Save(prog).Error
		}

		var ties int64
		tx.Model(&models.Level{}).
			Where("group_id = ? AND stars_required = ? AND id <> ?", *profile.GroupID, level.StarsRequired, level.ID).
			Count(&ties)
		if ties > 0 {
			log.Printf("[PROGRESSION] ⚠️ Group %s has %d level(s) sharing stars_required=%d; picking %q by lowest id",
				*profile.GroupID, ties+1, level.StarsRequired, level.Name)
		}

		levelID := level.ID
		prog.CurrentLevelID = &levelID
		if err := tx.Save(prog).Error; err != nil {
			return err
		}

		// One-time advancement bonus. Applying it directly here (instead of
		// re-entering the ledger) keeps the cascade an explicit bounded loop.
		profile.Stars += level.BonusStars
		if err := tx.Save(profile).Error; err != nil {
			return err
		}

		notification := models.Notification{
			ID:       uuid.NewString(),
			Title:    fmt.Sprintf("🎉 Level %s reached!", level.Name),
			Message:  fmt.Sprintf("%s reached level '%s' and got %d ⭐ as a bonus!", profile.DisplayName(), level.Name, level.BonusStars),
			IsActive: true,
		}
		if err := tx.Create(&notification).Error; err != nil {
			return err
		}

		log.Printf("[PROGRESSION] 🎖️ %s advanced to level %q (+%d bonus, balance=%d)",
			profile.ExternalUserID, level.Name, level.BonusStars, profile.Stars)
	}

	log.Printf("[PROGRESSION] ⚠️ Cascade cap (%d) hit for %s — check level configuration", maxCascadeDepth, profile.ExternalUserID)
	return nil
}

// NextLevel returns the first level of the profile's group above the current
// one (or the group's first level when no level is attained yet). Nil when
// there is nothing left to reach.
func (s *ProgressionService) NextLevel(profile *models.UserProfile, prog *models.UserProgress) (*models.Level, error) {
	if profile.GroupID == nil {
		return nil, nil
	}

	query := s.DB.Where("group_id = ?", *profile.GroupID)
	if prog.CurrentLevel != nil {
		query = query.Where("stars_required > ?", prog.CurrentLevel.StarsRequired)
	}

	var next models.Level
	err := query.Order("stars_required ASC, id ASC").First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &next, nil
}

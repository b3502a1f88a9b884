package services

import (
	"errors"
	"log"

	"star-rewards-system/models"

	"gorm.io/gorm"
)

// LedgerService owns every mutation of UserProfile.Stars. Both directions run
// the progression engine synchronously before the mutation is considered
// complete, inside a single transaction per user.
type LedgerService struct {
	DB          *gorm.DB
	Progression *ProgressionService
}

func NewLedgerService(db *gorm.DB, progression *ProgressionService) *LedgerService {
	return &LedgerService{DB: db, Progression: progression}
}

// Credit adds amount stars to the user's balance and re-evaluates level
// progression (which may cascade further credits via level bonuses).
func (s *LedgerService) Credit(externalUserID string, amount int64) (*models.UserProfile, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}

	var profile models.UserProfile
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("external_user_id = ?", externalUserID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		profile.Stars += amount
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}

		return s.Progression.Sync(tx, &profile)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[LEDGER] Credited %d star(s) to %s (balance=%d)", amount, externalUserID, profile.Stars)
	return &profile, nil
}

// Debit removes amount stars. Fails with ErrInsufficientBalance (no mutation)
// when the balance does not cover it.
func (s *LedgerService) Debit(externalUserID string, amount int64) (*models.UserProfile, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}

	var profile models.UserProfile
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("external_user_id = ?", externalUserID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if amount > profile.Stars {
			return ErrInsufficientBalance
		}

		profile.Stars -= amount
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}

		return s.Progression.Sync(tx, &profile)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[LEDGER] Debited %d star(s) from %s (balance=%d)", amount, externalUserID, profile.Stars)
	return &profile, nil
}

package services

import (
	"testing"

	"star-rewards-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Group{},
		&models.Level{},
		&models.UserProfile{},
		&models.UserProgress{},
		&models.Task{},
		&models.TaskCompletion{},
		&models.Prize{},
		&models.Purchase{},
		&models.BattleType{},
		&models.Battle{},
		&models.BattleResult{},
		&models.PerformanceData{},
		&models.Notification{},
	))

	return db
}

func newTestLedger(db *gorm.DB) *LedgerService {
	return NewLedgerService(db, NewProgressionService(db))
}

func seedProfile(t *testing.T, db *gorm.DB, username string, stars int64, groupID *string) *models.UserProfile {
	t.Helper()

	profile := &models.UserProfile{
		ID:             uuid.NewString(),
		ExternalUserID: uuid.NewString(),
		Username:       username,
		Stars:          stars,
		GroupID:        groupID,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func seedGroup(t *testing.T, db *gorm.DB, name string) *models.Group {
	t.Helper()

	group := &models.Group{
		ID:       uuid.NewString(),
		Name:     name,
		IsActive: true,
	}
	require.NoError(t, db.Create(group).Error)
	return group
}

func seedLevel(t *testing.T, db *gorm.DB, groupID, name string, required, bonus int64) *models.Level {
	t.Helper()

	level := &models.Level{
		ID:            uuid.NewString(),
		Name:          name,
		GroupID:       groupID,
		StarsRequired: required,
		BonusStars:    bonus,
	}
	require.NoError(t, db.Create(level).Error)
	return level
}

func reloadProfile(t *testing.T, db *gorm.DB, externalUserID string) *models.UserProfile {
	t.Helper()

	var profile models.UserProfile
	require.NoError(t, db.Where("external_user_id = ?", externalUserID).First(&profile).Error)
	return &profile
}

func reloadProgress(t *testing.T, db *gorm.DB, externalUserID string) *models.UserProgress {
	t.Helper()

	var prog models.UserProgress
	require.NoError(t, db.Where("external_user_id = ?", externalUserID).First(&prog).Error)
	return &prog
}

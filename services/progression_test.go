package services

import (
	"testing"

	"star-rewards-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressionWithoutGroupStaysUnleveled(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	alice := seedProfile(t, db, "alice", 0, nil)

	profile, err := ledger.Credit(alice.ExternalUserID, 500)
	require.NoError(t, err)

	assert.Equal(t, int64(500), profile.Stars)
	prog := reloadProgress(t, db, alice.ExternalUserID)
	assert.Nil(t, prog.CurrentLevelID)
	assert.Equal(t, int64(500), prog.StarsEarned)
}

func TestProgressionBonusCascade(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	group := seedGroup(t, db, "Support")
	seedLevel(t, db, group.ID, "Bronze", 10, 5)
	silver := seedLevel(t, db, group.ID, "Silver", 15, 0)
	alice := seedProfile(t, db, "alice", 9, &group.ID)

	// 9+1 crosses Bronze, its +5 bonus then crosses Silver in the same sync.
	profile, err := ledger.Credit(alice.ExternalUserID, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(15), profile.Stars)
	prog := reloadProgress(t, db, alice.ExternalUserID)
	require.NotNil(t, prog.CurrentLevelID)
	assert.Equal(t, silver.ID, *prog.CurrentLevelID)
	assert.Equal(t, int64(15), prog.StarsEarned)

	var notifications int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("title LIKE ?", "🎉%").Count(&notifications).Error)
	assert.Equal(t, int64(2), notifications, "one announcement per advancement")
}

func TestProgressionNoRepeatBonusAtSameLevel(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	group := seedGroup(t, db, "Support")
	bronze := seedLevel(t, db, group.ID, "Bronze", 10, 5)
	alice := seedProfile(t, db, "alice", 0, &group.ID)

	profile, err := ledger.Credit(alice.ExternalUserID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(15), profile.Stars)

	// Still Bronze territory: the bonus must not be granted again.
	profile, err = ledger.Credit(alice.ExternalUserID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(16), profile.Stars)

	prog := reloadProgress(t, db, alice.ExternalUserID)
	require.NotNil(t, prog.CurrentLevelID)
	assert.Equal(t, bronze.ID, *prog.CurrentLevelID)
}

func TestProgressionTieBrokenByLowestID(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	group := seedGroup(t, db, "Support")

	first := &models.Level{
		ID:            "00000000-0000-0000-0000-00000000000a",
		Name:          "Ruby",
		GroupID:       group.ID,
		StarsRequired: 10,
		BonusStars:    1,
	}
	second := &models.Level{
		ID:            "00000000-0000-0000-0000-00000000000b",
		Name:          "Onyx",
		GroupID:       group.ID,
		StarsRequired: 10,
		BonusStars:    1,
	}
	require.NoError(t, db.Create(second).Error)
	require.NoError(t, db.Create(first).Error)

	alice := seedProfile(t, db, "alice", 0, &group.ID)
	_, err := ledger.Credit(alice.ExternalUserID, 10)
	require.NoError(t, err)

	prog := reloadProgress(t, db, alice.ExternalUserID)
	require.NotNil(t, prog.CurrentLevelID)
	assert.Equal(t, first.ID, *prog.CurrentLevelID)
}

func TestProgressionDebitReevaluatesLevel(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	group := seedGroup(t, db, "Support")
	bronze := seedLevel(t, db, group.ID, "Bronze", 10, 2)
	silver := seedLevel(t, db, group.ID, "Silver", 15, 0)
	alice := seedProfile(t, db, "alice", 0, &group.ID)

	_, err := ledger.Credit(alice.ExternalUserID, 15)
	require.NoError(t, err)
	prog := reloadProgress(t, db, alice.ExternalUserID)
	require.NotNil(t, prog.CurrentLevelID)
	require.Equal(t, silver.ID, *prog.CurrentLevelID)

	// Dropping below Silver re-attains Bronze, and Bronze's bonus applies
	// again because attainment is re-entered.
	profile, err := ledger.Debit(alice.ExternalUserID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(14), profile.Stars)

	prog = reloadProgress(t, db, alice.ExternalUserID)
	require.NotNil(t, prog.CurrentLevelID)
	assert.Equal(t, bronze.ID, *prog.CurrentLevelID)
}

func TestNextLevel(t *testing.T) {
	db := newTestDB(t)
	progression := NewProgressionService(db)
	group := seedGroup(t, db, "Support")
	bronze := seedLevel(t, db, group.ID, "Bronze", 10, 0)
	silver := seedLevel(t, db, group.ID, "Silver", 15, 0)
	alice := seedProfile(t, db, "alice", 0, &group.ID)

	prog := &models.UserProgress{ExternalUserID: alice.ExternalUserID}
	next, err := progression.NextLevel(alice, prog)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, bronze.ID, next.ID)

	prog.CurrentLevel = bronze
	next, err = progression.NextLevel(alice, prog)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, silver.ID, next.ID)

	prog.CurrentLevel = silver
	next, err = progression.NextLevel(alice, prog)
	require.NoError(t, err)
	assert.Nil(t, next)
}

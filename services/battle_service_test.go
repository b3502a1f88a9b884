package services

import (
	"testing"
	"time"

	"star-rewards-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBattleType(t *testing.T, svc *BattleService, name string, rewards map[string]int64) *models.BattleType {
	t.Helper()

	bt := &models.BattleType{
		ID:          uuid.NewString(),
		Name:        name,
		StarsReward: rewards,
	}
	require.NoError(t, svc.DB.Create(bt).Error)
	return bt
}

func seedBattle(t *testing.T, svc *BattleService, btID, name string, start, end time.Time, active bool) *models.Battle {
	t.Helper()

	battle := &models.Battle{
		ID:           uuid.NewString(),
		Name:         name,
		BattleTypeID: btID,
		StartTime:    start,
		EndTime:      end,
		Active:       active,
	}
	require.NoError(t, svc.DB.Create(battle).Error)
	return battle
}

func TestJoinBattleIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewBattleService(db)
	alice := seedProfile(t, db, "alice", 0, nil)
	bt := seedBattleType(t, svc, "Ticket race", map[string]int64{"1": 10})
	battle := seedBattle(t, svc, bt.ID, "Friday sprint",
		time.Now().Add(time.Hour), time.Now().Add(2*time.Hour), true)

	_, err := svc.Join(alice.ExternalUserID, battle.ID)
	require.NoError(t, err)
	_, err = svc.Join(alice.ExternalUserID, battle.ID)
	require.NoError(t, err)

	var participants int64
	require.NoError(t, db.Table("battle_participants").
		Where("battle_id = ?", battle.ID).Count(&participants).Error)
	assert.Equal(t, int64(1), participants)

	var notifications int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("battle_id = ?", battle.ID).Count(&notifications).Error)
	assert.Equal(t, int64(1), notifications, "repeat join must not re-announce")
}

func TestJoinBattleHasNoBalanceEffect(t *testing.T) {
	db := newTestDB(t)
	svc := NewBattleService(db)
	alice := seedProfile(t, db, "alice", 5, nil)
	bt := seedBattleType(t, svc, "Ticket race", nil)
	battle := seedBattle(t, svc, bt.ID, "Friday sprint",
		time.Now().Add(time.Hour), time.Now().Add(2*time.Hour), true)

	_, err := svc.Join(alice.ExternalUserID, battle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), reloadProfile(t, db, alice.ExternalUserID).Stars)
}

func TestBattleListingPartitions(t *testing.T) {
	db := newTestDB(t)
	svc := NewBattleService(db)
	bt := seedBattleType(t, svc, "Ticket race", nil)
	now := time.Now()

	running := seedBattle(t, svc, bt.ID, "Running",
		now.Add(-time.Hour), now.Add(time.Hour), true)
	soon := seedBattle(t, svc, bt.ID, "Soon",
		now.Add(time.Hour), now.Add(2*time.Hour), true)
	later := seedBattle(t, svc, bt.ID, "Later",
		now.Add(3*time.Hour), now.Add(4*time.Hour), true)
	done := seedBattle(t, svc, bt.ID, "Done",
		now.Add(-3*time.Hour), now.Add(-time.Hour), false)

	listing, err := svc.List("")
	require.NoError(t, err)

	require.Len(t, listing.Active, 1)
	assert.Equal(t, running.ID, listing.Active[0].ID)
	assert.Nil(t, listing.Active[0].UserResult)

	require.Len(t, listing.Upcoming, 2)
	assert.Equal(t, soon.ID, listing.Upcoming[0].ID)
	assert.Equal(t, later.ID, listing.Upcoming[1].ID)

	require.Len(t, listing.Completed, 1)
	assert.Equal(t, done.ID, listing.Completed[0].ID)
}

func TestBattleListingAnnotatesOwnResult(t *testing.T) {
	db := newTestDB(t)
	svc := NewBattleService(db)
	alice := seedProfile(t, db, "alice", 0, nil)
	bt := seedBattleType(t, svc, "Ticket race", nil)
	now := time.Now()
	battle := seedBattle(t, svc, bt.ID, "Running",
		now.Add(-time.Hour), now.Add(time.Hour), true)

	result := models.BattleResult{
		ID:             uuid.NewString(),
		BattleID:       battle.ID,
		ExternalUserID: alice.ExternalUserID,
		Score:          42,
	}
	require.NoError(t, db.Create(&result).Error)

	listing, err := svc.List(alice.ExternalUserID)
	require.NoError(t, err)

	require.Len(t, listing.Active, 1)
	require.NotNil(t, listing.Active[0].UserResult)
	assert.Equal(t, int64(42), listing.Active[0].UserResult.Score)
}

func TestRewardForPosition(t *testing.T) {
	bt := &models.BattleType{StarsReward: map[string]int64{"1": 10, "2": 5}}

	assert.Equal(t, int64(10), RewardForPosition(bt, 1))
	assert.Equal(t, int64(5), RewardForPosition(bt, 2))
	assert.Equal(t, int64(0), RewardForPosition(bt, 3))
	assert.Equal(t, int64(0), RewardForPosition(nil, 1))
}

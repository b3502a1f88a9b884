package services

import (
	"testing"

	"star-rewards-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPrize(t *testing.T, svc *ShopService, name string, cost int64) *models.Prize {
	t.Helper()

	prize := &models.Prize{
		ID:          uuid.NewString(),
		Name:        name,
		CostInStars: cost,
	}
	require.NoError(t, svc.DB.Create(prize).Error)
	return prize
}

func TestPurchaseDebitsBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewShopService(db, newTestLedger(db))
	alice := seedProfile(t, db, "alice", 10, nil)
	mug := seedPrize(t, svc, "Branded mug", 7)

	purchase, err := svc.Purchase(alice.ExternalUserID, mug.ID)
	require.NoError(t, err)

	assert.Equal(t, mug.ID, purchase.PrizeID)
	assert.Equal(t, int64(3), reloadProfile(t, db, alice.ExternalUserID).Stars)
}

func TestPurchaseExactBalanceSucceeds(t *testing.T) {
	db := newTestDB(t)
	svc := NewShopService(db, newTestLedger(db))
	alice := seedProfile(t, db, "alice", 7, nil)
	mug := seedPrize(t, svc, "Branded mug", 7)

	_, err := svc.Purchase(alice.ExternalUserID, mug.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reloadProfile(t, db, alice.ExternalUserID).Stars)
}

func TestPurchaseInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewShopService(db, newTestLedger(db))
	alice := seedProfile(t, db, "alice", 6, nil)
	mug := seedPrize(t, svc, "Branded mug", 7)

	_, err := svc.Purchase(alice.ExternalUserID, mug.ID)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(6), reloadProfile(t, db, alice.ExternalUserID).Stars)

	var purchases int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&purchases).Error)
	assert.Equal(t, int64(0), purchases)
}

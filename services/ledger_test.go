package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditAccumulates(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	alice := seedProfile(t, db, "alice", 0, nil)

	_, err := ledger.Credit(alice.ExternalUserID, 3)
	require.NoError(t, err)
	profile, err := ledger.Credit(alice.ExternalUserID, 4)
	require.NoError(t, err)

	assert.Equal(t, int64(7), profile.Stars)
	assert.Equal(t, int64(7), reloadProfile(t, db, alice.ExternalUserID).Stars)
}

func TestCreditZeroStillSyncsProgress(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	alice := seedProfile(t, db, "alice", 5, nil)

	_, err := ledger.Credit(alice.ExternalUserID, 0)
	require.NoError(t, err)

	prog := reloadProgress(t, db, alice.ExternalUserID)
	assert.Equal(t, int64(5), prog.StarsEarned)
	assert.Nil(t, prog.CurrentLevelID)
}

func TestCreditNegativeAmountRejected(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	alice := seedProfile(t, db, "alice", 5, nil)

	_, err := ledger.Credit(alice.ExternalUserID, -1)
	assert.ErrorIs(t, err, ErrNegativeAmount)
	assert.Equal(t, int64(5), reloadProfile(t, db, alice.ExternalUserID).Stars)
}

func TestCreditUnknownUser(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)

	_, err := ledger.Credit("00000000-0000-0000-0000-000000000000", 1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDebitInsufficientBalanceLeavesBalanceUntouched(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	alice := seedProfile(t, db, "alice", 4, nil)

	_, err := ledger.Debit(alice.ExternalUserID, 5)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(4), reloadProfile(t, db, alice.ExternalUserID).Stars)
}

func TestDebitExactBalance(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	alice := seedProfile(t, db, "alice", 4, nil)

	profile, err := ledger.Debit(alice.ExternalUserID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(0), profile.Stars)
}

package workers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"star-rewards-system/models"

	"github.com/stretchr/testify/assert"
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
	require.NoError(t, db.AutoMigrate(&models.UserProfile{}))
	return db
}

func newHRStub(t *testing.T, employees *[]MirroredEmployee) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-token", r.Header.Get("X-Service-Token"))
		assert.NotEmpty(t, r.URL.Query().Get("since"))
		_ = json.NewEncoder(w).Encode(GetEmployeeChangesResponse{Employees: *employees})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSyncBatchCreatesProfiles(t *testing.T) {
	db := newTestDB(t)
	employees := []MirroredEmployee{
		{ExternalID: "emp-1", Username: "alice", FullName: "Alice Doe", UpdatedAt: time.Now()},
		{ExternalID: "emp-2", Username: "bob", FullName: "Bob Roe", UpdatedAt: time.Now()},
	}
	server := newHRStub(t, &employees)

	worker := NewEmployeeSyncWorker(db, server.URL, "/api/employees/changes", "secret-token")
	require.NoError(t, worker.SyncBatch(context.Background(), time.Time{}))

	var count int64
	require.NoError(t, db.Model(&models.UserProfile{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var alice models.UserProfile
	require.NoError(t, db.First(&alice, "external_user_id = ?", "emp-1").Error)
	assert.Equal(t, "alice", alice.Username)
	assert.Equal(t, "Alice Doe", alice.FullName)
}

func TestSyncBatchUpdatesIdentityOnly(t *testing.T) {
	db := newTestDB(t)
	employees := []MirroredEmployee{
		{ExternalID: "emp-1", Username: "alice", FullName: "Alice Doe", UpdatedAt: time.Now()},
	}
	server := newHRStub(t, &employees)
	worker := NewEmployeeSyncWorker(db, server.URL, "/api/employees/changes", "secret-token")

	require.NoError(t, worker.SyncBatch(context.Background(), time.Time{}))

	// The ledger owns the balance; a later sync with a renamed employee must
	// keep it intact.
	require.NoError(t, db.Model(&models.UserProfile{}).
		Where("external_user_id = ?", "emp-1").
		Update("stars", 42).Error)

	employees[0].Username = "alice.doe"
	require.NoError(t, worker.SyncBatch(context.Background(), time.Time{}))

	var count int64
	require.NoError(t, db.Model(&models.UserProfile{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "upsert must not duplicate the profile")

	var alice models.UserProfile
	require.NoError(t, db.First(&alice, "external_user_id = ?", "emp-1").Error)
	assert.Equal(t, "alice.doe", alice.Username)
	assert.Equal(t, int64(42), alice.Stars)
}

func TestSyncBatchUpstreamFailure(t *testing.T) {
	db := newTestDB(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	worker := NewEmployeeSyncWorker(db, server.URL, "/api/employees/changes", "secret-token")
	assert.Error(t, worker.SyncBatch(context.Background(), time.Time{}))
}

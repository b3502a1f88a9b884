// workers/employee_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"star-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredEmployee matches the JSON shape of the HR profile service.
type MirroredEmployee struct {
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type GetEmployeeChangesResponse struct {
	Employees []MirroredEmployee `json:"employees"`
}

// EmployeeSyncWorker mirrors employees from the HR profile service into local
// user_profiles. Identity fields only — the star balance is owned by the
// ledger and is never written by sync.
type EmployeeSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewEmployeeSyncWorker(db *gorm.DB, hrBaseURL, endpointPath, serviceToken string) *EmployeeSyncWorker {
	return &EmployeeSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      hrBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *EmployeeSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Employee Sync Worker (HR profile service → user_profiles)…")
	go w.run(ctx)
}

func (w *EmployeeSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time
	if err := w.SyncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial employee sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.SyncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Employee sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Employee Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt in local user_profiles.
func (w *EmployeeSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM user_profiles WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// SyncBatch fetches employee changes since the given time and upserts them.
func (w *EmployeeSyncWorker) SyncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid HR service URL '%s': %w", w.baseURL, err)
	}

	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create sync request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to HR service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("HR service non-200 response: %d — %s", resp.StatusCode, body)
	}

	var response GetEmployeeChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode HR service response: %w", err)
	}

	if len(response.Employees) == 0 {
		return nil
	}

	var upsertCount, errorCount int
	for _, emp := range response.Employees {
		profile := models.UserProfile{
			ID:             uuid.NewString(),
			ExternalUserID: emp.ExternalID,
			Username:       emp.Username,
			FullName:       emp.FullName,
		}

		// On conflict only identity columns update — never stars or group.
		if err := w.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "full_name", "updated_at"}),
		}).Create(&profile).Error; err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to upsert profile (external_id=%q, username=%q): %v",
				emp.ExternalID, emp.Username, err)
		} else {
			upsertCount++
		}
	}

	log.Printf("[SYNC] ✅ Synced %d employee(s) (%d upserted, %d errors) since %s",
		len(response.Employees), upsertCount, errorCount, sinceStr)
	return nil
}

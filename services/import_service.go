package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"star-rewards-system/models"
	"star-rewards-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// ImportService ingests performance rows (username, completed_tasks,
// quality_score) and turns them into ledger credits. Two sources feed it: a
// staff-uploaded CSV file and the remote dashboard export.
type ImportService struct {
	DB     *gorm.DB
	Ledger *LedgerService
	Export *ExportClient
}

func NewImportService(db *gorm.DB, ledger *LedgerService, export *ExportClient) *ImportService {
	return &ImportService{DB: db, Ledger: ledger, Export: export}
}

// ImportSummary is the per-batch report.
type ImportSummary struct {
	Processed  int   `json:"processed"`
	Skipped    int   `json:"skipped"`
	TotalStars int64 `json:"total_stars"`
}

func (sum ImportSummary) String() string {
	return fmt.Sprintf("processed=%d skipped=%d total_stars=%d", sum.Processed, sum.Skipped, sum.TotalStars)
}

// ProcessRows runs the shared row pipeline. Rows are handled in input order,
// one at a time, with no batch-level rollback: a failure on row N leaves rows
// 1..N-1 applied. Policy per row:
//   - fewer than 3 fields: dropped, counted nowhere
//   - unknown username or non-integer numbers: skipped counter
//   - otherwise: credit completed_tasks + quality_score/2 stars
func (s *ImportService) ProcessRows(data []byte) (ImportSummary, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // rows are validated by hand below

	records, err := reader.ReadAll()
	if err != nil {
		return ImportSummary{}, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) > 0 {
		records = records[1:] // header row
	}

	var summary ImportSummary
	for _, row := range records {
		if len(row) < 3 {
			continue
		}

		username := strings.TrimSpace(row[0])
		completedTasks, errTasks := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
		qualityScore, errQuality := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
		if errTasks != nil || errQuality != nil {
			log.Printf("[IMPORT] ⚠️ Non-integer values for %q — row skipped", username)
			summary.Skipped++
			continue
		}

		var profile models.UserProfile
		if err := s.DB.Where("username = ?", username).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				summary.Skipped++
				continue
			}
			return summary, err
		}

		stars := completedTasks + qualityScore/2
		if _, err := s.Ledger.Credit(profile.ExternalUserID, stars); err != nil {
			return summary, err
		}

		notification := models.Notification{
			ID:       uuid.NewString(),
			Title:    "⭐ Stars awarded!",
			Message:  fmt.Sprintf("%s got %d ⭐ for performance!", profile.DisplayName(), stars),
			IsActive: true,
		}
		if err := s.DB.Create(&notification).Error; err != nil {
			return summary, err
		}

		summary.Processed++
		summary.TotalStars += stars
	}

	return summary, nil
}

// ImportFile runs the file-upload pipeline: persist the file, refuse a
// reference that already has a processed batch, record the batch, process the
// rows, then mark the batch processed.
func (s *ImportService) ImportFile(fileName string, data []byte) (ImportSummary, error) {
	fileRef := "performance_data/" + filepath.Base(fileName)
	if err := utils.SaveBytes(data, utils.GetUploadPath(fileRef)); err != nil {
		return ImportSummary{}, fmt.Errorf("failed to save upload: %w", err)
	}

	var processed int64
	if err := s.DB.Model(&models.PerformanceData{}).
		Where("file_reference = ? AND processed = ?", fileRef, true).
		Count(&processed).Error; err != nil {
		return ImportSummary{}, err
	}
	if processed > 0 {
		return ImportSummary{}, ErrDuplicateImport
	}

	batch := models.PerformanceData{
		ID:            uuid.NewString(),
		FileReference: fileRef,
		Processed:     false,
	}
	if err := s.DB.Create(&batch).Error; err != nil {
		return ImportSummary{}, err
	}

	// Best-effort archive copy. Never fatal to the import.
	if utils.R2Configured() {
		base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
		key := fmt.Sprintf("performance-data/%s-%s.csv", slug.Make(base), uuid.NewString())
		if url, err := utils.UploadBytesToR2(data, key, "text/csv"); err != nil {
			log.Printf("[IMPORT] ⚠️ R2 archive failed for %s: %v", fileRef, err)
		} else {
			batch.ArchiveURL = url
		}
	}

	summary, err := s.ProcessRows(data)
	if err != nil {
		return summary, err
	}

	batch.Processed = true
	batch.Notes = summary.String()
	if err := s.DB.Save(&batch).Error; err != nil {
		return summary, err
	}

	log.Printf("[IMPORT] ✅ File %s processed: %s", fileRef, summary)
	return summary, nil
}

// ImportRemote fetches the dashboard export and runs the shared pipeline.
// There is no batch record and no dedup guard for this source.
func (s *ImportService) ImportRemote(ctx context.Context) (ImportSummary, error) {
	data, err := s.Export.FetchExport(ctx)
	if err != nil {
		return ImportSummary{}, err
	}

	summary, err := s.ProcessRows(data)
	if err != nil {
		return summary, err
	}

	log.Printf("[IMPORT] ✅ Remote export processed: %s", summary)
	return summary, nil
}

// --- Handlers (staff only) ---

// ImportFileEndpoint handles POST /s/admin/import (multipart "file").
func (s *ImportService) ImportFileEndpoint(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	data, err := utils.ReadMultipartFile(fileHeader)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read uploaded file"})
	}

	summary, err := s.ImportFile(fileHeader.Filename, data)
	switch {
	case errors.Is(err, ErrDuplicateImport):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This file has already been processed"})
	case err != nil:
		log.Printf("Import failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Import failed", "summary": summary})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Data processed! %d user(s) processed, %d ⭐ awarded. Skipped: %d",
			summary.Processed, summary.TotalStars, summary.Skipped),
		"summary": summary,
	})
}

// ImportRemoteEndpoint handles POST /s/admin/import/remote.
func (s *ImportService) ImportRemoteEndpoint(c *fiber.Ctx) error {
	summary, err := s.ImportRemote(c.Context())
	switch {
	case errors.Is(err, ErrConfigurationMissing):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Remote export is not configured"})
	case errors.Is(err, ErrUpstreamAuth):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Token exchange with the export service failed"})
	case errors.Is(err, ErrUpstreamFetch):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Fetching the dashboard export failed"})
	case err != nil:
		log.Printf("Remote import failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Import failed", "summary": summary})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Export processed! %d user(s) processed, %d ⭐ awarded. Skipped: %d",
			summary.Processed, summary.TotalStars, summary.Skipped),
		"summary": summary,
	})
}

// TestExportEndpoint handles GET /s/admin/import/test — a connectivity probe
// against the export service without touching the ledger.
func (s *ImportService) TestExportEndpoint(c *fiber.Ctx) error {
	err := s.Export.TestConnection(c.Context())
	switch {
	case errors.Is(err, ErrConfigurationMissing):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Remote export is not configured"})
	case errors.Is(err, ErrUpstreamAuth), errors.Is(err, ErrUpstreamFetch):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Export service reachable"})
}

// ListBatchesEndpoint handles GET /s/admin/import/batches.
func (s *ImportService) ListBatchesEndpoint(c *fiber.Ctx) error {
	var batches []models.PerformanceData
	if err := s.DB.Order("uploaded_at DESC").Find(&batches).Error; err != nil {
		log.Printf("DB Error fetching batches: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch batches"})
	}
	return c.JSON(batches)
}

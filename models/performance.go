package models

import "time"

// PerformanceData tracks one file-upload ingestion batch. Processed flips
// false→true exactly once, when the whole file has been run; a file reference
// that already has a processed batch is rejected on re-upload.
type PerformanceData struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	UploadedAt    time.Time `gorm:"autoCreateTime;index" json:"uploaded_at"`
	FileReference string    `gorm:"index;not null" json:"file_reference"` // relative path under the uploads dir
	ArchiveURL    string    `gorm:"type:text" json:"archive_url,omitempty"` // R2 copy, when archival is configured
	Processed     bool      `gorm:"default:false" json:"processed"`
	Notes         string    `gorm:"type:text" json:"notes"`
}

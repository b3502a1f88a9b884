package models

import "time"

// TaskType controls how often a task may be completed
type TaskType string

const (
	TaskTypeDaily   TaskType = "daily"
	TaskTypeWeekly  TaskType = "weekly"
	TaskTypeOneTime TaskType = "one_time"
)

type Task struct {
	ID          string   `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string   `gorm:"not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	StarsReward int64    `gorm:"not null;default:1" json:"stars_reward"`
	TaskType    TaskType `gorm:"type:varchar(20);not null;default:'daily'" json:"task_type"`

	Timestamps
}

// TaskCompletion is an append-only log of task completions. Daily tasks get
// at most one row per user per calendar date; other types are unrestricted.
type TaskCompletion struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	TaskID         string    `gorm:"type:uuid;index;not null" json:"task_id"`
	Task           *Task     `json:"task,omitempty"`
	ExternalUserID string    `gorm:"index;not null" json:"external_user_id"`
	CompletedAt    time.Time `gorm:"autoCreateTime;index" json:"completed_at"`
	StarsAwarded   int64     `gorm:"not null;default:0" json:"stars_awarded"`
}

package models

import "time"

// Notification is the append-only system feed. Every award path writes here.
type Notification struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	BattleID  *string   `gorm:"type:uuid;index" json:"battle_id,omitempty"`
	AuthorID  *string   `json:"author_id,omitempty"`
}

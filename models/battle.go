package models

import "time"

// BattleType is reusable battle config. StarsReward maps finishing position
// (string-encoded, e.g. "1") to the stars awarded for that position.
type BattleType struct {
	ID          string           `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string           `gorm:"not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	StarsReward map[string]int64 `gorm:"serializer:json;type:jsonb" json:"stars_reward"`

	Timestamps
}

// Battle is a time-boxed competition with a participant roster.
type Battle struct {
	ID           string        `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string        `gorm:"not null" json:"name"`
	BattleTypeID string        `gorm:"type:uuid;index;not null" json:"battle_type_id"`
	BattleType   *BattleType   `json:"battle_type,omitempty"`
	StartTime    time.Time     `gorm:"not null;index" json:"start_time"`
	EndTime      time.Time     `gorm:"not null;index" json:"end_time"`
	Active       bool          `gorm:"default:true" json:"active"`
	Participants []UserProfile `gorm:"many2many:battle_participants" json:"participants,omitempty"`

	Timestamps
}

// BattleResult holds a participant's score. Position is filled in by staff
// tooling once the battle is judged; unique per (battle, user).
type BattleResult struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	BattleID       string  `gorm:"type:uuid;not null;uniqueIndex:idx_battle_result_user" json:"battle_id"`
	ExternalUserID string  `gorm:"not null;uniqueIndex:idx_battle_result_user" json:"external_user_id"`
	Score          int64   `gorm:"not null;default:0" json:"score"`
	Position       *int    `json:"position,omitempty"`

	Timestamps
}

package models

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UserProfile is a local snapshot of an employee plus their star balance.
// Identity data is populated by the employee sync worker from the HR profile
// service; the star balance is owned exclusively by this service's ledger.
type UserProfile struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string  `gorm:"uniqueIndex;not null" json:"external_user_id"` // the HR profile service's UUID
	Username       string  `gorm:"index;not null" json:"username"`
	FullName       string  `json:"full_name,omitempty"`
	Stars          int64   `gorm:"not null;default:0" json:"stars"`
	GroupID        *string `gorm:"type:uuid;index" json:"group_id,omitempty"`
	Group          *Group  `json:"group,omitempty"`

	Timestamps
}

// DisplayName prefers the synced full name, falling back to a title-cased username.
func (p *UserProfile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return cases.Title(language.Und).String(p.Username)
}

// UserProgress is the derived view of a profile's ledger: its current level
// within the profile's group plus a mirror of the star balance. It has no
// write path outside the progression engine.
type UserProgress struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string  `gorm:"uniqueIndex;not null" json:"external_user_id"`
	CurrentLevelID *string `gorm:"type:uuid;index" json:"current_level_id,omitempty"`
	CurrentLevel   *Level  `json:"current_level,omitempty"`
	StarsEarned    int64   `gorm:"not null;default:0" json:"stars_earned"`

	Timestamps
}

package models

// Level is a per-group star threshold. Reaching it for the first time grants
// a one-time bonus credit.
type Level struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	Name          string `gorm:"not null" json:"name"`
	GroupID       string `gorm:"type:uuid;index;not null" json:"group_id"`
	Group         *Group `json:"group,omitempty"`
	StarsRequired int64  `gorm:"not null;default:100" json:"stars_required"`
	BonusStars    int64  `gorm:"not null;default:10" json:"bonus_stars"`
	Description   string `gorm:"type:text" json:"description"`

	Timestamps
}

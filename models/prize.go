package models

import "time"

type Prize struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	CostInStars int64  `gorm:"not null" json:"cost_in_stars"`
	Description string `gorm:"type:text" json:"description"`

	Timestamps
}

// Purchase is an append-only log of prize redemptions.
type Purchase struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"index;not null" json:"external_user_id"`
	PrizeID        string    `gorm:"type:uuid;index;not null" json:"prize_id"`
	Prize          *Prize    `json:"prize,omitempty"`
	PurchasedAt    time.Time `gorm:"autoCreateTime;index" json:"purchased_at"`
}

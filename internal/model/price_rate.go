package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRate is a time-bounded fee schedule. PerMinute is the authoritative
// billing unit; PerHour is informational and never derived from PerMinute.
// Rates form a non-overlapping history ordered by EffectiveFrom: introducing
// a new rate closes and deactivates the previous one.
type PriceRate struct {
	ID             int64           `gorm:"primaryKey" json:"id"`
	PerHour        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"perHour"`
	PerMinute      decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"perMinute"`
	EffectiveFrom  time.Time       `gorm:"not null;index" json:"effectiveFrom"`
	EffectiveUntil *time.Time      `json:"effectiveUntil"`
	Active         bool            `gorm:"not null" json:"active"`
	CreatedAt      time.Time       `gorm:"not null" json:"createdAt"`
}

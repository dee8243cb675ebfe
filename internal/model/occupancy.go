package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Occupancy represents one parked-vehicle session on a spot, from entry to exit.
// At most one occupancy per spot may be active at any time; the partial unique
// index below lets the database reject a concurrent second open for the same spot.
type Occupancy struct {
	ID           int64            `gorm:"primaryKey" json:"id"`
	SpotID       int64            `gorm:"not null;index;uniqueIndex:ux_occupancies_active_spot,where:active" json:"spotId"`
	VehiclePlate string           `gorm:"size:10;not null;index" json:"vehiclePlate"`
	EntryTime    time.Time        `gorm:"not null;index" json:"entryTime"`
	ExitTime     *time.Time       `json:"exitTime"`
	FeePaid      *decimal.Decimal `gorm:"type:decimal(10,2)" json:"feePaid"`
	Active       bool             `gorm:"not null" json:"active"`
	CreatedAt    time.Time        `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time        `gorm:"not null" json:"updatedAt"`

	// Associations
	Spot *Spot `gorm:"foreignKey:SpotID" json:"spot,omitempty"`
}

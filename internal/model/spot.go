package model

import "time"

// Spot represents a single physical parking space.
type Spot struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	Number         string     `gorm:"uniqueIndex;size:32;not null" json:"number"`
	Occupied       bool       `gorm:"not null" json:"occupied"`
	LastOccupiedAt *time.Time `json:"lastOccupiedAt"`
	CreatedAt      time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updatedAt"`

	// Associations
	Occupancies []Occupancy `gorm:"foreignKey:SpotID;constraint:OnDelete:RESTRICT" json:"-"`
}

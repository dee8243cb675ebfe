package model

import "time"

// Admin is an operator account allowed to call the authenticated API.
type Admin struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Email        string    `gorm:"size:128" json:"email"`
	Active       bool      `gorm:"not null" json:"active"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
}

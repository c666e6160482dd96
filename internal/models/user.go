package models

import "time"

// User represents the users table
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	HashedPassword string    `gorm:"not null;size:255" json:"-"`
	Name           string    `gorm:"not null;size:255" json:"name"`
	IsActive       bool      `gorm:"not null" json:"is_active"`
	IsAdmin        bool      `gorm:"not null" json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

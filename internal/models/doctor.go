package models

import "time"

// Doctor represents the doctors table
type Doctor struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null;index" json:"name"`
	NameKey       string    `gorm:"size:255;index" json:"-"`
	LicenseNumber *string   `gorm:"size:50;uniqueIndex" json:"license_number"`
	Specialty     string    `gorm:"size:100;not null" json:"specialty"`
	Email         *string   `gorm:"size:255" json:"email"`
	Phone         *string   `gorm:"size:20" json:"phone"`
	Active        bool      `gorm:"not null;index" json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for Doctor model
func (Doctor) TableName() string {
	return "doctors"
}

package models

import "time"

// Patient represents the patients table
type Patient struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:255;not null;index" json:"name"`
	NameKey   string     `gorm:"size:255;index" json:"-"`
	TaxID     *string    `gorm:"size:14;uniqueIndex" json:"tax_id"`
	BirthDate *time.Time `gorm:"type:date" json:"birth_date"`
	Phone     *string    `gorm:"size:20" json:"phone"`
	Email     *string    `gorm:"size:255" json:"email"`
	Address   *string    `gorm:"size:500" json:"address"`
	Active    bool       `gorm:"not null;index" json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Patient model
func (Patient) TableName() string {
	return "patients"
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcedureType represents the procedure_types table
type ProcedureType struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	NameKey        string          `gorm:"size:255;uniqueIndex" json:"-"`
	Description    *string         `gorm:"type:text" json:"description"`
	ReferencePrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"reference_price"`
	Active         bool            `gorm:"not null;index" json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for ProcedureType model
func (ProcedureType) TableName() string {
	return "procedure_types"
}

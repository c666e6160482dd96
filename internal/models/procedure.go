package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Procedure represents the procedures table. A procedure always references
// an existing doctor, patient and procedure type.
type Procedure struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	Date            time.Time           `gorm:"type:date;not null;index" json:"date"`
	ProcedureTypeID uint                `gorm:"not null;index" json:"procedure_type_id"`
	DoctorID        uint                `gorm:"not null;index" json:"doctor_id"`
	PatientID       uint                `gorm:"not null;index" json:"patient_id"`
	Value           decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"value"`
	Notes           *string             `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`

	// Relationships
	ProcedureType ProcedureType `gorm:"foreignKey:ProcedureTypeID;constraint:OnDelete:RESTRICT" json:"procedure_type,omitempty"`
	Doctor        Doctor        `gorm:"foreignKey:DoctorID;constraint:OnDelete:RESTRICT" json:"doctor,omitempty"`
	Patient       Patient       `gorm:"foreignKey:PatientID;constraint:OnDelete:RESTRICT" json:"patient,omitempty"`
}

// TableName specifies the table name for Procedure model
func (Procedure) TableName() string {
	return "procedures"
}

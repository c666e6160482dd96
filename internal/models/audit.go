package models

import "time"

// AuditLog represents the audit_logs table
// Used for tracking logins, imports and destructive admin actions
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Action    string    `gorm:"size:100;not null" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// All lists every table managed by the application in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Doctor{},
		&Patient{},
		&ProcedureType{},
		&Procedure{},
		&MenuItem{},
		&AuditLog{},
	}
}

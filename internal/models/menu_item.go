package models

import "time"

// MenuItem represents the menu_items table. ParentID points at another row
// of the same table; rows with a nil ParentID are roots.
type MenuItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Label     string    `gorm:"size:100;not null" json:"label"`
	Icon      *string   `gorm:"size:50" json:"icon"`
	To        *string   `gorm:"column:route;size:255" json:"to"`
	SortOrder int       `gorm:"not null;index" json:"order"`
	Roles     []string  `gorm:"serializer:json;type:text" json:"roles"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for MenuItem model
func (MenuItem) TableName() string {
	return "menu_items"
}

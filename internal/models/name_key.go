package models

import (
	"strings"

	"gorm.io/gorm"
)

// NameKey is the form names are matched by: trimmed and lower-cased with
// Unicode case folding, so "JOSÉ ÁVILA" and " josé ávila" share a key.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// BeforeSave keeps NameKey in step with Name on create and full saves.
func (d *Doctor) BeforeSave(tx *gorm.DB) error {
	if d.Name != "" {
		d.NameKey = NameKey(d.Name)
	}
	return nil
}

func (p *Patient) BeforeSave(tx *gorm.DB) error {
	if p.Name != "" {
		p.NameKey = NameKey(p.Name)
	}
	return nil
}

func (pt *ProcedureType) BeforeSave(tx *gorm.DB) error {
	if pt.Name != "" {
		pt.NameKey = NameKey(pt.Name)
	}
	return nil
}

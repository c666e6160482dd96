package database

import (
	"medcontrol-backend/internal/models"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
)

type menuSeed struct {
	label    string
	icon     string
	to       string
	roles    []string
	children []menuSeed
}

var (
	everyone  = []string{"USER", "ADMIN"}
	adminOnly = []string{"ADMIN"}
)

var defaultMenus = []menuSeed{
	{label: "Dashboard", icon: "LayoutDashboard", to: "/dashboard", roles: everyone},
	{label: "Doctors", icon: "Stethoscope", roles: everyone, children: []menuSeed{
		{label: "List Doctors", icon: "List", to: "/doctors", roles: everyone},
		{label: "New Doctor", icon: "UserPlus", to: "/doctors/new", roles: adminOnly},
	}},
	{label: "Patients", icon: "Users", roles: everyone, children: []menuSeed{
		{label: "List Patients", icon: "List", to: "/patients", roles: everyone},
		{label: "New Patient", icon: "UserPlus", to: "/patients/new", roles: adminOnly},
	}},
	{label: "Procedures", icon: "FileText", roles: everyone, children: []menuSeed{
		{label: "List Procedures", icon: "List", to: "/procedures", roles: everyone},
		{label: "New Procedure", icon: "PlusCircle", to: "/procedures/new", roles: adminOnly},
		{label: "Procedure Types", icon: "FolderCog", to: "/procedures/types", roles: adminOnly},
	}},
	{label: "Import", icon: "Upload", to: "/import", roles: adminOnly},
	{label: "Settings", icon: "Settings", to: "/settings", roles: adminOnly},
}

// SeedMenus inserts the default navigation menu. It does nothing when any
// menu item already exists and reports how many rows were created.
func SeedMenus(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count menu items")
	}
	if count > 0 {
		return 0, nil
	}

	created := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		var insert func(seeds []menuSeed, parentID *uint) error
		insert = func(seeds []menuSeed, parentID *uint) error {
			for i, s := range seeds {
				item := &models.MenuItem{
					Label:     s.label,
					Icon:      optional(s.icon),
					To:        optional(s.to),
					SortOrder: i + 1,
					Roles:     s.roles,
					IsActive:  true,
					ParentID:  parentID,
				}
				if err := tx.Create(item).Error; err != nil {
					return errors.Wrapf(err, "create menu %q", s.label)
				}
				created++
				if err := insert(s.children, &item.ID); err != nil {
					return err
				}
			}
			return nil
		}
		return insert(defaultMenus, nil)
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

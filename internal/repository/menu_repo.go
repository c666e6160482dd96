package repository

import (
	"context"

	"medcontrol-backend/internal/models"

	"gorm.io/gorm"
)

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepo(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// ListAllMenuItems loads the whole menu table in (sort order, id) order.
// Inactive rows are included only when includeInactive is set.
func (r *MenuRepository) ListAllMenuItems(ctx context.Context, includeInactive bool) ([]models.MenuItem, error) {
	query := r.db.WithContext(ctx).Model(&models.MenuItem{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var items []models.MenuItem
	err := query.Order("sort_order ASC, id ASC").Find(&items).Error
	return items, err
}

// ListMenuItems returns a flat page of menu items, optionally filtered by label
func (r *MenuRepository) ListMenuItems(ctx context.Context, search string, includeInactive bool, skip, limit int) ([]models.MenuItem, error) {
	query := r.db.WithContext(ctx).Model(&models.MenuItem{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if search != "" {
		query = query.Where("LOWER(label) LIKE ? ESCAPE '!'", containsPattern(search))
	}

	var items []models.MenuItem
	err := query.Order("sort_order ASC, id ASC").Offset(skip).Limit(limit).Find(&items).Error
	return items, err
}

// GetMenuItemByID retrieves a menu item by ID
func (r *MenuRepository) GetMenuItemByID(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// ParentIndex returns id -> parent id for every menu row
func (r *MenuRepository) ParentIndex(ctx context.Context) (map[uint]*uint, error) {
	var rows []struct {
		ID       uint
		ParentID *uint
	}
	if err := r.db.WithContext(ctx).Model(&models.MenuItem{}).Select("id, parent_id").Scan(&rows).Error; err != nil {
		return nil, err
	}

	index := make(map[uint]*uint, len(rows))
	for _, row := range rows {
		index[row.ID] = row.ParentID
	}
	return index, nil
}

// CreateMenuItem creates a new menu item
func (r *MenuRepository) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateMenuItem writes every column of an existing menu item
func (r *MenuRepository) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteMenuItems removes the given rows in one transaction
func (r *MenuRepository) DeleteMenuItems(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("id IN ?", ids).Delete(&models.MenuItem{}).Error
	})
}

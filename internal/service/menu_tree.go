package service

import (
	"sort"

	"medcontrol-backend/internal/models"
)

// MenuNode is a menu item together with its visible children.
type MenuNode struct {
	models.MenuItem
	Children []*MenuNode `json:"children"`
}

// VisibleTo returns the end-user filter for a caller holding roles: the item
// must be active and either carry no roles or share one with the caller.
func VisibleTo(roles []models.Role) func(models.MenuItem) bool {
	return func(item models.MenuItem) bool {
		if !item.IsActive {
			return false
		}
		if len(item.Roles) == 0 {
			return true
		}
		for _, want := range item.Roles {
			for _, have := range roles {
				if want == string(have) {
					return true
				}
			}
		}
		return false
	}
}

// BuildMenuTree assembles flat rows into a forest. Rows rejected by visible
// are dropped along with everything below them; a nil visible keeps every
// row. Siblings are ordered by SortOrder, ties keeping input order.
func BuildMenuTree(items []models.MenuItem, visible func(models.MenuItem) bool) []*MenuNode {
	children := make(map[uint][]models.MenuItem)
	var roots []models.MenuItem
	for _, item := range items {
		if visible != nil && !visible(item) {
			continue
		}
		if item.ParentID == nil {
			roots = append(roots, item)
			continue
		}
		children[*item.ParentID] = append(children[*item.ParentID], item)
	}

	// Only nodes reachable from a root are emitted, so a parent cycle in the
	// data cannot make this recurse forever.
	var build func(level []models.MenuItem) []*MenuNode
	build = func(level []models.MenuItem) []*MenuNode {
		sort.SliceStable(level, func(i, j int) bool {
			return level[i].SortOrder < level[j].SortOrder
		})
		nodes := make([]*MenuNode, 0, len(level))
		for _, item := range level {
			if item.Roles == nil {
				item.Roles = []string{}
			}
			nodes = append(nodes, &MenuNode{
				MenuItem: item,
				Children: build(children[item.ID]),
			})
		}
		return nodes
	}
	return build(roots)
}

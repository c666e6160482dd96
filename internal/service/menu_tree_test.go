package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcontrol-backend/internal/models"
)

func uintPtr(v uint) *uint { return &v }

func menuFixture() []models.MenuItem {
	return []models.MenuItem{
		{ID: 1, Label: "Records", SortOrder: 2, IsActive: true},
		{ID: 2, Label: "Dashboard", SortOrder: 1, IsActive: true, Roles: []string{}},
		{ID: 3, Label: "Doctors", SortOrder: 1, IsActive: true, ParentID: uintPtr(1), Roles: []string{"USER"}},
		{ID: 4, Label: "Settings", SortOrder: 3, IsActive: true, Roles: []string{"ADMIN"}},
		{ID: 5, Label: "Menus", SortOrder: 1, IsActive: true, ParentID: uintPtr(4)},
		{ID: 6, Label: "Patients", SortOrder: 1, IsActive: true, ParentID: uintPtr(1)},
		{ID: 7, Label: "Legacy", SortOrder: 0, IsActive: false},
	}
}

func labels(nodes []*MenuNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Label)
	}
	return out
}

func TestBuildMenuTree_FiltersByRole(t *testing.T) {
	user := &models.User{ID: 1}
	tree := BuildMenuTree(menuFixture(), VisibleTo(models.RolesFor(user)))

	assert.Equal(t, []string{"Dashboard", "Records"}, labels(tree))
	assert.Equal(t, []string{"Doctors", "Patients"}, labels(tree[1].Children))
	assert.NotNil(t, tree[0].Roles)
	assert.NotNil(t, tree[0].Children)
	assert.Empty(t, tree[0].Children)
}

func TestBuildMenuTree_AdminSeesAdminBranch(t *testing.T) {
	admin := &models.User{ID: 1, IsAdmin: true}
	tree := BuildMenuTree(menuFixture(), VisibleTo(models.RolesFor(admin)))

	require.Equal(t, []string{"Dashboard", "Records", "Settings"}, labels(tree))
	assert.Equal(t, []string{"Menus"}, labels(tree[2].Children))
}

func TestBuildMenuTree_NilFilterKeepsEverything(t *testing.T) {
	tree := BuildMenuTree(menuFixture(), nil)

	assert.Equal(t, []string{"Legacy", "Dashboard", "Records", "Settings"}, labels(tree))
}

func TestBuildMenuTree_HiddenParentHidesChildren(t *testing.T) {
	items := []models.MenuItem{
		{ID: 1, Label: "Admin", IsActive: true, Roles: []string{"ADMIN"}},
		{ID: 2, Label: "Open child", IsActive: true, ParentID: uintPtr(1)},
	}
	tree := BuildMenuTree(items, VisibleTo([]models.Role{models.RoleUser}))
	assert.Empty(t, tree)
}

func TestBuildMenuTree_StableSiblingOrder(t *testing.T) {
	items := []models.MenuItem{
		{ID: 10, Label: "b", SortOrder: 1, IsActive: true},
		{ID: 11, Label: "a", SortOrder: 1, IsActive: true},
		{ID: 12, Label: "c", SortOrder: 0, IsActive: true},
	}
	assert.Equal(t, []string{"c", "b", "a"}, labels(BuildMenuTree(items, nil)))
}

func TestBuildMenuTree_IgnoresCycles(t *testing.T) {
	items := []models.MenuItem{
		{ID: 1, Label: "root", IsActive: true},
		{ID: 2, Label: "x", IsActive: true, ParentID: uintPtr(3)},
		{ID: 3, Label: "y", IsActive: true, ParentID: uintPtr(2)},
	}
	assert.Equal(t, []string{"root"}, labels(BuildMenuTree(items, nil)))
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"medcontrol-backend/internal/models"
	"medcontrol-backend/internal/repository"
)

// OptionalID tells an absent JSON field apart from an explicit null.
type OptionalID struct {
	Set   bool
	Value *uint
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v uint
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// MenuInput holds every field of a new menu item
type MenuInput struct {
	Label    string
	Icon     *string
	To       *string
	Order    int
	Roles    []string
	IsActive bool
	ParentID *uint
}

// MenuPatch changes only the fields that are set
type MenuPatch struct {
	Label    *string
	Icon     *string
	To       *string
	Order    *int
	Roles    *[]string
	IsActive *bool
	ParentID OptionalID
}

type MenuService struct {
	menuRepo  *repository.MenuRepository
	auditRepo *repository.AuditRepository
}

func NewMenuService(menuRepo *repository.MenuRepository, auditRepo *repository.AuditRepository) *MenuService {
	return &MenuService{
		menuRepo:  menuRepo,
		auditRepo: auditRepo,
	}
}

// MyMenus returns the tree visible to user
func (s *MenuService) MyMenus(ctx context.Context, user *models.User) ([]*MenuNode, error) {
	items, err := s.menuRepo.ListAllMenuItems(ctx, false)
	if err != nil {
		return nil, errors.Wrap(err, "list menu items")
	}
	return BuildMenuTree(items, VisibleTo(models.RolesFor(user))), nil
}

// Tree returns the full tree without role filtering
func (s *MenuService) Tree(ctx context.Context, showInactive bool) ([]*MenuNode, error) {
	items, err := s.menuRepo.ListAllMenuItems(ctx, showInactive)
	if err != nil {
		return nil, errors.Wrap(err, "list menu items")
	}
	return BuildMenuTree(items, nil), nil
}

func (s *MenuService) List(ctx context.Context, search string, showInactive bool, skip, limit int) ([]models.MenuItem, error) {
	return s.menuRepo.ListMenuItems(ctx, strings.TrimSpace(search), showInactive, skip, limit)
}

func (s *MenuService) Get(ctx context.Context, id uint) (*models.MenuItem, error) {
	item, err := s.menuRepo.GetMenuItemByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "menu item not found")
	}
	return item, nil
}

func (s *MenuService) Create(ctx context.Context, actor *models.User, in MenuInput) (*models.MenuItem, error) {
	if err := validateMenuRoles(in.Roles); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		if _, err := s.menuRepo.GetMenuItemByID(ctx, *in.ParentID); err != nil {
			return nil, lookup(err, "parent menu item not found")
		}
	}

	roles := in.Roles
	if roles == nil {
		roles = []string{}
	}
	item := &models.MenuItem{
		Label:     strings.TrimSpace(in.Label),
		Icon:      in.Icon,
		To:        in.To,
		SortOrder: in.Order,
		Roles:     roles,
		IsActive:  in.IsActive,
		ParentID:  in.ParentID,
	}
	if err := s.menuRepo.CreateMenuItem(ctx, item); err != nil {
		return nil, errors.Wrap(err, "create menu item")
	}

	recordAudit(ctx, s.auditRepo, actor, "menu_create", fmt.Sprintf("Menu item %d (%s) created", item.ID, item.Label))
	return item, nil
}

// Update applies a partial change. A new parent must exist and must not be
// the item itself or one of its descendants.
func (s *MenuService) Update(ctx context.Context, actor *models.User, id uint, p MenuPatch) (*models.MenuItem, error) {
	item, err := s.menuRepo.GetMenuItemByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "menu item not found")
	}

	if p.ParentID.Set && p.ParentID.Value != nil {
		if err := s.checkParent(ctx, id, *p.ParentID.Value); err != nil {
			return nil, err
		}
	}
	if p.Roles != nil {
		if err := validateMenuRoles(*p.Roles); err != nil {
			return nil, err
		}
	}

	if p.Label != nil {
		item.Label = strings.TrimSpace(*p.Label)
	}
	if p.Icon != nil {
		item.Icon = p.Icon
	}
	if p.To != nil {
		item.To = p.To
	}
	if p.Order != nil {
		item.SortOrder = *p.Order
	}
	if p.Roles != nil {
		item.Roles = *p.Roles
		if item.Roles == nil {
			item.Roles = []string{}
		}
	}
	if p.IsActive != nil {
		item.IsActive = *p.IsActive
	}
	if p.ParentID.Set {
		item.ParentID = p.ParentID.Value
	}

	if err := s.menuRepo.UpdateMenuItem(ctx, item); err != nil {
		return nil, errors.Wrap(err, "update menu item")
	}

	recordAudit(ctx, s.auditRepo, actor, "menu_update", fmt.Sprintf("Menu item %d updated", item.ID))
	return item, nil
}

func (s *MenuService) checkParent(ctx context.Context, id, parentID uint) error {
	if parentID == id {
		return invalidf("a menu item cannot be its own parent")
	}
	if _, err := s.menuRepo.GetMenuItemByID(ctx, parentID); err != nil {
		return lookup(err, "parent menu item not found")
	}

	parents, err := s.menuRepo.ParentIndex(ctx)
	if err != nil {
		return errors.Wrap(err, "load menu hierarchy")
	}
	if isDescendant(parents, parentID, id) {
		return invalidf("a menu item cannot be moved under one of its descendants")
	}
	return nil
}

// isDescendant walks up from node and reports whether ancestor is reached.
func isDescendant(parents map[uint]*uint, node, ancestor uint) bool {
	seen := map[uint]bool{}
	for cur := node; !seen[cur]; {
		seen[cur] = true
		parent := parents[cur]
		if parent == nil {
			return false
		}
		if *parent == ancestor {
			return true
		}
		cur = *parent
	}
	return false
}

// Delete removes the item and all of its descendants.
func (s *MenuService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if _, err := s.menuRepo.GetMenuItemByID(ctx, id); err != nil {
		return lookup(err, "menu item not found")
	}

	parents, err := s.menuRepo.ParentIndex(ctx)
	if err != nil {
		return errors.Wrap(err, "load menu hierarchy")
	}
	ids := subtree(parents, id)
	if err := s.menuRepo.DeleteMenuItems(ctx, ids); err != nil {
		return errors.Wrap(err, "delete menu items")
	}

	recordAudit(ctx, s.auditRepo, actor, "menu_delete", fmt.Sprintf("Menu item %d deleted with %d descendant(s)", id, len(ids)-1))
	return nil
}

// subtree returns root followed by every item below it.
func subtree(parents map[uint]*uint, root uint) []uint {
	children := map[uint][]uint{}
	for id, parent := range parents {
		if parent != nil {
			children[*parent] = append(children[*parent], id)
		}
	}

	ids := []uint{root}
	seen := map[uint]bool{root: true}
	for i := 0; i < len(ids); i++ {
		for _, child := range children[ids[i]] {
			if !seen[child] {
				seen[child] = true
				ids = append(ids, child)
			}
		}
	}
	return ids
}

func validateMenuRoles(roles []string) error {
	for _, r := range roles {
		if !models.Role(r).IsValid() {
			return invalidf("unknown role %q", r)
		}
	}
	return nil
}

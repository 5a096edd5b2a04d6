package domain

import (
	"strings"
	"time"

	uuid "github.com/google/uuid"
)

// Menu is a hierarchical navigation node optionally gated by a
// permission code. A menu without a code is visible to any authenticated
// user. Self-parenting is rejected here; the full ancestor-cycle walk
// needs the whole tree and lives in the menu service.
type Menu struct {
	EntityMeta
	Name           string
	Path           string
	Component      string
	Icon           string
	ParentID       *string
	SortOrder      int
	PermissionCode *string
	IsVisible      bool
}

// MenuInput carries the mutable fields of a menu node.
type MenuInput struct {
	Name           string
	Path           string
	Component      string
	Icon           string
	ParentID       *string
	SortOrder      int
	PermissionCode *string
	IsVisible      bool
}

// NewMenu validates and constructs a menu node.
func NewMenu(in MenuInput, now time.Time) (*Menu, []Event, error) {
	if err := validateMenuInput(in); err != nil {
		return nil, nil, err
	}

	menu := &Menu{
		EntityMeta:     newEntityMeta(uuid.NewString(), now),
		Name:           in.Name,
		Path:           in.Path,
		Component:      in.Component,
		Icon:           in.Icon,
		ParentID:       in.ParentID,
		SortOrder:      in.SortOrder,
		PermissionCode: normalizeCode(in.PermissionCode),
		IsVisible:      in.IsVisible,
	}

	if menu.ParentID != nil && *menu.ParentID == menu.ID {
		return nil, nil, NewRuleError("menu.cyclic_parent", "menu cannot be its own parent")
	}

	return menu, []Event{MenuCreatedEvent{EventMeta: EventMeta{At: now}, MenuID: menu.ID, Name: menu.Name}}, nil
}

// Update applies new field values. The caller must have verified the
// parent chain is acyclic before committing.
func (m *Menu) Update(in MenuInput, now time.Time) ([]Event, error) {
	if err := validateMenuInput(in); err != nil {
		return nil, err
	}
	if in.ParentID != nil && *in.ParentID == m.ID {
		return nil, NewRuleError("menu.cyclic_parent", "menu cannot be its own parent")
	}

	m.Name = in.Name
	m.Path = in.Path
	m.Component = in.Component
	m.Icon = in.Icon
	m.ParentID = in.ParentID
	m.SortOrder = in.SortOrder
	m.PermissionCode = normalizeCode(in.PermissionCode)
	m.IsVisible = in.IsVisible
	m.Touch(now)

	return []Event{MenuUpdatedEvent{EventMeta: EventMeta{At: now}, MenuID: m.ID, Name: m.Name}}, nil
}

// RequiresPermission reports whether the menu is permission-gated.
func (m *Menu) RequiresPermission() bool {
	return m.PermissionCode != nil && *m.PermissionCode != ""
}

func validateMenuInput(in MenuInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "menu name is required")
	}
	if strings.TrimSpace(in.Path) == "" {
		return NewValidationError("path", "menu path is required")
	}
	return nil
}

func normalizeCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

package permission

import (
	"fmt"
	"slices"
)

// Model is the static Role -> set(Permission) table.
//
// A Model is built once by NewModel and exposes queries only, so it is safe
// for concurrent use without locking.
type Model struct {
	table map[Role]map[Permission]struct{}
}

// DefaultTable returns the built-in role table.
// ADMIN holds every ADMIN_* and MANAGER_* permission, MANAGER holds MANAGER_*,
// USER holds none.
func DefaultTable() map[Role][]Permission {
	return map[Role][]Permission{
		RoleAdmin: {
			AdminRead, AdminCreate, AdminUpdate, AdminDelete,
			ManagerRead, ManagerCreate, ManagerUpdate, ManagerDelete,
		},
		RoleManager: {ManagerRead, ManagerCreate, ManagerUpdate, ManagerDelete},
		RoleUser:    {},
	}
}

// NewModel copies table into an immutable Model.
// Returns an error if the table references an unknown permission or an empty role name.
func NewModel(table map[Role][]Permission) (*Model, error) {
	m := &Model{table: make(map[Role]map[Permission]struct{}, len(table))}
	for role, perms := range table {
		if role == "" {
			return nil, fmt.Errorf("role name cannot be empty")
		}
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			if _, err := ParsePermission(string(p)); err != nil {
				return nil, fmt.Errorf("role %s: %w", role, err)
			}
			set[p] = struct{}{}
		}
		m.table[role] = set
	}
	return m, nil
}

// DefaultModel returns a Model built from DefaultTable.
func DefaultModel() *Model {
	m, err := NewModel(DefaultTable())
	if err != nil {
		panic(err)
	}
	return m
}

// ParseRole returns the role with the given name if the model knows it.
func (m *Model) ParseRole(name string) (Role, error) {
	role := Role(name)
	if _, ok := m.table[role]; !ok {
		return "", fmt.Errorf("unknown role %q", name)
	}
	return role, nil
}

// HasAnyPermission reports whether role holds at least one of required.
// An empty required set is never satisfied.
func (m *Model) HasAnyPermission(role Role, required []Permission) bool {
	set, ok := m.table[role]
	if !ok {
		return false
	}
	for _, p := range required {
		if _, ok := set[p]; ok {
			return true
		}
	}
	return false
}

// HasRole reports whether role is one of required.
func (m *Model) HasRole(role Role, required []Role) bool {
	if _, ok := m.table[role]; !ok {
		return false
	}
	return slices.Contains(required, role)
}

// Permissions returns a sorted copy of the permissions granted to role.
func (m *Model) Permissions(role Role) []Permission {
	set := m.table[role]
	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	slices.Sort(perms)
	return perms
}

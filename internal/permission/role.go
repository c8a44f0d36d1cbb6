// Package permission описывает роли, права и статическую политику доступа к маршрутам.
package permission

import "fmt"

// Role именованный набор прав, назначаемый пользователю
type Role string

const (
	RoleAdmin   Role = "ADMIN"   // полный доступ
	RoleManager Role = "MANAGER" // управление ресурсами менеджмента
	RoleUser    Role = "USER"    // обычный пользователь
)

// Permission гранулярная возможность вида RESOURCE_ACTION
type Permission string

const (
	AdminRead   Permission = "ADMIN_READ"
	AdminCreate Permission = "ADMIN_CREATE"
	AdminUpdate Permission = "ADMIN_UPDATE"
	AdminDelete Permission = "ADMIN_DELETE"

	ManagerRead   Permission = "MANAGER_READ"
	ManagerCreate Permission = "MANAGER_CREATE"
	ManagerUpdate Permission = "MANAGER_UPDATE"
	ManagerDelete Permission = "MANAGER_DELETE"
)

var knownPermissions = map[Permission]struct{}{
	AdminRead: {}, AdminCreate: {}, AdminUpdate: {}, AdminDelete: {},
	ManagerRead: {}, ManagerCreate: {}, ManagerUpdate: {}, ManagerDelete: {},
}

// ParsePermission проверяет, что имя права известно
func ParsePermission(name string) (Permission, error) {
	p := Permission(name)
	if _, ok := knownPermissions[p]; !ok {
		return "", fmt.Errorf("unknown permission %q", name)
	}
	return p, nil
}

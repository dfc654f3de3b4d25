package model

import "strings"

// Role - полномочия пользователя. RoleUnknown означает "ещё не загружено",
// это не то же самое, что отказ.
type Role int

const (
	RoleUnknown Role = iota
	RoleNotAdmin
	RoleAdmin
	RoleModerator
)

func (r Role) String() string {
	switch r {
	case RoleNotAdmin:
		return "member"
	case RoleAdmin:
		return "admin"
	case RoleModerator:
		return "moderator"
	}
	return "unknown"
}

func (r Role) Known() bool { return r != RoleUnknown }

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// ParseRole переводит значение колонки role в Role.
// Всё, что не admin/moderator (student, member, пустая строка), - RoleNotAdmin.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "moderator":
		return RoleModerator
	}
	return RoleNotAdmin
}

type Action int

const (
	ActionCreate Action = iota + 1
	ActionUpdate
	ActionDelete
	ActionModerate
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	case ActionModerate:
		return "moderate"
	}
	return "unknown"
}

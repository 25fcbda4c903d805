package auth

import "strings"

// Role del usuario según el proveedor de identidad.
type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// ParseRole normaliza el rol; cualquier valor desconocido cae en owner.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStaff:
		return RoleStaff
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleOwner
	}
}

// Claims representa la información extraída del token.
type Claims struct {
	UserID   string
	Email    string
	Name     string
	TenantID string
	Role     Role
}

// IsStaff es true para staff y admin (pueden operar en nombre de un owner).
func (c Claims) IsStaff() bool {
	return c.Role == RoleStaff || c.Role == RoleAdmin
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

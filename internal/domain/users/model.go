package users

import (
	"time"

	"pet-clinic-scheduling/internal/ports/auth"
)

// User es el perfil local de un usuario autenticado por el proveedor externo.
type User struct {
	ID    string
	Email string
	Name  string
	Role  auth.Role

	CreatedAt time.Time
}

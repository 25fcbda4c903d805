package pets

import "context"

// Repository mantiene el registro y el índice por owner en sync.
type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	// Delete borra la mascota, la saca del índice del owner y borra su historial clínico.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Pet, error)
	ListAll(ctx context.Context) ([]Pet, error)
}

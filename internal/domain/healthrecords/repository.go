package healthrecords

import "context"

// Repository mantiene el registro y el índice por mascota en sync.
type Repository interface {
	Create(ctx context.Context, rec HealthRecord) error
	GetByID(ctx context.Context, id string) (HealthRecord, error)
	ListByPet(ctx context.Context, petID string) ([]HealthRecord, error)
	Delete(ctx context.Context, id string) error
}

package blocks

import "context"

type Repository interface {
	// Create falla con ErrAlreadyExists si ya hay un bloqueo para esa fecha.
	Create(ctx context.Context, b Block) error
	GetByDate(ctx context.Context, date string) (Block, error)
	List(ctx context.Context) ([]Block, error)
	Delete(ctx context.Context, date string) error
}

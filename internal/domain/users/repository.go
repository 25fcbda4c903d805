package users

import "context"

type Repository interface {
	// Create falla con ErrAlreadyExists si el id ya está registrado.
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	ListAll(ctx context.Context) ([]User, error)
}

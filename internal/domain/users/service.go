package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-clinic-scheduling/internal/platform/validation"
	"pet-clinic-scheduling/internal/ports/auth"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RegisterInput struct {
	Email string `validate:"omitempty,email"`
	Name  string `validate:"max=120"`
}

// Register crea el perfil del actor. Es idempotente: si ya existe devuelve el actual.
// El rol viene de las claims (lo administra el proveedor de identidad).
func (s *Service) Register(ctx context.Context, actor auth.Claims, in RegisterInput) (User, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return User{}, ErrInvalidInput
	}
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" {
		in.Email = strings.TrimSpace(actor.Email)
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		in.Name = strings.TrimSpace(actor.Name)
	}
	if err := validation.Struct(in); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	role := actor.Role
	if role == "" {
		role = auth.RoleOwner
	}

	u := User{
		ID:        actor.UserID,
		Email:     in.Email,
		Name:      in.Name,
		Role:      role,
		CreatedAt: s.now(),
	}

	err := s.repo.Create(ctx, u)
	if errors.Is(err, ErrAlreadyExists) {
		return s.repo.GetByID(ctx, actor.UserID)
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// ListAll es solo para staff/admin.
func (s *Service) ListAll(ctx context.Context, actor auth.Claims) ([]User, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	return s.repo.ListAll(ctx)
}

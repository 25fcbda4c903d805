package blocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"pet-clinic-scheduling/internal/platform/validation"
	"pet-clinic-scheduling/internal/ports/auth"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
)

// ExistsError lleva el bloqueo que ya ocupa la fecha.
type ExistsError struct {
	Existing Block
}

func (e *ExistsError) Error() string {
	return "date already blocked: " + e.Existing.Date
}

func (e *ExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

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

type CreateInput struct {
	Date  string `validate:"required,datetime=2006-01-02"`
	Notes string `validate:"max=500"`
}

func (s *Service) Create(ctx context.Context, actor auth.Claims, in CreateInput) (Block, error) {
	if !actor.IsStaff() {
		return Block{}, ErrForbidden
	}

	in.Date = strings.TrimSpace(in.Date)
	if err := validation.Struct(in); err != nil {
		return Block{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	b := Block{
		ID:        uuid.NewString(),
		Date:      in.Date,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: s.now(),
		CreatedBy: actor.UserID,
	}

	err := s.repo.Create(ctx, b)
	if errors.Is(err, ErrAlreadyExists) {
		existing, getErr := s.repo.GetByDate(ctx, b.Date)
		if getErr != nil {
			return Block{}, err
		}
		return Block{}, &ExistsError{Existing: existing}
	}
	if err != nil {
		return Block{}, err
	}
	return b, nil
}

// Lookup no exige rol: lo usa el motor de turnos.
func (s *Service) Lookup(ctx context.Context, date string) (Block, bool, error) {
	b, err := s.repo.GetByDate(ctx, date)
	if errors.Is(err, ErrNotFound) {
		return Block{}, false, nil
	}
	if err != nil {
		return Block{}, false, err
	}
	return b, true, nil
}

// List ordena por fecha ascendente.
func (s *Service) List(ctx context.Context, actor auth.Claims) ([]Block, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Date < items[j].Date })
	return items, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Claims, date string) (Block, error) {
	if !actor.IsStaff() {
		return Block{}, ErrForbidden
	}

	b, err := s.repo.GetByDate(ctx, strings.TrimSpace(date))
	if err != nil {
		return Block{}, err
	}
	if err := s.repo.Delete(ctx, b.Date); err != nil {
		return Block{}, err
	}
	return b, nil
}

package pets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-clinic-scheduling/internal/platform/validation"
	"pet-clinic-scheduling/internal/ports/auth"
	"pet-clinic-scheduling/internal/ports/kv"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo   Repository
	locker kv.Locker
	now    func() time.Time
}

func NewService(repo Repository, locker kv.Locker) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		now:    time.Now,
	}
}

type CreateInput struct {
	// OwnerID vacío = el actor. Solo staff puede crear para otro owner.
	OwnerID string

	Name                string `validate:"required,max=80"`
	Species             string `validate:"required,max=40"`
	Breed               string `validate:"max=80"`
	DateOfBirth         *time.Time
	Weight              float64 `validate:"gte=0,lte=1000"`
	MicrochipID         string  `validate:"max=64"`
	NextVaccinationDate *time.Time
	MedicalNotes        string `validate:"max=4000"`
}

// Create rechaza duplicados del mismo owner (ver FindDuplicate) con *DuplicateError.
// El chequeo y la escritura corren bajo el lock del owner para que dos altas
// simultáneas de la misma mascota no pasen ambas.
func (s *Service) Create(ctx context.Context, actor auth.Claims, in CreateInput) (Pet, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return Pet{}, ErrInvalidInput
	}

	ownerID := strings.TrimSpace(in.OwnerID)
	if ownerID == "" {
		ownerID = actor.UserID
	}
	if ownerID != actor.UserID && !actor.IsStaff() {
		return Pet{}, ErrForbidden
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Species = strings.TrimSpace(in.Species)
	in.Breed = strings.TrimSpace(in.Breed)
	in.MicrochipID = strings.TrimSpace(in.MicrochipID)
	if err := validation.Struct(in); err != nil {
		return Pet{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now()
	p := Pet{
		ID:                  uuid.NewString(),
		OwnerID:             ownerID,
		Name:                in.Name,
		Species:             Species(in.Species),
		Breed:               in.Breed,
		DateOfBirth:         in.DateOfBirth,
		Weight:              in.Weight,
		MicrochipID:         in.MicrochipID,
		NextVaccinationDate: in.NextVaccinationDate,
		MedicalNotes:        strings.TrimSpace(in.MedicalNotes),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	unlock, err := s.locker.Lock(ctx, OwnerLockKey(ownerID))
	if err != nil {
		return Pet{}, err
	}
	defer unlock()

	existing, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return Pet{}, err
	}
	if dup, ok := FindDuplicate(p, existing); ok {
		return Pet{}, &DuplicateError{Existing: dup}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Get aplica permisos: owner o staff.
func (s *Service) Get(ctx context.Context, actor auth.Claims, id string) (Pet, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerID != actor.UserID && !actor.IsStaff() {
		return Pet{}, ErrForbidden
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListAll(ctx context.Context, actor auth.Claims) ([]Pet, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	return s.repo.ListAll(ctx)
}

// OptionalDate distingue "no enviado" de "enviado null" en un PATCH.
type OptionalDate struct {
	Present bool
	Value   *time.Time
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name                *string
	Species             *string
	Breed               *string
	DateOfBirth         OptionalDate
	Weight              *float64
	MicrochipID         *string
	NextVaccinationDate OptionalDate
	MedicalNotes        *string
}

func (s *Service) Update(ctx context.Context, actor auth.Claims, id string, in UpdateInput) (Pet, error) {
	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Name = v
	}
	if in.Species != nil {
		v := strings.TrimSpace(*in.Species)
		if v == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Species = Species(v)
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.DateOfBirth.Present {
		p.DateOfBirth = in.DateOfBirth.Value
	}
	if in.Weight != nil {
		if *in.Weight < 0 {
			return Pet{}, ErrInvalidInput
		}
		p.Weight = *in.Weight
	}
	if in.MicrochipID != nil {
		p.MicrochipID = strings.TrimSpace(*in.MicrochipID)
	}
	if in.NextVaccinationDate.Present {
		p.NextVaccinationDate = in.NextVaccinationDate.Value
	}
	if in.MedicalNotes != nil {
		p.MedicalNotes = strings.TrimSpace(*in.MedicalNotes)
	}

	p.UpdatedAt = s.now()

	// Mismo criterio de duplicado que en Create, bajo el mismo lock.
	unlock, err := s.locker.Lock(ctx, OwnerLockKey(p.OwnerID))
	if err != nil {
		return Pet{}, err
	}
	defer unlock()

	existing, err := s.repo.ListByOwner(ctx, p.OwnerID)
	if err != nil {
		return Pet{}, err
	}
	if dup, ok := FindDuplicate(p, existing); ok {
		return Pet{}, &DuplicateError{Existing: dup}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// Delete devuelve la mascota borrada. El repo limpia índices e historial.
func (s *Service) Delete(ctx context.Context, actor auth.Claims, id string) (Pet, error) {
	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return Pet{}, err
	}

	unlock, err := s.locker.Lock(ctx, OwnerLockKey(p.OwnerID))
	if err != nil {
		return Pet{}, err
	}
	defer unlock()

	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return Pet{}, err
	}
	return p, nil
}

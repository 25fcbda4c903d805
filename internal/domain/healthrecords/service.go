package healthrecords

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"pet-clinic-scheduling/internal/domain/pets"
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

// PetOwnerResolver evita depender del Service completo de pets.
type PetOwnerResolver interface {
	OwnerOf(ctx context.Context, petID string) (string, error)
}

type Service struct {
	repo   Repository
	pets   PetOwnerResolver
	locker kv.Locker
	now    func() time.Time
}

// NewService recibe el mismo locker que pets: las escrituras toman el lock
// del owner para no cruzarse con el borrado en cascada de la mascota.
func NewService(repo Repository, pets PetOwnerResolver, locker kv.Locker) *Service {
	return &Service{
		repo:   repo,
		pets:   pets,
		locker: locker,
		now:    time.Now,
	}
}

type CreateInput struct {
	RecordType  RecordType `validate:"required"`
	Title       string     `validate:"required,max=200"`
	Description string     `validate:"max=4000"`
	Date        time.Time  `validate:"required"`

	Veterinarian string `validate:"max=120"`
	Medications  string `validate:"max=1000"`
	FollowUp     string `validate:"max=1000"`
}

func (s *Service) Create(ctx context.Context, actor auth.Claims, petID string, in CreateInput) (HealthRecord, error) {
	ownerID, err := s.authorize(ctx, actor, petID)
	if err != nil {
		return HealthRecord{}, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct(in); err != nil {
		return HealthRecord{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !in.RecordType.Valid() {
		return HealthRecord{}, fmt.Errorf("%w: unknown record type %q", ErrInvalidInput, in.RecordType)
	}

	rec := HealthRecord{
		ID:           uuid.NewString(),
		PetID:        petID,
		RecordType:   in.RecordType,
		Title:        in.Title,
		Description:  strings.TrimSpace(in.Description),
		Date:         in.Date,
		Veterinarian: strings.TrimSpace(in.Veterinarian),
		Medications:  strings.TrimSpace(in.Medications),
		FollowUp:     strings.TrimSpace(in.FollowUp),
		AddedBy:      actor.UserID,
		CreatedAt:    s.now(),
	}

	unlock, err := s.lockPet(ctx, ownerID, petID)
	if err != nil {
		return HealthRecord{}, err
	}
	defer unlock()

	if err := s.repo.Create(ctx, rec); err != nil {
		return HealthRecord{}, err
	}
	return rec, nil
}

// ListByPet devuelve el historial del más reciente al más antiguo.
func (s *Service) ListByPet(ctx context.Context, actor auth.Claims, petID string) ([]HealthRecord, error) {
	if _, err := s.authorize(ctx, actor, petID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	return items, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Claims, petID, recordID string) (HealthRecord, error) {
	ownerID, err := s.authorize(ctx, actor, petID)
	if err != nil {
		return HealthRecord{}, err
	}

	unlock, err := s.lockPet(ctx, ownerID, petID)
	if err != nil {
		return HealthRecord{}, err
	}
	defer unlock()

	rec, err := s.repo.GetByID(ctx, strings.TrimSpace(recordID))
	if err != nil {
		return HealthRecord{}, err
	}
	// No filtrar registros de otra mascota por esta ruta.
	if rec.PetID != petID {
		return HealthRecord{}, ErrNotFound
	}

	if err := s.repo.Delete(ctx, rec.ID); err != nil {
		return HealthRecord{}, err
	}
	return rec, nil
}

// authorize: owner de la mascota o staff. Devuelve el owner.
func (s *Service) authorize(ctx context.Context, actor auth.Claims, petID string) (string, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return "", ErrForbidden
	}
	if strings.TrimSpace(petID) == "" {
		return "", ErrNotFound
	}

	ownerID, err := s.resolveOwner(ctx, petID)
	if err != nil {
		return "", err
	}
	if ownerID != actor.UserID && !actor.IsStaff() {
		return "", ErrForbidden
	}
	return ownerID, nil
}

// lockPet toma el lock del owner y vuelve a mirar que la mascota siga ahí:
// pudo borrarse entre authorize y el lock.
func (s *Service) lockPet(ctx context.Context, ownerID, petID string) (func(), error) {
	unlock, err := s.locker.Lock(ctx, pets.OwnerLockKey(ownerID))
	if err != nil {
		return nil, err
	}
	if _, err := s.resolveOwner(ctx, petID); err != nil {
		unlock()
		return nil, err
	}
	return unlock, nil
}

func (s *Service) resolveOwner(ctx context.Context, petID string) (string, error) {
	ownerID, err := s.pets.OwnerOf(ctx, petID)
	if err != nil {
		if errors.Is(err, pets.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return ownerID, nil
}

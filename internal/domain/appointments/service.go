package appointments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"pet-clinic-scheduling/internal/domain/blocks"
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

// scheduleLock serializa chequeo de disponibilidad + escritura de todos los turnos.
const scheduleLock = "schedule"

type PetLookup interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
}

type BlockLookup interface {
	Lookup(ctx context.Context, date string) (blocks.Block, bool, error)
}

type Service struct {
	repo   Repository
	pets   PetLookup
	blocks BlockLookup
	locker kv.Locker
	loc    *time.Location
	now    func() time.Time
}

type Options struct {
	Repo     Repository
	Pets     PetLookup
	Blocks   BlockLookup
	Locker   kv.Locker
	Location *time.Location // zona de la clínica; define el "día" de un bloqueo
}

func NewService(opts Options) *Service {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:   opts.Repo,
		pets:   opts.Pets,
		blocks: opts.Blocks,
		locker: opts.Locker,
		loc:    loc,
		now:    time.Now,
	}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// checkAvailability devuelve *ConflictError si t cae en un día bloqueado o a menos
// de Buffer de otro turno activo. El bloqueo tiene prioridad.
func (s *Service) checkAvailability(ctx context.Context, t time.Time, excludeID string) error {
	b, blocked, err := s.blocks.Lookup(ctx, t.In(s.loc).Format(blocks.DateLayout))
	if err != nil {
		return err
	}
	if blocked {
		return &ConflictError{Kind: ConflictBlocked, Block: &b}
	}

	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}
	if a, ok := FindConflict(all, t, excludeID); ok {
		return &ConflictError{Kind: ConflictBooked, Appointment: &a}
	}
	return nil
}

func (s *Service) IsAvailable(ctx context.Context, t time.Time) (bool, error) {
	err := s.checkAvailability(ctx, t, "")
	if errors.Is(err, ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DaySlot es un slot de la grilla con su disponibilidad.
type DaySlot struct {
	Start     time.Time
	Available bool
	Reason    ConflictKind // "" si está libre
}

// DaySlots arma la grilla de date (YYYY-MM-DD en la zona de la clínica).
// Lee bloqueo y turnos una sola vez; la UI lo consulta por polling.
func (s *Service) DaySlots(ctx context.Context, date string) ([]DaySlot, error) {
	day, err := time.ParseInLocation(blocks.DateLayout, strings.TrimSpace(date), s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	_, blocked, err := s.blocks.Lookup(ctx, day.Format(blocks.DateLayout))
	if err != nil {
		return nil, err
	}

	var all []Appointment
	if !blocked {
		if all, err = s.repo.ListAll(ctx); err != nil {
			return nil, err
		}
	}

	slots := GenerateSlots(day, s.loc)
	out := make([]DaySlot, 0, len(slots))
	for _, t := range slots {
		ds := DaySlot{Start: t, Available: true}
		switch {
		case blocked:
			ds.Available, ds.Reason = false, ConflictBlocked
		default:
			if _, ok := FindConflict(all, t, ""); ok {
				ds.Available, ds.Reason = false, ConflictBooked
			}
		}
		out = append(out, ds)
	}
	return out, nil
}

type CreateInput struct {
	PetID    string    `validate:"required"`
	DateTime time.Time `validate:"required"`
	Reason   string    `validate:"required,max=500"`
	Notes    string    `validate:"max=2000"`
}

// Create agenda un turno pending:
//  1. 409 si el día está bloqueado
//  2. 409 si choca con otro turno activo
//  3. staff/admin agenda para el dueño de la mascota; un owner solo para sí mismo
//  4. persiste y agrega el id al índice del dueño resuelto
//
// Todo corre bajo scheduleLock para que dos reservas simultáneas no pasen ambas el chequeo.
func (s *Service) Create(ctx context.Context, actor auth.Claims, in CreateInput) (Appointment, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return Appointment{}, ErrForbidden
	}

	in.PetID = strings.TrimSpace(in.PetID)
	in.Reason = strings.TrimSpace(in.Reason)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := validation.Struct(in); err != nil {
		return Appointment{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	unlock, err := s.locker.Lock(ctx, scheduleLock)
	if err != nil {
		return Appointment{}, err
	}
	defer unlock()

	if err := s.checkAvailability(ctx, in.DateTime, ""); err != nil {
		return Appointment{}, err
	}

	pet, err := s.pets.GetByID(ctx, in.PetID)
	if err != nil {
		if errors.Is(err, pets.ErrNotFound) {
			return Appointment{}, fmt.Errorf("%w: pet %s", ErrNotFound, in.PetID)
		}
		return Appointment{}, err
	}

	userID, err := resolveOwner(actor, pet)
	if err != nil {
		return Appointment{}, err
	}

	now := s.now()
	a := Appointment{
		ID:        uuid.NewString(),
		UserID:    userID,
		PetID:     pet.ID,
		PetName:   pet.Name,
		DateTime:  in.DateTime,
		Reason:    in.Reason,
		Notes:     in.Notes,
		Status:    StatusPending,
		CreatedBy: actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// resolveOwner: el turno de staff pertenece al dueño de la mascota, nunca al staff.
func resolveOwner(actor auth.Claims, pet pets.Pet) (string, error) {
	if actor.IsStaff() {
		return pet.OwnerID, nil
	}
	if pet.OwnerID != actor.UserID {
		return "", ErrForbidden
	}
	return actor.UserID, nil
}

// UpdateInput: nil = no tocar.
type UpdateInput struct {
	DateTime *time.Time
	Reason   *string
	Notes    *string
	Status   *Status
}

// Update aplica un PATCH. Si el turno queda activo y cambia de horario (o se
// reactiva un cancelado) se vuelve a chequear disponibilidad, sin contarse a sí mismo.
func (s *Service) Update(ctx context.Context, actor auth.Claims, id string, in UpdateInput) (Appointment, error) {
	unlock, err := s.locker.Lock(ctx, scheduleLock)
	if err != nil {
		return Appointment{}, err
	}
	defer unlock()

	a, err := s.Get(ctx, actor, id)
	if err != nil {
		return Appointment{}, err
	}
	prev := a

	if in.Status != nil {
		if !CanTransition(a.Status, *in.Status) {
			return Appointment{}, fmt.Errorf("%w: cannot move from %q to %q", ErrInvalidInput, a.Status, *in.Status)
		}
		a.Status = *in.Status
	}
	if in.DateTime != nil {
		if in.DateTime.IsZero() {
			return Appointment{}, fmt.Errorf("%w: dateTime required", ErrInvalidInput)
		}
		a.DateTime = *in.DateTime
	}
	if in.Reason != nil {
		v := strings.TrimSpace(*in.Reason)
		if v == "" {
			return Appointment{}, fmt.Errorf("%w: reason required", ErrInvalidInput)
		}
		a.Reason = v
	}
	if in.Notes != nil {
		a.Notes = strings.TrimSpace(*in.Notes)
	}

	moved := !a.DateTime.Equal(prev.DateTime)
	reactivated := !prev.Active() && a.Active()
	if a.Active() && (moved || reactivated) {
		if err := s.checkAvailability(ctx, a.DateTime, a.ID); err != nil {
			return Appointment{}, err
		}
	}

	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// Get aplica permisos: dueño del turno o staff.
func (s *Service) Get(ctx context.Context, actor auth.Claims, id string) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if a.UserID != actor.UserID && !actor.IsStaff() {
		return Appointment{}, ErrForbidden
	}
	return a, nil
}

func (s *Service) ListMine(ctx context.Context, actor auth.Claims) ([]Appointment, error) {
	items, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	sortByDateTime(items)
	return items, nil
}

func (s *Service) ListAll(ctx context.Context, actor auth.Claims) ([]Appointment, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sortByDateTime(items)
	return items, nil
}

func sortByDateTime(items []Appointment) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DateTime.Before(items[j].DateTime)
	})
}

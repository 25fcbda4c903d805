package reminders

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-clinic-scheduling/internal/domain/appointments"
	"pet-clinic-scheduling/internal/domain/pets"
	"pet-clinic-scheduling/internal/ports/auth"

	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

type AppointmentSource interface {
	ListByUser(ctx context.Context, userID string) ([]appointments.Appointment, error)
}

type PetSource interface {
	ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error)
}

type Service struct {
	appts     AppointmentSource
	pets      PetSource
	dismissed DismissalRepository
	now       func() time.Time
}

func NewService(appts AppointmentSource, ps PetSource, dismissed DismissalRepository) *Service {
	return &Service{
		appts:     appts,
		pets:      ps,
		dismissed: dismissed,
		now:       time.Now,
	}
}

// List deriva los recordatorios vigentes del actor y aplica sus descartes al final.
func (s *Service) List(ctx context.Context, actor auth.Claims) ([]Reminder, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return nil, ErrForbidden
	}

	items, err := s.derive(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	dismissed, err := s.dismissed.Get(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return Filter(items, dismissed), nil
}

// Dismiss es idempotente; no valida que el recordatorio exista hoy.
func (s *Service) Dismiss(ctx context.Context, actor auth.Claims, reminderID string) error {
	if strings.TrimSpace(actor.UserID) == "" {
		return ErrForbidden
	}
	reminderID = strings.TrimSpace(reminderID)
	if reminderID == "" {
		return ErrInvalidInput
	}
	return s.dismissed.Add(ctx, actor.UserID, reminderID)
}

// PruneDismissals borra los descartes que ya no corresponden a ningún recordatorio
// derivable (turno pasado, vacuna reprogramada, mascota borrada). Devuelve cuántos borró.
func (s *Service) PruneDismissals(ctx context.Context) (int, error) {
	users, err := s.dismissed.ListUsers(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		items, err := s.derive(ctx, userID)
		if err != nil {
			return total, err
		}
		live := make(map[string]struct{}, len(items))
		for _, r := range items {
			live[r.ID] = struct{}{}
		}

		n, err := s.dismissed.Retain(ctx, userID, func(id string) bool {
			_, ok := live[id]
			return ok
		})
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (s *Service) derive(ctx context.Context, userID string) ([]Reminder, error) {
	var (
		appts []appointments.Appointment
		ps    []pets.Pet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		appts, err = s.appts.ListByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		ps, err = s.pets.ListByOwner(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Derive(appts, ps, s.now()), nil
}

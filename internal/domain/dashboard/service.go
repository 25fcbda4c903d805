package dashboard

import (
	"context"
	"errors"
	"time"

	"pet-clinic-scheduling/internal/domain/appointments"
	"pet-clinic-scheduling/internal/domain/pets"
	"pet-clinic-scheduling/internal/domain/users"
	"pet-clinic-scheduling/internal/ports/auth"

	"golang.org/x/sync/errgroup"
)

var ErrForbidden = errors.New("forbidden")

type AppointmentSource interface {
	ListAll(ctx context.Context) ([]appointments.Appointment, error)
}

type PetSource interface {
	ListAll(ctx context.Context) ([]pets.Pet, error)
}

type UserSource interface {
	ListAll(ctx context.Context) ([]users.User, error)
}

type Service struct {
	appts AppointmentSource
	pets  PetSource
	users UserSource
	loc   *time.Location
	now   func() time.Time
}

func NewService(appts AppointmentSource, ps PetSource, us UserSource, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		appts: appts,
		pets:  ps,
		users: us,
		loc:   loc,
		now:   time.Now,
	}
}

// Stats carga las tres colecciones en paralelo. Solo staff/admin.
func (s *Service) Stats(ctx context.Context, actor auth.Claims) (Stats, error) {
	if !actor.IsStaff() {
		return Stats{}, ErrForbidden
	}

	var (
		appts []appointments.Appointment
		ps    []pets.Pet
		us    []users.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		appts, err = s.appts.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		ps, err = s.pets.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		us, err = s.users.ListAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	return Compute(appts, ps, us, s.now(), s.loc), nil
}

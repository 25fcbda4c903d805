package kvrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pet-clinic-scheduling/internal/domain/appointments"
	"pet-clinic-scheduling/internal/ports/kv"

	"go.uber.org/multierr"
)

var _ appointments.Repository = (*AppointmentRepo)(nil)

type AppointmentRepo struct {
	store kv.Store
}

func NewAppointmentRepo(store kv.Store) *AppointmentRepo {
	return &AppointmentRepo{store: store}
}

// Create: registro + índice del dueño resuelto (UserID), con rollback del registro.
func (r *AppointmentRepo) Create(ctx context.Context, a appointments.Appointment) error {
	if strings.TrimSpace(a.ID) == "" || strings.TrimSpace(a.UserID) == "" {
		return fmt.Errorf("%w: appointment id and user required", appointments.ErrInvalidInput)
	}
	b, err := json.Marshal(toAppointmentRecord(a))
	if err != nil {
		return err
	}

	if err := putIfAbsent(ctx, r.store, appointmentKey(a.ID), b, fmt.Errorf("appointment %s already exists", a.ID)); err != nil {
		return err
	}
	if err := appendID(ctx, r.store, userAppointmentsKey(a.UserID), a.UserID, a.ID); err != nil {
		return multierr.Append(
			fmt.Errorf("index user appointments: %w", err),
			r.store.Delete(ctx, appointmentKey(a.ID)),
		)
	}
	return nil
}

func (r *AppointmentRepo) Update(ctx context.Context, a appointments.Appointment) error {
	b, err := json.Marshal(toAppointmentRecord(a))
	if err != nil {
		return err
	}
	return replaceExisting(ctx, r.store, appointmentKey(a.ID), b, appointments.ErrNotFound)
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	rec, err := getOne[appointmentRecord](ctx, r.store, appointmentKey(id), appointments.ErrNotFound)
	if err != nil {
		return appointments.Appointment{}, err
	}
	return rec.toDomain(), nil
}

func (r *AppointmentRepo) ListByUser(ctx context.Context, userID string) ([]appointments.Appointment, error) {
	ids, err := readIndex(ctx, r.store, userAppointmentsKey(userID))
	if err != nil {
		return nil, err
	}
	recs, err := loadByIDs[appointmentRecord](ctx, r.store, appointmentKey, ids)
	if err != nil {
		return nil, err
	}
	return appointmentsFrom(recs), nil
}

func (r *AppointmentRepo) ListAll(ctx context.Context) ([]appointments.Appointment, error) {
	recs, err := scanAll[appointmentRecord](ctx, r.store, prefixAppointment)
	if err != nil {
		return nil, err
	}
	return appointmentsFrom(recs), nil
}

func appointmentsFrom(recs []appointmentRecord) []appointments.Appointment {
	out := make([]appointments.Appointment, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out
}

package dashboard

import (
	"context"
	"testing"
	"time"

	"pet-clinic-scheduling/internal/domain/appointments"
	"pet-clinic-scheduling/internal/domain/pets"
	"pet-clinic-scheduling/internal/domain/users"
	"pet-clinic-scheduling/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func appt(at time.Time, st appointments.Status) appointments.Appointment {
	return appointments.Appointment{ID: at.String() + string(st), DateTime: at, Status: st}
}

func fixtures() ([]appointments.Appointment, []pets.Pet, []users.User) {
	due := now.Add(3 * 24 * time.Hour)
	farDue := now.Add(60 * 24 * time.Hour)

	as := []appointments.Appointment{
		appt(now.Add(-2*time.Hour), appointments.StatusPending),      // hoy, vencido
		appt(now.Add(2*time.Hour), appointments.StatusApproved),      // hoy
		appt(now.Add(-time.Hour), appointments.StatusCancelled),      // hoy pero cancelado
		appt(now.Add(-3*24*time.Hour), appointments.StatusCompleted), // semana
		appt(now.Add(-10*24*time.Hour), appointments.StatusPending),  // vencido, fuera de semana
		appt(now.Add(5*24*time.Hour), appointments.StatusPending),    // futuro
	}
	ps := []pets.Pet{
		{ID: "p1", NextVaccinationDate: &due},
		{ID: "p2", NextVaccinationDate: &farDue},
		{ID: "p3"},
	}
	us := []users.User{
		{ID: "o1", Role: auth.RoleOwner},
		{ID: "o2", Role: auth.RoleOwner},
		{ID: "s1", Role: auth.RoleStaff},
		{ID: "a1", Role: auth.RoleAdmin},
	}
	return as, ps, us
}

func TestCompute(t *testing.T) {
	as, ps, us := fixtures()

	st := Compute(as, ps, us, now, time.UTC)

	assert.Equal(t, Stats{
		TodayCount:      2,
		WeekCount:       2, // -2h y -3d; los futuros no cuentan
		PendingCount:    3,
		CompletedCount:  1,
		MissedCount:     2,
		VaccinationsDue: 1,
		TotalPets:       3,
		TotalClients:    2,
	}, st)
}

func TestCompute_TodayFollowsClinicLocation(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	// 01:00 UTC del 10 es el 9 a las 22:00 en UTC-3.
	late := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)

	st := Compute([]appointments.Appointment{appt(late, appointments.StatusPending)}, nil, nil, now, loc)
	assert.Equal(t, 0, st.TodayCount)

	st = Compute([]appointments.Appointment{appt(late, appointments.StatusPending)}, nil, nil, now, time.UTC)
	assert.Equal(t, 1, st.TodayCount)
}

type listAll[T any] []T

func (l listAll[T]) ListAll(ctx context.Context) ([]T, error) { return l, nil }

func TestService_Stats_StaffOnly(t *testing.T) {
	as, ps, us := fixtures()
	svc := NewService(listAll[appointments.Appointment](as), listAll[pets.Pet](ps), listAll[users.User](us), time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.Stats(context.Background(), auth.Claims{UserID: "o1", Role: auth.RoleOwner})
	assert.ErrorIs(t, err, ErrForbidden)

	st, err := svc.Stats(context.Background(), auth.Claims{UserID: "s1", Role: auth.RoleStaff})
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalPets)
	assert.Equal(t, 2, st.TodayCount)
}

package reminders

import (
	"testing"
	"time"

	"pet-clinic-scheduling/internal/domain/appointments"
	"pet-clinic-scheduling/internal/domain/pets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func days(n int) time.Time {
	return now.Add(time.Duration(n) * 24 * time.Hour)
}

func petDue(id string, due time.Time) pets.Pet {
	return pets.Pet{ID: id, OwnerID: "owner-1", Name: "pet " + id, NextVaccinationDate: &due}
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 0, DaysUntil(now, now))
	assert.Equal(t, 1, DaysUntil(now.Add(time.Hour), now))
	assert.Equal(t, 1, DaysUntil(days(1), now))
	assert.Equal(t, 2, DaysUntil(days(1).Add(time.Minute), now))
	assert.Equal(t, -1, DaysUntil(days(-1), now))
}

func TestDerive_VaccinationWindow(t *testing.T) {
	cases := []struct {
		name     string
		offset   int
		want     bool
		priority Priority
	}{
		{"15 days ahead is too far", 15, false, ""},
		{"14 days ahead", 14, true, PriorityMedium},
		{"tomorrow", 1, true, PriorityMedium},
		{"today", 0, true, PriorityHigh},
		{"1 day overdue", -1, true, PriorityHigh},
		{"7 days overdue", -7, true, PriorityHigh},
		{"8 days overdue drops out", -8, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Derive(nil, []pets.Pet{petDue("p1", days(tc.offset))}, now)
			if !tc.want {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, TypeVaccination, got[0].Type)
			assert.Equal(t, tc.priority, got[0].Priority)
			assert.Equal(t, VaccinationID("p1", days(tc.offset)), got[0].ID)
		})
	}
}

func TestDerive_AppointmentWindow(t *testing.T) {
	appt := func(id string, at time.Time, st appointments.Status) appointments.Appointment {
		return appointments.Appointment{ID: id, UserID: "owner-1", PetID: "p1", PetName: "Firulais", DateTime: at, Status: st}
	}

	got := Derive([]appointments.Appointment{
		appt("far", days(8), appointments.StatusPending),
		appt("soon", days(3), appointments.StatusPending),
		appt("tomorrow", days(1), appointments.StatusPending),
		appt("past", days(-2), appointments.StatusPending),
		appt("cancelled", days(2), appointments.StatusCancelled),
		appt("approved", days(2), appointments.StatusApproved),
	}, nil, now)

	require.Len(t, got, 2)
	assert.Equal(t, "tomorrow", got[0].ID)
	assert.Equal(t, PriorityHigh, got[0].Priority)
	assert.Equal(t, "Firulais has an appointment tomorrow", got[0].Message)
	assert.Equal(t, "tomorrow", got[0].AppointmentID)

	assert.Equal(t, "soon", got[1].ID)
	assert.Equal(t, PriorityMedium, got[1].Priority)
	assert.Equal(t, "Firulais has an appointment in 3 days", got[1].Message)
}

func TestDerive_SortedByDateTime(t *testing.T) {
	got := Derive(
		[]appointments.Appointment{{ID: "a", DateTime: days(5), Status: appointments.StatusPending}},
		[]pets.Pet{petDue("late", days(10)), petDue("overdue", days(-3))},
		now,
	)

	require.Len(t, got, 3)
	assert.Equal(t, TypeVaccination, got[0].Type)
	assert.Equal(t, "overdue", got[0].PetID)
	assert.Equal(t, "pet overdue's vaccination is overdue by 3 days", got[0].Message)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "late", got[2].PetID)
}

func TestVaccinationID_ChangesWithDate(t *testing.T) {
	assert.Equal(t, "vaccination:p1:2025-03-10", VaccinationID("p1", now))
	assert.NotEqual(t, VaccinationID("p1", now), VaccinationID("p1", days(1)))
}

func TestFilter(t *testing.T) {
	items := []Reminder{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	assert.Equal(t, items, Filter(items, nil))

	got := Filter(items, []string{"b", "zzz"})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

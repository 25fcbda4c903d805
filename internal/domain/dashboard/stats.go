package dashboard

import (
	"time"

	"pet-clinic-scheduling/internal/domain/appointments"
	"pet-clinic-scheduling/internal/domain/pets"
	"pet-clinic-scheduling/internal/domain/reminders"
	"pet-clinic-scheduling/internal/domain/users"
	"pet-clinic-scheduling/internal/ports/auth"
)

type Stats struct {
	TodayCount      int
	WeekCount       int
	PendingCount    int
	CompletedCount  int
	MissedCount     int
	VaccinationsDue int
	TotalPets       int
	TotalClients    int
}

// Compute es puro. Hoy y semana no cuentan cancelados; "hoy" es el día calendario en loc.
func Compute(appts []appointments.Appointment, ps []pets.Pet, us []users.User, now time.Time, loc *time.Location) Stats {
	if loc == nil {
		loc = time.UTC
	}
	ty, tm, td := now.In(loc).Date()
	weekStart := now.Add(-7 * 24 * time.Hour)

	var st Stats
	for _, a := range appts {
		switch a.Status {
		case appointments.StatusPending:
			st.PendingCount++
			if a.DateTime.Before(now) {
				st.MissedCount++
			}
		case appointments.StatusCompleted:
			st.CompletedCount++
		}

		if !a.Active() {
			continue
		}
		if y, m, d := a.DateTime.In(loc).Date(); y == ty && m == tm && d == td {
			st.TodayCount++
		}
		if !a.DateTime.Before(weekStart) && !a.DateTime.After(now) {
			st.WeekCount++
		}
	}

	for _, p := range ps {
		if p.NextVaccinationDate != nil && reminders.InVaccinationWindow(reminders.DaysUntil(*p.NextVaccinationDate, now)) {
			st.VaccinationsDue++
		}
	}
	st.TotalPets = len(ps)

	for _, u := range us {
		if u.Role == auth.RoleOwner {
			st.TotalClients++
		}
	}
	return st
}

package reminders

import (
	"fmt"
	"math"
	"sort"
	"time"

	"pet-clinic-scheduling/internal/domain/appointments"
	"pet-clinic-scheduling/internal/domain/pets"
)

// Ventanas en días (inclusive).
const (
	AppointmentWindowDays = 7

	VaccinationOverdueDays = 7
	VaccinationAheadDays   = 14
)

// DaysUntil = ceil((t - now) / 24h). Negativo si t ya pasó.
func DaysUntil(t, now time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

// VaccinationID depende de la fecha: cambiar la fecha de vacuna genera otro recordatorio.
func VaccinationID(petID string, due time.Time) string {
	return "vaccination:" + petID + ":" + due.UTC().Format("2006-01-02")
}

// InVaccinationWindow: hasta 7 días vencida o hasta 14 días adelante.
func InVaccinationWindow(days int) bool {
	return days >= -VaccinationOverdueDays && days <= VaccinationAheadDays
}

// Derive arma los recordatorios de un usuario a partir de sus turnos y mascotas.
// Solo los turnos pending generan recordatorio. Salida ordenada por fecha.
func Derive(appts []appointments.Appointment, ps []pets.Pet, now time.Time) []Reminder {
	out := make([]Reminder, 0)

	for _, a := range appts {
		if a.Status != appointments.StatusPending {
			continue
		}
		d := DaysUntil(a.DateTime, now)
		if d < 0 || d > AppointmentWindowDays {
			continue
		}

		prio := PriorityMedium
		if d <= 1 {
			prio = PriorityHigh
		}
		out = append(out, Reminder{
			ID:            a.ID,
			Type:          TypeAppointment,
			PetID:         a.PetID,
			AppointmentID: a.ID,
			PetName:       a.PetName,
			Message:       appointmentMessage(a.PetName, d),
			DateTime:      a.DateTime,
			Priority:      prio,
		})
	}

	for _, p := range ps {
		if p.NextVaccinationDate == nil {
			continue
		}
		due := *p.NextVaccinationDate
		d := DaysUntil(due, now)
		if !InVaccinationWindow(d) {
			continue
		}

		prio := PriorityMedium
		if d <= 0 {
			prio = PriorityHigh
		}
		out = append(out, Reminder{
			ID:       VaccinationID(p.ID, due),
			Type:     TypeVaccination,
			PetID:    p.ID,
			PetName:  p.Name,
			Message:  vaccinationMessage(p.Name, d),
			DateTime: due,
			Priority: prio,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateTime.Before(out[j].DateTime)
	})
	return out
}

// Filter saca los recordatorios descartados por el usuario.
func Filter(items []Reminder, dismissed []string) []Reminder {
	if len(dismissed) == 0 {
		return items
	}
	skip := make(map[string]struct{}, len(dismissed))
	for _, id := range dismissed {
		skip[id] = struct{}{}
	}

	out := make([]Reminder, 0, len(items))
	for _, r := range items {
		if _, ok := skip[r.ID]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

func appointmentMessage(petName string, days int) string {
	switch days {
	case 0:
		return fmt.Sprintf("%s has an appointment today", petName)
	case 1:
		return fmt.Sprintf("%s has an appointment tomorrow", petName)
	default:
		return fmt.Sprintf("%s has an appointment in %d days", petName, days)
	}
}

func vaccinationMessage(petName string, days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("%s's vaccination is overdue by %d days", petName, -days)
	case days == 0:
		return fmt.Sprintf("%s's vaccination is due today", petName)
	default:
		return fmt.Sprintf("%s's vaccination is due in %d days", petName, days)
	}
}

package appointments

import (
	"errors"
	"time"

	"pet-clinic-scheduling/internal/domain/blocks"
)

const (
	OpeningHour  = 9
	SlotsPerDay  = 16
	SlotDuration = 30 * time.Minute

	// Buffer mínimo entre dos turnos activos, en ambos sentidos.
	Buffer = 30 * time.Minute
)

var ErrConflict = errors.New("schedule conflict")

type ConflictKind string

const (
	ConflictBlocked ConflictKind = "blocked"
	ConflictBooked  ConflictKind = "booked"
)

// ConflictError lleva lo que ocupa el horario: el bloqueo del día o el turno en conflicto.
type ConflictError struct {
	Kind        ConflictKind
	Block       *blocks.Block
	Appointment *Appointment
}

func (e *ConflictError) Error() string {
	switch e.Kind {
	case ConflictBlocked:
		return "schedule conflict: day is blocked"
	default:
		return "schedule conflict: slot already booked"
	}
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// GenerateSlots devuelve los inicios de turno del día de date en loc: 09:00 a 16:30 cada 30 min.
func GenerateSlots(date time.Time, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.In(loc).Date()

	out := make([]time.Time, 0, SlotsPerDay)
	for i := 0; i < SlotsPerDay; i++ {
		// time.Date normaliza los minutos, así un cambio de horario no corre la grilla.
		out = append(out, time.Date(y, m, d, OpeningHour, i*int(SlotDuration/time.Minute), 0, 0, loc))
	}
	return out
}

// FindConflict devuelve el primer turno activo a menos de Buffer de t.
// excludeID se ignora (reprogramar un turno no choca consigo mismo).
func FindConflict(existing []Appointment, t time.Time, excludeID string) (Appointment, bool) {
	for _, a := range existing {
		if !a.Active() || (excludeID != "" && a.ID == excludeID) {
			continue
		}
		if absDuration(a.DateTime.Sub(t)) < Buffer {
			return a, true
		}
	}
	return Appointment{}, false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

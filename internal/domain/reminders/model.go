package reminders

import "time"

type Type string

const (
	TypeAppointment Type = "appointment"
	TypeVaccination Type = "vaccination"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Reminder se calcula en cada request; nunca se persiste.
type Reminder struct {
	ID            string
	Type          Type
	PetID         string
	AppointmentID string
	PetName       string
	Message       string
	DateTime      time.Time
	Priority      Priority
}

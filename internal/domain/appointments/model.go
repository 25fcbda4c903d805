package appointments

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Appointment es un turno. UserID es el dueño a notificar/facturar, que no
// siempre es quien lo creó (CreatedBy): staff agenda en nombre del owner.
type Appointment struct {
	ID      string
	UserID  string
	PetID   string
	PetName string // snapshot al momento de agendar

	DateTime time.Time
	Reason   string
	Notes    string
	Status   Status

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active: un turno cancelado no ocupa agenda ni genera recordatorios.
func (a Appointment) Active() bool {
	return a.Status != StatusCancelled
}

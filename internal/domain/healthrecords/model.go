package healthrecords

import "time"

type RecordType string

const (
	RecordTypeCheckup     RecordType = "checkup"
	RecordTypeVaccination RecordType = "vaccination"
	RecordTypeMedication  RecordType = "medication"
	RecordTypeSurgery     RecordType = "surgery"
)

func (t RecordType) Valid() bool {
	switch t {
	case RecordTypeCheckup, RecordTypeVaccination, RecordTypeMedication, RecordTypeSurgery:
		return true
	default:
		return false
	}
}

// HealthRecord es una entrada del historial clínico. Pertenece a la mascota (PetID).
type HealthRecord struct {
	ID    string
	PetID string

	RecordType  RecordType
	Title       string
	Description string
	Date        time.Time

	Veterinarian string
	Medications  string
	FollowUp     string

	AddedBy   string
	CreatedAt time.Time
}

package pets

import "time"

// Species es texto libre; estas constantes son las que ofrece la UI.
type Species string

const (
	SpeciesDog   Species = "dog"
	SpeciesCat   Species = "cat"
	SpeciesBird  Species = "bird"
	SpeciesOther Species = "other"
)

// Pet representa el perfil de una mascota. Pertenece a un único owner (OwnerID).
type Pet struct {
	ID      string
	OwnerID string

	Name    string
	Species Species
	Breed   string

	DateOfBirth *time.Time
	Weight      float64 // kg
	MicrochipID string  // opcional, "" = sin chip

	NextVaccinationDate *time.Time
	MedicalNotes        string

	CreatedAt time.Time
	UpdatedAt time.Time
}

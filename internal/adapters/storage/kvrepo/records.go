package kvrepo

import (
	"time"

	"pet-clinic-scheduling/internal/domain/appointments"
	"pet-clinic-scheduling/internal/domain/blocks"
	"pet-clinic-scheduling/internal/domain/healthrecords"
	"pet-clinic-scheduling/internal/domain/pets"
	"pet-clinic-scheduling/internal/domain/users"
	"pet-clinic-scheduling/internal/ports/auth"
)

// Formato persistido (JSON). Separado de los modelos de dominio para que un
// cambio de modelo no rompa registros ya guardados.

type userRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserRecord(u users.User) userRecord {
	return userRecord{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func (r userRecord) toDomain() users.User {
	return users.User{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		Role:      auth.ParseRole(r.Role),
		CreatedAt: r.CreatedAt,
	}
}

type petRecord struct {
	ID                  string     `json:"id"`
	OwnerID             string     `json:"ownerId"`
	Name                string     `json:"name"`
	Species             string     `json:"species"`
	Breed               string     `json:"breed"`
	DateOfBirth         *time.Time `json:"dateOfBirth,omitempty"`
	Weight              float64    `json:"weight"`
	MicrochipID         string     `json:"microchipId,omitempty"`
	NextVaccinationDate *time.Time `json:"nextVaccinationDate,omitempty"`
	MedicalNotes        string     `json:"medicalNotes,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func toPetRecord(p pets.Pet) petRecord {
	return petRecord{
		ID:                  p.ID,
		OwnerID:             p.OwnerID,
		Name:                p.Name,
		Species:             string(p.Species),
		Breed:               p.Breed,
		DateOfBirth:         p.DateOfBirth,
		Weight:              p.Weight,
		MicrochipID:         p.MicrochipID,
		NextVaccinationDate: p.NextVaccinationDate,
		MedicalNotes:        p.MedicalNotes,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func (r petRecord) toDomain() pets.Pet {
	return pets.Pet{
		ID:                  r.ID,
		OwnerID:             r.OwnerID,
		Name:                r.Name,
		Species:             pets.Species(r.Species),
		Breed:               r.Breed,
		DateOfBirth:         r.DateOfBirth,
		Weight:              r.Weight,
		MicrochipID:         r.MicrochipID,
		NextVaccinationDate: r.NextVaccinationDate,
		MedicalNotes:        r.MedicalNotes,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

type appointmentRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PetID     string    `json:"petId"`
	PetName   string    `json:"petName"`
	DateTime  time.Time `json:"dateTime"`
	Reason    string    `json:"reason"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toAppointmentRecord(a appointments.Appointment) appointmentRecord {
	return appointmentRecord{
		ID:        a.ID,
		UserID:    a.UserID,
		PetID:     a.PetID,
		PetName:   a.PetName,
		DateTime:  a.DateTime,
		Reason:    a.Reason,
		Notes:     a.Notes,
		Status:    string(a.Status),
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (r appointmentRecord) toDomain() appointments.Appointment {
	return appointments.Appointment{
		ID:        r.ID,
		UserID:    r.UserID,
		PetID:     r.PetID,
		PetName:   r.PetName,
		DateTime:  r.DateTime,
		Reason:    r.Reason,
		Notes:     r.Notes,
		Status:    appointments.Status(r.Status),
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type blockRecord struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

func toBlockRecord(b blocks.Block) blockRecord {
	return blockRecord{
		ID:        b.ID,
		Date:      b.Date,
		Notes:     b.Notes,
		CreatedAt: b.CreatedAt,
		CreatedBy: b.CreatedBy,
	}
}

func (r blockRecord) toDomain() blocks.Block {
	return blocks.Block{
		ID:        r.ID,
		Date:      r.Date,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		CreatedBy: r.CreatedBy,
	}
}

type healthRecord struct {
	ID           string    `json:"id"`
	PetID        string    `json:"petId"`
	RecordType   string    `json:"recordType"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	Veterinarian string    `json:"veterinarian,omitempty"`
	Medications  string    `json:"medications,omitempty"`
	FollowUp     string    `json:"followUp,omitempty"`
	AddedBy      string    `json:"addedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toHealthRecord(h healthrecords.HealthRecord) healthRecord {
	return healthRecord{
		ID:           h.ID,
		PetID:        h.PetID,
		RecordType:   string(h.RecordType),
		Title:        h.Title,
		Description:  h.Description,
		Date:         h.Date,
		Veterinarian: h.Veterinarian,
		Medications:  h.Medications,
		FollowUp:     h.FollowUp,
		AddedBy:      h.AddedBy,
		CreatedAt:    h.CreatedAt,
	}
}

func (r healthRecord) toDomain() healthrecords.HealthRecord {
	return healthrecords.HealthRecord{
		ID:           r.ID,
		PetID:        r.PetID,
		RecordType:   healthrecords.RecordType(r.RecordType),
		Title:        r.Title,
		Description:  r.Description,
		Date:         r.Date,
		Veterinarian: r.Veterinarian,
		Medications:  r.Medications,
		FollowUp:     r.FollowUp,
		AddedBy:      r.AddedBy,
		CreatedAt:    r.CreatedAt,
	}
}

// dismissalRecord guarda el userID adentro para poder listarlos con ScanPrefix.
type dismissalRecord struct {
	UserID string   `json:"userId"`
	IDs    []string `json:"ids"`
}

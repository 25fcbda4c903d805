package pets

import (
	"errors"
	"strings"
	"time"
)

var ErrDuplicate = errors.New("duplicate pet")

// DuplicateError lleva la mascota existente para que el cliente pueda ir a editarla.
type DuplicateError struct {
	Existing Pet
}

func (e *DuplicateError) Error() string {
	return "duplicate pet: matches " + e.Existing.ID
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// FindDuplicate devuelve la primera mascota de existing que coincide con candidate:
// - mismo microchip (ambos presentes, case-sensitive), o
// - name/species/breed iguales sin importar mayúsculas y misma fecha de nacimiento.
func FindDuplicate(candidate Pet, existing []Pet) (Pet, bool) {
	for _, p := range existing {
		if p.ID != "" && p.ID == candidate.ID {
			continue
		}
		if candidate.MicrochipID != "" && p.MicrochipID != "" && candidate.MicrochipID == p.MicrochipID {
			return p, true
		}
		if strings.EqualFold(strings.TrimSpace(candidate.Name), strings.TrimSpace(p.Name)) &&
			strings.EqualFold(strings.TrimSpace(string(candidate.Species)), strings.TrimSpace(string(p.Species))) &&
			strings.EqualFold(strings.TrimSpace(candidate.Breed), strings.TrimSpace(p.Breed)) &&
			sameDate(candidate.DateOfBirth, p.DateOfBirth) {
			return p, true
		}
	}
	return Pet{}, false
}

// sameDate: ambas nil cuentan como iguales; una sola nil no.
func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

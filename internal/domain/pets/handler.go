package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-clinic-scheduling/internal/middleware"
	"pet-clinic-scheduling/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))

		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))
	})
}

type createPetRequest struct {
	OwnerID             string  `json:"owner_id"` // solo staff
	Name                string  `json:"name"`
	Species             string  `json:"species"`
	Breed               string  `json:"breed"`
	DateOfBirth         string  `json:"date_of_birth"` // YYYY-MM-DD opcional
	Weight              float64 `json:"weight"`
	MicrochipID         string  `json:"microchip_id"`
	NextVaccinationDate string  `json:"next_vaccination_date"` // YYYY-MM-DD opcional
	MedicalNotes        string  `json:"medical_notes"`
}

type petResponse struct {
	ID                  string     `json:"id"`
	OwnerID             string     `json:"owner_id"`
	Name                string     `json:"name"`
	Species             Species    `json:"species"`
	Breed               string     `json:"breed"`
	DateOfBirth         *time.Time `json:"date_of_birth,omitempty"`
	Weight              float64    `json:"weight"`
	MicrochipID         string     `json:"microchip_id,omitempty"`
	NextVaccinationDate *time.Time `json:"next_vaccination_date,omitempty"`
	MedicalNotes        string     `json:"medical_notes,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type updatePetRequest struct {
	Name         *string  `json:"name"`
	Species      *string  `json:"species"`
	Breed        *string  `json:"breed"`
	Weight       *float64 `json:"weight"`
	MicrochipID  *string  `json:"microchip_id"`
	MedicalNotes *string  `json:"medical_notes"`
}

func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		var req createPetRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		dob, err := parseOptionalDate(req.DateOfBirth)
		if err != nil {
			http.Error(w, "date_of_birth must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		vac, err := parseOptionalDate(req.NextVaccinationDate)
		if err != nil {
			http.Error(w, "next_vaccination_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), claims, CreateInput{
			OwnerID:             req.OwnerID,
			Name:                req.Name,
			Species:             req.Species,
			Breed:               req.Breed,
			DateOfBirth:         dob,
			Weight:              req.Weight,
			MicrochipID:         req.MicrochipID,
			NextVaccinationDate: vac,
			MedicalNotes:        req.MedicalNotes,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// listPetsHandler: ?scope=all lista todas (solo staff); por defecto las del actor.
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		var (
			items []Pet
			err   error
		)
		if r.URL.Query().Get("scope") == "all" {
			items, err = svc.ListAll(r.Context(), claims)
		} else {
			items, err = svc.ListByOwner(r.Context(), claims.UserID)
		}
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}

		respond.JSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		p, err := svc.Get(r.Context(), claims, chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, toPetResponse(p))
	}
}

func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		// Para soportar fechas en null, necesitamos detectar presencia del campo.
		// Estrategia: decodificar a map primero y luego al struct.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req updatePetRequest
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		dob, err := patchDate(raw, "date_of_birth")
		if err != nil {
			http.Error(w, "date_of_birth must be YYYY-MM-DD or null", http.StatusBadRequest)
			return
		}
		vac, err := patchDate(raw, "next_vaccination_date")
		if err != nil {
			http.Error(w, "next_vaccination_date must be YYYY-MM-DD or null", http.StatusBadRequest)
			return
		}

		updated, err := svc.Update(r.Context(), claims, chi.URLParam(r, "petID"), UpdateInput{
			Name:                req.Name,
			Species:             req.Species,
			Breed:               req.Breed,
			DateOfBirth:         dob,
			Weight:              req.Weight,
			MicrochipID:         req.MicrochipID,
			NextVaccinationDate: vac,
			MedicalNotes:        req.MedicalNotes,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, toPetResponse(updated))
	}
}

func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		deleted, err := svc.Delete(r.Context(), claims, chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, toPetResponse(deleted))
	}
}

func writeError(w http.ResponseWriter, err error) {
	var dup *DuplicateError
	switch {
	case errors.As(err, &dup):
		// 409 con la mascota existente para que la UI ofrezca editarla.
		respond.Conflict(w, "duplicate_pet", "pet already registered", toPetResponse(dup.Existing))
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseOptionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func patchDate(raw map[string]json.RawMessage, field string) (OptionalDate, error) {
	v, exists := raw[field]
	if !exists {
		return OptionalDate{}, nil
	}
	if string(v) == "null" {
		return OptionalDate{Present: true}, nil
	}

	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return OptionalDate{}, err
	}
	t, err := parseOptionalDate(s)
	if err != nil {
		return OptionalDate{}, err
	}
	return OptionalDate{Present: true, Value: t}, nil
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:                  p.ID,
		OwnerID:             p.OwnerID,
		Name:                p.Name,
		Species:             p.Species,
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

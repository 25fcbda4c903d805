package appointments

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

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/appointments", func(ar chi.Router) {
		ar.Post("/", createAppointmentHandler(svc))
		ar.Get("/", listAppointmentsHandler(svc))

		ar.Get("/{appointmentID}", getAppointmentHandler(svc))
		ar.Patch("/{appointmentID}", updateAppointmentHandler(svc))
	})

	r.Route("/schedule", func(sr chi.Router) {
		sr.Get("/slots", daySlotsHandler(svc))
		sr.Get("/availability", availabilityHandler(svc))
	})
}

// createAppointmentRequest es el cuerpo para agendar un turno.
type createAppointmentRequest struct {
	PetID    string `json:"pet_id"`
	DateTime string `json:"date_time"` // RFC3339
	Reason   string `json:"reason"`
	Notes    string `json:"notes"`
}

// updateAppointmentRequest: PATCH, los campos ausentes no se tocan.
type updateAppointmentRequest struct {
	DateTime *string `json:"date_time"` // RFC3339
	Reason   *string `json:"reason"`
	Notes    *string `json:"notes"`
	Status   *Status `json:"status" enums:"pending,approved,completed,cancelled"`
}

// appointmentResponse representa un turno devuelto por la API.
type appointmentResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PetID     string    `json:"pet_id"`
	PetName   string    `json:"pet_name"`
	DateTime  time.Time `json:"date_time"`
	Reason    string    `json:"reason"`
	Notes     string    `json:"notes,omitempty"`
	Status    Status    `json:"status"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type blockedDayResponse struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Notes string `json:"notes"`
}

type slotResponse struct {
	Start     time.Time    `json:"start"`
	Available bool         `json:"available"`
	Reason    ConflictKind `json:"reason,omitempty" enums:"blocked,booked"`
}

type availabilityResponse struct {
	At        time.Time `json:"at"`
	Available bool      `json:"available"`
}

// createAppointmentHandler godoc
// @Summary Agendar turno
// @Description Crea un turno pending. Staff/admin agenda en nombre del dueño de la mascota (user_id = dueño). Un owner solo puede agendar para sus mascotas. Responde 409 si el día está bloqueado o hay otro turno activo a menos de 30 minutos.
// @Tags appointments
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Role header string false "Solo en modo dev: owner, staff o admin"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createAppointmentRequest true "Datos del turno; date_time en RFC3339"
// @Success 201 {object} appointmentResponse
// @Failure 400 {string} string "invalid json / date_time inválido / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Failure 409 {object} respond.ConflictBody
// @Router /appointments [post]
func createAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		var req createAppointmentRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := time.Parse(time.RFC3339, strings.TrimSpace(req.DateTime))
		if err != nil {
			http.Error(w, "date_time must be RFC3339", http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), claims, CreateInput{
			PetID:    req.PetID,
			DateTime: t,
			Reason:   req.Reason,
			Notes:    req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, toAppointmentResponse(a))
	}
}

// listAppointmentsHandler godoc
// @Summary Listar turnos
// @Description Por defecto los turnos del actor. Con scope=all todos los turnos (solo staff/admin). Ordenados por fecha.
// @Tags appointments
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Role header string false "Solo en modo dev: owner, staff o admin"
// @Param Authorization header string false "Bearer token en producción"
// @Param scope query string false "all = todos los turnos (staff)"
// @Success 200 {array} appointmentResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 500 {string} string "internal error"
// @Router /appointments [get]
func listAppointmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		var (
			items []Appointment
			err   error
		)
		if r.URL.Query().Get("scope") == "all" {
			items, err = svc.ListAll(r.Context(), claims)
		} else {
			items, err = svc.ListMine(r.Context(), claims)
		}
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]appointmentResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAppointmentResponse(a))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// getAppointmentHandler godoc
// @Summary Obtener turno
// @Tags appointments
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Role header string false "Solo en modo dev: owner, staff o admin"
// @Param Authorization header string false "Bearer token en producción"
// @Param appointmentID path string true "ID del turno"
// @Success 200 {object} appointmentResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "appointment not found"
// @Router /appointments/{appointmentID} [get]
func getAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		a, err := svc.Get(r.Context(), claims, chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// updateAppointmentHandler godoc
// @Summary Actualizar turno
// @Description Cambia estado, horario, motivo o notas. Permitido al dueño del turno y a staff/admin. Reprogramar vuelve a chequear disponibilidad.
// @Tags appointments
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Role header string false "Solo en modo dev: owner, staff o admin"
// @Param Authorization header string false "Bearer token en producción"
// @Param appointmentID path string true "ID del turno"
// @Param payload body updateAppointmentRequest true "Campos a modificar"
// @Success 200 {object} appointmentResponse
// @Failure 400 {string} string "invalid json / estado inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "appointment not found"
// @Failure 409 {object} respond.ConflictBody
// @Router /appointments/{appointmentID} [patch]
func updateAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		var req updateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			Reason: req.Reason,
			Notes:  req.Notes,
			Status: req.Status,
		}
		if req.DateTime != nil {
			t, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.DateTime))
			if err != nil {
				http.Error(w, "date_time must be RFC3339", http.StatusBadRequest)
				return
			}
			in.DateTime = &t
		}

		a, err := svc.Update(r.Context(), claims, chi.URLParam(r, "appointmentID"), in)
		if err != nil {
			writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// daySlotsHandler godoc
// @Summary Grilla de turnos del día
// @Description Devuelve los 16 slots de 30 minutos (09:00 a 16:30, zona de la clínica) con su disponibilidad.
// @Tags schedule
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param date query string true "Fecha YYYY-MM-DD"
// @Success 200 {array} slotResponse
// @Failure 400 {string} string "date inválida"
// @Failure 401 {string} string "unauthorized"
// @Router /schedule/slots [get]
func daySlotsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireClaims(w, r); !ok {
			return
		}

		slots, err := svc.DaySlots(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]slotResponse, 0, len(slots))
		for _, s := range slots {
			out = append(out, slotResponse{
				Start:     s.Start,
				Available: s.Available,
				Reason:    s.Reason,
			})
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// availabilityHandler godoc
// @Summary Consultar disponibilidad
// @Tags schedule
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param at query string true "Fecha/hora RFC3339"
// @Success 200 {object} availabilityResponse
// @Failure 400 {string} string "at inválido"
// @Failure 401 {string} string "unauthorized"
// @Router /schedule/availability [get]
func availabilityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireClaims(w, r); !ok {
			return
		}

		at, err := time.Parse(time.RFC3339, strings.TrimSpace(r.URL.Query().Get("at")))
		if err != nil {
			http.Error(w, "at must be RFC3339", http.StatusBadRequest)
			return
		}

		available, err := svc.IsAvailable(r.Context(), at)
		if err != nil {
			writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, availabilityResponse{At: at, Available: available})
	}
}

func writeError(w http.ResponseWriter, err error) {
	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		writeConflict(w, conflict)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeConflict adjunta lo que ocupa el horario para que la UI ofrezca otro slot.
func writeConflict(w http.ResponseWriter, c *ConflictError) {
	var payload any
	switch {
	case c.Block != nil:
		payload = blockedDayResponse{ID: c.Block.ID, Date: c.Block.Date, Notes: c.Block.Notes}
	case c.Appointment != nil:
		// Solo lo mínimo: el turno puede ser de otro dueño.
		payload = map[string]any{
			"id":        c.Appointment.ID,
			"date_time": c.Appointment.DateTime,
		}
	}
	respond.Conflict(w, string(c.Kind), c.Error(), payload)
}

func toAppointmentResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		PetID:     a.PetID,
		PetName:   a.PetName,
		DateTime:  a.DateTime,
		Reason:    a.Reason,
		Notes:     a.Notes,
		Status:    a.Status,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

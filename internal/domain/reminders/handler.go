package reminders

import (
	"errors"
	"net/http"
	"time"

	"pet-clinic-scheduling/internal/middleware"
	"pet-clinic-scheduling/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/reminders", func(rr chi.Router) {
		rr.Get("/", listRemindersHandler(svc))
		rr.Post("/{reminderID}/dismiss", dismissReminderHandler(svc))
	})
}

type reminderResponse struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type" enums:"appointment,vaccination"`
	PetID         string    `json:"pet_id"`
	AppointmentID string    `json:"appointment_id,omitempty"`
	PetName       string    `json:"pet_name,omitempty"`
	Message       string    `json:"message"`
	DateTime      time.Time `json:"date_time"`
	Priority      Priority  `json:"priority" enums:"high,medium"`
}

type dismissResponse struct {
	Dismissed string `json:"dismissed"`
}

// listRemindersHandler godoc
// @Summary Recordatorios del usuario
// @Description Turnos pending en los próximos 7 días y vacunas entre 7 días vencidas y 14 días adelante, sin los descartados.
// @Tags reminders
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {array} reminderResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /reminders [get]
func listRemindersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		items, err := svc.List(r.Context(), claims)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]reminderResponse, 0, len(items))
		for _, rem := range items {
			out = append(out, reminderResponse{
				ID:            rem.ID,
				Type:          rem.Type,
				PetID:         rem.PetID,
				AppointmentID: rem.AppointmentID,
				PetName:       rem.PetName,
				Message:       rem.Message,
				DateTime:      rem.DateTime,
				Priority:      rem.Priority,
			})
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// dismissReminderHandler godoc
// @Summary Descartar recordatorio
// @Tags reminders
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param reminderID path string true "ID del recordatorio"
// @Success 200 {object} dismissResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Router /reminders/{reminderID}/dismiss [post]
func dismissReminderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		id := chi.URLParam(r, "reminderID")
		if err := svc.Dismiss(r.Context(), claims, id); err != nil {
			writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, dismissResponse{Dismissed: id})
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

package healthrecords

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-clinic-scheduling/internal/middleware"
	"pet-clinic-scheduling/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets/{petID}/health-records", func(hr chi.Router) {
		hr.Post("/", createRecordHandler(svc))
		hr.Get("/", listRecordsHandler(svc))
		hr.Delete("/{recordID}", deleteRecordHandler(svc))
	})
}

// createRecordRequest es el cuerpo para agregar una entrada al historial clínico.
type createRecordRequest struct {
	RecordType   RecordType `json:"record_type" enums:"checkup,vaccination,medication,surgery"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Date         string     `json:"date"` // RFC3339 o YYYY-MM-DD
	Veterinarian string     `json:"veterinarian"`
	Medications  string     `json:"medications"`
	FollowUp     string     `json:"follow_up"`
}

// recordResponse representa una entrada del historial clínico devuelta por la API.
type recordResponse struct {
	ID           string     `json:"id"`
	PetID        string     `json:"pet_id"`
	RecordType   RecordType `json:"record_type"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Date         time.Time  `json:"date"`
	Veterinarian string     `json:"veterinarian,omitempty"`
	Medications  string     `json:"medications,omitempty"`
	FollowUp     string     `json:"follow_up,omitempty"`
	AddedBy      string     `json:"added_by"`
	CreatedAt    time.Time  `json:"created_at"`
}

// createRecordHandler godoc
// @Summary Agregar registro clínico
// @Description Agrega una entrada al historial de la mascota. Permitido al dueño y a staff/admin. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags health-records
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param payload body createRecordRequest true "Datos del registro; date en RFC3339 o YYYY-MM-DD"
// @Success 201 {object} recordResponse
// @Failure 400 {string} string "invalid json / date inválida / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/health-records [post]
func createRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		var req createRecordRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		date, err := parseDate(req.Date)
		if err != nil {
			http.Error(w, "date must be RFC3339 or YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		rec, err := svc.Create(r.Context(), claims, chi.URLParam(r, "petID"), CreateInput{
			RecordType:   req.RecordType,
			Title:        req.Title,
			Description:  req.Description,
			Date:         date,
			Veterinarian: req.Veterinarian,
			Medications:  req.Medications,
			FollowUp:     req.FollowUp,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

// listRecordsHandler godoc
// @Summary Listar historial clínico
// @Description Lista el historial de la mascota, del más reciente al más antiguo.
// @Tags health-records
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} recordResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Failure 500 {string} string "internal error"
// @Router /pets/{petID}/health-records [get]
func listRecordsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		items, err := svc.ListByPet(r.Context(), claims, chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordResponse(rec))
		}

		respond.JSON(w, http.StatusOK, out)
	}
}

// deleteRecordHandler godoc
// @Summary Borrar registro clínico
// @Tags health-records
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param recordID path string true "ID del registro"
// @Success 200 {object} recordResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID}/health-records/{recordID} [delete]
func deleteRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}

		rec, err := svc.Delete(r.Context(), claims, chi.URLParam(r, "petID"), chi.URLParam(r, "recordID"))
		if err != nil {
			writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
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

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func toRecordResponse(rec HealthRecord) recordResponse {
	return recordResponse{
		ID:           rec.ID,
		PetID:        rec.PetID,
		RecordType:   rec.RecordType,
		Title:        rec.Title,
		Description:  rec.Description,
		Date:         rec.Date,
		Veterinarian: rec.Veterinarian,
		Medications:  rec.Medications,
		FollowUp:     rec.FollowUp,
		AddedBy:      rec.AddedBy,
		CreatedAt:    rec.CreatedAt,
	}
}

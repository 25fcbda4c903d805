package dashboard

import (
	"errors"
	"net/http"

	"pet-clinic-scheduling/internal/middleware"
	"pet-clinic-scheduling/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/dashboard/stats", statsHandler(svc))
}

type statsResponse struct {
	TodayCount      int `json:"today_count"`
	WeekCount       int `json:"week_count"`
	PendingCount    int `json:"pending_count"`
	CompletedCount  int `json:"completed_count"`
	MissedCount     int `json:"missed_count"`
	VaccinationsDue int `json:"vaccinations_due"`
	TotalPets       int `json:"total_pets"`
	TotalClients    int `json:"total_clients"`
}

// statsHandler godoc
// @Summary Resumen para staff
// @Description Conteos de turnos (hoy, últimos 7 días, pending, completed, perdidos), vacunas por vencer y totales de mascotas/clientes.
// @Tags dashboard
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Role header string false "Solo en modo dev: owner, staff o admin"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} statsResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 500 {string} string "internal error"
// @Router /dashboard/stats [get]
func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireStaff(w, r)
		if !ok {
			return
		}

		st, err := svc.Stats(r.Context(), claims)
		if err != nil {
			if errors.Is(err, ErrForbidden) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		respond.JSON(w, http.StatusOK, statsResponse{
			TodayCount:      st.TodayCount,
			WeekCount:       st.WeekCount,
			PendingCount:    st.PendingCount,
			CompletedCount:  st.CompletedCount,
			MissedCount:     st.MissedCount,
			VaccinationsDue: st.VaccinationsDue,
			TotalPets:       st.TotalPets,
			TotalClients:    st.TotalClients,
		})
	}
}

package blocks

import (
	"errors"
	"net/http"
	"time"

	"pet-clinic-scheduling/internal/middleware"
	"pet-clinic-scheduling/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/blocks", func(br chi.Router) {
		br.Post("/", createBlockHandler(svc))
		br.Get("/", listBlocksHandler(svc))
		br.Delete("/{date}", deleteBlockHandler(svc))
	})
}

type createBlockRequest struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Notes string `json:"notes"`
}

type blockResponse struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

// createBlockHandler godoc
// @Summary Bloquear un día
// @Description Marca una fecha sin turnos para toda la clínica. Solo staff/admin.
// @Tags blocks
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Role header string false "Solo en modo dev: owner, staff o admin"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createBlockRequest true "Fecha YYYY-MM-DD y notas"
// @Success 201 {object} blockResponse
// @Failure 400 {string} string "invalid json / fecha inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 409 {object} respond.ConflictBody
// @Router /blocks [post]
func createBlockHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireStaff(w, r)
		if !ok {
			return
		}

		var req createBlockRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		b, err := svc.Create(r.Context(), claims, CreateInput{
			Date:  req.Date,
			Notes: req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, toBlockResponse(b))
	}
}

// listBlocksHandler godoc
// @Summary Listar días bloqueados
// @Tags blocks
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Role header string false "Solo en modo dev: owner, staff o admin"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {array} blockResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /blocks [get]
func listBlocksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireStaff(w, r)
		if !ok {
			return
		}

		items, err := svc.List(r.Context(), claims)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]blockResponse, 0, len(items))
		for _, b := range items {
			out = append(out, toBlockResponse(b))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// deleteBlockHandler godoc
// @Summary Desbloquear un día
// @Tags blocks
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Role header string false "Solo en modo dev: owner, staff o admin"
// @Param Authorization header string false "Bearer token en producción"
// @Param date path string true "Fecha YYYY-MM-DD"
// @Success 200 {object} blockResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "block not found"
// @Router /blocks/{date} [delete]
func deleteBlockHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireStaff(w, r)
		if !ok {
			return
		}

		b, err := svc.Delete(r.Context(), claims, chi.URLParam(r, "date"))
		if err != nil {
			writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, toBlockResponse(b))
	}
}

func writeError(w http.ResponseWriter, err error) {
	var exists *ExistsError
	switch {
	case errors.As(err, &exists):
		respond.Conflict(w, "block_exists", "date already blocked", toBlockResponse(exists.Existing))
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "block not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toBlockResponse(b Block) blockResponse {
	return blockResponse{
		ID:        b.ID,
		Date:      b.Date,
		Notes:     b.Notes,
		CreatedAt: b.CreatedAt,
		CreatedBy: b.CreatedBy,
	}
}

package router

import (
	"net/http"
	"time"

	"pet-clinic-scheduling/internal/adapters/storage/kvrepo"
	mem "pet-clinic-scheduling/internal/adapters/storage/memory"
	_ "pet-clinic-scheduling/internal/docs"
	"pet-clinic-scheduling/internal/domain/appointments"
	"pet-clinic-scheduling/internal/domain/blocks"
	"pet-clinic-scheduling/internal/domain/dashboard"
	"pet-clinic-scheduling/internal/domain/healthrecords"
	"pet-clinic-scheduling/internal/domain/pets"
	"pet-clinic-scheduling/internal/domain/reminders"
	"pet-clinic-scheduling/internal/domain/users"
	"pet-clinic-scheduling/internal/middleware"
	"pet-clinic-scheduling/internal/platform/logger"
	"pet-clinic-scheduling/internal/platform/respond"
	"pet-clinic-scheduling/internal/ports/auth"
	"pet-clinic-scheduling/internal/ports/kv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcionales: sin Store/Locker se usa el backend in-memory.
	Store  kv.Store
	Locker kv.Locker

	Logger   logger.Logger
	Location *time.Location // zona de la clínica; default UTC
}

// App expone los services para que main pueda colgar jobs (housekeeping).
type App struct {
	Handler   http.Handler
	Reminders *reminders.Service
}

func NewRouter(opts Options) http.Handler {
	return New(opts).Handler
}

func New(opts Options) *App {
	store := opts.Store
	if store == nil {
		store = mem.NewStore()
	}
	locker := opts.Locker
	if locker == nil {
		locker = mem.NewKeyLocker()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	// AuthContext antes del logger para que el log lleve user_id.
	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Repos sobre el mismo kv.Store
	userRepo := kvrepo.NewUserRepo(store)
	petRepo := kvrepo.NewPetRepo(store)
	apptRepo := kvrepo.NewAppointmentRepo(store)
	blockRepo := kvrepo.NewBlockRepo(store)
	healthRepo := kvrepo.NewHealthRecordRepo(store)
	dismissalRepo := kvrepo.NewDismissalRepo(store)

	// Services por módulo
	usersSvc := users.NewService(userRepo)
	petsSvc := pets.NewService(petRepo, locker)
	blocksSvc := blocks.NewService(blockRepo)
	apptsSvc := appointments.NewService(appointments.Options{
		Repo:     apptRepo,
		Pets:     petsSvc,
		Blocks:   blocksSvc,
		Locker:   locker,
		Location: opts.Location,
	})
	healthSvc := healthrecords.NewService(healthRepo, petsSvc, locker)
	remindersSvc := reminders.NewService(apptRepo, petsSvc, dismissalRepo)
	dashboardSvc := dashboard.NewService(apptRepo, petRepo, userRepo, apptsSvc.Location())

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	pets.RegisterRoutes(r, petsSvc)
	healthrecords.RegisterRoutes(r, healthSvc)
	appointments.RegisterRoutes(r, apptsSvc)
	blocks.RegisterRoutes(r, blocksSvc)
	reminders.RegisterRoutes(r, remindersSvc)
	dashboard.RegisterRoutes(r, dashboardSvc)

	r.Get("/admin/index-audit", indexAuditHandler(store, log))

	return &App{
		Handler:   r,
		Reminders: remindersSvc,
	}
}

// indexAuditHandler godoc
// @Summary Auditoría de índices
// @Description Compara las listas idx:* con los registros que indexan. Solo admin.
// @Tags admin
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Role header string false "Solo en modo dev: owner, staff o admin"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} kvrepo.AuditReport
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /admin/index-audit [get]
func indexAuditHandler(store kv.Store, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		if !claims.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		report, err := kvrepo.Audit(r.Context(), store)
		if err != nil {
			log.Error("index audit failed", map[string]any{"error": err})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !report.OK() {
			log.Warn("index audit found issues", map[string]any{"issues": len(report.Issues)})
		}

		respond.JSON(w, http.StatusOK, report)
	}
}

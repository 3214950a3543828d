package router

import (
	"net/http"

	"medication-reminders/internal/coordinator"
	_ "medication-reminders/internal/docs"
	"medication-reminders/internal/domain/medications"
	"medication-reminders/internal/domain/notifications"
	"medication-reminders/internal/domain/reminders"
	"medication-reminders/internal/middleware"
	"medication-reminders/internal/platform/logger"
	"medication-reminders/internal/platform/metrics"
	"medication-reminders/internal/ports/auth"
	"medication-reminders/internal/ports/contacts"
	"medication-reminders/internal/scheduler"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	Logger  logger.Logger
	Metrics *metrics.Metrics

	Medications *medications.Service
	Reminders   *reminders.Service
	Coordinator *coordinator.Coordinator
	Monitor     *scheduler.LifecycleMonitor

	// Dueño de cada medicamento; autoriza POST/DELETE /reminders.
	MedicationOwners reminders.MedicationOwnerLookup

	Dispatcher *notifications.Dispatcher
	Push       *notifications.PushChannel
	Email      *notifications.EmailChannel
	Contacts   contacts.Resolver

	// Solo si el resolver acepta escrituras (registry en memoria): habilita PUT /me/contact.
	Registry contacts.Registry
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.Recover(opts.Logger))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	medications.RegisterRoutes(r, opts.Medications)
	reminders.RegisterRoutes(r, opts.Reminders, opts.MedicationOwners)
	notifications.RegisterRoutes(r, opts.Push, opts.Email, opts.Dispatcher, opts.Contacts)
	if opts.Registry != nil {
		notifications.RegisterContactRoutes(r, opts.Registry)
	}
	coordinator.RegisterRoutes(r, opts.Coordinator, opts.Monitor)

	return r
}

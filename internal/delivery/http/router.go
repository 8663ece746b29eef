package http

import (
	"net/http"

	"appointment-service/internal/delivery/http/handler"
	"appointment-service/internal/delivery/http/middleware"
	"appointment-service/pkg/metrics"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Router struct {
	router             *mux.Router
	appointmentHandler *handler.AppointmentHandler
	auditLogHandler    *handler.AuditLogHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	collector          *metrics.Collector
	log                *logrus.Logger
}

// NewRouter wires the HTTP API. auditLogHandler is nil when the store keeps no audit trail.
func NewRouter(
	appointmentHandler *handler.AppointmentHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	collector *metrics.Collector,
	log *logrus.Logger,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		appointmentHandler: appointmentHandler,
		auditLogHandler:    auditLogHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
		collector:          collector,
		log:                log,
	}
}

// Setup registers the routes. CORS wraps the router from outside so preflight
// requests are answered before route matching; unknown paths stay 404.
func (r *Router) Setup() http.Handler {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.Observe(r.collector, r.log))

	// Public
	r.router.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)
	r.router.Handle("/metrics", r.collector.Handler()).Methods(http.MethodGet)

	api := r.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Protected
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	h := r.appointmentHandler
	protected.HandleFunc("/appointments", h.CreateAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", h.GetAllAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/active", h.GetActiveAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/inactive", h.GetInactiveAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/filter/date", h.FilterByDate).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/filter/status", h.FilterByStatus).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id:[0-9]+}", h.GetAppointment).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id:[0-9]+}", h.UpdateAppointment).Methods(http.MethodPut)
	protected.HandleFunc("/appointments/{id:[0-9]+}/cancel", h.CancelAppointment).Methods(http.MethodPut)
	protected.HandleFunc("/patients/{patientId:[0-9]+}/appointments", h.GetPatientAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId:[0-9]+}/appointments", h.GetDoctorAppointments).Methods(http.MethodGet)

	if r.auditLogHandler != nil {
		protected.HandleFunc("/appointments/{id:[0-9]+}/history", r.auditLogHandler.GetAppointmentHistory).Methods(http.MethodGet)
	}

	return r.corsMiddleware.Handle(r.router)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

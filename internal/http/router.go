package http

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/osteoflow/clinic-service/internal/appointment"
	"github.com/osteoflow/clinic-service/internal/audit"
	"github.com/osteoflow/clinic-service/internal/auth"
	"github.com/osteoflow/clinic-service/internal/consultation"
	"github.com/osteoflow/clinic-service/internal/history"
	"github.com/osteoflow/clinic-service/internal/patient"
	"github.com/osteoflow/clinic-service/internal/telemetry"
)

// SetupRouter initializes all routes for the application. metrics may be
// nil when telemetry initialization failed.
func SetupRouter(db *sql.DB, verifier *auth.Verifier, perms map[string][]string, recorder audit.Recorder, metrics *telemetry.Metrics) *mux.Router {
	patientRepo := patient.NewRepository(db)
	consultationRepo := consultation.NewRepository(db)

	// Appointment components carry the next-appointment recompute logic.
	apptRepo := appointment.NewRepository(db)
	var svcMetrics appointment.MetricsRecorder
	if metrics != nil {
		svcMetrics = metrics
	}
	apptService := appointment.NewServiceWithMetrics(apptRepo, patientRepo, consultationRepo, recorder, svcMetrics)
	apptHandler := appointment.NewHandler(apptService)

	historyHandler := history.NewHandler(patientRepo, consultationRepo)

	authMW := auth.Middleware(verifier)
	requirePerm := func(permission string) func(http.Handler) http.Handler {
		return auth.RequirePermission(permission, perms)
	}
	if metrics != nil {
		authMW = auth.MiddlewareWithMetrics(verifier, metrics)
		requirePerm = func(permission string) func(http.Handler) http.Handler {
			return auth.RequirePermissionWithMetrics(permission, perms, metrics)
		}
	}

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("clinic-service"))
	if metrics != nil {
		r.Use(MetricsMiddleware(metrics))
	}

	// Public health endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"clinic-service"}`))
	}).Methods("GET")

	// Appointment routes
	r.Handle("/appointments",
		authMW(
			requirePerm("appointment:create")(
				http.HandlerFunc(apptHandler.CreateAppointment),
			),
		),
	).Methods("POST")

	r.Handle("/appointments",
		authMW(
			requirePerm("appointment:view")(
				http.HandlerFunc(apptHandler.ListAppointments),
			),
		),
	).Methods("GET")

	r.Handle("/appointments",
		authMW(
			requirePerm("appointment:delete")(
				http.HandlerFunc(apptHandler.DeleteAllAppointments),
			),
		),
	).Methods("DELETE")

	r.Handle("/appointments/{id}",
		authMW(
			requirePerm("appointment:view")(
				http.HandlerFunc(apptHandler.GetAppointment),
			),
		),
	).Methods("GET")

	r.Handle("/appointments/{id}",
		authMW(
			requirePerm("appointment:update")(
				http.HandlerFunc(apptHandler.UpdateAppointment),
			),
		),
	).Methods("PUT")

	r.Handle("/appointments/{id}",
		authMW(
			requirePerm("appointment:delete")(
				http.HandlerFunc(apptHandler.DeleteAppointment),
			),
		),
	).Methods("DELETE")

	// Conversions between appointments and consultations
	r.Handle("/appointments/{id}/consultation",
		authMW(
			requirePerm("consultation:create")(
				http.HandlerFunc(apptHandler.AddConsultation),
			),
		),
	).Methods("POST")

	r.Handle("/consultations/{id}/appointment",
		authMW(
			requirePerm("appointment:create")(
				http.HandlerFunc(apptHandler.CreateFromConsultation),
			),
		),
	).Methods("POST")

	// Patient-scoped sync and lookup routes
	r.Handle("/patients/sync",
		authMW(
			requirePerm("patient:sync_all")(
				http.HandlerFunc(apptHandler.SyncAllPatients),
			),
		),
	).Methods("POST")

	r.Handle("/patients/{id}/sync",
		authMW(
			requirePerm("patient:sync")(
				http.HandlerFunc(apptHandler.SyncPatient),
			),
		),
	).Methods("POST")

	r.Handle("/patients/{id}/appointments/exists",
		authMW(
			requirePerm("appointment:view")(
				http.HandlerFunc(apptHandler.HasPatientAppointments),
			),
		),
	).Methods("GET")

	r.Handle("/patients/{id}/history/{field}",
		authMW(
			requirePerm("patient:history")(
				http.HandlerFunc(historyHandler.GetFieldHistory),
			),
		),
	).Methods("GET")

	return r
}

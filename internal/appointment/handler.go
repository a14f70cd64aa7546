package appointment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/osteoflow/clinic-service/internal/auth"
	"github.com/osteoflow/clinic-service/internal/consultation"
	"github.com/osteoflow/clinic-service/internal/pagination"
	"github.com/osteoflow/clinic-service/internal/patient"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type AppointmentSuccessResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	ID          string       `json:"id,omitempty"`
	Appointment *Appointment `json:"appointment,omitempty"`
}

type AppointmentListResponse struct {
	Success      bool            `json:"success"`
	Appointments []Appointment   `json:"appointments"`
	Pagination   pagination.Meta `json:"pagination"`
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var req CreateAppointmentRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	if req.PatientID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Patient ID is required")
		return
	}
	if req.Date == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Date is required")
		return
	}

	id, err := h.service.CreateAppointment(r.Context(), principal.UserID, req)
	if err != nil {
		respondServiceError(w, err, "creation_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AppointmentSuccessResponse{
		Success: true,
		Message: "Appointment created successfully",
		ID:      id,
	})
}

func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	appt, err := h.service.GetAppointment(r.Context(), principal.UserID, id)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AppointmentSuccessResponse{
		Success:     true,
		Message:     "Appointment retrieved successfully",
		Appointment: appt,
	})
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	params := pagination.ParseParams(r)
	appts, total, err := h.service.ListAppointments(r.Context(), principal.UserID, params.Limit, params.CalculateOffset())
	if err != nil {
		respondServiceError(w, err, "list_failed")
		return
	}

	if appts == nil {
		appts = []Appointment{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AppointmentListResponse{
		Success:      true,
		Appointments: appts,
		Pagination:   params.CalculateMeta(total),
	})
}

func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]

	var req UpdateAppointmentRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	if err := h.service.UpdateAppointment(r.Context(), principal.UserID, id, req); err != nil {
		respondServiceError(w, err, "update_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AppointmentSuccessResponse{
		Success: true,
		Message: "Appointment updated successfully",
		ID:      id,
	})
}

func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.service.DeleteAppointment(r.Context(), principal.UserID, id); err != nil {
		respondServiceError(w, err, "deletion_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Appointment deleted successfully",
	})
}

func (h *Handler) DeleteAllAppointments(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	result, err := h.service.DeleteAllAppointments(r.Context(), principal.UserID)
	if err != nil {
		respondServiceError(w, err, "deletion_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) AddConsultation(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	appointmentID := mux.Vars(r)["id"]

	var req consultation.CreateConsultationRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	id, err := h.service.AddConsultationFromAppointment(r.Context(), principal.UserID, appointmentID, req)
	if err != nil {
		respondServiceError(w, err, "conversion_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AppointmentSuccessResponse{
		Success: true,
		Message: "Consultation created successfully",
		ID:      id,
	})
}

func (h *Handler) CreateFromConsultation(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	consultationID := mux.Vars(r)["id"]

	var req CreateAppointmentRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	if req.Date == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Date is required")
		return
	}

	id, err := h.service.CreateAppointmentFromConsultation(r.Context(), principal.UserID, consultationID, req)
	if err != nil {
		respondServiceError(w, err, "creation_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AppointmentSuccessResponse{
		Success: true,
		Message: "Appointment created successfully",
		ID:      id,
	})
}

func (h *Handler) SyncPatient(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	patientID := mux.Vars(r)["id"]
	if err := h.service.SyncPatient(r.Context(), principal.UserID, patientID); err != nil {
		respondServiceError(w, err, "sync_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Patient synchronized successfully",
	})
}

func (h *Handler) SyncAllPatients(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	result, err := h.service.SyncAllPatients(r.Context(), principal.UserID)
	if err != nil {
		respondServiceError(w, err, "sync_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) HasPatientAppointments(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	patientID := mux.Vars(r)["id"]
	exists, err := h.service.HasPatientAppointments(r.Context(), principal.UserID, patientID)
	if err != nil {
		respondServiceError(w, err, "check_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"exists":  exists,
	})
}

// decodeStrict rejects payloads carrying fields the operation is not
// permitted to change.
func decodeStrict(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, ErrNotOwner):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrTargetPatientNotFound),
		errors.Is(err, patient.ErrNotFound),
		errors.Is(err, consultation.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, fallback, err.Error())
	}
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}

package history

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/osteoflow/clinic-service/internal/auth"
	"github.com/osteoflow/clinic-service/internal/consultation"
	"github.com/osteoflow/clinic-service/internal/patient"
)

// Handler serves the read-only field-history projection.
type Handler struct {
	patients      patient.RepositoryInterface
	consultations consultation.RepositoryInterface
}

func NewHandler(patients patient.RepositoryInterface, consultations consultation.RepositoryInterface) *Handler {
	return &Handler{
		patients:      patients,
		consultations: consultations,
	}
}

type FieldHistoryResponse struct {
	Success     bool    `json:"success"`
	Field       string  `json:"field"`
	Entries     []Entry `json:"entries"`
	Significant bool    `json:"significant"`
}

func (h *Handler) GetFieldHistory(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	vars := mux.Vars(r)
	patientID := vars["id"]

	field, ok := ParseField(vars["field"])
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_field", "Unknown clinical field: "+vars["field"])
		return
	}

	p, err := h.patients.GetPatient(r.Context(), principal.UserID, patientID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	consultations, err := h.consultations.ListByPatient(r.Context(), principal.UserID, patientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	seq := Build(field, p, consultations)

	entries := []Entry{}
	for entry := range seq {
		entries = append(entries, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FieldHistoryResponse{
		Success:     true,
		Field:       string(field),
		Entries:     entries,
		Significant: Significant(seq),
	})
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}

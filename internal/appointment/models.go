package appointment

import "time"

// Appointment lifecycle statuses. A missing status on legacy records is
// treated as scheduled.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Appointment is owned by the practitioner and references, but does not
// own, the patient. ScheduledAt is kept as the raw stored value because
// legacy records carry heterogeneous formats; it is normalized at the
// point of comparison via the dates package.
type Appointment struct {
	ID             string     `json:"id"`
	PractitionerID string     `json:"practitioner_id"`
	PatientID      string     `json:"patient_id"`
	ScheduledAt    string     `json:"scheduled_at"`
	Status         string     `json:"status"`
	ConsultationID *string    `json:"consultation_id,omitempty"`
	Notes          string     `json:"notes"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// CreateAppointmentRequest represents the request to create a new appointment
type CreateAppointmentRequest struct {
	PatientID      string  `json:"patient_id"`
	Date           string  `json:"date"`
	Status         string  `json:"status,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	ConsultationID *string `json:"consultation_id,omitempty"`
}

// UpdateAppointmentRequest enumerates the only fields an update is
// permitted to change
type UpdateAppointmentRequest struct {
	Date      *string `json:"date,omitempty"`
	Status    *string `json:"status,omitempty"`
	PatientID *string `json:"patient_id,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// DeleteAllResult summarizes a bulk appointment deletion
type DeleteAllResult struct {
	Count   int  `json:"count"`
	Success bool `json:"success"`
	Errors  int  `json:"errors"`
}

// SyncAllResult summarizes a bulk patient repair run
type SyncAllResult struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Errors    int `json:"errors"`
}

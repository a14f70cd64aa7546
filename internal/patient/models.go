package patient

import "time"

// Patient represents a patient record. The clinical snapshot columns hold
// the current value of each independently versioned field; the full
// history of a field lives in the consultations collection.
//
// NextAppointment is a materialized view over the appointments collection
// (format: YYYY-MM-DDTHH:MM:00 or null), never a source of truth.
type Patient struct {
	ID                   string     `json:"id"`
	PractitionerID       string     `json:"practitioner_id"`
	FullName             string     `json:"full_name"`
	CurrentTreatment     string     `json:"current_treatment"`
	MedicalHistory       string     `json:"medical_history"`
	ConsultationReason   string     `json:"consultation_reason"`
	OsteopathicTreatment string     `json:"osteopathic_treatment"`
	Notes                string     `json:"notes"`
	NextAppointment      *string    `json:"next_appointment,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}

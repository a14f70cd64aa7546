package consultation

import "time"

// Consultation captures what happened during a fulfilled appointment. The
// clinical text columns mirror the patient snapshot fields so each visit
// versions them independently.
type Consultation struct {
	ID                   string     `json:"id"`
	PractitionerID       string     `json:"practitioner_id"`
	PatientID            string     `json:"patient_id"`
	AppointmentID        *string    `json:"appointment_id,omitempty"`
	Date                 time.Time  `json:"date"`
	CurrentTreatment     string     `json:"current_treatment"`
	MedicalHistory       string     `json:"medical_history"`
	ConsultationReason   string     `json:"consultation_reason"`
	OsteopathicTreatment string     `json:"osteopathic_treatment"`
	Notes                string     `json:"notes"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}

// CreateConsultationRequest represents the clinical content recorded when
// an appointment is converted into a consultation
type CreateConsultationRequest struct {
	Date                 string `json:"date"` // Format: RFC3339 or YYYY-MM-DDTHH:MM
	CurrentTreatment     string `json:"current_treatment"`
	MedicalHistory       string `json:"medical_history"`
	ConsultationReason   string `json:"consultation_reason"`
	OsteopathicTreatment string `json:"osteopathic_treatment"`
	Notes                string `json:"notes"`
}

package consultation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateConsultation(ctx context.Context, c Consultation) (*Consultation, error) {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()

	query := `
		INSERT INTO osteoflow.consultations
		(id, practitioner_id, patient_id, appointment_id, date, current_treatment,
		 medical_history, consultation_reason, osteopathic_treatment, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.PractitionerID,
		c.PatientID,
		c.AppointmentID,
		c.Date,
		c.CurrentTreatment,
		c.MedicalHistory,
		c.ConsultationReason,
		c.OsteopathicTreatment,
		c.Notes,
		c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert consultation: %w", err)
	}

	return &c, nil
}

func (r *Repository) GetConsultation(ctx context.Context, practitionerID, id string) (*Consultation, error) {
	query := `
		SELECT id, practitioner_id, patient_id, appointment_id, date, current_treatment,
		       medical_history, consultation_reason, osteopathic_treatment, notes,
		       created_at, updated_at
		FROM osteoflow.consultations
		WHERE id = $1 AND practitioner_id = $2
	`

	c, err := scanConsultation(r.db.QueryRowContext(ctx, query, id, practitionerID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query consultation: %w", err)
	}
	return c, nil
}

// ListByPatient returns all of a patient's consultations owned by the
// practitioner, most recent first.
func (r *Repository) ListByPatient(ctx context.Context, practitionerID, patientID string) ([]Consultation, error) {
	query := `
		SELECT id, practitioner_id, patient_id, appointment_id, date, current_treatment,
		       medical_history, consultation_reason, osteopathic_treatment, notes,
		       created_at, updated_at
		FROM osteoflow.consultations
		WHERE patient_id = $1 AND practitioner_id = $2
		ORDER BY date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, patientID, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query consultations: %w", err)
	}
	defer rows.Close()

	var consultations []Consultation
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan consultation: %w", err)
		}
		consultations = append(consultations, *c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating consultations: %w", err)
	}

	return consultations, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConsultation(row rowScanner) (*Consultation, error) {
	var c Consultation
	var appointmentID sql.NullString
	var currentTreatment sql.NullString
	var medicalHistory sql.NullString
	var consultationReason sql.NullString
	var osteopathicTreatment sql.NullString
	var notes sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.PractitionerID,
		&c.PatientID,
		&appointmentID,
		&c.Date,
		&currentTreatment,
		&medicalHistory,
		&consultationReason,
		&osteopathicTreatment,
		&notes,
		&c.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if appointmentID.Valid {
		c.AppointmentID = &appointmentID.String
	}
	if currentTreatment.Valid {
		c.CurrentTreatment = currentTreatment.String
	}
	if medicalHistory.Valid {
		c.MedicalHistory = medicalHistory.String
	}
	if consultationReason.Valid {
		c.ConsultationReason = consultationReason.String
	}
	if osteopathicTreatment.Valid {
		c.OsteopathicTreatment = osteopathicTreatment.String
	}
	if notes.Valid {
		c.Notes = notes.String
	}
	if updatedAt.Valid {
		c.UpdatedAt = &updatedAt.Time
	}

	return &c, nil
}

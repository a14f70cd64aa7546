package patient

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetPatient(ctx context.Context, practitionerID, id string) (*Patient, error) {
	query := `
		SELECT id, practitioner_id, full_name, current_treatment, medical_history,
		       consultation_reason, osteopathic_treatment, notes, next_appointment,
		       created_at, updated_at
		FROM osteoflow.patients
		WHERE id = $1 AND practitioner_id = $2
	`

	var p Patient
	var currentTreatment sql.NullString
	var medicalHistory sql.NullString
	var consultationReason sql.NullString
	var osteopathicTreatment sql.NullString
	var notes sql.NullString
	var nextAppointment sql.NullString
	var updatedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id, practitionerID).Scan(
		&p.ID,
		&p.PractitionerID,
		&p.FullName,
		&currentTreatment,
		&medicalHistory,
		&consultationReason,
		&osteopathicTreatment,
		&notes,
		&nextAppointment,
		&p.CreatedAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query patient: %w", err)
	}

	if currentTreatment.Valid {
		p.CurrentTreatment = currentTreatment.String
	}
	if medicalHistory.Valid {
		p.MedicalHistory = medicalHistory.String
	}
	if consultationReason.Valid {
		p.ConsultationReason = consultationReason.String
	}
	if osteopathicTreatment.Valid {
		p.OsteopathicTreatment = osteopathicTreatment.String
	}
	if notes.Valid {
		p.Notes = notes.String
	}
	if nextAppointment.Valid {
		p.NextAppointment = &nextAppointment.String
	}
	if updatedAt.Valid {
		p.UpdatedAt = &updatedAt.Time
	}

	return &p, nil
}

// ListPatientIDs enumerates the identifiers of every patient owned by the
// practitioner. Used by the bulk repair path.
func (r *Repository) ListPatientIDs(ctx context.Context, practitionerID string) ([]string, error) {
	query := `
		SELECT id
		FROM osteoflow.patients
		WHERE practitioner_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan patient id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patients: %w", err)
	}

	return ids, nil
}

// ListPractitionerIDs enumerates every practitioner that owns at least one
// patient. Used by the standalone repair job.
func (r *Repository) ListPractitionerIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT practitioner_id
		FROM osteoflow.patients
		ORDER BY practitioner_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query practitioners: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan practitioner id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating practitioners: %w", err)
	}

	return ids, nil
}

// UpdateNextAppointment writes the denormalized next_appointment value
// (nil clears it) and refreshes updated_at. A patient deleted concurrently
// results in zero affected rows, which is tolerated rather than reported.
func (r *Repository) UpdateNextAppointment(ctx context.Context, practitionerID, id string, next *string) error {
	query := `
		UPDATE osteoflow.patients
		SET next_appointment = $1, updated_at = $2
		WHERE id = $3 AND practitioner_id = $4
	`

	_, err := r.db.ExecContext(ctx, query, next, time.Now(), id, practitionerID)
	if err != nil {
		return fmt.Errorf("failed to update next appointment: %w", err)
	}

	return nil
}

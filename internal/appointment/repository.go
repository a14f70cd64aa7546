package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now()
	if a.Status == "" {
		a.Status = StatusScheduled
	}

	query := `
		INSERT INTO osteoflow.appointments
		(id, practitioner_id, patient_id, scheduled_at, status, consultation_id, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.PractitionerID,
		a.PatientID,
		a.ScheduledAt,
		a.Status,
		a.ConsultationID,
		a.Notes,
		a.CreatedBy,
		a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert appointment: %w", err)
	}

	return &a, nil
}

// GetAppointment fetches by identifier alone; ownership is checked by the
// service so an authorization failure is distinguishable from a missing
// record.
func (r *Repository) GetAppointment(ctx context.Context, id string) (*Appointment, error) {
	query := `
		SELECT id, practitioner_id, patient_id, scheduled_at, status, consultation_id,
		       notes, created_by, created_at, updated_at
		FROM osteoflow.appointments
		WHERE id = $1
	`

	a, err := scanAppointment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query appointment: %w", err)
	}
	return a, nil
}

func (r *Repository) UpdateAppointment(ctx context.Context, id string, req UpdateAppointmentRequest) error {
	var updates []string
	var args []interface{}
	argIndex := 1

	if req.Date != nil {
		updates = append(updates, fmt.Sprintf("scheduled_at = $%d", argIndex))
		args = append(args, *req.Date)
		argIndex++
	}
	if req.Status != nil {
		updates = append(updates, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *req.Status)
		argIndex++
	}
	if req.PatientID != nil {
		updates = append(updates, fmt.Sprintf("patient_id = $%d", argIndex))
		args = append(args, *req.PatientID)
		argIndex++
	}
	if req.Notes != nil {
		updates = append(updates, fmt.Sprintf("notes = $%d", argIndex))
		args = append(args, *req.Notes)
		argIndex++
	}

	if len(updates) == 0 {
		return fmt.Errorf("no fields to update")
	}

	updates = append(updates, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now())
	argIndex++

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE osteoflow.appointments
		SET %s
		WHERE id = $%d
	`, strings.Join(updates, ", "), argIndex)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// SetCompleted marks an appointment fulfilled and links the consultation
// created from it.
func (r *Repository) SetCompleted(ctx context.Context, id, consultationID string) error {
	query := `
		UPDATE osteoflow.appointments
		SET status = $1, consultation_id = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, StatusCompleted, consultationID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to complete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) DeleteAppointment(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM osteoflow.appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ListByOwner returns every appointment owned by the practitioner.
func (r *Repository) ListByOwner(ctx context.Context, practitionerID string) ([]Appointment, error) {
	query := `
		SELECT id, practitioner_id, patient_id, scheduled_at, status, consultation_id,
		       notes, created_by, created_at, updated_at
		FROM osteoflow.appointments
		WHERE practitioner_id = $1
		ORDER BY created_at ASC
	`

	return r.queryAppointments(ctx, query, practitionerID)
}

// ListByOwnerWithPagination returns a page of the practitioner's
// appointments plus the total count.
func (r *Repository) ListByOwnerWithPagination(ctx context.Context, practitionerID string, limit, offset int) ([]Appointment, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM osteoflow.appointments WHERE practitioner_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, practitionerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	query := `
		SELECT id, practitioner_id, patient_id, scheduled_at, status, consultation_id,
		       notes, created_by, created_at, updated_at
		FROM osteoflow.appointments
		WHERE practitioner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	appts, err := r.queryAppointments(ctx, query, practitionerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

// ListByPatient returns a patient's appointments scoped to the owning
// practitioner. This is the recompute scan.
func (r *Repository) ListByPatient(ctx context.Context, practitionerID, patientID string) ([]Appointment, error) {
	query := `
		SELECT id, practitioner_id, patient_id, scheduled_at, status, consultation_id,
		       notes, created_by, created_at, updated_at
		FROM osteoflow.appointments
		WHERE patient_id = $1 AND practitioner_id = $2
	`

	return r.queryAppointments(ctx, query, patientID, practitionerID)
}

// PatientHasAppointments reports whether any appointment references the
// patient within the practitioner's partition.
func (r *Repository) PatientHasAppointments(ctx context.Context, practitionerID, patientID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM osteoflow.appointments
			WHERE patient_id = $1 AND practitioner_id = $2
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, patientID, practitionerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check patient appointments: %w", err)
	}
	return exists, nil
}

func (r *Repository) queryAppointments(ctx context.Context, query string, args ...interface{}) ([]Appointment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	var appointments []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, *a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointments: %w", err)
	}

	return appointments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*Appointment, error) {
	var a Appointment
	var scheduledAt sql.NullString
	var status sql.NullString
	var consultationID sql.NullString
	var notes sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.PractitionerID,
		&a.PatientID,
		&scheduledAt,
		&status,
		&consultationID,
		&notes,
		&a.CreatedBy,
		&a.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if scheduledAt.Valid {
		a.ScheduledAt = scheduledAt.String
	}
	if status.Valid {
		a.Status = status.String
	}
	if consultationID.Valid {
		a.ConsultationID = &consultationID.String
	}
	if notes.Valid {
		a.Notes = notes.String
	}
	if updatedAt.Valid {
		a.UpdatedAt = &updatedAt.Time
	}

	return &a, nil
}

package appointment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/osteoflow/clinic-service/internal/audit"
	"github.com/osteoflow/clinic-service/internal/consultation"
	"github.com/osteoflow/clinic-service/internal/dates"
	"github.com/osteoflow/clinic-service/internal/patient"
)

// Service keeps the patients collection's denormalized next_appointment
// pointer consistent with the appointments collection. There is no
// transaction spanning the two collections: every mutation re-establishes
// the derived value as a side effect, and SyncAllPatients is the
// idempotent repair path for whatever drift remains.
type Service struct {
	appointments  RepositoryInterface
	patients      patient.RepositoryInterface
	consultations consultation.RepositoryInterface
	audit         audit.Recorder
	metrics       MetricsRecorder
	now           func() time.Time
}

// MetricsRecorder interface for recording business metrics
type MetricsRecorder interface {
	RecordAppointmentOperation(ctx context.Context, operation string)
	RecordConsultationOperation(ctx context.Context, operation string)
	RecordSyncRun(ctx context.Context, scope string, updated bool)
}

func NewService(appointments RepositoryInterface, patients patient.RepositoryInterface, consultations consultation.RepositoryInterface, recorder audit.Recorder) *Service {
	return NewServiceWithMetrics(appointments, patients, consultations, recorder, nil)
}

// NewServiceWithMetrics creates a service that also records business metrics
func NewServiceWithMetrics(appointments RepositoryInterface, patients patient.RepositoryInterface, consultations consultation.RepositoryInterface, recorder audit.Recorder, metrics MetricsRecorder) *Service {
	return &Service{
		appointments:  appointments,
		patients:      patients,
		consultations: consultations,
		audit:         recorder,
		metrics:       metrics,
		now:           time.Now,
	}
}

// CreateAppointment persists a new appointment for the practitioner and
// applies the fast-path patient update: when the new instant is in the
// future and earlier than the patient's current next_appointment, the
// pointer is overwritten directly without a full rescan. The fast path can
// miss interleavings; the sync job is the correctness backstop.
func (s *Service) CreateAppointment(ctx context.Context, practitionerID string, req CreateAppointmentRequest) (string, error) {
	if practitionerID == "" {
		return "", ErrNotAuthenticated
	}

	p, err := s.patients.GetPatient(ctx, practitionerID, req.PatientID)
	if err != nil {
		s.record(ctx, audit.KindModification, "appointments", "create",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": err.Error()})
		if errors.Is(err, patient.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to load patient: %w", err)
	}

	created, err := s.appointments.CreateAppointment(ctx, Appointment{
		PractitionerID: practitionerID,
		PatientID:      req.PatientID,
		ScheduledAt:    req.Date,
		Status:         req.Status,
		ConsultationID: req.ConsultationID,
		Notes:          req.Notes,
		CreatedBy:      practitionerID,
	})
	if err != nil {
		s.record(ctx, audit.KindModification, "appointments", "create",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("failed to create appointment: %w", err)
	}

	if instant, err := dates.Normalize(req.Date); err == nil && instant.After(s.now()) {
		current, currentErr := currentNextAppointment(p)
		if currentErr != nil || instant.Before(current) {
			formatted := dates.FormatNextAppointment(instant)
			if err := s.patients.UpdateNextAppointment(ctx, practitionerID, req.PatientID, &formatted); err != nil {
				s.record(ctx, audit.KindModification, "appointments/"+created.ID, "create",
					audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
					map[string]interface{}{"error": err.Error()})
				return "", fmt.Errorf("failed to update next appointment for patient %s: %w", req.PatientID, err)
			}
		}
	}

	s.record(ctx, audit.KindModification, "appointments/"+created.ID, "create",
		audit.SensitivitySensitive, audit.OutcomeSuccess, practitionerID,
		map[string]interface{}{"patient_id": req.PatientID})
	s.countAppointment(ctx, "create")

	return created.ID, nil
}

// UpdateAppointment merges the permitted updates and recomputes every
// affected patient. A partial update of the pointer is not safe here: the
// change may remove the patient's current nearest appointment, which only
// a full rescan detects. Reassigning the patient recomputes both sides.
func (s *Service) UpdateAppointment(ctx context.Context, practitionerID, id string, req UpdateAppointmentRequest) error {
	if practitionerID == "" {
		return ErrNotAuthenticated
	}

	appt, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		s.record(ctx, audit.KindModification, "appointments/"+id, "update",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": err.Error()})
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to load appointment: %w", err)
	}

	if appt.PractitionerID != practitionerID {
		s.record(ctx, audit.KindModification, "appointments/"+id, "update",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": ErrNotOwner.Error()})
		return ErrNotOwner
	}

	reassigned := req.PatientID != nil && *req.PatientID != appt.PatientID
	if reassigned {
		if _, err := s.patients.GetPatient(ctx, practitionerID, *req.PatientID); err != nil {
			s.record(ctx, audit.KindModification, "appointments/"+id, "update",
				audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
				map[string]interface{}{"error": err.Error()})
			if errors.Is(err, patient.ErrNotFound) {
				return ErrTargetPatientNotFound
			}
			return fmt.Errorf("failed to load target patient: %w", err)
		}
	}

	if err := s.appointments.UpdateAppointment(ctx, id, req); err != nil {
		s.record(ctx, audit.KindModification, "appointments/"+id, "update",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	if req.Date != nil || req.Status != nil || req.PatientID != nil {
		if err := s.SyncPatient(ctx, practitionerID, appt.PatientID); err != nil {
			s.record(ctx, audit.KindModification, "appointments/"+id, "update",
				audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
				map[string]interface{}{"error": err.Error()})
			return fmt.Errorf("failed to sync patient %s: %w", appt.PatientID, err)
		}
		if reassigned {
			if err := s.SyncPatient(ctx, practitionerID, *req.PatientID); err != nil {
				s.record(ctx, audit.KindModification, "appointments/"+id, "update",
					audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
					map[string]interface{}{"error": err.Error()})
				return fmt.Errorf("failed to sync patient %s: %w", *req.PatientID, err)
			}
		}
	}

	s.record(ctx, audit.KindModification, "appointments/"+id, "update",
		audit.SensitivitySensitive, audit.OutcomeSuccess, practitionerID,
		map[string]interface{}{"patient_id": appt.PatientID})
	s.countAppointment(ctx, "update")

	return nil
}

// DeleteAppointment removes the appointment and recomputes the owning
// patient. A patient deleted concurrently is tolerated: the appointment is
// removed and the patient-side update is skipped.
func (s *Service) DeleteAppointment(ctx context.Context, practitionerID, id string) error {
	if practitionerID == "" {
		return ErrNotAuthenticated
	}

	appt, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		s.record(ctx, audit.KindDeletion, "appointments/"+id, "delete",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": err.Error()})
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to load appointment: %w", err)
	}

	if appt.PractitionerID != practitionerID {
		s.record(ctx, audit.KindDeletion, "appointments/"+id, "delete",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": ErrNotOwner.Error()})
		return ErrNotOwner
	}

	patientExists := true
	if _, err := s.patients.GetPatient(ctx, practitionerID, appt.PatientID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			log.Printf("Warning: patient %s no longer exists, deleting appointment without patient update", appt.PatientID)
			patientExists = false
		} else {
			s.record(ctx, audit.KindDeletion, "appointments/"+id, "delete",
				audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
				map[string]interface{}{"error": err.Error()})
			return fmt.Errorf("failed to load patient: %w", err)
		}
	}

	if err := s.appointments.DeleteAppointment(ctx, id); err != nil {
		s.record(ctx, audit.KindDeletion, "appointments/"+id, "delete",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	if patientExists {
		if err := s.SyncPatient(ctx, practitionerID, appt.PatientID); err != nil {
			s.record(ctx, audit.KindDeletion, "appointments/"+id, "delete",
				audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
				map[string]interface{}{"error": err.Error()})
			return fmt.Errorf("failed to sync patient %s after delete: %w", appt.PatientID, err)
		}
	}

	s.record(ctx, audit.KindDeletion, "appointments/"+id, "delete",
		audit.SensitivitySensitive, audit.OutcomeSuccess, practitionerID,
		map[string]interface{}{"patient_id": appt.PatientID})
	s.countAppointment(ctx, "delete")

	return nil
}

// SyncPatient is the canonical recompute: rescan the patient's
// appointments and write the earliest future, active instant (or null)
// into next_appointment. Idempotent; a patient that no longer exists is
// skipped without error.
func (s *Service) SyncPatient(ctx context.Context, practitionerID, patientID string) error {
	if practitionerID == "" {
		return ErrNotAuthenticated
	}

	if _, err := s.patients.GetPatient(ctx, practitionerID, patientID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			log.Printf("Warning: patient %s not found, skipping sync", patientID)
			return nil
		}
		return fmt.Errorf("failed to load patient: %w", err)
	}

	appts, err := s.appointments.ListByPatient(ctx, practitionerID, patientID)
	if err != nil {
		return fmt.Errorf("failed to list appointments: %w", err)
	}

	now := s.now()
	var next *time.Time
	for _, a := range appts {
		status := a.Status
		if status == "" {
			status = StatusScheduled
		}
		if status == StatusCancelled || status == StatusCompleted {
			continue
		}
		instant, err := dates.Normalize(a.ScheduledAt)
		if err != nil {
			// Malformed records are excluded rather than failing the scan.
			continue
		}
		if !instant.After(now) {
			continue
		}
		if next == nil || instant.Before(*next) {
			t := instant
			next = &t
		}
	}

	var value *string
	if next != nil {
		formatted := dates.FormatNextAppointment(*next)
		value = &formatted
	}

	if err := s.patients.UpdateNextAppointment(ctx, practitionerID, patientID, value); err != nil {
		return fmt.Errorf("failed to update next appointment: %w", err)
	}
	s.countSyncRun(ctx, "patient", value != nil)

	return nil
}

// DeleteAllAppointments removes every appointment owned by the
// practitioner, one at a time, then recomputes each affected patient once.
// A single item's failure increments the error counter and the batch
// continues.
func (s *Service) DeleteAllAppointments(ctx context.Context, practitionerID string) (DeleteAllResult, error) {
	if practitionerID == "" {
		return DeleteAllResult{}, ErrNotAuthenticated
	}

	s.record(ctx, audit.KindDeletion, "appointments", "delete_all",
		audit.SensitivityHighlySensitive, audit.OutcomeSuccess, practitionerID, nil)

	appts, err := s.appointments.ListByOwner(ctx, practitionerID)
	if err != nil {
		s.record(ctx, audit.KindDeletion, "appointments", "delete_all",
			audit.SensitivityHighlySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": err.Error()})
		return DeleteAllResult{}, fmt.Errorf("failed to list appointments: %w", err)
	}

	result := DeleteAllResult{Success: true}
	patientIDs := make(map[string]struct{})

	for _, a := range appts {
		if a.PatientID != "" {
			patientIDs[a.PatientID] = struct{}{}
		}
		if err := s.appointments.DeleteAppointment(ctx, a.ID); err != nil {
			log.Printf("Warning: failed to delete appointment %s: %v", a.ID, err)
			result.Errors++
			continue
		}
		result.Count++
		s.record(ctx, audit.KindDeletion, "appointments/"+a.ID, "delete_all",
			audit.SensitivitySensitive, audit.OutcomeSuccess, practitionerID, nil)
	}

	for patientID := range patientIDs {
		if err := s.SyncPatient(ctx, practitionerID, patientID); err != nil {
			log.Printf("Warning: failed to sync patient %s: %v", patientID, err)
		}
	}

	s.record(ctx, audit.KindDeletion, "appointments", "delete_all",
		audit.SensitivityHighlySensitive, audit.OutcomeSuccess, practitionerID,
		map[string]interface{}{"count": result.Count, "errors": result.Errors})
	s.countAppointment(ctx, "delete_all")

	return result, nil
}

// SyncAllPatients recomputes next_appointment for every patient owned by
// the practitioner. It converges the whole partition regardless of prior
// drift and is safe to re-run at any time.
func (s *Service) SyncAllPatients(ctx context.Context, practitionerID string) (SyncAllResult, error) {
	if practitionerID == "" {
		return SyncAllResult{}, ErrNotAuthenticated
	}

	ids, err := s.patients.ListPatientIDs(ctx, practitionerID)
	if err != nil {
		s.record(ctx, audit.KindModification, "patients", "sync_appointments",
			audit.SensitivityInternal, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": err.Error()})
		return SyncAllResult{}, fmt.Errorf("failed to list patients: %w", err)
	}

	log.Printf("Syncing appointments for %d patients", len(ids))

	var result SyncAllResult
	for _, id := range ids {
		if err := s.SyncPatient(ctx, practitionerID, id); err != nil {
			log.Printf("Warning: failed to sync patient %s: %v", id, err)
			result.Errors++
			result.Processed++
			continue
		}
		result.Processed++
		result.Updated++
	}

	s.record(ctx, audit.KindModification, "patients", "sync_appointments",
		audit.SensitivityInternal, audit.OutcomeSuccess, practitionerID,
		map[string]interface{}{"processed": result.Processed, "updated": result.Updated, "errors": result.Errors})
	s.countSyncRun(ctx, "bulk", result.Updated > 0)

	return result, nil
}

// AddConsultationFromAppointment records what happened during a fulfilled
// appointment: it creates the consultation, links it back, marks the
// appointment completed and recomputes the patient, since completion
// removes the appointment from next-appointment candidacy.
func (s *Service) AddConsultationFromAppointment(ctx context.Context, practitionerID, appointmentID string, req consultation.CreateConsultationRequest) (string, error) {
	if practitionerID == "" {
		return "", ErrNotAuthenticated
	}

	appt, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		s.record(ctx, audit.KindModification, "consultations", "create_from_appointment",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": err.Error()})
		if errors.Is(err, ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to load appointment: %w", err)
	}

	if appt.PractitionerID != practitionerID {
		s.record(ctx, audit.KindModification, "consultations", "create_from_appointment",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": ErrNotOwner.Error()})
		return "", ErrNotOwner
	}

	if _, err := s.patients.GetPatient(ctx, practitionerID, appt.PatientID); err != nil {
		s.record(ctx, audit.KindModification, "consultations", "create_from_appointment",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": err.Error()})
		if errors.Is(err, patient.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to load patient: %w", err)
	}

	date, err := dates.Normalize(req.Date)
	if err != nil {
		if instant, scheduleErr := dates.Normalize(appt.ScheduledAt); scheduleErr == nil {
			date = instant
		} else {
			date = s.now()
		}
	}

	created, err := s.consultations.CreateConsultation(ctx, consultation.Consultation{
		PractitionerID:       practitionerID,
		PatientID:            appt.PatientID,
		AppointmentID:        &appt.ID,
		Date:                 date,
		CurrentTreatment:     req.CurrentTreatment,
		MedicalHistory:       req.MedicalHistory,
		ConsultationReason:   req.ConsultationReason,
		OsteopathicTreatment: req.OsteopathicTreatment,
		Notes:                req.Notes,
	})
	if err != nil {
		s.record(ctx, audit.KindModification, "consultations", "create_from_appointment",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("failed to create consultation: %w", err)
	}

	if err := s.appointments.SetCompleted(ctx, appointmentID, created.ID); err != nil {
		s.record(ctx, audit.KindModification, "consultations/"+created.ID, "create_from_appointment",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("failed to complete appointment: %w", err)
	}

	if err := s.SyncPatient(ctx, practitionerID, appt.PatientID); err != nil {
		s.record(ctx, audit.KindModification, "consultations/"+created.ID, "create_from_appointment",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("failed to sync patient %s after conversion: %w", appt.PatientID, err)
	}

	s.record(ctx, audit.KindModification, "consultations/"+created.ID, "create_from_appointment",
		audit.SensitivitySensitive, audit.OutcomeSuccess, practitionerID,
		map[string]interface{}{"appointment_id": appointmentID, "patient_id": appt.PatientID})
	s.countConsultation(ctx, "create_from_appointment")

	return created.ID, nil
}

// CreateAppointmentFromConsultation books a follow-up appointment for the
// patient of an existing consultation.
func (s *Service) CreateAppointmentFromConsultation(ctx context.Context, practitionerID, consultationID string, req CreateAppointmentRequest) (string, error) {
	if practitionerID == "" {
		return "", ErrNotAuthenticated
	}

	cons, err := s.consultations.GetConsultation(ctx, practitionerID, consultationID)
	if err != nil {
		s.record(ctx, audit.KindModification, "appointments", "create_from_consultation",
			audit.SensitivitySensitive, audit.OutcomeFailure, practitionerID,
			map[string]interface{}{"error": err.Error()})
		if errors.Is(err, consultation.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to load consultation: %w", err)
	}

	req.PatientID = cons.PatientID
	req.ConsultationID = &cons.ID

	id, err := s.CreateAppointment(ctx, practitionerID, req)
	if err != nil {
		return "", err
	}

	s.record(ctx, audit.KindModification, "appointments/"+id, "create_from_consultation",
		audit.SensitivitySensitive, audit.OutcomeSuccess, practitionerID,
		map[string]interface{}{"consultation_id": consultationID, "patient_id": cons.PatientID})
	s.countAppointment(ctx, "create_from_consultation")

	return id, nil
}

// HasPatientAppointments reports whether the patient is still referenced
// by any of the practitioner's appointments.
func (s *Service) HasPatientAppointments(ctx context.Context, practitionerID, patientID string) (bool, error) {
	if practitionerID == "" {
		return false, ErrNotAuthenticated
	}
	return s.appointments.PatientHasAppointments(ctx, practitionerID, patientID)
}

// GetAppointment returns a single owned appointment.
func (s *Service) GetAppointment(ctx context.Context, practitionerID, id string) (*Appointment, error) {
	if practitionerID == "" {
		return nil, ErrNotAuthenticated
	}
	appt, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.PractitionerID != practitionerID {
		return nil, ErrNotOwner
	}
	return appt, nil
}

// ListAppointments returns a page of the practitioner's appointments.
func (s *Service) ListAppointments(ctx context.Context, practitionerID string, limit, offset int) ([]Appointment, int, error) {
	if practitionerID == "" {
		return nil, 0, ErrNotAuthenticated
	}
	return s.appointments.ListByOwnerWithPagination(ctx, practitionerID, limit, offset)
}

// currentNextAppointment parses the stored pointer; a missing or
// unparsable value counts as "no next appointment".
func currentNextAppointment(p *patient.Patient) (time.Time, error) {
	if p.NextAppointment == nil {
		return time.Time{}, dates.ErrUnparsable
	}
	return dates.NormalizeString(*p.NextAppointment)
}

// record emits an audit event; emission failure is logged, never allowed
// to fail the clinical operation itself.
func (s *Service) record(ctx context.Context, kind, resource, action, sensitivity, outcome, actorID string, detail map[string]interface{}) {
	event := audit.NewEvent(kind, resource, action, sensitivity, outcome, actorID, detail)
	if err := s.audit.Record(ctx, event); err != nil {
		log.Printf("Warning: failed to record audit event %s %s/%s: %v", resource, action, outcome, err)
	}
}

func (s *Service) countAppointment(ctx context.Context, operation string) {
	if s.metrics != nil {
		s.metrics.RecordAppointmentOperation(ctx, operation)
	}
}

func (s *Service) countConsultation(ctx context.Context, operation string) {
	if s.metrics != nil {
		s.metrics.RecordConsultationOperation(ctx, operation)
	}
}

func (s *Service) countSyncRun(ctx context.Context, scope string, updated bool) {
	if s.metrics != nil {
		s.metrics.RecordSyncRun(ctx, scope, updated)
	}
}

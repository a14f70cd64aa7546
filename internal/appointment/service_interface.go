package appointment

import (
	"context"

	"github.com/osteoflow/clinic-service/internal/consultation"
)

// ServiceInterface defines the contract for appointment lifecycle and
// patient synchronization operations
type ServiceInterface interface {
	CreateAppointment(ctx context.Context, practitionerID string, req CreateAppointmentRequest) (string, error)
	GetAppointment(ctx context.Context, practitionerID, id string) (*Appointment, error)
	ListAppointments(ctx context.Context, practitionerID string, limit, offset int) ([]Appointment, int, error)
	UpdateAppointment(ctx context.Context, practitionerID, id string, req UpdateAppointmentRequest) error
	DeleteAppointment(ctx context.Context, practitionerID, id string) error
	DeleteAllAppointments(ctx context.Context, practitionerID string) (DeleteAllResult, error)
	SyncPatient(ctx context.Context, practitionerID, patientID string) error
	SyncAllPatients(ctx context.Context, practitionerID string) (SyncAllResult, error)
	AddConsultationFromAppointment(ctx context.Context, practitionerID, appointmentID string, req consultation.CreateConsultationRequest) (string, error)
	CreateAppointmentFromConsultation(ctx context.Context, practitionerID, consultationID string, req CreateAppointmentRequest) (string, error)
	HasPatientAppointments(ctx context.Context, practitionerID, patientID string) (bool, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)

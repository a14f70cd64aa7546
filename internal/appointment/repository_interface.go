package appointment

import "context"

// RepositoryInterface defines the contract for appointment data access
type RepositoryInterface interface {
	CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error)
	GetAppointment(ctx context.Context, id string) (*Appointment, error)
	UpdateAppointment(ctx context.Context, id string, req UpdateAppointmentRequest) error
	SetCompleted(ctx context.Context, id, consultationID string) error
	DeleteAppointment(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, practitionerID string) ([]Appointment, error)
	ListByOwnerWithPagination(ctx context.Context, practitionerID string, limit, offset int) ([]Appointment, int, error)
	ListByPatient(ctx context.Context, practitionerID, patientID string) ([]Appointment, error)
	PatientHasAppointments(ctx context.Context, practitionerID, patientID string) (bool, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)

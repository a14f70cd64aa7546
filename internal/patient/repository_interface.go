package patient

import "context"

// RepositoryInterface defines the contract for patient data access
type RepositoryInterface interface {
	GetPatient(ctx context.Context, practitionerID, id string) (*Patient, error)
	ListPatientIDs(ctx context.Context, practitionerID string) ([]string, error)
	ListPractitionerIDs(ctx context.Context) ([]string, error)
	UpdateNextAppointment(ctx context.Context, practitionerID, id string, next *string) error
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)

package consultation

import "context"

// RepositoryInterface defines the contract for consultation data access
type RepositoryInterface interface {
	CreateConsultation(ctx context.Context, c Consultation) (*Consultation, error)
	GetConsultation(ctx context.Context, practitionerID, id string) (*Consultation, error)
	ListByPatient(ctx context.Context, practitionerID, patientID string) ([]Consultation, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)

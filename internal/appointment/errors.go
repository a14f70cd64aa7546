package appointment

import "errors"

var (
	ErrNotAuthenticated      = errors.New("user not authenticated")
	ErrNotFound              = errors.New("appointment not found")
	ErrNotOwner              = errors.New("appointment belongs to another practitioner")
	ErrTargetPatientNotFound = errors.New("target patient does not exist")
)

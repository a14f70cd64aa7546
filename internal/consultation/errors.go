package consultation

import "errors"

var (
	ErrNotFound = errors.New("consultation not found")
)

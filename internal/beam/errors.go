package beam

import "errors"

var (
	// ErrZeroMass indicates a reference particle whose rest mass was never set.
	ErrZeroMass = errors.New("beam: reference particle mass is zero")

	// ErrNotRelativistic indicates gamma <= 1, for which beta is undefined.
	ErrNotRelativistic = errors.New("beam: reference particle gamma must exceed 1")

	// ErrInvalidState indicates non-finite reference particle coordinates.
	ErrInvalidState = errors.New("beam: invalid reference state (NaN or Inf detected)")
)

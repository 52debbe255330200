package standings

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTeam is returned when a team id is not part of the snapshot
	ErrUnknownTeam = errors.New("unknown team")
	// ErrAsymmetricHeadToHead is returned when H2H[a][b].Wins != H2H[b][a].Losses
	ErrAsymmetricHeadToHead = errors.New("asymmetric head-to-head record")
	// ErrInvalidTeam is returned for duplicate ids or negative records
	ErrInvalidTeam = errors.New("invalid team")
	// ErrInvalidMatch is returned when a match winner is not one of its two teams
	ErrInvalidMatch = errors.New("invalid match")
	// ErrInvalidSlots is returned when the playoff slot count is out of range
	ErrInvalidSlots = errors.New("invalid slot count")
)

// ValidationError describes which input field failed validation
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error, field, format string, args ...interface{}) error {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

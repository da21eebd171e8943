// internal/common/apperrors/errors.go
// Sentinel error taxonomy shared by every service. Handlers map these to
// HTTP statuses; services wrap them with context via fmt.Errorf and %w.

package apperrors

import "errors"

var (
	// ErrValidation marks malformed or semantically invalid input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks an operation rejected by current state, such as a
	// duplicate pending request or a settled lifecycle transition.
	ErrConflict = errors.New("conflict")

	// ErrForbidden marks an operation by the wrong party.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound marks a missing entity.
	ErrNotFound = errors.New("not found")

	// ErrDelivery marks a failed live push. Never surfaced to API callers;
	// delivery is best effort.
	ErrDelivery = errors.New("delivery failed")
)

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
func IsForbidden(err error) bool  { return errors.Is(err, ErrForbidden) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsDelivery(err error) bool   { return errors.Is(err, ErrDelivery) }

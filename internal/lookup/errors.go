package lookup

import "errors"

var (
	// ErrValidation marks input rejected by an input surface before any lookup.
	ErrValidation = errors.New("invalid postal code")

	// ErrNotFound is returned when the address API answers that the postal code does not exist.
	ErrNotFound = errors.New("postal code not found")

	// ErrLookupFailed covers transport, status and decoding failures of the address API.
	ErrLookupFailed = errors.New("failed to look up postal code")
)

// Message returns the fixed user-facing text for err, or "" when err is not
// one of the lookup errors.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "invalid postal code: use 8 digits"
	case errors.Is(err, ErrNotFound):
		return "postal code not found"
	case errors.Is(err, ErrLookupFailed):
		return "failed to look up postal code"
	default:
		return ""
	}
}

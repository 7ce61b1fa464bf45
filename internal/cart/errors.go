package cart

import "errors"

// Validation failures are reported synchronously, before any network call,
// and never mutate the cart.
var (
	ErrNoDates     = errors.New("date selection resolves to no dates")
	ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrMissingTime = errors.New("start and end time are required")
	ErrInvalidTime = errors.New("invalid time format, expected HH:MM")
	ErrNoRooms     = errors.New("at least one room must be selected")
	ErrTimeOrder   = errors.New("end time must be after start time")
	ErrDateOrder   = errors.New("end date must not be before start date")

	ErrEmptyCart      = errors.New("cart is empty")
	ErrSubmitInFlight = errors.New("a submission is already in progress")
)

// IsValidationError reports whether err is one of the draft-input
// validation failures above.
func IsValidationError(err error) bool {
	for _, v := range []error{
		ErrNoDates, ErrInvalidDate, ErrMissingTime, ErrInvalidTime,
		ErrNoRooms, ErrTimeOrder, ErrDateOrder, ErrEmptyCart,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

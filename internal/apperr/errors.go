package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrMissingField      = errors.New("missing field")
	ErrInvalidTitle      = errors.New("invalid title")
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrInvalidDate       = errors.New("invalid date")
	ErrOrderingViolation = errors.New("start must be before end")
)

// Kind returns a stable snake_case name for err, or "" when err wraps none
// of the validation sentinels.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrInvalidTitle):
		return "invalid_title"
	case errors.Is(err, ErrInvalidTimeFormat):
		return "invalid_time_format"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrOrderingViolation):
		return "ordering_violation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	}
	return ""
}

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	switch Kind(err) {
	case "missing_field", "invalid_title", "invalid_time_format", "invalid_date", "ordering_violation":
		return true
	}
	return false
}

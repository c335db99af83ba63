package takeoff

import "errors"

var (
	// ErrItemNotFound indicates the takeoff item doesn't exist.
	ErrItemNotFound = errors.New("takeoff item not found")
	// ErrUnknownField indicates an update targeted a field that cannot be edited.
	ErrUnknownField = errors.New("unknown takeoff field")
	// ErrInvalidValue indicates a numeric value outside its allowed range.
	ErrInvalidValue = errors.New("invalid takeoff value")
)

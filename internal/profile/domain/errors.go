package profile

import "errors"

var (
	// ErrEmptyInput is returned when the raw text contains no usable lines.
	ErrEmptyInput = errors.New("profile: input text is empty")
	// ErrColumnOutOfRange is returned when an explicit column index exceeds
	// every observed row width.
	ErrColumnOutOfRange = errors.New("profile: column index exceeds row width")
	// ErrHeaderOutOfRange is returned when an explicit header row number
	// points past the end of the input.
	ErrHeaderOutOfRange = errors.New("profile: header row exceeds input length")
)

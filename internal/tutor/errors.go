package tutor

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidResponseFormat matches every response that could not be
	// parsed or did not satisfy its schema.
	ErrInvalidResponseFormat = errors.New("invalid response format")

	// ErrNoImages is returned when an image-based operation gets none.
	ErrNoImages = errors.New("no images provided")

	// ErrNoProblems is returned when practice generation gets no sources.
	ErrNoProblems = errors.New("no problems provided")
)

// FormatError carries the offending model output.
type FormatError struct {
	Raw string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInvalidResponseFormat, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidResponseFormat
}

package exports

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput means there was nothing to assemble.
	ErrEmptyInput = errors.New("empty input: nothing to assemble")
	// ErrCancelled is returned when a context ends at a suspension point.
	ErrCancelled = errors.New("export cancelled")
	// ErrFinalized rejects reuse of a single-use assembler.
	ErrFinalized = errors.New("assembler already finalized")
)

// ResolveError wraps a failure to fetch or load a source.
type ResolveError struct {
	Source string
	Err    error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %v", e.Source, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// DecodeError wraps bytes that arrived but could not be decoded into pixel
// dimensions.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DimensionsMissingError marks the image index whose pixel size could not be
// determined. Fatal to the chapter.
type DimensionsMissingError struct {
	Index int
	Err   error
}

func (e *DimensionsMissingError) Error() string {
	return fmt.Sprintf("image %d: dimensions missing: %v", e.Index, e.Err)
}

func (e *DimensionsMissingError) Unwrap() error { return e.Err }

// InvalidDimensionsError marks a degenerate (zero pixel) dimension.
type InvalidDimensionsError struct {
	Index  int
	Width  int
	Height int
}

func (e *InvalidDimensionsError) Error() string {
	return fmt.Sprintf("image %d: invalid dimensions %dx%d", e.Index, e.Width, e.Height)
}

package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound means the dataset file does not exist.
	ErrSourceNotFound = errors.New("dataset file not found")
	// ErrMalformed means the file could not be parsed as a table.
	ErrMalformed = errors.New("malformed dataset")
	// ErrMissingColumn means a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmpty means the file has no header row.
	ErrEmpty = errors.New("dataset is empty")
)

// MissingColumnError names the required column that was not found.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMissingColumn, e.Column)
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// LoadError is the fatal error returned when the dataset cannot be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

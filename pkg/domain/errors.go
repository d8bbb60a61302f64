package domain

import "fmt"

// The error taxonomy is closed: every validation or precondition failure
// surfaced by an operation is exactly one of the types below. Callers branch
// with errors.As; messages are informational only.

// ShapeError reports an argument of the wrong type.
type ShapeError struct {
	Name string
	Want string
	Got  any
}

func (e ShapeError) Error() string {
	return fmt.Sprintf("argument %q must be %s, got %T", e.Name, e.Want, e.Got)
}

// EmptyOrMissingError reports a required argument that is absent, empty, or
// whitespace-only.
type EmptyOrMissingError struct {
	Name string
}

func (e EmptyOrMissingError) Error() string {
	return fmt.Sprintf("argument %q is required and must not be empty", e.Name)
}

// NotFoundError reports a referenced identifier absent from its collection.
type NotFoundError struct {
	Collection Collection
	ID         string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Collection, e.ID)
}

// AlreadyExistsError reports a violated uniqueness constraint on create.
type AlreadyExistsError struct {
	Collection Collection
	Key        string
}

func (e AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Collection, e.Key)
}

// ConflictError reports an operation whose precondition about the state of an
// existing record is violated.
type ConflictError struct {
	Collection Collection
	ID         string
	Reason     string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Collection, e.ID, e.Reason)
}

// RangeError reports a numeric argument outside its declared bounds.
type RangeError struct {
	Name  string
	Value int
	Bound string
}

func (e RangeError) Error() string {
	return fmt.Sprintf("argument %q must be %s, got %d", e.Name, e.Bound, e.Value)
}

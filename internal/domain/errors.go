package domain

import (
	"errors"
	"fmt"
)

// ErrInsufficientCapacity is returned by the capacity ledger when an offer
// cannot cover the requested seats or luggage. It never leaves the service layer.
var ErrInsufficientCapacity = errors.New("insufficient capacity")

type NotFoundError struct {
	Resource string
	ID       uint
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource == "":
		return "not found"
	case e.ID == 0:
		return fmt.Sprintf("%s not found", e.Resource)
	default:
		return fmt.Sprintf("%s not found: %d", e.Resource, e.ID)
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

type ConflictError struct {
	Resource string
	Msg      string
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func NotFound(resource string, id uint) error {
	return NotFoundError{Resource: resource, ID: id}
}

func Invalid(field, msg string) error {
	return ValidationError{Field: field, Msg: msg}
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

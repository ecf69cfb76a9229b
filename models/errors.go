package models

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorNotFound is returned when a requested record does not exist.
type ErrorNotFound struct {
	Resource string
	ID       uint
}

func (e *ErrorNotFound) Error() string {
	if e.ID == 0 {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

type ErrorUnauthorized struct {
	Message string
}

func (e *ErrorUnauthorized) Error() string {
	return e.Message
}

type ErrorConflict struct {
	Message string
}

func (e *ErrorConflict) Error() string {
	return e.Message
}

type ErrorInternalServer struct {
	Message string
}

func (e *ErrorInternalServer) Error() string {
	return e.Message
}

// ErrorValidation carries field-keyed messages. Keys are json field names.
type ErrorValidation struct {
	Fields map[string][]string
}

// NewValidationError returns an ErrorValidation holding one message.
func NewValidationError(field, message string) *ErrorValidation {
	e := &ErrorValidation{}
	e.Add(field, message)
	return e
}

// Add appends a message for field.
func (e *ErrorValidation) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no field has a message.
func (e *ErrorValidation) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ErrorValidation) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ErrorForbidden is returned when the caller is known but may not act on
// the resource.
type ErrorForbidden struct {
	Message string
}

func (e *ErrorForbidden) Error() string {
	return e.Message
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error kinds surfaced by blog operations and
// maps each kind to the HTTP status the API responds with.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConflictError reports a uniqueness violation (slug or name already taken).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// NotFoundError reports an unknown id or slug.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// UnauthorizedError reports a missing or invalid identity on a protected
// operation.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string {
	if e.Msg == "" {
		return "unauthorized"
	}
	return e.Msg
}

// DependencyError reports a delete refused because other records still
// reference the target. Count is the number of dependents.
type DependencyError struct {
	Resource  string
	Dependent string
	Count     int
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s has %d %s(s) referencing it; delete or move them first",
		e.Resource, e.Count, e.Dependent)
}

// Validation is a shorthand constructor for ValidationError.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Conflict is a shorthand constructor for ConflictError.
func Conflict(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// NotFound is a shorthand constructor for NotFoundError.
func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// Status returns the HTTP status code for err. Errors outside the taxonomy
// map to 500.
func Status(err error) int {
	var (
		validation   *ValidationError
		conflict     *ConflictError
		notFound     *NotFoundError
		unauthorized *UnauthorizedError
		dependency   *DependencyError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation), errors.As(err, &dependency):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

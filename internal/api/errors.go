package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNetwork      = errors.New("network failure")
	ErrAuthRejected = errors.New("authentication rejected")
	ErrValidation   = errors.New("validation failed")
)

// StatusError is returned for any non-2xx response. It matches
// ErrAuthRejected or ErrValidation through errors.Is depending on the code.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed with status %d", e.Code)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Code, e.Detail)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthRejected
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return ErrValidation
	}
	return nil
}

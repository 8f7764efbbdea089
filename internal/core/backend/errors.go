package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDocument is returned when the user has no uploaded document.
	ErrNoDocument = errors.New("no document found")
	// ErrDocumentExists is returned on upload when a document already exists.
	ErrDocumentExists = errors.New("document already exists")
	// ErrUnauthorized is returned when the bearer token is missing or rejected.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError carries the backend's status code and human-readable detail string.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend error: status %d", e.StatusCode)
}

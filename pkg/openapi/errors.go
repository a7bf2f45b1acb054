package openapi

import "errors"

var (
	// ErrOperationNotFound is returned when ImportOperation cannot locate the
	// requested operation.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned for operations without an object request body.
	ErrNoRequestBody = errors.New("openapi: operation has no object request body")
	// ErrUnsupportedProperty is returned for properties that cannot become fields.
	ErrUnsupportedProperty = errors.New("openapi: unsupported property")
)

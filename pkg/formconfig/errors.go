package formconfig

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyDocument is returned for blank configuration payloads.
	ErrEmptyDocument = errors.New("formconfig: document is empty")
	// ErrInvalidDocument wraps schema and normalisation failures.
	ErrInvalidDocument = errors.New("formconfig: invalid document")
)

// Issue is a single problem found in a configuration document.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// DocumentError lists every issue found in a document.
type DocumentError struct {
	Source string
	Issues []Issue
}

func (e *DocumentError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("formconfig: %s: %s", e.Source, strings.Join(parts, "; "))
}

// Unwrap lets callers match ErrInvalidDocument.
func (e *DocumentError) Unwrap() error {
	return ErrInvalidDocument
}

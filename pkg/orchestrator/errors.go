package orchestrator

import "errors"

var (
	// ErrUnsupportedSource is returned for Source implementations the
	// orchestrator does not know how to load.
	ErrUnsupportedSource = errors.New("orchestrator: unsupported source")
	// ErrFetch is returned when a remote document cannot be downloaded.
	ErrFetch = errors.New("orchestrator: fetch failed")
)

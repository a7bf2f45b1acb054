package server

import "errors"

var (
	// ErrStart is returned when the listener fails for reasons other than a
	// requested shutdown.
	ErrStart = errors.New("server: failed to start")
	// ErrShutdown wraps errors from the graceful shutdown.
	ErrShutdown = errors.New("server: shutdown failed")
	// ErrNoRenderer is returned by New when the registry has no HTML renderer.
	ErrNoRenderer = errors.New("server: html renderer not registered")
)

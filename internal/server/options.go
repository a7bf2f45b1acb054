package server

import (
	"log/slog"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-dynaform/pkg/form"
	"github.com/goliatone/go-dynaform/pkg/render"
	"github.com/goliatone/go-dynaform/pkg/validation"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and lifecycle logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTiming selects the feedback timing strategy for every request.
func WithTiming(t form.Timing) Option {
	return func(s *Server) {
		if t != "" {
			s.timing = t
		}
	}
}

// WithSubmitter replaces the simulated submitter.
func WithSubmitter(sub form.Submitter) Option {
	return func(s *Server) {
		if sub != nil {
			s.submitter = sub
		}
	}
}

// WithSubmitDelay configures the simulated submitter's delay. It has no
// effect once WithSubmitter installed a custom submitter.
func WithSubmitDelay(d time.Duration) Option {
	return func(s *Server) {
		s.submitDelay = d
	}
}

// WithValidator overrides the validator used by the validate endpoint and by
// sessions.
func WithValidator(v *validation.Validator) Option {
	return func(s *Server) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithRenderers supplies the registry holding the HTML renderer.
func WithRenderers(registry *render.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.renderers = registry
		}
	}
}

// WithTheme applies theme tokens to rendered pages.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithReadHeaderTimeout bounds how long Run waits for request headers.
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.readHeaderTimeout = d
		}
	}
}

// WithShutdownTimeout bounds the graceful shutdown in Run.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

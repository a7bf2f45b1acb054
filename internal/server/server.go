// Package server exposes a form over HTTP: the rendered page, a live
// validation endpoint, a JSON submission API and the form's OpenAPI document.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-dynaform/pkg/form"
	"github.com/goliatone/go-dynaform/pkg/model"
	"github.com/goliatone/go-dynaform/pkg/openapi"
	"github.com/goliatone/go-dynaform/pkg/render"
	"github.com/goliatone/go-dynaform/pkg/renderers/html"
	"github.com/goliatone/go-dynaform/pkg/validation"
)

// Route paths.
const (
	PathIndex    = "/"
	PathForm     = "/api/form"
	PathValidate = "/api/validate"
	PathSubmit   = "/api/submit"
	PathOpenAPI  = "/openapi.json"
	PathHealth   = "/healthz"
	PathAssets   = "/assets"
)

const maxBodyBytes = 1 << 20

// Server serves a single form.
type Server struct {
	form      model.FormModel
	timing    form.Timing
	validator *validation.Validator
	submitter form.Submitter
	renderers *render.Registry
	theme     *theme.RendererConfig
	logger    *slog.Logger

	submitDelay       time.Duration
	readHeaderTimeout time.Duration
	shutdownTimeout   time.Duration

	openapiDoc []byte
}

// New builds a Server for f. Without WithRenderers it registers the embedded
// HTML renderer wired to the validate endpoint and asset route. Without
// WithValidator, posted select values must be one of the field's options.
func New(f model.FormModel, options ...Option) (*Server, error) {
	s := &Server{
		form:              f,
		timing:            form.OnChange,
		validator:         validation.New(validation.WithStrictOptions()),
		submitDelay:       form.DefaultSubmitDelay,
		readHeaderTimeout: 5 * time.Second,
		shutdownTimeout:   10 * time.Second,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.submitter == nil {
		s.submitter = form.SimulatedSubmitter{Delay: s.submitDelay, Logger: s.logger}
	}
	if s.renderers == nil {
		renderer, err := html.New(
			html.WithValidateURL(PathValidate),
			html.WithAssetsURL(PathAssets),
		)
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.renderers = render.NewRegistry()
		s.renderers.MustRegister(renderer)
	}
	if !s.renderers.Has(html.Name) {
		return nil, ErrNoRenderer
	}

	doc, err := openapi.ExportJSON(context.Background(), f, openapi.ExportOptions{Path: PathSubmit})
	if err != nil {
		return nil, fmt.Errorf("server: export openapi: %w", err)
	}
	s.openapiDoc = doc
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get(PathIndex, s.handlePage)
	r.Post(PathIndex, s.handlePageSubmit)
	r.Get(PathHealth, s.handleHealth)
	r.Get(PathOpenAPI, s.handleOpenAPI)
	r.Route("/api", func(api chi.Router) {
		api.Get("/form", s.handleForm)
		api.Post("/validate", s.handleValidate)
		api.Post("/submit", s.handleSubmit)
	})
	r.Handle(PathAssets+"/*", http.StripPrefix(PathAssets+"/", http.FileServer(http.FS(html.AssetsFS()))))
	return r
}

// Run listens on addr and serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return errors.Join(ErrStart, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("server started", "addr", ln.Addr().String(), "form", s.form.ID, "timing", s.timing)

	var runErr error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Join(ErrShutdown, err)
		}
		runErr = <-errCh
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) newSession(values map[string]string, notifier form.Notifier) *form.Session {
	return form.New(s.form,
		form.WithTiming(s.timing),
		form.WithValidator(s.validator),
		form.WithSubmitter(s.submitter),
		form.WithLogger(s.logger),
		form.WithNotifier(notifier),
		form.WithValues(values),
	)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, render.RenderOptions{})
}

func (s *Server) handlePageSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	values := make(map[string]string, len(s.form.Fields))
	for _, name := range s.form.Names() {
		values[name] = r.PostForm.Get(name)
	}

	var notice *form.Notice
	session := s.newSession(values, form.NotifierFunc(func(_ context.Context, n form.Notice) {
		if n.Field == "" {
			notice = &n
		}
	}))

	outcome, err := session.Submit(r.Context())
	switch {
	case err == nil:
		s.renderPage(w, r, http.StatusOK, render.RenderOptions{Notice: notice})
	case errors.Is(err, form.ErrInvalid):
		s.renderPage(w, r, http.StatusUnprocessableEntity, render.RenderOptions{
			Values: values,
			Errors: outcome.Errors,
			Notice: notice,
		})
	case r.Context().Err() != nil:
		s.logger.DebugContext(r.Context(), "submission abandoned", "error", err)
	default:
		s.renderPage(w, r, http.StatusBadGateway, render.RenderOptions{Values: values, Notice: notice})
	}
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, opts render.RenderOptions) {
	opts.Action = PathIndex
	opts.Timing = s.timing
	opts.Theme = s.theme

	out, err := s.renderers.Render(r.Context(), html.Name, s.form, opts)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "render page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func (s *Server) handleForm(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.form)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.openapiDoc)
}

type validateRequest struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Event   string `json:"event"`
	Touched bool   `json:"touched"`
}

// handleValidate is stateless: the client echoes the touched flag it got
// from the previous response.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	field, ok := s.form.Field(req.Name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown field %q", req.Name))
		return
	}
	ev, err := form.ParseEvent(req.Event)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	validate, touched := s.timing.Apply(ev, req.Touched)
	msg := ""
	if validate {
		msg = s.validator.Validate(field, req.Value)
	}
	writeJSON(w, http.StatusOK, form.Feedback{
		Field:   field.Name,
		Error:   msg,
		Visible: msg != "" && s.timing.Shows(touched),
		Touched: touched,
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	values, err := form.DecodeValues(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := s.newSession(values, form.SlogNotifier{Logger: s.logger}).Submit(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	case errors.Is(err, form.ErrInvalid):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]validation.Errors{"errors": outcome.Errors})
	case r.Context().Err() != nil:
		s.logger.DebugContext(r.Context(), "submission abandoned", "error", err)
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

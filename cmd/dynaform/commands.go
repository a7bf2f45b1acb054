package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goliatone/go-dynaform/internal/config"
	"github.com/goliatone/go-dynaform/internal/logging"
	"github.com/goliatone/go-dynaform/internal/server"
	"github.com/goliatone/go-dynaform/pkg/form"
	"github.com/goliatone/go-dynaform/pkg/formconfig"
	"github.com/goliatone/go-dynaform/pkg/model"
	"github.com/goliatone/go-dynaform/pkg/openapi"
	"github.com/goliatone/go-dynaform/pkg/orchestrator"
	"github.com/goliatone/go-dynaform/pkg/render"
	"github.com/goliatone/go-dynaform/pkg/renderers/html"
	"github.com/goliatone/go-dynaform/pkg/renderers/tui"
	"github.com/goliatone/go-dynaform/pkg/validation"
)

var errUsage = errors.New("usage")

type sourceFlags struct {
	form        string
	openapi     string
	operation   string
	resolveRefs bool
}

func (s *sourceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.form, "form", "", "form configuration file (YAML or JSON); the built-in form when empty")
	fs.StringVar(&s.openapi, "openapi", "", "OpenAPI document path or URL to build the form from")
	fs.StringVar(&s.operation, "operation", "", "OpenAPI operation ID (default: the only operation with a request body)")
	fs.BoolVar(&s.resolveRefs, "resolve-refs", false, "allow external $ref targets and validate the OpenAPI document")
}

func (s *sourceFlags) source() (orchestrator.Source, error) {
	if s.form != "" && s.openapi != "" {
		return nil, fmt.Errorf("%w: -form and -openapi are mutually exclusive", errUsage)
	}
	if s.operation != "" && s.openapi == "" {
		return nil, fmt.Errorf("%w: -operation requires -openapi", errUsage)
	}
	if s.openapi != "" {
		return orchestrator.ParseSource(s.openapi, true)
	}
	return orchestrator.ParseSource(s.form, false)
}

func (s *sourceFlags) load(ctx context.Context, logger *slog.Logger) (model.FormModel, error) {
	source, err := s.source()
	if err != nil {
		return model.FormModel{}, err
	}
	orch := orchestrator.New(
		orchestrator.WithLogger(logger),
		orchestrator.WithReferenceResolution(s.resolveRefs),
	)
	return orch.Load(ctx, source, s.operation)
}

func newFlagSet(name string, env *cliEnv) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func quietLogger(env *cliEnv) *slog.Logger {
	logger, _, _ := logging.New(logging.Config{Level: "warn"}, env.stderr)
	return logger
}

func runServe(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlagSet("serve", env)
	envFile := fs.String("env", "", "dotenv file to load (default .env when present)")
	addr := fs.String("addr", "", "listen address (overrides DYNAFORM_ADDR)")
	timing := fs.String("timing", "", "feedback timing: change or blur (overrides DYNAFORM_TIMING)")
	var src sourceFlags
	src.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *timing != "" {
		cfg.Timing = *timing
	}
	if src.form == "" && src.openapi == "" {
		src.form, src.openapi, src.operation = cfg.FormPath, cfg.OpenAPIPath, cfg.OpenAPIOperation
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cleanup, err := logging.Setup(cfg.Logging())
	if err != nil {
		return err
	}
	defer cleanup()
	logger := slog.Default()

	f, err := src.load(ctx, logger)
	if err != nil {
		return err
	}
	themeCfg, err := render.DefaultThemes().Resolve(cfg.Theme, cfg.ThemeVariant)
	if err != nil {
		return err
	}

	htmlOptions := []html.Option{
		html.WithValidateURL(server.PathValidate),
		html.WithAssetsURL(server.PathAssets),
	}
	if cfg.TemplatesDir != "" {
		htmlOptions = append(htmlOptions, html.WithTemplatesDir(cfg.TemplatesDir))
	}
	renderer, err := html.New(htmlOptions...)
	if err != nil {
		return err
	}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	srv, err := server.New(f,
		server.WithLogger(logger),
		server.WithTiming(cfg.FormTiming()),
		server.WithSubmitDelay(cfg.SubmitDelay),
		server.WithRenderers(registry),
		server.WithTheme(themeCfg),
		server.WithReadHeaderTimeout(cfg.ReadHeaderTimeout),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
	)
	if err != nil {
		return err
	}
	return srv.Run(ctx, cfg.Addr)
}

func runFill(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlagSet("fill", env)
	timingName := fs.String("timing", "change", "feedback timing: change or blur")
	formatName := fs.String("format", "json", "output format: json, form or pretty")
	delay := fs.Duration("delay", form.DefaultSubmitDelay, "simulated submission delay")
	confirm := fs.Bool("confirm", false, "ask for confirmation before submitting")
	maxAttempts := fs.Int("max-attempts", 0, "give up after this many invalid answers per field (0 = unlimited)")
	output := fs.String("output", "", "write the submitted values to this file instead of stdout")
	var src sourceFlags
	src.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	timing, err := form.ParseTiming(*timingName)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	format, ok := tui.ParseOutputFormat(*formatName)
	if !ok {
		return fmt.Errorf("%w: unknown format %q", errUsage, *formatName)
	}
	source, err := src.source()
	if err != nil {
		return err
	}

	logger := quietLogger(env)
	orch := orchestrator.New(
		orchestrator.WithLogger(logger),
		orchestrator.WithReferenceResolution(src.resolveRefs),
		orchestrator.WithThemeCatalog(nil),
		orchestrator.WithTUIOptions(
			tui.WithPromptDriver(tui.NewSurveyDriver(env.stderr)),
			tui.WithOutputFormat(format),
			tui.WithConfirm(*confirm),
			tui.WithMaxAttempts(*maxAttempts),
			tui.WithSessionOptions(
				form.WithLogger(logger),
				form.WithSubmitter(form.SimulatedSubmitter{Delay: *delay, Logger: logger}),
			),
		),
	)
	out, err := orch.Generate(ctx, orchestrator.Request{
		Source:        source,
		OperationID:   src.operation,
		Renderer:      tui.Name,
		RenderOptions: render.RenderOptions{Timing: timing},
	})
	if err != nil {
		return err
	}
	return writeOutput(env, *output, out)
}

func runRender(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlagSet("render", env)
	output := fs.String("output", "", "output file (stdout if empty)")
	themeName := fs.String("theme", "", "theme name (default: dynaform)")
	variant := fs.String("variant", "", "theme variant, e.g. light or dark")
	templatesDir := fs.String("templates", "", "directory with template overrides")
	validateURL := fs.String("validate-url", "", "live validation endpoint for the embedded script")
	timingName := fs.String("timing", "change", "feedback timing: change or blur")
	var src sourceFlags
	src.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	timing, err := form.ParseTiming(*timingName)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	source, err := src.source()
	if err != nil {
		return err
	}

	var htmlOptions []html.Option
	if *templatesDir != "" {
		htmlOptions = append(htmlOptions, html.WithTemplatesDir(*templatesDir))
	}
	if *validateURL != "" {
		htmlOptions = append(htmlOptions, html.WithValidateURL(*validateURL))
	}
	orch := orchestrator.New(
		orchestrator.WithLogger(quietLogger(env)),
		orchestrator.WithReferenceResolution(src.resolveRefs),
		orchestrator.WithHTMLOptions(htmlOptions...),
	)
	out, err := orch.Generate(ctx, orchestrator.Request{
		Source:        source,
		OperationID:   src.operation,
		Renderer:      html.Name,
		Theme:         *themeName,
		Variant:       *variant,
		RenderOptions: render.RenderOptions{Timing: timing},
	})
	if err != nil {
		return err
	}
	return writeOutput(env, *output, out)
}

type checkReport struct {
	Valid  bool                    `json:"valid"`
	Errors []validation.FieldError `json:"errors,omitempty"`
}

func runCheck(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlagSet("check", env)
	valuesPath := fs.String("values", "-", "JSON object of field values (- for stdin)")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	var src sourceFlags
	src.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	f, err := src.load(ctx, quietLogger(env))
	if err != nil {
		return err
	}

	var in io.Reader = env.stdin
	if *valuesPath != "-" {
		file, err := os.Open(*valuesPath)
		if err != nil {
			return err
		}
		defer file.Close()
		in = file
	}
	values, err := form.DecodeValues(in)
	if err != nil {
		return err
	}

	errs := validation.New(validation.WithStrictOptions()).ValidateForm(f, values)
	report := checkReport{Valid: errs.Valid(), Errors: errs.Ordered(f)}
	if *asJSON {
		enc := json.NewEncoder(env.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else if report.Valid {
		fmt.Fprintln(env.stdout, "ok")
	} else {
		for _, fe := range report.Errors {
			fmt.Fprintf(env.stdout, "%s: %s\n", fe.Field, fe.Message)
		}
	}
	if !report.Valid {
		return errInvalid
	}
	return nil
}

func runSchema(_ context.Context, env *cliEnv, args []string) error {
	fs := newFlagSet("schema", env)
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	raw, err := formconfig.SchemaJSON()
	if err != nil {
		return err
	}
	return writeOutput(env, *output, raw)
}

func runOpenAPI(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlagSet("openapi", env)
	output := fs.String("output", "", "output file (stdout if empty)")
	path := fs.String("path", server.PathSubmit, "submission path")
	version := fs.String("version", "1.0.0", "document version")
	serverURL := fs.String("server", "", "server URL to advertise")
	var src sourceFlags
	src.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	f, err := src.load(ctx, quietLogger(env))
	if err != nil {
		return err
	}
	raw, err := openapi.ExportJSON(ctx, f, openapi.ExportOptions{
		Path:      *path,
		Version:   *version,
		ServerURL: *serverURL,
	})
	if err != nil {
		return err
	}
	return writeOutput(env, *output, raw)
}

func runLint(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlagSet("lint", env)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: dynaform lint <paths...>\n\nLint OpenAPI documents for unsupported dynaform extensions.\n")
	}
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one document path is required", errUsage)
	}

	found := false
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("lint %s: %w", path, err)
		}
		violations, err := openapi.Lint(ctx, raw)
		if err != nil {
			return fmt.Errorf("lint %s: %w", path, err)
		}
		for _, v := range violations {
			found = true
			fmt.Fprintf(env.stderr, "%s: %s\n", path, v)
		}
	}
	if found {
		return errInvalid
	}
	return nil
}

func writeOutput(env *cliEnv, path string, data []byte) error {
	if path == "" {
		if _, err := env.stdout.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, err := io.WriteString(env.stdout, "\n")
			return err
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(env.stderr, "written to %s\n", path)
	return nil
}

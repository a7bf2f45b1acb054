package orchestrator_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-dynaform/pkg/formconfig"
	"github.com/goliatone/go-dynaform/pkg/model"
	"github.com/goliatone/go-dynaform/pkg/orchestrator"
	"github.com/goliatone/go-dynaform/pkg/render"
	"github.com/goliatone/go-dynaform/pkg/testsupport"
)

var createPetGolden = filepath.Join("testdata", "create_pet.form.json")

func TestLoad_Sources(t *testing.T) {
	ctx := testsupport.Context()
	orch := orchestrator.New()

	contact, err := os.ReadFile(filepath.Join("testdata", "contact.yaml"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	cases := []struct {
		name   string
		source orchestrator.Source
		opID   string
		wantID string
	}{
		{name: "Default", source: nil, wantID: formconfig.MustDefault().ID},
		{name: "ConfigFile", source: orchestrator.SourceFromFile(filepath.Join("testdata", "contact.yaml")), wantID: "contact"},
		{name: "FS", source: orchestrator.SourceFromFS(fstest.MapFS{"forms/contact.yaml": {Data: contact}}, "forms/contact.yaml"), wantID: "contact"},
		{name: "OpenAPI", source: orchestrator.SourceFromOpenAPI(filepath.Join("testdata", "petstore.yaml")), opID: "createPet", wantID: "createPet"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form, err := orch.Load(ctx, tc.source, tc.opID)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if form.ID != tc.wantID {
				t.Fatalf("form id = %q, want %q", form.ID, tc.wantID)
			}
		})
	}
}

func TestLoad_OpenAPIMatchesGolden(t *testing.T) {
	orch := orchestrator.New()
	form, err := orch.Load(testsupport.Context(), orchestrator.SourceFromOpenAPI(filepath.Join("testdata", "petstore.yaml")), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	testsupport.WriteFormModel(t, createPetGolden, form)

	want := testsupport.MustLoadFormModel(t, createPetGolden)
	if diff := testsupport.CompareGolden(want, form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_URLSource(t *testing.T) {
	doc, err := os.ReadFile(filepath.Join("testdata", "petstore.yaml"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/petstore.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(doc)
	}))
	defer srv.Close()

	orch := orchestrator.New(orchestrator.WithHTTPClient(srv.Client()))

	source, err := orchestrator.SourceFromURL(srv.URL + "/petstore.yaml")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	form, err := orch.Load(testsupport.Context(), source, "createPet")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := testsupport.MustLoadFormModel(t, createPetGolden)
	if diff := testsupport.CompareGolden(want, form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}

	missing, err := orchestrator.SourceFromURL(srv.URL + "/missing.yaml")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if _, err := orch.Load(testsupport.Context(), missing, ""); !errors.Is(err, orchestrator.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	orch := orchestrator.New()
	ctx := testsupport.Context()

	if _, err := orch.Load(ctx, orchestrator.SourceFromFile(filepath.Join("testdata", "missing.yaml")), ""); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := orch.Load(ctx, unknownSource{}, ""); !errors.Is(err, orchestrator.ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := orch.Load(cancelled, nil, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type unknownSource struct{}

func (unknownSource) Kind() orchestrator.SourceKind { return "ftp" }
func (unknownSource) Location() string              { return "ftp://example" }

func TestGenerate_HTMLWithTheme(t *testing.T) {
	orch := orchestrator.New()
	out, err := orch.Generate(testsupport.Context(), orchestrator.Request{
		Source:  orchestrator.SourceFromFile(filepath.Join("testdata", "contact.yaml")),
		Variant: "dark",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(out)
	for _, fragment := range []string{
		"<title>Contact us</title>",
		`data-theme="dynaform"`,
		`data-variant="dark"`,
		"--color-bg: #12141c",
		`name="message"`,
	} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected output to contain %q", fragment)
		}
	}
}

func TestGenerate_FormBypassesLoading(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithThemeCatalog(nil))
	form := model.FormModel{
		ID:     "inline",
		Title:  "Inline",
		Fields: []model.Field{{Name: "nickname"}},
	}
	out, err := orch.Generate(testsupport.Context(), orchestrator.Request{Form: &form})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), `name="nickname" type="text"`) {
		t.Fatalf("expected normalised text field in output")
	}
	if strings.Contains(string(out), "--color-bg") {
		t.Fatalf("expected no theme variables without a catalog")
	}

	invalid := model.FormModel{ID: "broken"}
	if _, err := orch.Generate(testsupport.Context(), orchestrator.Request{Form: &invalid}); !errors.Is(err, formconfig.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestGenerate_Errors(t *testing.T) {
	orch := orchestrator.New()
	ctx := testsupport.Context()

	if _, err := orch.Generate(ctx, orchestrator.Request{Renderer: "pdf"}); err == nil {
		t.Fatalf("expected error for unknown renderer")
	}
	if _, err := orch.Generate(ctx, orchestrator.Request{Theme: "neon"}); !errors.Is(err, render.ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
}

func TestRegistry_DefaultsRegistered(t *testing.T) {
	names := orchestrator.New().Registry().List()
	want := []string{"html", "tui"}
	if diff := testsupport.CompareGolden(want, names); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSource(t *testing.T) {
	cases := []struct {
		raw     string
		openAPI bool
		want    orchestrator.SourceKind
	}{
		{raw: "", want: orchestrator.SourceKindDefault},
		{raw: "forms/contact.yaml", want: orchestrator.SourceKindFile},
		{raw: "api.yaml", openAPI: true, want: orchestrator.SourceKindOpenAPI},
		{raw: "https://example.com/api.yaml", want: orchestrator.SourceKindURL},
	}
	for _, tc := range cases {
		source, err := orchestrator.ParseSource(tc.raw, tc.openAPI)
		if err != nil {
			t.Fatalf("ParseSource(%q): %v", tc.raw, err)
		}
		if source.Kind() != tc.want {
			t.Fatalf("ParseSource(%q) kind = %q, want %q", tc.raw, source.Kind(), tc.want)
		}
	}

	if _, err := orchestrator.SourceFromURL("ftp://example.com/api.yaml"); err == nil {
		t.Fatalf("expected error for non-http URL")
	}
}

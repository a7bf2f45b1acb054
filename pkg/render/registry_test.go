package render

import (
	"context"
	"testing"

	"github.com/goliatone/go-dynaform/pkg/model"
)

type stubRenderer struct {
	name string
	got  RenderOptions
}

func (s *stubRenderer) Name() string        { return s.name }
func (s *stubRenderer) ContentType() string { return "text/plain" }
func (s *stubRenderer) Render(_ context.Context, form model.FormModel, opts RenderOptions) ([]byte, error) {
	s.got = opts
	return []byte(s.name + ":" + form.ID), nil
}

func TestRegistry_RegisterAndDefault(t *testing.T) {
	reg := NewRegistry()
	html := &stubRenderer{name: "html"}
	tui := &stubRenderer{name: "tui"}
	reg.MustRegister(html)
	reg.MustRegister(tui)

	if err := reg.Register(&stubRenderer{name: "html"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := reg.Register(nil); err == nil {
		t.Fatalf("expected nil renderer error")
	}

	out, err := reg.Render(context.Background(), "", model.FormModel{ID: "f"}, RenderOptions{Values: map[string]string{"a": "b"}})
	if err != nil {
		t.Fatalf("render default: %v", err)
	}
	if string(out) != "html:f" {
		t.Fatalf("default renderer output = %q", out)
	}
	if html.got.Value("a") != "b" {
		t.Fatalf("options not forwarded")
	}

	if err := reg.SetDefault("tui"); err != nil {
		t.Fatalf("set default: %v", err)
	}
	r, err := reg.Get("")
	if err != nil || r.Name() != "tui" {
		t.Fatalf("default = %v, %v", r, err)
	}
	if err := reg.SetDefault("pdf"); err == nil {
		t.Fatalf("expected unknown default error")
	}
	if _, err := reg.Get("pdf"); err == nil {
		t.Fatalf("expected lookup error")
	}

	if got := reg.List(); len(got) != 2 || got[0] != "html" || got[1] != "tui" {
		t.Fatalf("list = %v", got)
	}
	if !reg.Has("tui") || reg.Has("pdf") {
		t.Fatalf("has mismatch")
	}
}

func TestRenderOptions_NilMaps(t *testing.T) {
	var opts RenderOptions
	if opts.Value("x") != "" || opts.Error("x") != "" {
		t.Fatalf("expected empty lookups on zero options")
	}
}

// Package orchestrator wires form sources, themes and renderers together.
//
// A Request names where the form comes from (a YAML/JSON configuration, an
// fs.FS entry, an OpenAPI document on disk or behind a URL, or the embedded
// default form), which renderer should produce output, and the theme to apply.
// The orchestrator loads and normalises the form, resolves the theme through a
// render.ThemeCatalog and delegates to the render.Registry.
//
//	orch := orchestrator.New()
//	page, err := orch.Generate(ctx, orchestrator.Request{
//	    Source:   orchestrator.SourceFromFile("forms/contact.yaml"),
//	    Renderer: "html",
//	})
package orchestrator

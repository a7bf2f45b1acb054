package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	// StylesheetName is the stylesheet file inside AssetsFS.
	StylesheetName = "dynaform.css"
	// ScriptName is the live validation script inside AssetsFS.
	ScriptName = "dynaform.js"
)

// TemplatesFS exposes the embedded pongo2 templates rooted at their directory.
func TemplatesFS() fs.FS {
	return subFS(embeddedTemplates, "templates")
}

// AssetsFS exposes the embedded stylesheet and script so they can be served
// over HTTP instead of inlined.
func AssetsFS() fs.FS {
	return subFS(embeddedAssets, "assets")
}

func subFS(files embed.FS, dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		return files
	}
	return sub
}

func readAsset(name string) string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+name)
	if err != nil {
		return ""
	}
	return string(data)
}

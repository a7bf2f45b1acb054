package orchestrator

import (
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies where a form definition originated so the orchestrator
// can operate on files, fs.FS entries, OpenAPI documents or the embedded
// default without leaking loader details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindDefault SourceKind = "default"
	SourceKindFile    SourceKind = "file"
	SourceKindFS      SourceKind = "fs"
	SourceKindOpenAPI SourceKind = "openapi"
	SourceKindURL     SourceKind = "url"
)

type defaultSource struct{}

func (defaultSource) Kind() SourceKind { return SourceKindDefault }
func (defaultSource) Location() string { return "embedded" }

// DefaultSource selects the embedded default form.
func DefaultSource() Source {
	return defaultSource{}
}

// fileSource identifies on-disk form configurations.
type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a YAML or JSON configuration.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

// fsSource references a configuration inside an fs.FS.
type fsSource struct {
	fsys fs.FS
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source identifying a configuration inside fsys.
func SourceFromFS(fsys fs.FS, name string) Source {
	return fsSource{fsys: fsys, name: name}
}

// openAPISource references an OpenAPI document on disk.
type openAPISource struct {
	path string
}

func (s openAPISource) Location() string { return s.path }
func (s openAPISource) Kind() SourceKind { return SourceKindOpenAPI }

// SourceFromOpenAPI returns a Source for an OpenAPI document on disk.
func SourceFromOpenAPI(path string) Source {
	return openAPISource{path: filepath.Clean(path)}
}

// urlSource references an OpenAPI document behind an HTTP/HTTPS endpoint.
type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }
func (s urlSource) Kind() SourceKind { return SourceKindURL }

// SourceFromURL parses the supplied URL string and returns a Source for the
// OpenAPI document it serves.
func SourceFromURL(raw string) (Source, error) {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("orchestrator: invalid URL %q: scheme must be http or https", raw)
	}
	return urlSource{raw: u.String()}, nil
}

// ParseSource picks a Source for a command-line argument. URLs always name
// OpenAPI documents; paths do when openAPI is set and are form configurations
// otherwise. An empty argument selects the default form.
func ParseSource(raw string, openAPI bool) (Source, error) {
	path := strings.TrimSpace(raw)
	switch {
	case path == "":
		return DefaultSource(), nil
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		return SourceFromURL(path)
	case openAPI:
		return SourceFromOpenAPI(path), nil
	default:
		return SourceFromFile(path), nil
	}
}

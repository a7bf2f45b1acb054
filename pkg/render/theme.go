package render

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// ErrThemeNotFound is returned when a selection names an unregistered theme.
var ErrThemeNotFound = errors.New("render: theme not found")

// ThemeCatalog keeps go-theme manifests and resolves selections against them.
// It satisfies go-theme's selector contract so callers can swap in any other
// selector implementation.
type ThemeCatalog struct {
	mu             sync.RWMutex
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

// NewThemeCatalog creates an empty catalog with the given fallbacks.
func NewThemeCatalog(defaultTheme, defaultVariant string) *ThemeCatalog {
	return &ThemeCatalog{
		manifests:      make(map[string]*theme.Manifest),
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
}

// Register adds a manifest keyed by its name.
func (c *ThemeCatalog) Register(manifest *theme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return errors.New("render: theme manifest requires a name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.manifests[manifest.Name]; exists {
		return fmt.Errorf("render: theme %q already registered", manifest.Name)
	}
	c.manifests[manifest.Name] = manifest
	if c.defaultTheme == "" {
		c.defaultTheme = manifest.Name
	}
	return nil
}

// Names lists registered themes.
func (c *ThemeCatalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.manifests))
	for name := range c.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves a theme/variant pair. Empty values fall back to the catalog
// defaults; unknown variants resolve to the base manifest.
func (c *ThemeCatalog) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if name = strings.TrimSpace(name); name == "" {
		name = c.defaultTheme
	}
	manifest, ok := c.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	if variant = strings.TrimSpace(variant); variant == "" {
		variant = c.defaultVariant
	}
	if _, ok := manifest.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{
		Theme:    name,
		Variant:  variant,
		Manifest: manifest,
	}, nil
}

// Resolve selects a theme and flattens it into renderer configuration.
func (c *ThemeCatalog) Resolve(name, variant string) (*theme.RendererConfig, error) {
	selection, err := c.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return ThemeConfig(selection), nil
}

// ThemeConfig merges a selection's base manifest with its variant overrides.
// Every token is also exposed as a CSS custom property ("brand" -> "--brand").
func ThemeConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest

	tokens := mergeStrings(manifest.Tokens, nil)
	partials := mergeStrings(manifest.Templates, nil)
	prefix := manifest.Assets.Prefix
	files := mergeStrings(manifest.Assets.Files, nil)

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = mergeStrings(tokens, variant.Tokens)
		partials = mergeStrings(partials, variant.Templates)
		files = mergeStrings(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Tokens:   tokens,
		CSSVars:  cssVars,
		Partials: partials,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if prefix == "" {
				return file
			}
			return path.Join(prefix, file)
		},
	}
}

// DefaultThemes returns a catalog holding the built-in "dynaform" theme with
// light and dark variants.
func DefaultThemes() *ThemeCatalog {
	catalog := NewThemeCatalog("dynaform", "light")
	_ = catalog.Register(&theme.Manifest{
		Name:    "dynaform",
		Version: "1.0.0",
		Tokens: map[string]string{
			"color-bg":      "#f5f6fa",
			"color-surface": "#ffffff",
			"color-text":    "#1f2330",
			"color-muted":   "#6b7080",
			"color-accent":  "#4f46e5",
			"color-error":   "#d92d20",
			"color-success": "#12805c",
			"radius":        "8px",
			"font-family":   "system-ui, -apple-system, Segoe UI, sans-serif",
		},
		Variants: map[string]theme.Variant{
			"light": {},
			"dark": {
				Tokens: map[string]string{
					"color-bg":      "#12141c",
					"color-surface": "#1c1f2b",
					"color-text":    "#e6e8f0",
					"color-muted":   "#9aa0b4",
					"color-accent":  "#818cf8",
					"color-error":   "#f97066",
					"color-success": "#32d583",
				},
			},
		},
	})
	return catalog
}

func mergeStrings(base, overrides map[string]string) map[string]string {
	if len(base) == 0 && len(overrides) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(overrides))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overrides {
		out[key] = value
	}
	return out
}

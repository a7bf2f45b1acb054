// Package html renders forms as standalone HTML pages using embedded pongo2
// templates. Field descriptions are sanitized with bluemonday and go-theme
// tokens become CSS custom properties.
package html

// Package render defines the renderer contract shared by the HTML and terminal
// front ends, a name-keyed registry, and go-theme resolution for design tokens.
package render

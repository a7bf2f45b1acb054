// Package openapi converts forms to and from OpenAPI 3 operations. Export
// describes a form's submission endpoint so API clients can validate payloads
// with the same constraints the form enforces; ImportOperation builds a form
// from an existing operation's request body.
package openapi

// Package formconfig loads field configuration documents. Documents may be
// JSON or YAML; both are checked against a JSON Schema derived from the model
// types and then normalised (labels filled in, patterns compiled, duplicate
// names and contradictory bounds rejected). Default returns the configuration
// embedded in the binary.
package formconfig

// Package model defines the field descriptors and form model that the
// validator, the form session and every renderer consume. Descriptors are
// declared once (usually through pkg/formconfig) and never mutated at runtime.
// Optional bounds are pointers so an unset limit is distinguishable from a
// zero limit, and `errorMessage` lets a descriptor override the message used
// when its pattern does not match.
package model

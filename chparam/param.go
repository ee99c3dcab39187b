// Package chparam rewrites ClickHouse query text carrying `@name`
// placeholders into the server's `{name:Type}` substitution syntax and
// serialises the bound values into the Field-dump form the parameters
// section of a Query message carries.
package chparam

import "github.com/go-faster/errors"

// ErrMissingParameter reports a `@name` placeholder with no matching
// declared parameter.
var ErrMissingParameter = errors.New("chparam: missing parameter")

// ErrTypeInferenceFailure reports a parameter value whose ClickHouse
// type could not be inferred and that carries no explicit Type.
var ErrTypeInferenceFailure = errors.New("chparam: type inference failure")

// Param is one caller-declared query parameter. Type is optional; when
// empty the wire type is inferred from Value's Go type.
type Param struct {
	Name  string
	Value any
	Type  string
}

func findParam(params []Param, name string) (Param, bool) {
	for _, p := range params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

package chparam

import (
	"regexp"
	"strings"

	"github.com/chnative/ch/proto"
	"github.com/go-faster/errors"
)

// placeholderPattern matches `@@name` (system variable, preserved
// verbatim) and `@name` (parameter reference, rewritten) in one pass;
// Go's regexp has no lookbehind, so both forms share one pattern and
// the callback distinguishes them by the matched prefix.
var placeholderPattern = regexp.MustCompile(`@@?[A-Za-z_][A-Za-z0-9_]*`)

// Rewrite scans query for `@name` placeholders, replacing each with
// `{name:Type}` using params' declared or inferred types, and returns
// the rewritten query plus the wire-ready parameters section. `@@name`
// tokens (system/server variables) are left untouched.
func Rewrite(query string, params []Param) (string, []proto.Parameter, error) {
	var rewriteErr error
	used := make(map[string]bool, len(params))

	out := placeholderPattern.ReplaceAllStringFunc(query, func(tok string) string {
		if rewriteErr != nil {
			return tok
		}
		if strings.HasPrefix(tok, "@@") {
			return tok
		}
		name := tok[1:]
		p, ok := findParam(params, name)
		if !ok {
			rewriteErr = errors.Wrapf(ErrMissingParameter, "%s", name)
			return tok
		}
		typ, err := ResolveType(p)
		if err != nil {
			rewriteErr = err
			return tok
		}
		used[name] = true
		return "{" + name + ":" + typ + "}"
	})
	if rewriteErr != nil {
		return "", nil, rewriteErr
	}

	wire := make([]proto.Parameter, 0, len(used))
	for _, p := range params {
		if !used[p.Name] {
			continue
		}
		dump, err := FieldDump(p.Value)
		if err != nil {
			return "", nil, errors.Wrapf(err, "%s", p.Name)
		}
		wire = append(wire, proto.Parameter{Key: p.Name, Value: dump})
	}
	return out, wire, nil
}

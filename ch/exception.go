package ch

import (
	"github.com/go-faster/errors"

	"github.com/chnative/ch/proto"
)

// Exception is a server-reported query error, possibly chaining nested
// causes.
type Exception = proto.Exception

// IsException reports whether err is, or wraps, a server Exception.
func IsException(err error) bool {
	var exc *Exception
	return errors.As(err, &exc)
}

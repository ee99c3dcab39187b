package proto

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Exception is a server-reported error; any number may be chained via
// Nested, innermost cause last per the wire order.
type Exception struct {
	Code       int32
	Name       string
	Message    string
	StackTrace string
	Nested     *Exception
}

func (e *Exception) Error() string {
	if e == nil {
		return "<nil exception>"
	}
	return fmt.Sprintf("[%d] %s: %s", e.Code, e.Name, e.Message)
}

// DecodeException reads one Exception frame (the discriminator has
// already been consumed) including any nested chain.
func DecodeException(r *Reader) (*Exception, error) {
	e := &Exception{}
	code, err := r.Int32()
	if err != nil {
		return nil, errors.Wrap(err, "code")
	}
	e.Code = code
	if e.Name, err = r.Str(); err != nil {
		return nil, errors.Wrap(err, "name")
	}
	if e.Message, err = r.Str(); err != nil {
		return nil, errors.Wrap(err, "message")
	}
	if e.StackTrace, err = r.Str(); err != nil {
		return nil, errors.Wrap(err, "stack trace")
	}
	hasNested, err := r.Bool()
	if err != nil {
		return nil, errors.Wrap(err, "has nested")
	}
	if hasNested {
		nested, err := DecodeException(r)
		if err != nil {
			return nil, errors.Wrap(err, "nested")
		}
		e.Nested = nested
	}
	return e, nil
}

package chparam

import (
	"net"
	"reflect"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	typeOfDecimal  = reflect.TypeOf(Decimal{})
	typeOfDate     = reflect.TypeOf(Date{})
	typeOfDateTime = reflect.TypeOf(DateTime{})
	typeOfTime     = reflect.TypeOf(time.Time{})
	typeOfUUID     = reflect.TypeOf(uuid.UUID{})
	typeOfIP       = reflect.TypeOf(net.IP{})
)

// ResolveType returns p's declared type verbatim, or infers one from
// p.Value's Go type.
func ResolveType(p Param) (string, error) {
	if p.Type != "" {
		return p.Type, nil
	}
	if p.Value == nil {
		return "", errors.Wrapf(ErrTypeInferenceFailure,
			"%s: nil requires an explicit Nullable(T) declared type", p.Name)
	}
	typ, err := inferGoType(reflect.TypeOf(p.Value))
	if err != nil {
		return "", errors.Wrapf(err, "%s", p.Name)
	}
	return typ, nil
}

func inferGoType(t reflect.Type) (string, error) {
	switch t {
	case typeOfDecimal:
		return "Decimal128(18)", nil
	case typeOfDate:
		return "Date", nil
	case typeOfDateTime:
		return "DateTime", nil
	case typeOfTime:
		return "DateTime64(6)", nil
	case typeOfUUID:
		return "UUID", nil
	case typeOfIP:
		return "IPv6", nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return "Bool", nil
	case reflect.Int8:
		return "Int8", nil
	case reflect.Int16:
		return "Int16", nil
	case reflect.Int32:
		return "Int32", nil
	case reflect.Int, reflect.Int64:
		return "Int64", nil
	case reflect.Uint8:
		return "UInt8", nil
	case reflect.Uint16:
		return "UInt16", nil
	case reflect.Uint32:
		return "UInt32", nil
	case reflect.Uint, reflect.Uint64:
		return "UInt64", nil
	case reflect.Float32:
		return "Float32", nil
	case reflect.Float64:
		return "Float64", nil
	case reflect.String:
		return "String", nil
	case reflect.Slice, reflect.Array:
		elem, err := inferGoType(t.Elem())
		if err != nil {
			return "", err
		}
		return "Array(" + elem + ")", nil
	default:
		return "", errors.Wrapf(ErrTypeInferenceFailure, "unsupported Go type %s", t)
	}
}

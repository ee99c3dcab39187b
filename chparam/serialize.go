package chparam

import (
	"math"
	"net"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// FieldDump renders v in the parameters-section Field-dump form: a
// single-quoted string with `'` and `\` escaped. A nil value renders as
// the bare literal NULL, unquoted.
func FieldDump(v any) (string, error) {
	if v == nil {
		return "NULL", nil
	}
	raw, err := rawText(v)
	if err != nil {
		return "", err
	}
	return "'" + escapeQuote(raw) + "'", nil
}

func escapeQuote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	for _, r := range s {
		switch r {
		case '\'':
			sb.WriteString(`\'`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// rawText produces the unescaped literal text for v, before the single
// outer Field-dump quoting is applied.
func rawText(v any) (string, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case string:
		return x, nil
	case Decimal:
		return x.String(), nil
	case Date:
		return time.Time(x).Format("2006-01-02"), nil
	case DateTime:
		return time.Time(x).Format("2006-01-02 15:04:05"), nil
	case time.Time:
		return x.UTC().Format("2006-01-02 15:04:05.000000"), nil
	case uuid.UUID:
		return x.String(), nil
	case net.IP:
		return x.String(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return formatFloat(rv.Float(), 9), nil
	case reflect.Float64:
		return formatFloat(rv.Float(), 17), nil
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		elems := make([]string, n)
		for i := 0; i < n; i++ {
			elem, err := elementText(rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			elems[i] = elem
		}
		return "[" + strings.Join(elems, ", ") + "]", nil
	default:
		return "", errors.Errorf("chparam: unsupported value type %T", v)
	}
}

// elementText renders one array element as it appears inside the
// bracketed "[e1, e2, …]" literal: strings and textual types are
// re-quoted, numbers and booleans are bare, nested arrays are bracketed
// without an extra quoting layer.
func elementText(v any) (string, error) {
	switch v.(type) {
	case string, Decimal, Date, DateTime, time.Time, uuid.UUID, net.IP:
		raw, err := rawText(v)
		if err != nil {
			return "", err
		}
		return "'" + escapeQuote(raw) + "'", nil
	}
	return rawText(v)
}

func formatFloat(f float64, prec int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(f, 'g', prec, 64)
	}
}

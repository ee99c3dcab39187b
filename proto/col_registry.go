package proto

import (
	"strings"

	"github.com/go-faster/errors"
)

// buildColumn resolves desc's outermost constructor first, then
// recurses into its type arguments to build composite columns.
func buildColumn(desc *TypeDescriptor, opts BuildOptions) (Column, error) {
	base := strings.ToLower(desc.BaseName)
	switch base {
	case "int8":
		return NewColInt8(), nil
	case "int16":
		return NewColInt16(), nil
	case "int32":
		return NewColInt32(), nil
	case "int64":
		return NewColInt64(), nil
	case "int128":
		return NewColInt128(), nil
	case "int256":
		return NewColInt256(), nil
	case "uint8":
		return NewColUInt8(), nil
	case "uint16":
		return NewColUInt16(), nil
	case "uint32":
		return NewColUInt32(), nil
	case "uint64":
		return NewColUInt64(), nil
	case "uint128":
		return NewColUInt128(), nil
	case "uint256":
		return NewColUInt256(), nil
	case "float32":
		return NewColFloat32(), nil
	case "float64":
		return NewColFloat64(), nil
	case "bool", "boolean":
		return NewColBool(), nil
	case "string":
		if opts.Strings == StringLazy {
			return NewColStrLazy(), nil
		}
		return NewColStr(), nil
	case "fixedstring":
		n, ok := desc.IsFixedString()
		if !ok {
			return nil, errors.Wrapf(ErrMalformedType, "FixedString missing width: %s", desc)
		}
		return NewColFixedString(n), nil
	case "uuid":
		return NewColUUID(), nil
	case "ipv4":
		return NewColIPv4(), nil
	case "ipv6":
		return NewColIPv6(), nil
	case "date":
		return NewColDate(), nil
	case "date32":
		return NewColDate32(), nil
	case "datetime":
		return colDateTimeWithZone(desc), nil
	case "datetime64":
		return NewColDateTime64(desc), nil
	case "enum8":
		return NewColEnum8(desc), nil
	case "enum16":
		return NewColEnum16(desc), nil
	case "decimal", "decimal32", "decimal64", "decimal128", "decimal256":
		return buildDecimalColumn(desc)
	case "json":
		return NewColJSON(), nil
	case "nullable":
		inner := desc.Elem()
		if inner == nil {
			return nil, errors.Wrapf(ErrMalformedType, "Nullable missing element: %s", desc)
		}
		innerCol, err := buildColumn(inner, opts)
		if err != nil {
			return nil, err
		}
		return NewColNullable(innerCol), nil
	case "array":
		inner := desc.Elem()
		if inner == nil {
			return nil, errors.Wrapf(ErrMalformedType, "Array missing element: %s", desc)
		}
		innerCol, err := buildColumn(inner, opts)
		if err != nil {
			return nil, err
		}
		return NewColArray(innerCol), nil
	case "map":
		if len(desc.TypeArguments) != 2 {
			return nil, errors.Wrapf(ErrMalformedType, "Map needs 2 type args: %s", desc)
		}
		keys, err := buildColumn(desc.TypeArguments[0], opts)
		if err != nil {
			return nil, err
		}
		values, err := buildColumn(desc.TypeArguments[1], opts)
		if err != nil {
			return nil, err
		}
		return NewColMap(keys, values), nil
	case "tuple":
		elems := make([]Column, len(desc.TypeArguments))
		for i, t := range desc.TypeArguments {
			col, err := buildColumn(t, opts)
			if err != nil {
				return nil, err
			}
			elems[i] = col
		}
		return NewColTuple(elems, desc.FieldNames), nil
	case "nested":
		arrays := make([]Column, len(desc.TypeArguments))
		for i, t := range desc.TypeArguments {
			col, err := buildColumn(t, opts)
			if err != nil {
				return nil, err
			}
			arrays[i] = NewColArray(col)
		}
		return NewColNested(arrays, desc.FieldNames), nil
	case "lowcardinality":
		inner := desc.Elem()
		if inner == nil {
			return nil, errors.Wrapf(ErrMalformedType, "LowCardinality missing element: %s", desc)
		}
		if inner.IsNullable() {
			dictInner := inner.Elem()
			if dictInner == nil {
				return nil, errors.Wrapf(ErrMalformedType, "Nullable missing element: %s", inner)
			}
			dictCol, err := buildColumn(dictInner, opts)
			if err != nil {
				return nil, err
			}
			return NewColLowCardinality(NewColNullable(dictCol), true), nil
		}
		dictCol, err := buildColumn(inner, opts)
		if err != nil {
			return nil, err
		}
		return NewColLowCardinality(dictCol, false), nil
	default:
		return nil, errors.Wrapf(ErrMalformedType, "unsupported type %s", desc)
	}
}

func colDateTimeWithZone(desc *TypeDescriptor) *ColNum[uint32] {
	if len(desc.Parameters) == 0 {
		return NewColDateTime()
	}
	return newColNum[uint32](ColumnType(desc.String()), uint32Codec{})
}

func buildDecimalColumn(desc *TypeDescriptor) (Column, error) {
	precision, _, ok := desc.DecimalPrecisionScale()
	if !ok {
		return nil, errors.Wrapf(ErrMalformedType, "malformed Decimal: %s", desc)
	}
	width := DecimalWidth(precision)
	typ := ColumnType(desc.String())
	switch width {
	case 4:
		return newColNum[int32](typ, int32Codec{}), nil
	case 8:
		return newColNum[int64](typ, int64Codec{}), nil
	case 16:
		return newColRawBytes(typ, 16), nil
	default:
		return newColRawBytes(typ, 32), nil
	}
}

// buildSkipper mirrors buildColumn's dispatch but returns an
// allocation-free skip-only function that never materialises values.
func buildSkipper(desc *TypeDescriptor) (Skipper, error) {
	base := strings.ToLower(desc.BaseName)
	switch base {
	case "int8", "uint8", "bool", "boolean", "enum8":
		return skipFixedWidth(1), nil
	case "int16", "uint16", "enum16":
		return skipFixedWidth(2), nil
	case "int32", "uint32", "float32", "date32", "datetime", "ipv4":
		return skipFixedWidth(4), nil
	case "int64", "uint64", "float64", "datetime64":
		return skipFixedWidth(8), nil
	case "date":
		return skipFixedWidth(2), nil
	case "int128", "uint128", "uuid", "ipv6":
		return skipFixedWidth(16), nil
	case "int256", "uint256":
		return skipFixedWidth(32), nil
	case "decimal", "decimal32", "decimal64", "decimal128", "decimal256":
		precision, _, ok := desc.DecimalPrecisionScale()
		if !ok {
			return nil, errors.Wrapf(ErrMalformedType, "malformed Decimal: %s", desc)
		}
		return skipFixedWidth(DecimalWidth(precision)), nil
	case "string":
		return skipString, nil
	case "fixedstring":
		n, ok := desc.IsFixedString()
		if !ok {
			return nil, errors.Wrapf(ErrMalformedType, "FixedString missing width: %s", desc)
		}
		return skipFixedString(n), nil
	case "json":
		return skipJSON, nil
	case "nullable":
		inner := desc.Elem()
		if inner == nil {
			return nil, errors.Wrapf(ErrMalformedType, "Nullable missing element: %s", desc)
		}
		innerSkip, err := buildSkipper(inner)
		if err != nil {
			return nil, err
		}
		return skipNullable(innerSkip), nil
	case "array":
		inner := desc.Elem()
		if inner == nil {
			return nil, errors.Wrapf(ErrMalformedType, "Array missing element: %s", desc)
		}
		innerSkip, err := buildSkipper(inner)
		if err != nil {
			return nil, err
		}
		return skipArray(innerSkip), nil
	case "map":
		if len(desc.TypeArguments) != 2 {
			return nil, errors.Wrapf(ErrMalformedType, "Map needs 2 type args: %s", desc)
		}
		keySkip, err := buildSkipper(desc.TypeArguments[0])
		if err != nil {
			return nil, err
		}
		valSkip, err := buildSkipper(desc.TypeArguments[1])
		if err != nil {
			return nil, err
		}
		return skipMap(keySkip, valSkip), nil
	case "tuple":
		skips := make([]Skipper, len(desc.TypeArguments))
		for i, t := range desc.TypeArguments {
			s, err := buildSkipper(t)
			if err != nil {
				return nil, err
			}
			skips[i] = s
		}
		return skipTuple(skips), nil
	case "nested":
		skips := make([]Skipper, len(desc.TypeArguments))
		for i, t := range desc.TypeArguments {
			s, err := buildSkipper(t)
			if err != nil {
				return nil, err
			}
			skips[i] = skipArray(s)
		}
		return skipTuple(skips), nil
	case "lowcardinality":
		inner := desc.Elem()
		if inner == nil {
			return nil, errors.Wrapf(ErrMalformedType, "LowCardinality missing element: %s", desc)
		}
		dictDesc := inner
		if inner.IsNullable() {
			dictDesc = inner.Elem()
			if dictDesc == nil {
				return nil, errors.Wrapf(ErrMalformedType, "Nullable missing element: %s", inner)
			}
			innerSkip, err := buildSkipper(dictDesc)
			if err != nil {
				return nil, err
			}
			return skipLowCardinality(skipNullable(innerSkip)), nil
		}
		innerSkip, err := buildSkipper(dictDesc)
		if err != nil {
			return nil, err
		}
		return skipLowCardinality(innerSkip), nil
	default:
		return nil, errors.Wrapf(ErrMalformedType, "unsupported type %s", desc)
	}
}

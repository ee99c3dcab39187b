package proto

import "strings"

// ColumnType is the wire-level type string as it appears in a Data
// message or a TableColumns payload, e.g. "Array(Nullable(String))".
// It is the thin, string-shaped counterpart to TypeDescriptor: block and
// message encoding carry ColumnType verbatim, while codec dispatch
// parses it into a TypeDescriptor once per column.
type ColumnType string

// Common base type names.
const (
	ColumnTypeNone     ColumnType = ""
	ColumnTypeInt8     ColumnType = "Int8"
	ColumnTypeInt16    ColumnType = "Int16"
	ColumnTypeInt32    ColumnType = "Int32"
	ColumnTypeInt64    ColumnType = "Int64"
	ColumnTypeInt128   ColumnType = "Int128"
	ColumnTypeInt256   ColumnType = "Int256"
	ColumnTypeUInt8    ColumnType = "UInt8"
	ColumnTypeUInt16   ColumnType = "UInt16"
	ColumnTypeUInt32   ColumnType = "UInt32"
	ColumnTypeUInt64   ColumnType = "UInt64"
	ColumnTypeUInt128  ColumnType = "UInt128"
	ColumnTypeUInt256  ColumnType = "UInt256"
	ColumnTypeFloat32  ColumnType = "Float32"
	ColumnTypeFloat64  ColumnType = "Float64"
	ColumnTypeBool     ColumnType = "Bool"
	ColumnTypeString   ColumnType = "String"
	ColumnTypeFixedString ColumnType = "FixedString"
	ColumnTypeUUID     ColumnType = "UUID"
	ColumnTypeIPv4     ColumnType = "IPv4"
	ColumnTypeIPv6     ColumnType = "IPv6"
	ColumnTypeDate     ColumnType = "Date"
	ColumnTypeDate32   ColumnType = "Date32"
	ColumnTypeDateTime ColumnType = "DateTime"
	ColumnTypeDateTime64 ColumnType = "DateTime64"
	ColumnTypeArray    ColumnType = "Array"
	ColumnTypeMap      ColumnType = "Map"
	ColumnTypeTuple    ColumnType = "Tuple"
	ColumnTypeNested   ColumnType = "Nested"
	ColumnTypeNullable ColumnType = "Nullable"
	ColumnTypeLowCardinality ColumnType = "LowCardinality"
	ColumnTypeJSON     ColumnType = "JSON"
	ColumnTypeEnum8    ColumnType = "Enum8"
	ColumnTypeEnum16   ColumnType = "Enum16"
)

// With wraps the receiver as a parameterised type, e.g.
// ColumnTypeFixedString.With("128") == "FixedString(128)".
func (c ColumnType) With(params ...string) ColumnType {
	return ColumnType(string(c) + "(" + strings.Join(params, ", ") + ")")
}

// Array wraps the receiver as Array(c).
func (c ColumnType) Array() ColumnType {
	return ColumnTypeArray.Sub(c)
}

// Sub wraps elem as the sole argument of the receiver base type, e.g.
// ColumnTypeArray.Sub(ColumnTypeInt16) == "Array(Int16)".
func (c ColumnType) Sub(elem ColumnType) ColumnType {
	return ColumnType(string(c) + "(" + string(elem) + ")")
}

// Base returns the outermost constructor name, ignoring parameters.
func (c ColumnType) Base() string {
	if i := strings.IndexByte(string(c), '('); i >= 0 {
		return strings.TrimSpace(string(c)[:i])
	}
	return string(c)
}

// IsArray reports whether c's base type is Array.
func (c ColumnType) IsArray() bool { return strings.EqualFold(c.Base(), "Array") }

// Elem returns the inner type of a single-argument parameterised type
// (Array/Nullable/LowCardinality), or ColumnTypeNone if c isn't one.
func (c ColumnType) Elem() ColumnType {
	d, err := ParseType(string(c))
	if err != nil || len(d.TypeArguments) != 1 {
		return ColumnTypeNone
	}
	return ColumnType(d.TypeArguments[0].String())
}

// Conflicts reports whether c and other name incompatible wire layouts.
// Two types are compatible if their parsed descriptors have the same
// base name and the same type-argument shape; Enum vs its backing
// integer type, and DateTime with differing timezones, are treated as
// compatible (the wire layout is identical).
func (c ColumnType) Conflicts(other ColumnType) bool {
	if c == other {
		return false
	}
	// A timezone argument need not parse as type syntax (e.g.
	// DateTime(Europe/Moscow)), so DateTime pairs are settled by base name.
	if strings.EqualFold(c.Base(), "DateTime") && strings.EqualFold(other.Base(), "DateTime") {
		return false
	}
	da, erra := ParseType(string(c))
	db, errb := ParseType(string(other))
	if erra != nil || errb != nil {
		return string(c) != string(other)
	}
	return descriptorConflicts(da, db)
}

func descriptorConflicts(a, b *TypeDescriptor) bool {
	// Enum vs its backing integer type share a wire layout.
	if a.IsEnum() && strings.EqualFold(b.BaseName, "Int8") && strings.EqualFold(a.BaseName, "Enum8") {
		return false
	}
	if a.IsEnum() && strings.EqualFold(b.BaseName, "Int16") && strings.EqualFold(a.BaseName, "Enum16") {
		return false
	}
	if b.IsEnum() && !a.IsEnum() {
		return descriptorConflicts(b, a)
	}
	// Different Decimal spellings share a wire layout when their mantissa
	// widths agree, e.g. Decimal256 and Decimal(76, 38).
	if a.IsDecimal() && b.IsDecimal() && !strings.EqualFold(a.BaseName, b.BaseName) {
		width := func(d *TypeDescriptor) int {
			if len(d.Parameters) == 0 {
				d = &TypeDescriptor{BaseName: d.BaseName, Parameters: []string{"0"}}
			}
			p, _, ok := d.DecimalPrecisionScale()
			if !ok {
				return 0
			}
			return DecimalWidth(p)
		}
		wa, wb := width(a), width(b)
		return wa == 0 || wb == 0 || wa != wb
	}
	if !strings.EqualFold(a.BaseName, b.BaseName) {
		return true
	}
	// An unparameterised Enum/Decimal matches any parameterisation of
	// the same base (the caller hasn't pinned the literal values yet).
	if a.IsEnum() && (len(a.Parameters) == 0 || len(b.Parameters) == 0) {
		return false
	}
	if a.IsDecimal() && (len(a.Parameters) == 0 || len(b.Parameters) == 0) &&
		(len(a.TypeArguments) == 0 && len(b.TypeArguments) == 0) {
		return false
	}
	if strings.EqualFold(a.BaseName, "DateTime") {
		return false // timezone difference does not change the wire layout
	}
	if len(a.TypeArguments) != len(b.TypeArguments) {
		return true
	}
	for i := range a.TypeArguments {
		if descriptorConflicts(a.TypeArguments[i], b.TypeArguments[i]) {
			return true
		}
	}
	return false
}

package proto

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// ErrMalformedType reports a ClickHouse type string the parser could not
// make sense of: an unclosed parenthesis, a mixed named/positional
// argument list, or similar.
var ErrMalformedType = errors.New("proto: malformed type string")

// TypeDescriptor is the parsed AST of a ClickHouse type string: a base
// name plus an ordered list of inner type arguments, an ordered list of
// opaque lexical parameters (integers, quoted strings, enum bindings),
// and an optional parallel list of field names for Tuple/Nested.
//
// A descriptor is immutable once parsed and safe to share across
// goroutines.
type TypeDescriptor struct {
	BaseName      string
	TypeArguments []*TypeDescriptor
	Parameters    []string
	FieldNames    []string // len == len(TypeArguments), or empty
}

// ParseType parses a ClickHouse type string into its descriptor AST.
func ParseType(s string) (*TypeDescriptor, error) {
	p := &typeParser{src: s}
	d, err := p.parseType()
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedType, "%q: %v", s, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, errors.Wrapf(ErrMalformedType, "%q: trailing input at %d", s, p.pos)
	}
	return d, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func (p *typeParser) parseIdent() (string, bool) {
	start := p.pos
	if p.pos >= len(p.src) || !isIdentStart(p.src[p.pos]) {
		return "", false
	}
	p.pos++
	for p.pos < len(p.src) && isIdentCont(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos], true
}

// parseType parses `IDENT ( "(" args ")" )?`.
func (p *typeParser) parseType() (*TypeDescriptor, error) {
	p.skipSpace()
	name, ok := p.parseIdent()
	if !ok {
		return nil, errors.Errorf("expected identifier at %d", p.pos)
	}
	d := &TypeDescriptor{BaseName: name}
	p.skipSpace()
	if p.peek() != '(' {
		return d, nil
	}
	p.pos++ // consume '('

	named := strings.EqualFold(name, "Tuple") || strings.EqualFold(name, "Nested")
	var sawNamed, sawPositional bool

	for {
		p.skipSpace()
		if p.peek() == ')' {
			p.pos++
			break
		}
		arg, fieldName, isType, err := p.parseArg(named)
		if err != nil {
			return nil, err
		}
		if isType {
			d.TypeArguments = append(d.TypeArguments, arg.typ)
			if fieldName != "" {
				sawNamed = true
				d.FieldNames = append(d.FieldNames, fieldName)
			} else {
				sawPositional = true
				d.FieldNames = append(d.FieldNames, "")
			}
		} else {
			d.Parameters = append(d.Parameters, arg.lit)
		}
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			continue
		case ')':
			p.pos++
		default:
			return nil, errors.Errorf("expected ',' or ')' at %d", p.pos)
		}
		break
	}

	if named && sawNamed && sawPositional {
		return nil, errors.New("mixed named and positional Tuple/Nested arguments")
	}
	if !sawNamed {
		d.FieldNames = nil
	}
	return d, nil
}

type parsedArg struct {
	typ *TypeDescriptor
	lit string
}

// parseArg parses one `args` element:
//
//	( IDENT SP )? type        // named field form, only tried for Tuple/Nested
//	QUOTED ("=" SIGNED_INT)?  // enum binding
//	SIGNED_INT
//	QUOTED                    // timezone etc.
func (p *typeParser) parseArg(allowNamed bool) (arg parsedArg, fieldName string, isType bool, err error) {
	p.skipSpace()
	switch {
	case p.peek() == '\'':
		lit, err := p.parseQuoted()
		if err != nil {
			return arg, "", false, err
		}
		p.skipSpace()
		if p.peek() == '=' {
			p.pos++
			p.skipSpace()
			num, ok := p.parseSignedInt()
			if !ok {
				return arg, "", false, errors.Errorf("expected integer after '=' at %d", p.pos)
			}
			return parsedArg{lit: lit + "=" + num}, "", false, nil
		}
		return parsedArg{lit: lit}, "", false, nil
	case p.peek() == '-' || (p.peek() >= '0' && p.peek() <= '9'):
		num, ok := p.parseSignedInt()
		if !ok {
			return arg, "", false, errors.Errorf("expected integer at %d", p.pos)
		}
		return parsedArg{lit: num}, "", false, nil
	case isIdentStart(p.peek()):
		if allowNamed {
			save := p.pos
			name, _ := p.parseIdent()
			// Named field form requires whitespace then another type.
			spaceSeen := false
			for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
				p.pos++
				spaceSeen = true
			}
			if spaceSeen && p.pos < len(p.src) && isIdentStart(p.src[p.pos]) {
				typ, err := p.parseType()
				if err != nil {
					return arg, "", false, err
				}
				return parsedArg{typ: typ}, name, true, nil
			}
			p.pos = save
		}
		typ, err := p.parseType()
		if err != nil {
			return arg, "", false, err
		}
		return parsedArg{typ: typ}, "", true, nil
	default:
		return arg, "", false, errors.Errorf("unexpected character %q at %d", p.peek(), p.pos)
	}
}

func (p *typeParser) parseSignedInt() (string, bool) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	digitsStart := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == digitsStart {
		p.pos = start
		return "", false
	}
	return p.src[start:p.pos], true
}

// parseQuoted parses a single-quoted string with '' doubling or \'
// escaping.
func (p *typeParser) parseQuoted() (string, error) {
	if p.peek() != '\'' {
		return "", errors.Errorf("expected quote at %d", p.pos)
	}
	p.pos++
	var sb strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", errors.New("unterminated quoted string")
		}
		c := p.src[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '\'':
			sb.WriteByte('\'')
			p.pos += 2
		case c == '\'' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '\'':
			sb.WriteByte('\'')
			p.pos += 2
		case c == '\'':
			p.pos++
			return sb.String(), nil
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
}

// String reconstructs the type string this descriptor represents.
func (d *TypeDescriptor) String() string {
	if d == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(d.BaseName)
	hasArgs := len(d.TypeArguments) > 0 || len(d.Parameters) > 0
	if !hasArgs {
		return sb.String()
	}
	sb.WriteByte('(')
	first := true
	for i, t := range d.TypeArguments {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		if i < len(d.FieldNames) && d.FieldNames[i] != "" {
			sb.WriteString(d.FieldNames[i])
			sb.WriteByte(' ')
		}
		sb.WriteString(t.String())
	}
	for _, p := range d.Parameters {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(p)
	}
	sb.WriteByte(')')
	return sb.String()
}

// IsNullable reports whether the descriptor is Nullable(T).
func (d *TypeDescriptor) IsNullable() bool { return strings.EqualFold(d.BaseName, "Nullable") }

// IsArray reports whether the descriptor is Array(T).
func (d *TypeDescriptor) IsArray() bool { return strings.EqualFold(d.BaseName, "Array") }

// IsMap reports whether the descriptor is Map(K,V).
func (d *TypeDescriptor) IsMap() bool { return strings.EqualFold(d.BaseName, "Map") }

// IsTuple reports whether the descriptor is Tuple(...).
func (d *TypeDescriptor) IsTuple() bool { return strings.EqualFold(d.BaseName, "Tuple") }

// IsNested reports whether the descriptor is Nested(...).
func (d *TypeDescriptor) IsNested() bool { return strings.EqualFold(d.BaseName, "Nested") }

// IsLowCardinality reports whether the descriptor is LowCardinality(T).
func (d *TypeDescriptor) IsLowCardinality() bool {
	return strings.EqualFold(d.BaseName, "LowCardinality")
}

// IsDecimal reports whether the descriptor names any Decimal variant.
func (d *TypeDescriptor) IsDecimal() bool {
	return strings.HasPrefix(strings.ToLower(d.BaseName), "decimal")
}

// IsEnum reports whether the descriptor names Enum8 or Enum16.
func (d *TypeDescriptor) IsEnum() bool {
	b := strings.ToLower(d.BaseName)
	return b == "enum8" || b == "enum16"
}

// IsJSON reports whether the descriptor is JSON (or Object('json')).
func (d *TypeDescriptor) IsJSON() bool {
	return strings.EqualFold(d.BaseName, "JSON") ||
		(strings.EqualFold(d.BaseName, "Object") && len(d.Parameters) == 1 && d.Parameters[0] == "json")
}

// IsFixedString reports whether the descriptor is FixedString(n), and if
// so returns n.
func (d *TypeDescriptor) IsFixedString() (n int, ok bool) {
	if !strings.EqualFold(d.BaseName, "FixedString") || len(d.Parameters) != 1 {
		return 0, false
	}
	v, err := strconv.Atoi(d.Parameters[0])
	if err != nil {
		return 0, false
	}
	return v, true
}

// Elem returns the sole inner type argument (Array/Nullable/
// LowCardinality element type), or nil if none exists.
func (d *TypeDescriptor) Elem() *TypeDescriptor {
	if len(d.TypeArguments) != 1 {
		return nil
	}
	return d.TypeArguments[0]
}

// DateTime64Precision returns the scale parameter of a DateTime64(p[,tz])
// descriptor.
func (d *TypeDescriptor) DateTime64Precision() (int, bool) {
	if !strings.EqualFold(d.BaseName, "DateTime64") || len(d.Parameters) == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(d.Parameters[0])
	if err != nil {
		return 0, false
	}
	return v, true
}

// DateTime64Zone returns the optional timezone parameter of a
// DateTime64(p,tz) descriptor, carried as descriptor metadata rather
// than folded into the element type.
func (d *TypeDescriptor) DateTime64Zone() (string, bool) {
	if !strings.EqualFold(d.BaseName, "DateTime64") || len(d.Parameters) < 2 {
		return "", false
	}
	return d.Parameters[1], true
}

// DecimalPrecisionScale returns (precision, scale) for any Decimal
// variant: DecimalN carries only a scale parameter (N fixes precision);
// plain Decimal(P,S) carries both.
func (d *TypeDescriptor) DecimalPrecisionScale() (precision, scale int, ok bool) {
	if !d.IsDecimal() {
		return 0, 0, false
	}
	lower := strings.ToLower(d.BaseName)
	switch lower {
	case "decimal32":
		precision = 9
	case "decimal64":
		precision = 18
	case "decimal128":
		precision = 38
	case "decimal256":
		precision = 76
	case "decimal":
		if len(d.Parameters) != 2 {
			return 0, 0, false
		}
		p, err1 := strconv.Atoi(d.Parameters[0])
		s, err2 := strconv.Atoi(d.Parameters[1])
		if err1 != nil || err2 != nil {
			return 0, 0, false
		}
		return p, s, true
	default:
		return 0, 0, false
	}
	if len(d.Parameters) != 1 {
		return 0, 0, false
	}
	s, err := strconv.Atoi(d.Parameters[0])
	if err != nil {
		return 0, 0, false
	}
	return precision, s, true
}

// DecimalWidth classifies the mantissa integer width (in bytes) for the
// descriptor's precision.
func DecimalWidth(precision int) int {
	switch {
	case precision <= 9:
		return 4
	case precision <= 18:
		return 8
	case precision <= 38:
		return 16
	default:
		return 32
	}
}

package ch

import (
	"context"
	"io"
	"reflect"
	"strings"

	"github.com/go-faster/errors"

	"github.com/chnative/ch/proto"
)

// ColumnSpec names one column of a table targeted by an Inserter, by its
// ClickHouse type string (e.g. "UInt64", "Nullable(String)").
type ColumnSpec struct {
	Name string
	Type string
}

// RowEncoder extracts one row's column values, in the same order as the
// Inserter's ColumnSpec list, as a slice of dynamically-typed values
// matching each column's Go representation.
type RowEncoder[T any] func(row T) []any

// Inserter batches rows of T into Data blocks and streams them to the
// server in a single INSERT query, using Client.Do's OnInput hook rather
// than one round trip per batch.
type Inserter[T any] struct {
	client    *Client
	table     string
	columns   []ColumnSpec
	encode    RowEncoder[T]
	batchSize int
}

// NewInserter builds an Inserter for table, with columns in the order
// they should appear in the generated INSERT statement. batchSize caps
// the row count of each Data block; it is clamped to at least 1.
func NewInserter[T any](client *Client, table string, columns []ColumnSpec, encode RowEncoder[T], batchSize int) *Inserter[T] {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Inserter[T]{client: client, table: table, columns: columns, encode: encode, batchSize: batchSize}
}

// NewReflectiveInserter builds an Inserter whose RowEncoder is derived
// from T's struct tags: a field tagged `ch:"col_name"` (or, absent a
// tag, a field whose name case-insensitively matches the column name)
// supplies that column's value.
func NewReflectiveInserter[T any](client *Client, table string, columns []ColumnSpec, batchSize int) (*Inserter[T], error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t.Kind() != reflect.Struct {
		return nil, errors.Errorf("ch: reflective inserter requires a struct type, got %s", t)
	}
	fieldIndex := make(map[string]int, t.NumField())
	fallbackIndex := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name := f.Tag.Get("ch"); name != "" {
			fieldIndex[name] = i
			continue
		}
		fallbackIndex[strings.ToLower(f.Name)] = i
	}
	idxs := make([]int, len(columns))
	for i, col := range columns {
		idx, ok := fieldIndex[col.Name]
		if !ok {
			idx, ok = fallbackIndex[strings.ToLower(col.Name)]
		}
		if !ok {
			return nil, errors.Errorf("ch: no field tagged for column %q on %s", col.Name, t)
		}
		idxs[i] = idx
	}
	encode := func(row T) []any {
		rv := reflect.ValueOf(row)
		out := make([]any, len(idxs))
		for i, idx := range idxs {
			out[i] = rv.Field(idx).Interface()
		}
		return out
	}
	return NewInserter(client, table, columns, encode, batchSize), nil
}

func (ins *Inserter[T]) buildBlock(rows []T) (*proto.Block, error) {
	cols := make([]proto.BlockColumn, len(ins.columns))
	for i, spec := range ins.columns {
		desc, err := proto.ParseType(spec.Type)
		if err != nil {
			return nil, newOpError(KindMalformedType, err)
		}
		col, err := proto.NewColumn(desc, proto.BuildOptions{})
		if err != nil {
			return nil, newOpError(KindMalformedType, err)
		}
		cols[i] = proto.BlockColumn{Name: spec.Name, Type: proto.ColumnType(spec.Type), Data: col}
	}
	for _, row := range rows {
		values := ins.encode(row)
		if len(values) != len(cols) {
			return nil, errors.Errorf("ch: row encoder returned %d values, want %d", len(values), len(cols))
		}
		for i, v := range values {
			if err := appendValue(cols[i].Data, v); err != nil {
				return nil, newOpError(KindUnsupportedBulkInsertColumn, errors.Wrapf(err, "column %q", cols[i].Name))
			}
		}
	}
	return &proto.Block{Info: proto.DefaultBlockInfo, Columns: cols}, nil
}

func (ins *Inserter[T]) insertBody() string {
	body := "INSERT INTO " + ins.table + " ("
	for i, c := range ins.columns {
		if i > 0 {
			body += ", "
		}
		body += c.Name
	}
	body += ") VALUES"
	return body
}

// validateSchema checks that the server's schema-declaration block for
// this INSERT carries every column ins is about to write; a caller
// whose ColumnSpec list names a column the server doesn't know about
// would otherwise fail much later with a confusing wire error once the
// mismatched block actually reaches the server.
func (ins *Inserter[T]) validateSchema(schema *proto.Block) error {
	for _, spec := range ins.columns {
		col := schema.ColumnByName(spec.Name)
		if col == nil {
			return newOpError(KindUnsupportedBulkInsertColumn,
				errors.Errorf("ch: table %s has no column %q", ins.table, spec.Name))
		}
		if proto.ColumnType(spec.Type).Conflicts(col.Type) {
			return newOpError(KindUnsupportedBulkInsertColumn,
				errors.Errorf("ch: column %q is %s on the server, not %s", spec.Name, col.Type, spec.Type))
		}
	}
	return nil
}

// Insert streams rows to the server as one or more Data blocks of up to
// batchSize rows each, within a single query. Per the native protocol's
// INSERT handshake, the first thing sent after the query text is an
// empty probe block; the server answers with a Data block declaring the
// target table's schema (or an Exception, which Insert surfaces as-is)
// before any row data is written.
func (ins *Inserter[T]) Insert(ctx context.Context, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	pos := 0
	nextBlock := func() (*proto.Block, error) {
		if pos >= len(rows) {
			return nil, io.EOF
		}
		end := pos + ins.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[pos:end]
		pos = end
		return ins.buildBlock(batch)
	}

	schemaCh := make(chan *proto.Block, 1)
	awaitingSchema := true
	onInput := func(ctx context.Context) (*proto.Block, error) {
		if awaitingSchema {
			awaitingSchema = false
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case schema := <-schemaCh:
				if err := ins.validateSchema(schema); err != nil {
					return nil, err
				}
			}
		}
		return nextBlock()
	}

	q := Query{
		Body:     ins.insertBody(),
		Input:    &proto.Block{Info: proto.DefaultBlockInfo},
		schemaCh: schemaCh,
		OnInput:  onInput,
	}
	return ins.client.Do(ctx, q)
}

// appendValue appends v to col, dispatching on col's concrete type. It
// covers the ColNum-backed scalars (integers up to 64 bits, floats, Bool,
// Date/DateTime/DateTime64, Enum, Decimal32/64), String, FixedString,
// Nullable and Array of those. Every other column (128/256-bit integers
// and decimals, UUID, IPv4, IPv6, JSON, Map, Tuple, LowCardinality)
// fails with ErrUnsupportedBulkInsertColumn; such data is sent by
// building the proto.Block directly and passing it to Client.Do as
// Query.Input.
func appendValue(col proto.Column, v any) error {
	switch c := col.(type) {
	case *proto.ColNum[int8]:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		c.Append(int8(n))
	case *proto.ColNum[uint8]:
		n, err := toUint64(v)
		if err != nil {
			return err
		}
		c.Append(uint8(n))
	case *proto.ColNum[int16]:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		c.Append(int16(n))
	case *proto.ColNum[uint16]:
		n, err := toUint64(v)
		if err != nil {
			return err
		}
		c.Append(uint16(n))
	case *proto.ColNum[int32]:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		c.Append(int32(n))
	case *proto.ColNum[uint32]:
		n, err := toUint64(v)
		if err != nil {
			return err
		}
		c.Append(uint32(n))
	case *proto.ColNum[int64]:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		c.Append(n)
	case *proto.ColNum[uint64]:
		n, err := toUint64(v)
		if err != nil {
			return err
		}
		c.Append(n)
	case *proto.ColNum[float32]:
		f, ok := v.(float32)
		if !ok {
			return errors.Errorf("expected float32, got %T", v)
		}
		c.Append(f)
	case *proto.ColNum[float64]:
		f, ok := v.(float64)
		if !ok {
			return errors.Errorf("expected float64, got %T", v)
		}
		c.Append(f)
	case *proto.ColNum[bool]:
		b, ok := v.(bool)
		if !ok {
			return errors.Errorf("expected bool, got %T", v)
		}
		c.Append(b)
	case *proto.ColStr:
		s, ok := v.(string)
		if !ok {
			return errors.Errorf("expected string, got %T", v)
		}
		c.Append(s)
	case *proto.ColFixedString:
		switch x := v.(type) {
		case string:
			c.Append([]byte(x))
		case []byte:
			c.Append(x)
		default:
			return errors.Errorf("expected string or []byte, got %T", v)
		}
	case *proto.ColNullable:
		if v == nil {
			c.AppendNull()
			return nil
		}
		if err := appendValue(c.Inner, v); err != nil {
			return err
		}
		c.AppendPresent()
	case *proto.ColArray:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return errors.Errorf("expected slice for Array column, got %T", v)
		}
		n := rv.Len()
		for i := 0; i < n; i++ {
			if err := appendValue(c.Inner, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		c.AppendOffset(n)
	default:
		return errors.Wrapf(ErrUnsupportedBulkInsertColumn, "%T", col)
	}
	return nil
}

func toInt64(v any) (int64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	default:
		return 0, errors.Errorf("expected integer, got %T", v)
	}
}

func toUint64(v any) (uint64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(rv.Int()), nil
	default:
		return 0, errors.Errorf("expected integer, got %T", v)
	}
}

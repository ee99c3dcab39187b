package proto

import (
	"encoding/json"

	"github.com/go-faster/errors"
)

// ErrUnsupportedJsonSerialization reports a JSON column using the
// server's object serialisation (version 0 or 3), which cannot be
// reliably skipped or materialised without replicating the server's
// internal column-oriented object format.
var ErrUnsupportedJsonSerialization = errors.New(
	"proto: unsupported JSON object serialization, request string serialization via output_format_native_use_flattened_dynamic_and_fixed_string or the input_format_binary_read_json_as_string setting",
)

const jsonStringSerializationVersion = 1

// ColJSON holds JSON column values in version-1 (string) serialisation:
// each row is a raw JSON document, parsed lazily via Parse.
type ColJSON struct {
	Data []string
}

func NewColJSON() *ColJSON { return &ColJSON{} }

func (c *ColJSON) Type() ColumnType { return ColumnTypeJSON }
func (c *ColJSON) Rows() int        { return len(c.Data) }
func (c *ColJSON) Reset()           { c.Data = c.Data[:0] }
func (c *ColJSON) Row(i int) string { return c.Data[i] }
func (c *ColJSON) Append(v string)  { c.Data = append(c.Data, v) }
func (c *ColJSON) AppendZero()      { c.Data = append(c.Data, "null") }

// Parse decodes row i into an arbitrary Go value (map[string]any,
// []any, or a scalar) via encoding/json.
func (c *ColJSON) Parse(i int, v any) error {
	return json.Unmarshal([]byte(c.Data[i]), v)
}

func (c *ColJSON) EncodeColumn(b *Buffer) {
	b.PutUInt64(jsonStringSerializationVersion)
	for _, s := range c.Data {
		b.PutString(s)
	}
}

func (c *ColJSON) DecodeColumn(r *Reader, rows int) error {
	if rows == 0 {
		return nil
	}
	version, err := r.UInt64()
	if err != nil {
		return errors.Wrap(err, "JSON version")
	}
	if version != jsonStringSerializationVersion {
		return errors.Wrapf(ErrUnsupportedJsonSerialization, "version %d", version)
	}
	if cap(c.Data) < rows {
		c.Data = make([]string, 0, rows)
	}
	for i := 0; i < rows; i++ {
		s, err := r.Str()
		if err != nil {
			return errors.Wrapf(err, "JSON[%d]", i)
		}
		c.Data = append(c.Data, s)
	}
	return nil
}

func (c *ColJSON) WriteColumn(w *Writer) error { return WriteColumn(w, c) }

// skipJSON advances past a string-serialised JSON column; an
// object-serialised one fails outright since its shape can't be skipped
// without understanding the server's object format.
func skipJSON(r *Reader, rows int) error {
	if rows == 0 {
		return nil
	}
	version, err := r.UInt64()
	if err != nil {
		return errors.Wrap(err, "JSON version")
	}
	if version != jsonStringSerializationVersion {
		return errors.Wrapf(ErrUnsupportedJsonSerialization, "version %d", version)
	}
	return skipString(r, rows)
}

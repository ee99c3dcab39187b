package proto

import "github.com/go-faster/errors"

// Column is the uniform interface every column codec implements: a
// homogeneous, length-N container for one wire type, capable of decoding
// itself from a Reader, encoding itself into a Buffer, and reporting its
// own wire type string. Disposable columns (lazy strings) additionally
// implement Releaser.
type Column interface {
	// Type reports the column's wire type string.
	Type() ColumnType
	// Rows reports the column's row count.
	Rows() int
	// Reset truncates the column to zero rows for reuse.
	Reset()
	// DecodeColumn reads exactly rows values from r.
	DecodeColumn(r *Reader, rows int) error
	// EncodeColumn appends the column's wire payload to b.
	EncodeColumn(b *Buffer)
}

// Releaser is implemented by columns holding pooled storage (lazy
// strings) that must be returned on disposal.
type Releaser interface {
	Release()
}

// ColumnOf additionally exposes typed row access.
type ColumnOf[T any] interface {
	Column
	Row(i int) T
	Append(v T)
}

// WriteColumn is the common EncodeColumn-then-flush path used by every
// column's WriteColumn method: encode into the writer's scratch buffer
// and flush immediately. Kept as a free function so each generated/typed
// column can embed a one-line WriteColumn without duplicating the flush
// dance.
func WriteColumn(w *Writer, c Column) error {
	var err error
	w.ChainBuffer(func(b *Buffer) {
		c.EncodeColumn(b)
	})
	if _, ferr := w.Flush(); ferr != nil {
		err = ferr
	}
	return err
}

// ErrShortRead names a column payload that ends before rows values have
// been read. The decoders in this package do not return it: a truncated
// payload surfaces from Reader as ErrMalformedWire or io.EOF depending on
// where the truncation occurs.
var ErrShortRead = errors.New("proto: short read decoding column")

// Skipper advances a Reader's cursor past one column's payload for rows
// rows, without materialising values, and without depending on payload
// contents beyond what's needed to find the next column.
type Skipper func(r *Reader, rows int) error

// StringMode selects how String columns materialise their rows.
type StringMode int

const (
	// StringEager decodes each row into a heap string up front.
	StringEager StringMode = iota
	// StringLazy copies row runs into one pooled buffer and decodes a
	// row's string only when a caller accesses it.
	StringLazy
)

// BuildOptions configures column construction; the zero value selects
// eager string materialisation.
type BuildOptions struct {
	Strings StringMode
}

// NewColumn constructs a zero-value, empty Column matching desc, wired
// to decode/encode the wire layout desc describes. Composite types
// resolve their element columns recursively.
func NewColumn(desc *TypeDescriptor, opts BuildOptions) (Column, error) {
	return buildColumn(desc, opts)
}

// NewSkipper returns the Skipper for desc.
func NewSkipper(desc *TypeDescriptor) (Skipper, error) {
	return buildSkipper(desc)
}

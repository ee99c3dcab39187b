package proto

import (
	"io"

	"github.com/go-faster/errors"
)

// Writer accumulates wire-format bytes into a reusable Buffer and flushes
// them to the transport. Only the message layer touches the transport
// directly; codecs only ever append into the Buffer handed to them.
type Writer struct {
	w   io.Writer
	buf *Buffer
}

// NewWriter wraps w for wire-level encoding, reusing buf as scratch space
// across Flush calls.
func NewWriter(w io.Writer, buf *Buffer) *Writer {
	if buf == nil {
		buf = new(Buffer)
	}
	return &Writer{w: w, buf: buf}
}

// ChainBuffer lets fn append directly into the writer's pooled Buffer
// without an intermediate allocation.
func (w *Writer) ChainBuffer(fn func(b *Buffer)) {
	fn(w.buf)
}

// Buf exposes the writer's scratch buffer for direct encoding calls.
func (w *Writer) Buf() *Buffer { return w.buf }

// Flush writes the buffered bytes to the transport and resets the
// buffer for reuse.
func (w *Writer) Flush() (int, error) {
	n, err := w.w.Write(w.buf.Buf)
	w.buf.Reset()
	if err != nil {
		return n, errors.Wrap(err, "flush")
	}
	return n, nil
}

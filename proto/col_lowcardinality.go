package proto

import "github.com/go-faster/errors"

// lowCardinalityVersion is the only dictionary-serialisation version
// this client emits or expects: SharedDictionariesWithAdditionalKeys.
const lowCardinalityVersion = 1

// hasAdditionalKeysFlag is bit 9 of the flags word. This client always
// sets it exactly when the dictionary is Nullable, and never otherwise,
// rather than exercising the fuller state space a live server might
// accept.
const hasAdditionalKeysFlag = 1 << 9

// indexWidth identifies the packed integer width of the index array.
type indexWidth uint64

const (
	indexWidthU8  indexWidth = 0
	indexWidthU16 indexWidth = 1
	indexWidthU32 indexWidth = 2
	indexWidthU64 indexWidth = 3
)

func (w indexWidth) byteSize() int {
	switch w {
	case indexWidthU8:
		return 1
	case indexWidthU16:
		return 2
	case indexWidthU32:
		return 4
	default:
		return 8
	}
}

func widthFor(dictSize int) indexWidth {
	switch {
	case dictSize <= 1<<8:
		return indexWidthU8
	case dictSize <= 1<<16:
		return indexWidthU16
	case dictSize <= 1<<32:
		return indexWidthU32
	default:
		return indexWidthU64
	}
}

// ColLowCardinality is LowCardinality(T): a dictionary of distinct T
// values plus one packed index per row. DictIsNullable controls whether
// HasAdditionalKeys is set on write (slot 0 of a nullable dictionary is
// the null sentinel any index may reference).
type ColLowCardinality struct {
	Dict           Column
	Indices        []uint64
	DictIsNullable bool
}

// NewColLowCardinality wraps dict as the dictionary of a LowCardinality
// column. dict should be a ColNullable when the inner type is Nullable.
func NewColLowCardinality(dict Column, dictIsNullable bool) *ColLowCardinality {
	return &ColLowCardinality{Dict: dict, DictIsNullable: dictIsNullable}
}

func (c *ColLowCardinality) Type() ColumnType {
	return ColumnTypeLowCardinality.Sub(c.Dict.Type())
}

func (c *ColLowCardinality) Rows() int { return len(c.Indices) }

func (c *ColLowCardinality) Reset() {
	c.Indices = c.Indices[:0]
	c.Dict.Reset()
}

func (c *ColLowCardinality) Release() {
	if rel, ok := c.Dict.(Releaser); ok {
		rel.Release()
	}
}

// AppendIndex appends one row referencing dictionary slot idx.
func (c *ColLowCardinality) AppendIndex(idx uint64) {
	c.Indices = append(c.Indices, idx)
}

func (c *ColLowCardinality) EncodeColumn(b *Buffer) {
	b.PutUInt64(lowCardinalityVersion)

	width := widthFor(c.Dict.Rows())
	flags := uint64(width)
	if c.DictIsNullable {
		flags |= hasAdditionalKeysFlag
	}
	b.PutUInt64(flags)

	b.PutUInt64(uint64(c.Dict.Rows()))
	c.Dict.EncodeColumn(b)

	b.PutUInt64(uint64(len(c.Indices)))
	for _, idx := range c.Indices {
		switch width {
		case indexWidthU8:
			b.PutUInt8(uint8(idx))
		case indexWidthU16:
			b.PutUInt16(uint16(idx))
		case indexWidthU32:
			b.PutUInt32(uint32(idx))
		default:
			b.PutUInt64(idx)
		}
	}
}

func (c *ColLowCardinality) DecodeColumn(r *Reader, rows int) error {
	if rows == 0 {
		return nil
	}
	if _, err := r.UInt64(); err != nil { // version
		return errors.Wrap(err, "LowCardinality version")
	}
	flags, err := r.UInt64()
	if err != nil {
		return errors.Wrap(err, "LowCardinality flags")
	}
	width := indexWidth(flags & 0xff)
	c.DictIsNullable = flags&hasAdditionalKeysFlag != 0

	dictSize, err := r.UInt64()
	if err != nil {
		return errors.Wrap(err, "LowCardinality dict size")
	}
	if err := c.Dict.DecodeColumn(r, int(dictSize)); err != nil {
		return errors.Wrap(err, "LowCardinality dict")
	}

	indexCount, err := r.UInt64()
	if err != nil {
		return errors.Wrap(err, "LowCardinality index count")
	}
	if cap(c.Indices) < int(indexCount) {
		c.Indices = make([]uint64, 0, indexCount)
	}
	for i := uint64(0); i < indexCount; i++ {
		var (
			idx    uint64
			rdErr  error
		)
		switch width {
		case indexWidthU8:
			v, e := r.UInt8()
			idx, rdErr = uint64(v), e
		case indexWidthU16:
			v, e := r.UInt16()
			idx, rdErr = uint64(v), e
		case indexWidthU32:
			v, e := r.UInt32()
			idx, rdErr = uint64(v), e
		default:
			idx, rdErr = r.UInt64()
		}
		if rdErr != nil {
			return errors.Wrapf(rdErr, "LowCardinality indices[%d]", i)
		}
		c.Indices = append(c.Indices, idx)
	}
	return nil
}

func (c *ColLowCardinality) WriteColumn(w *Writer) error { return WriteColumn(w, c) }

// skipLowCardinality skips the dictionary with dictSkip, then advances
// past the packed index array.
func skipLowCardinality(dictSkip Skipper) Skipper {
	return func(r *Reader, rows int) error {
		if rows == 0 {
			return nil
		}
		if _, err := r.UInt64(); err != nil {
			return errors.Wrap(err, "LowCardinality version")
		}
		flags, err := r.UInt64()
		if err != nil {
			return errors.Wrap(err, "LowCardinality flags")
		}
		width := indexWidth(flags & 0xff)
		dictSize, err := r.UInt64()
		if err != nil {
			return errors.Wrap(err, "LowCardinality dict size")
		}
		if err := dictSkip(r, int(dictSize)); err != nil {
			return errors.Wrap(err, "LowCardinality dict")
		}
		indexCount, err := r.UInt64()
		if err != nil {
			return errors.Wrap(err, "LowCardinality index count")
		}
		return r.Discard(int(indexCount) * width.byteSize())
	}
}

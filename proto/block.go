package proto

import "github.com/go-faster/errors"

// blockInfoOverflowsField and blockInfoBucketField are the varint field
// tags in a BlockInfo preamble; 0 terminates the field list.
const (
	blockInfoOverflowsField = 1
	blockInfoBucketField    = 2
)

// BlockInfo is the small preamble every Data block carries ahead of its
// columns. This client never produces overflow blocks or pre-bucketed
// aggregation results, so it always writes IsOverflows=false,
// BucketNum=-1, but preserves whatever a server sends back.
type BlockInfo struct {
	IsOverflows bool
	BucketNum   int32
}

// DefaultBlockInfo is the preamble this client writes on every outgoing
// block.
var DefaultBlockInfo = BlockInfo{BucketNum: -1}

func (bi BlockInfo) encode(b *Buffer) {
	b.PutUVarInt(blockInfoOverflowsField)
	b.PutBool(bi.IsOverflows)
	b.PutUVarInt(blockInfoBucketField)
	b.PutInt32(bi.BucketNum)
	b.PutUVarInt(0)
}

func decodeBlockInfo(r *Reader) (BlockInfo, error) {
	bi := BlockInfo{BucketNum: -1}
	for {
		field, err := r.UVarInt()
		if err != nil {
			return bi, errors.Wrap(err, "block info field")
		}
		switch field {
		case 0:
			return bi, nil
		case blockInfoOverflowsField:
			v, err := r.Bool()
			if err != nil {
				return bi, errors.Wrap(err, "block info overflows")
			}
			bi.IsOverflows = v
		case blockInfoBucketField:
			v, err := r.Int32()
			if err != nil {
				return bi, errors.Wrap(err, "block info bucket")
			}
			bi.BucketNum = v
		default:
			return bi, errors.Wrapf(ErrMalformedWire, "block info unknown field %d", field)
		}
	}
}

// BlockColumn is one named, typed column within a Block, carrying both
// its wire type string and the live Column implementation backing it.
type BlockColumn struct {
	Name string
	Type ColumnType
	Data Column
}

// Block is one Data message payload: a table name (used only for
// external-table transfers; empty for ordinary query results/inserts),
// a BlockInfo preamble, and an ordered set of equal-length columns.
type Block struct {
	TableName string
	Info      BlockInfo
	Columns   []BlockColumn
}

// Rows reports the block's row count, taken from the first column; a
// block with no columns has zero rows.
func (b *Block) Rows() int {
	if len(b.Columns) == 0 {
		return 0
	}
	return b.Columns[0].Data.Rows()
}

// ColumnByName returns the named column, or nil if absent.
func (b *Block) ColumnByName(name string) *BlockColumn {
	for i := range b.Columns {
		if b.Columns[i].Name == name {
			return &b.Columns[i]
		}
	}
	return nil
}

// EncodeBlock appends the block's wire payload to buf: table name (once
// the negotiated revision carries one at all, per the same
// FeatureTempTables gate DecodeBlock's withTableName follows), BlockInfo,
// column count, row count, then each column's name, type, and encoded
// payload.
func (b *Block) EncodeBlock(buf *Buffer, withTableName bool) {
	if withTableName {
		buf.PutString(b.TableName)
	}
	b.Info.encode(buf)
	buf.PutUVarInt(uint64(len(b.Columns)))
	buf.PutUVarInt(uint64(b.Rows()))
	for _, col := range b.Columns {
		buf.PutString(col.Name)
		buf.PutString(string(col.Type))
		col.Data.EncodeColumn(buf)
	}
}

// WriteBlock encodes the block into w's scratch buffer and flushes it.
func (b *Block) WriteBlock(w *Writer, withTableName bool) error {
	var err error
	w.ChainBuffer(func(buf *Buffer) {
		b.EncodeBlock(buf, withTableName)
	})
	if _, ferr := w.Flush(); ferr != nil {
		err = ferr
	}
	return err
}

// DecodeBlock reads a block from r. opts controls how String columns are
// materialised; withTableName reports whether the message carries a
// table-name string ahead of the BlockInfo preamble, which every Data
// message does once the negotiated revision satisfies FeatureTempTables.
func DecodeBlock(r *Reader, opts BuildOptions, withTableName bool) (*Block, error) {
	b := &Block{}
	if withTableName {
		name, err := r.Str()
		if err != nil {
			return nil, errors.Wrap(err, "block table name")
		}
		b.TableName = name
	}
	info, err := decodeBlockInfo(r)
	if err != nil {
		return nil, errors.Wrap(err, "block info")
	}
	b.Info = info

	numColumns, err := r.UVarInt()
	if err != nil {
		return nil, errors.Wrap(err, "block column count")
	}
	numRows, err := r.UVarInt()
	if err != nil {
		return nil, errors.Wrap(err, "block row count")
	}

	b.Columns = make([]BlockColumn, 0, numColumns)
	for i := uint64(0); i < numColumns; i++ {
		name, err := r.Str()
		if err != nil {
			return nil, errors.Wrapf(err, "block column[%d] name", i)
		}
		typStr, err := r.Str()
		if err != nil {
			return nil, errors.Wrapf(err, "block column[%d] type", i)
		}
		desc, err := ParseType(typStr)
		if err != nil {
			return nil, errors.Wrapf(err, "block column[%d] %q", i, name)
		}
		col, err := NewColumn(desc, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "block column[%d] %q", i, name)
		}
		if err := col.DecodeColumn(r, int(numRows)); err != nil {
			return nil, errors.Wrapf(err, "block column[%d] %q", i, name)
		}
		b.Columns = append(b.Columns, BlockColumn{Name: name, Type: ColumnType(typStr), Data: col})
	}
	return b, nil
}

// SkipBlock advances r past a block without materialising any column,
// used when a caller cancels a query mid-stream and must drain the
// remaining Data messages to resynchronise on the next packet boundary.
func SkipBlock(r *Reader, withTableName bool) error {
	if withTableName {
		if _, err := r.Str(); err != nil {
			return errors.Wrap(err, "block table name")
		}
	}
	if _, err := decodeBlockInfo(r); err != nil {
		return errors.Wrap(err, "block info")
	}
	numColumns, err := r.UVarInt()
	if err != nil {
		return errors.Wrap(err, "block column count")
	}
	numRows, err := r.UVarInt()
	if err != nil {
		return errors.Wrap(err, "block row count")
	}
	for i := uint64(0); i < numColumns; i++ {
		if _, err := r.Str(); err != nil {
			return errors.Wrapf(err, "block column[%d] name", i)
		}
		typStr, err := r.Str()
		if err != nil {
			return errors.Wrapf(err, "block column[%d] type", i)
		}
		desc, err := ParseType(typStr)
		if err != nil {
			return errors.Wrapf(err, "block column[%d]", i)
		}
		skip, err := NewSkipper(desc)
		if err != nil {
			return errors.Wrapf(err, "block column[%d]", i)
		}
		if err := skip(r, int(numRows)); err != nil {
			return errors.Wrapf(err, "block column[%d]", i)
		}
	}
	return nil
}

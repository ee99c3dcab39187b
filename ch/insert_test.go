package ch

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chnative/ch/proto"
)

type insertRow struct {
	ID   uint64 `ch:"id"`
	Name string `ch:"name"`
}

func insertColumns() []ColumnSpec {
	return []ColumnSpec{{Name: "id", Type: "UInt64"}, {Name: "name", Type: "String"}}
}

func TestInserterBuildBlockEncodesRows(t *testing.T) {
	encode := func(r insertRow) []any { return []any{r.ID, r.Name} }
	ins := NewInserter(nil, "events", insertColumns(), encode, 100)

	blk, err := ins.buildBlock([]insertRow{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	require.NoError(t, err)
	require.Equal(t, 2, blk.Rows())
	require.Equal(t, "id", blk.Columns[0].Name)
	ids := blk.Columns[0].Data.(*proto.ColNum[uint64])
	require.Equal(t, []uint64{1, 2}, ids.Data)
	names := blk.Columns[1].Data.(*proto.ColStr)
	require.Equal(t, []string{"a", "b"}, names.Data)
}

func TestInserterBuildBlockRejectsMismatchedEncoderArity(t *testing.T) {
	encode := func(r insertRow) []any { return []any{r.ID} }
	ins := NewInserter(nil, "events", insertColumns(), encode, 100)

	_, err := ins.buildBlock([]insertRow{{ID: 1, Name: "a"}})
	require.Error(t, err)
}

func TestNewReflectiveInserterUsesStructTags(t *testing.T) {
	ins, err := NewReflectiveInserter[insertRow](nil, "events", insertColumns(), 100)
	require.NoError(t, err)

	blk, err := ins.buildBlock([]insertRow{{ID: 7, Name: "x"}})
	require.NoError(t, err)
	ids := blk.Columns[0].Data.(*proto.ColNum[uint64])
	require.Equal(t, []uint64{7}, ids.Data)
}

func TestNewReflectiveInserterFallsBackToFieldNameCaseInsensitively(t *testing.T) {
	type untaggedRow struct {
		ID   uint64
		Name string
	}
	ins, err := NewReflectiveInserter[untaggedRow](nil, "events", insertColumns(), 100)
	require.NoError(t, err)

	blk, err := ins.buildBlock([]untaggedRow{{ID: 9, Name: "y"}})
	require.NoError(t, err)
	ids := blk.Columns[0].Data.(*proto.ColNum[uint64])
	require.Equal(t, []uint64{9}, ids.Data)
	names := blk.Columns[1].Data.(*proto.ColStr)
	require.Equal(t, []string{"y"}, names.Data)
}

func TestNewReflectiveInserterRejectsNonStruct(t *testing.T) {
	_, err := NewReflectiveInserter[int](nil, "events", insertColumns(), 100)
	require.Error(t, err)
}

func TestNewReflectiveInserterRejectsMissingColumn(t *testing.T) {
	cols := []ColumnSpec{{Name: "missing", Type: "UInt64"}}
	_, err := NewReflectiveInserter[insertRow](nil, "events", cols, 100)
	require.Error(t, err)
}

func TestAppendValueNullable(t *testing.T) {
	inner := proto.NewColStr()
	col := proto.NewColNullable(inner)

	require.NoError(t, appendValue(col, nil))
	require.NoError(t, appendValue(col, "present"))

	require.True(t, col.IsNull(0))
	require.False(t, col.IsNull(1))
	require.Equal(t, "present", inner.Data[1])
}

func TestAppendValueArray(t *testing.T) {
	innerCol := proto.NewColInt32()
	col := proto.NewColArray(innerCol)

	require.NoError(t, appendValue(col, []int32{1, 2, 3}))
	require.NoError(t, appendValue(col, []int32{}))

	require.Equal(t, []uint64{3, 3}, col.Offsets)
}

func TestAppendValueRejectsUnsupportedColumn(t *testing.T) {
	keys := proto.NewColStr()
	values := proto.NewColInt64()
	col := proto.NewColMap(keys, values)

	err := appendValue(col, map[string]int64{"a": 1})
	require.ErrorIs(t, err, ErrUnsupportedBulkInsertColumn)
}

func TestInsertStreamsBatchedBlocks(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	done := make(chan struct{})
	var gotRows []uint64
	go func() {
		defer close(done)
		r := proto.NewReader(serverConn)
		w := proto.NewWriter(serverConn, nil)

		body := readQueryMessage(t, r)
		require.Equal(t, "INSERT INTO events (id, name) VALUES", body)

		code, err := r.UVarInt()
		require.NoError(t, err)
		require.Equal(t, uint64(proto.ClientCodeData), code)
		probe, err := proto.DecodeBlock(r, proto.BuildOptions{}, true)
		require.NoError(t, err)
		require.Equal(t, 0, probe.Rows())

		schema := &proto.Block{Info: proto.DefaultBlockInfo, Columns: []proto.BlockColumn{
			{Name: "id", Type: "UInt64", Data: proto.NewColUInt64()},
			{Name: "name", Type: "String", Data: proto.NewColStr()},
		}}
		w.ChainBuffer(func(b *proto.Buffer) {
			b.PutUVarInt(uint64(proto.ServerCodeData))
			schema.EncodeBlock(b, true)
		})
		_, err = w.Flush()
		require.NoError(t, err)

		for {
			code, err := r.UVarInt()
			require.NoError(t, err)
			require.Equal(t, uint64(proto.ClientCodeData), code)
			blk, err := proto.DecodeBlock(r, proto.BuildOptions{}, true)
			require.NoError(t, err)
			if blk.Rows() == 0 {
				break
			}
			ids := blk.Columns[0].Data.(*proto.ColNum[uint64])
			gotRows = append(gotRows, ids.Data...)
		}

		w.ChainBuffer(func(b *proto.Buffer) {
			b.PutUVarInt(uint64(proto.ServerCodeEndOfStream))
		})
		_, err = w.Flush()
		require.NoError(t, err)
	}()

	c := readyPipeClient(clientConn)
	ins, err := NewReflectiveInserter[insertRow](c, "events", insertColumns(), 2)
	require.NoError(t, err)

	rows := []insertRow{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"}}
	require.NoError(t, ins.Insert(context.Background(), rows))
	require.Equal(t, []uint64{1, 2, 3}, gotRows)
	<-done
}

func TestInsertRaisesOnSchemaHandshakeException(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r := proto.NewReader(serverConn)
		w := proto.NewWriter(serverConn, nil)

		readQueryMessage(t, r)

		code, err := r.UVarInt()
		require.NoError(t, err)
		require.Equal(t, uint64(proto.ClientCodeData), code)
		probe, err := proto.DecodeBlock(r, proto.BuildOptions{}, true)
		require.NoError(t, err)
		require.Equal(t, 0, probe.Rows())

		w.ChainBuffer(func(b *proto.Buffer) {
			b.PutUVarInt(uint64(proto.ServerCodeException))
			b.PutInt32(60)
			b.PutString("DB::Exception")
			b.PutString("Table events doesn't exist")
			b.PutString("")
			b.PutBool(false)
		})
		_, err = w.Flush()
		require.NoError(t, err)
	}()

	c := readyPipeClient(clientConn)
	ins, err := NewReflectiveInserter[insertRow](c, "events", insertColumns(), 2)
	require.NoError(t, err)

	err = ins.Insert(context.Background(), []insertRow{{ID: 1, Name: "a"}})
	require.Error(t, err)

	var op *OpError
	require.ErrorAs(t, err, &op)
	require.Equal(t, KindServerError, op.Kind)
	<-done
}

func TestInsertEmptyRowsIsNoop(t *testing.T) {
	ins := NewInserter[insertRow](nil, "events", insertColumns(), nil, 10)
	require.NoError(t, ins.Insert(context.Background(), nil))
}

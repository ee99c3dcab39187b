package ch

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chnative/ch/proto"
)

// readQueryMessage drains a Query message's payload at
// proto.ClientTCPProtocolVersion, matching sendQueryHeader's field
// order exactly, and returns the decoded query body.
func readQueryMessage(t *testing.T, r *proto.Reader) string {
	t.Helper()
	code, err := r.UVarInt()
	require.NoError(t, err)
	require.Equal(t, uint64(proto.ClientCodeQuery), code)

	_, err = r.Str() // query id
	require.NoError(t, err)

	var info proto.ClientInfo
	require.NoError(t, info.DecodeAware(r, proto.ClientTCPProtocolVersion))

	drainKVList(t, r) // settings
	_, err = r.Str()  // inter-server secret
	require.NoError(t, err)

	_, err = r.UVarInt() // stage
	require.NoError(t, err)
	_, err = r.UInt8() // compression
	require.NoError(t, err)
	body, err := r.Str()
	require.NoError(t, err)

	drainKVList(t, r) // parameters
	return body
}

// drainKVList consumes a settings/parameters section: repeated
// (key, flags, value) string/varint/string triples terminated by an
// empty key.
func drainKVList(t *testing.T, r *proto.Reader) {
	t.Helper()
	for {
		key, err := r.Str()
		require.NoError(t, err)
		if key == "" {
			return
		}
		_, err = r.UVarInt()
		require.NoError(t, err)
		_, err = r.Str()
		require.NoError(t, err)
	}
}

func readBlankDataBlock(t *testing.T, r *proto.Reader) {
	t.Helper()
	code, err := r.UVarInt()
	require.NoError(t, err)
	require.Equal(t, uint64(proto.ClientCodeData), code)
	blk, err := proto.DecodeBlock(r, proto.BuildOptions{}, true)
	require.NoError(t, err)
	require.Equal(t, 0, blk.Rows())
}

func writeResultBlock(t *testing.T, w *proto.Writer, blk *proto.Block) {
	t.Helper()
	w.ChainBuffer(func(b *proto.Buffer) {
		b.PutUVarInt(uint64(proto.ServerCodeData))
		blk.EncodeBlock(b, true)
	})
	_, err := w.Flush()
	require.NoError(t, err)
}

func readyPipeClient(conn net.Conn) *Client {
	c := newPipeClient(conn, Options{})
	c.protocolVersion = proto.ClientTCPProtocolVersion
	c.serverInfo = &proto.ServerHello{Name: "ClickHouse"}
	c.state.Store(int32(StateReady))
	return c
}

func TestDoStreamsResultBlocks(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r := proto.NewReader(serverConn)
		w := proto.NewWriter(serverConn, nil)

		body := readQueryMessage(t, r)
		require.Equal(t, "SELECT 1", body)
		readBlankDataBlock(t, r)

		ids := proto.NewColUInt64()
		ids.Append(1)
		ids.Append(2)
		blk := &proto.Block{
			Info:    proto.DefaultBlockInfo,
			Columns: []proto.BlockColumn{{Name: "id", Type: proto.ColumnTypeUInt64, Data: ids}},
		}
		writeResultBlock(t, w, blk)

		w.ChainBuffer(func(b *proto.Buffer) {
			b.PutUVarInt(uint64(proto.ServerCodeEndOfStream))
		})
		_, err := w.Flush()
		require.NoError(t, err)
	}()

	c := readyPipeClient(clientConn)

	var gotRows int
	err := c.Do(context.Background(), Query{
		Body: "SELECT 1",
		OnResult: func(_ context.Context, blk *proto.Block) error {
			gotRows += blk.Rows()
			return nil
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, gotRows)
	<-done
}

func TestDoSurfacesServerException(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r := proto.NewReader(serverConn)
		w := proto.NewWriter(serverConn, nil)

		readQueryMessage(t, r)
		readBlankDataBlock(t, r)

		w.ChainBuffer(func(b *proto.Buffer) {
			b.PutUVarInt(uint64(proto.ServerCodeException))
			b.PutInt32(62)
			b.PutString("DB::Exception")
			b.PutString("Syntax error")
			b.PutString("")
			b.PutBool(false)
		})
		_, err := w.Flush()
		require.NoError(t, err)
	}()

	c := readyPipeClient(clientConn)
	err := c.Do(context.Background(), Query{Body: "SELECT bad syntax"})
	require.Error(t, err)

	var op *OpError
	require.ErrorAs(t, err, &op)
	require.Equal(t, KindServerError, op.Kind)
	<-done
}

func TestDoRejectsConcurrentUse(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	c := readyPipeClient(clientConn)
	c.state.Store(int32(StateQueryActive))

	err := c.Do(context.Background(), Query{Body: "SELECT 1"})
	var op *OpError
	require.ErrorAs(t, err, &op)
	require.Equal(t, KindConcurrentQuery, op.Kind)

	_ = serverConn
}

func TestDoCancelsOnContextDeadline(t *testing.T) {
	old := cancelDrainTimeout
	cancelDrainTimeout = 50 * time.Millisecond
	defer func() { cancelDrainTimeout = old }()

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		r := proto.NewReader(serverConn)
		readQueryMessage(t, r)
		readBlankDataBlock(t, r)
		// Stall: never send a response, forcing the client to time out
		// and then the cancel drain to exhaust its own bound.
		buf := make([]byte, 1)
		serverConn.Read(buf) //nolint:errcheck
	}()

	c := readyPipeClient(clientConn)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Do(ctx, Query{Body: "SELECT 1"})
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, StateClosed, State(c.state.Load()))
	<-drained
}

func TestDoClosesConnectionOnResultCallbackError(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r := proto.NewReader(serverConn)
		w := proto.NewWriter(serverConn, nil)

		readQueryMessage(t, r)
		readBlankDataBlock(t, r)

		ids := proto.NewColUInt64()
		ids.Append(1)
		blk := &proto.Block{
			Info:    proto.DefaultBlockInfo,
			Columns: []proto.BlockColumn{{Name: "id", Type: proto.ColumnTypeUInt64, Data: ids}},
		}
		writeResultBlock(t, w, blk)

		// The client bails out after the callback error, so nothing
		// further is read from this side; a blocked write here would
		// hang the test, so just let the goroutine exit.
	}()

	c := readyPipeClient(clientConn)
	boom := errors.New("ch_test: callback failed")
	err := c.Do(context.Background(), Query{
		Body: "SELECT 1",
		OnResult: func(_ context.Context, _ *proto.Block) error {
			return boom
		},
	})
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
	require.Equal(t, StateClosed, State(c.state.Load()))
	<-done
}

func TestDoCancelDrainsToEndOfStreamAndReturnsToReady(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	started := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		r := proto.NewReader(serverConn)
		w := proto.NewWriter(serverConn, nil)
		readQueryMessage(t, r)
		readBlankDataBlock(t, r)
		close(started)

		// The server has already queued a couple of messages by the time
		// Cancel arrives: a Progress packet and one more Data block.
		code, err := r.UVarInt()
		require.NoError(t, err)
		require.Equal(t, uint64(proto.ClientCodeCancel), code)

		w.ChainBuffer(func(b *proto.Buffer) {
			b.PutUVarInt(uint64(proto.ServerCodeProgress))
			b.PutUVarInt(1) // rows
			b.PutUVarInt(0) // bytes
			b.PutUVarInt(0) // total rows
			b.PutUVarInt(0) // written rows
			b.PutUVarInt(0) // written bytes
			b.PutUVarInt(0) // total bytes in progress
			b.PutUVarInt(0) // elapsed ns
		})
		_, err = w.Flush()
		require.NoError(t, err)

		writeResultBlock(t, w, &proto.Block{Info: proto.DefaultBlockInfo, Columns: []proto.BlockColumn{
			{Name: "n", Type: "UInt64", Data: func() proto.Column {
				c := proto.NewColUInt64()
				c.Append(1)
				return c
			}()},
		}})

		w.ChainBuffer(func(b *proto.Buffer) {
			b.PutUVarInt(uint64(proto.ServerCodeEndOfStream))
		})
		_, err = w.Flush()
		require.NoError(t, err)
	}()

	c := readyPipeClient(clientConn)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	err := c.Do(ctx, Query{Body: "SELECT 1"})
	require.NoError(t, err)
	<-drained
	require.Equal(t, StateReady, State(c.state.Load()))
}

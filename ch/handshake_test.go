package ch

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chnative/ch/proto"
)

func newPipeClient(conn net.Conn, opts Options) *Client {
	opts.setDefaults()
	c := &Client{
		conn:    conn,
		reader:  proto.NewReader(conn),
		writer:  proto.NewWriter(conn, nil),
		opts:    opts,
		version: ClientVersion{Name: opts.ClientName, Major: defaultVersion.Major, Minor: defaultVersion.Minor, Patch: defaultVersion.Patch},
		lg:      opts.Logger,
	}
	c.state.Store(int32(StateConnecting))
	return c
}

// encodeFakeServerHello writes a ServerHello payload exercising every
// revision-gated optional field, matching proto.DecodeServerHello at
// ClientTCPProtocolVersion.
func encodeFakeServerHello(b *proto.Buffer) {
	b.PutUVarInt(uint64(proto.ServerCodeHello))
	b.PutString("ClickHouse")
	b.PutUVarInt(24)
	b.PutUVarInt(8)
	b.PutUVarInt(proto.ClientTCPProtocolVersion)
	b.PutString("UTC")
	b.PutString("testserver")
	b.PutUVarInt(8)
	b.PutUVarInt(0) // password complexity rule count
	b.PutUInt64(0)  // inter-server secret nonce
}

func TestHandshakeSuccess(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r := proto.NewReader(serverConn)
		code, err := proto.DecodeServerCode(r)
		require.NoError(t, err)
		require.Equal(t, proto.ServerCodeHello, code)
		_, _ = r.Str() // name
		_, _ = r.UVarInt()
		_, _ = r.UVarInt()
		_, _ = r.UVarInt()
		_, _ = r.Str() // database
		_, _ = r.Str() // user
		_, _ = r.Str() // password

		w := proto.NewWriter(serverConn, nil)
		w.ChainBuffer(encodeFakeServerHello)
		_, err = w.Flush()
		require.NoError(t, err)
	}()

	c := newPipeClient(clientConn, Options{})
	err := c.handshake(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ClickHouse", c.serverInfo.Name)
	require.Equal(t, proto.ClientTCPProtocolVersion, c.protocolVersion)
	<-done
}

func TestHandshakeExceptionFails(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r := proto.NewReader(serverConn)
		_, err := proto.DecodeServerCode(r)
		require.NoError(t, err)
		_, _ = r.Str()
		_, _ = r.UVarInt()
		_, _ = r.UVarInt()
		_, _ = r.UVarInt()
		_, _ = r.Str()
		_, _ = r.Str()
		_, _ = r.Str()

		w := proto.NewWriter(serverConn, nil)
		w.ChainBuffer(func(b *proto.Buffer) {
			b.PutUVarInt(uint64(proto.ServerCodeException))
			b.PutInt32(1)
			b.PutString("DB::Exception")
			b.PutString("auth failed")
			b.PutString("")
			b.PutBool(false)
		})
		_, err = w.Flush()
		require.NoError(t, err)
	}()

	c := newPipeClient(clientConn, Options{})
	err := c.handshake(context.Background())
	require.Error(t, err)

	var op *OpError
	require.ErrorAs(t, err, &op)
	require.Equal(t, KindServerError, op.Kind)
	<-done
}

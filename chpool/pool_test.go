package chpool

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chnative/ch"
	"github.com/chnative/ch/proto"
)

// fakeServer listens on loopback and answers every accepted connection's
// handshake and Ping traffic until the client disconnects or sends
// something other than a Ping.
func fakeServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveOneConn(t, conn)
		}
	}()
	return ln.Addr().String()
}

func serveOneConn(t *testing.T, conn net.Conn) {
	defer conn.Close()
	r := proto.NewReader(conn)
	w := proto.NewWriter(conn, nil)

	code, err := proto.DecodeServerCode(r)
	if err != nil || code != proto.ServerCodeHello {
		return
	}
	if _, err := r.Str(); err != nil { // name
		return
	}
	for i := 0; i < 3; i++ {
		if _, err := r.UVarInt(); err != nil { // major, minor, protocol version
			return
		}
	}
	for i := 0; i < 3; i++ {
		if _, err := r.Str(); err != nil { // database, user, password
			return
		}
	}

	w.ChainBuffer(func(b *proto.Buffer) {
		b.PutUVarInt(uint64(proto.ServerCodeHello))
		b.PutString("ClickHouse")
		b.PutUVarInt(24)
		b.PutUVarInt(8)
		b.PutUVarInt(proto.ClientTCPProtocolVersion)
		b.PutString("UTC")
		b.PutString("fakeserver")
		b.PutUVarInt(8)
		b.PutUVarInt(0)
		b.PutUInt64(0)
	})
	if _, err := w.Flush(); err != nil {
		return
	}

	for {
		code, err := proto.DecodeServerCode(r)
		if err != nil {
			return
		}
		switch code {
		case proto.ServerCode(proto.ClientCodePing):
			w.ChainBuffer(func(b *proto.Buffer) {
				b.PutUVarInt(uint64(proto.ServerCodePong))
			})
			if _, err := w.Flush(); err != nil {
				return
			}
		default:
			return
		}
	}
}

func poolConn(t *testing.T) *Pool {
	t.Helper()
	addr := fakeServer(t)
	p, err := NewPool(Options{ClientOptions: ch.Options{Address: addr}})
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestPoolAcquirePing(t *testing.T) {
	p := poolConn(t)
	conn, err := p.Acquire(context.Background())
	require.NoError(t, err)
	defer conn.Release()

	require.NoError(t, conn.Ping(context.Background()))
}

func TestPoolAcquireClose(t *testing.T) {
	p := poolConn(t)
	conn, err := p.Acquire(context.Background())
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	require.True(t, conn.client().IsClosed())
}

func TestPoolStatReflectsAcquired(t *testing.T) {
	p := poolConn(t)
	conn, err := p.Acquire(context.Background())
	require.NoError(t, err)

	require.Equal(t, int32(1), p.Stat().AcquiredResources())
	conn.Release()
	require.Equal(t, int32(0), p.Stat().AcquiredResources())
}

func TestPoolDialOverrideIsUsed(t *testing.T) {
	var called bool
	addr := fakeServer(t)
	p, err := NewPool(Options{
		ClientOptions: ch.Options{Address: addr},
		Dial: func(ctx context.Context, opts ch.Options) (*ch.Client, error) {
			called = true
			return ch.Dial(ctx, opts)
		},
	})
	require.NoError(t, err)
	defer p.Close()

	conn, err := p.Acquire(context.Background())
	require.NoError(t, err)
	defer conn.Release()

	require.True(t, called)
}

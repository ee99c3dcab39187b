package ch

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/go-faster/errors"

	"github.com/chnative/ch/compress"
	"github.com/chnative/ch/proto"
)

// Client is a single connection to a ClickHouse server speaking the
// native TCP protocol. A Client is not safe for concurrent use: only one
// Do/Ping/Insert call may be in flight at a time, enforced by an atomic
// state transition that returns ErrConcurrentQuery on overlap.
type Client struct {
	conn   net.Conn
	reader *proto.Reader
	writer *proto.Writer

	opts    Options
	version ClientVersion

	state atomic.Int32

	protocolVersion int
	serverInfo      *proto.ServerHello

	compressAlgo   compress.Algorithm
	compressWriter *compress.Writer

	lg *zap.Logger
}

// Dial connects to a server and performs the handshake, returning a
// Client ready to execute queries.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	opts.setDefaults()

	var d net.Dialer
	dialCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	conn, err := d.DialContext(dialCtx, "tcp", opts.Address)
	if err != nil {
		return nil, newOpError(KindTransport, errors.Wrap(err, "dial"))
	}

	c := &Client{
		conn:         conn,
		reader:       proto.NewReader(conn),
		writer:       proto.NewWriter(conn, nil),
		opts:         opts,
		version:      ClientVersion{Name: opts.ClientName, Major: defaultVersion.Major, Minor: defaultVersion.Minor, Patch: defaultVersion.Patch},
		compressAlgo: opts.Compression,
		lg:           opts.Logger,
	}
	c.state.Store(int32(StateConnecting))

	if opts.Compression != compress.AlgorithmNone {
		w, err := compress.NewWriter(opts.Compression)
		if err != nil {
			conn.Close()
			return nil, newOpError(KindUnsupportedAlgorithm, err)
		}
		w.Level = opts.CompressionLevel
		c.compressWriter = w
	}

	if dl, ok := dialCtx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	if err := c.handshake(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	c.state.Store(int32(StateReady))
	return c, nil
}

// IsClosed reports whether the connection has been closed.
func (c *Client) IsClosed() bool {
	return State(c.state.Load()) == StateClosed
}

// Close closes the underlying connection. Safe to call more than once.
func (c *Client) Close() error {
	c.state.Store(int32(StateClosed))
	if err := c.conn.Close(); err != nil {
		return newOpError(KindTransport, err)
	}
	return nil
}

// acquire claims exclusive use of the connection for one operation,
// failing with ErrConcurrentQuery if another is already in flight.
func (c *Client) acquire() error {
	if c.state.CompareAndSwap(int32(StateReady), int32(StateQueryActive)) {
		return nil
	}
	switch State(c.state.Load()) {
	case StateClosed, StateConnecting, StateHandshaking:
		return ErrClosed
	default:
		return newOpError(KindConcurrentQuery, ErrConcurrentQuery)
	}
}

func (c *Client) release() {
	c.state.CompareAndSwap(int32(StateQueryActive), int32(StateReady))
}

// Ping sends a liveness probe and waits for the server's Pong.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	c.writer.ChainBuffer(func(b *proto.Buffer) {
		proto.ClientPing{}.Encode(b)
	})
	if _, err := c.writer.Flush(); err != nil {
		return newOpError(KindTransport, err)
	}

	code, err := proto.DecodeServerCode(c.reader)
	if err != nil {
		return c.wireError(err)
	}
	switch code {
	case proto.ServerCodePong:
		return nil
	case proto.ServerCodeException:
		exc, err := proto.DecodeException(c.reader)
		if err != nil {
			return c.wireError(err)
		}
		return newOpError(KindServerError, exc)
	default:
		return errors.Errorf("ch: unexpected packet %s during ping", code)
	}
}

// wireError classifies a Reader-surfaced error into the matching
// OpError kind.
func (c *Client) wireError(err error) error {
	switch {
	case errors.Is(err, proto.ErrMalformedWire):
		return newOpError(KindMalformedWire, err)
	case errors.Is(err, proto.ErrMalformedType):
		return newOpError(KindMalformedType, err)
	default:
		var corrupted *compress.CorruptedDataErr
		if errors.As(err, &corrupted) {
			return newOpError(KindChecksumMismatch, err)
		}
		return newOpError(KindTransport, err)
	}
}

// Package chpool provides a pool of ch.Client connections, built on
// jackc/puddle.
package chpool

import (
	"context"

	"github.com/go-faster/errors"
	puddle "github.com/jackc/puddle/v2"
	"go.uber.org/zap"

	"github.com/chnative/ch"
)

// Options configures a Pool. MaxConns caps the number of live
// connections; it is clamped to at least 1. Dial, when set, overrides
// ch.Dial for constructing new connections.
type Options struct {
	ClientOptions ch.Options
	MaxConns      int32
	Dial          func(ctx context.Context, opts ch.Options) (*ch.Client, error)
	Logger        *zap.Logger
}

func (o *Options) setDefaults() {
	if o.MaxConns < 1 {
		o.MaxConns = 1
	}
	if o.Dial == nil {
		o.Dial = ch.Dial
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Pool is a fixed-size pool of ready ch.Client connections, each
// acquired exclusively for the duration of one Conn's use.
type Pool struct {
	inner *puddle.Pool[*ch.Client]
	opts  Options
}

// NewPool constructs a Pool. No connections are dialed until first
// use; Acquire dials lazily, per puddle's lazy-constructor model.
func NewPool(opts Options) (*Pool, error) {
	opts.setDefaults()

	p := &Pool{opts: opts}
	constructor := func(ctx context.Context) (*ch.Client, error) {
		c, err := opts.Dial(ctx, opts.ClientOptions)
		if err != nil {
			return nil, errors.Wrap(err, "dial")
		}
		return c, nil
	}
	destructor := func(c *ch.Client) {
		_ = c.Close()
	}

	inner, err := puddle.NewPool(&puddle.Config[*ch.Client]{
		Constructor: constructor,
		Destructor:  destructor,
		MaxSize:     opts.MaxConns,
	})
	if err != nil {
		return nil, errors.Wrap(err, "new puddle pool")
	}
	p.inner = inner
	return p, nil
}

// Acquire returns a Conn wrapping an exclusively-owned, handshaked
// ch.Client. The caller must call Conn.Release (or Conn.Close) when
// done.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	res, err := p.inner.Acquire(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "acquire")
	}
	return &Conn{res: res}, nil
}

// Stat reports the pool's current size and usage.
func (p *Pool) Stat() *puddle.Stat {
	return p.inner.Stat()
}

// Close closes the pool and every idle connection it holds. Connections
// currently acquired are closed as they're released.
func (p *Pool) Close() {
	p.inner.Close()
}

package chpool

import (
	"context"

	puddle "github.com/jackc/puddle/v2"

	"github.com/chnative/ch"
)

// Conn is one exclusively-held connection acquired from a Pool.
type Conn struct {
	res *puddle.Resource[*ch.Client]
}

func (c *Conn) client() *ch.Client {
	return c.res.Value()
}

// Release returns the connection to the pool. A connection whose client
// has been closed (for example after a cancelled query could not be
// drained cleanly) is destroyed instead of recycled.
func (c *Conn) Release() {
	if c.client().IsClosed() {
		c.res.Destroy()
		return
	}
	c.res.Release()
}

// Close closes the underlying connection and removes it from the pool.
// Unlike Release, the connection is never recycled.
func (c *Conn) Close() error {
	err := c.client().Close()
	c.res.Destroy()
	return err
}

// Do executes q against this connection. See ch.Client.Do.
func (c *Conn) Do(ctx context.Context, q ch.Query) error {
	return c.client().Do(ctx, q)
}

// Ping checks liveness of this connection. See ch.Client.Ping.
func (c *Conn) Ping(ctx context.Context) error {
	return c.client().Ping(ctx)
}

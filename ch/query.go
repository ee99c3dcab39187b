package ch

import (
	"context"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chnative/ch/chparam"
	"github.com/chnative/ch/compress"
	"github.com/chnative/ch/proto"
)

// readPollInterval bounds how long the result loop blocks on one read
// before re-checking gctx.Err(), so a cancelled context unblocks a
// stalled read instead of waiting for the next server packet.
const readPollInterval = 200 * time.Millisecond

// Query describes one statement to run on the server, along with the
// callbacks that receive its streamed results.
type Query struct {
	// Body is the query text. `@name` placeholders are rewritten against
	// Parameters before the query is sent.
	Body string
	// QueryID identifies the query for logging/cancellation; a random
	// UUID is generated if empty.
	QueryID string
	// Secret is the inter-server secret for distributed queries.
	Secret string
	// InitialUser is the originating user for distributed queries.
	InitialUser string

	// Settings are query-scoped settings, merged after connection-level
	// settings.
	Settings []Setting
	// Parameters are bound `@name` values; Body is rewritten to the
	// server's `{name:Type}` form before sending.
	Parameters []chparam.Param

	// Input is the first block of row data to send after the query text,
	// used for INSERT statements. Leave nil for statements with no row
	// payload (SELECT, DDL).
	Input *proto.Block
	// OnInput is called after Input (or the previous OnInput result) is
	// sent, to fetch the next block. Returning io.EOF ends the input
	// stream. Optional; a single Input block is sent if nil.
	OnInput func(ctx context.Context) (*proto.Block, error)

	// OnResult is called for each result block that carries rows, in row
	// order; blocks with zero rows are not passed to it. Optional.
	OnResult func(ctx context.Context, block *proto.Block) error
	// OnProgress is called for each Progress packet. Values are deltas,
	// not running totals. Optional.
	OnProgress func(ctx context.Context, p proto.Progress) error
	// OnProfile is called once with final block/row statistics. Optional.
	OnProfile func(ctx context.Context, p proto.Profile) error
	// OnProfileEvents is called for each batch of profiling counters.
	// Optional.
	OnProfileEvents func(ctx context.Context, events []proto.ProfileEvent) error

	// Logger overrides the connection logger for this query.
	Logger *zap.Logger

	// schemaCh, when set, diverts the first Data/Totals/Extremes block
	// received (regardless of row count) to this channel instead of
	// OnResult. Used internally by Inserter to capture the server's
	// schema-declaration reply to an INSERT's empty probe block.
	schemaCh chan<- *proto.Block
}

func (c *Client) buildSettings(q Query) []proto.Setting {
	out := toProtoSettings(c.opts.Settings)
	out = append(out, toProtoSettings(q.Settings)...)
	return out
}

func (c *Client) sendQueryHeader(ctx context.Context, q Query, body string, params []proto.Parameter) error {
	compression := proto.CompressionDisabled
	if c.compressAlgo != compress.AlgorithmNone {
		compression = proto.CompressionEnabled
	}
	msg := proto.Query{
		ID:          q.QueryID,
		Body:        body,
		Secret:      q.Secret,
		Stage:       proto.StageComplete,
		Compression: compression,
		Settings:    c.buildSettings(q),
		Parameters:  params,
		Info: proto.ClientInfo{
			ProtocolVersion: c.protocolVersion,
			Major:           c.version.Major,
			Minor:           c.version.Minor,
			Patch:           c.version.Patch,
			Interface:       proto.InterfaceTCP,
			Query:           proto.ClientQueryInitial,
			InitialUser:     q.InitialUser,
			InitialQueryID:  q.QueryID,
			InitialAddress:  c.conn.LocalAddr().String(),
			ClientName:      c.version.Name,
		},
	}
	c.writer.ChainBuffer(func(b *proto.Buffer) {
		msg.Encode(b, c.protocolVersion)
	})
	if _, err := c.writer.Flush(); err != nil {
		return newOpError(KindTransport, err)
	}
	return nil
}

// sendDataBlock writes one Data message, compressing the block body when
// the connection has compression enabled.
func (c *Client) sendDataBlock(blk *proto.Block) error {
	withTableName := proto.FeatureTempTables.In(c.protocolVersion)
	var encErr error
	c.writer.ChainBuffer(func(b *proto.Buffer) {
		proto.ClientCodeData.Encode(b)
		if c.compressWriter == nil {
			blk.EncodeBlock(b, withTableName)
			return
		}
		var body proto.Buffer
		blk.EncodeBlock(&body, withTableName)
		compressed, err := c.compressWriter.Compress(b.Buf, body.Buf)
		if err != nil {
			encErr = err
			return
		}
		b.Buf = compressed
	})
	if encErr != nil {
		return newOpError(KindUnsupportedAlgorithm, encErr)
	}
	if _, err := c.writer.Flush(); err != nil {
		return newOpError(KindTransport, err)
	}
	return nil
}

func (c *Client) sendBlankBlock() error {
	return c.sendDataBlock(&proto.Block{Info: proto.DefaultBlockInfo})
}

func (c *Client) sendQuery(ctx context.Context, q Query) error {
	body := q.Body
	var params []proto.Parameter
	if len(q.Parameters) > 0 {
		rewritten, wire, err := chparam.Rewrite(q.Body, q.Parameters)
		if err != nil {
			if errors.Is(err, chparam.ErrMissingParameter) {
				return newOpError(KindMissingParameter, err)
			}
			if errors.Is(err, chparam.ErrTypeInferenceFailure) {
				return newOpError(KindTypeInferenceFailure, err)
			}
			return err
		}
		body, params = rewritten, wire
	}
	if err := c.sendQueryHeader(ctx, q, body, params); err != nil {
		return err
	}

	blk := q.Input
	for {
		if blk != nil {
			if err := c.sendDataBlock(blk); err != nil {
				return errors.Wrap(err, "send input block")
			}
		}
		if q.OnInput == nil {
			break
		}
		next, err := q.OnInput(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return errors.Wrap(err, "next input block")
		}
		blk = next
	}
	return c.sendBlankBlock()
}

func (c *Client) decodeResultBlock(code proto.ServerCode) (*proto.Block, error) {
	withTableName := proto.FeatureTempTables.In(c.protocolVersion)
	if code.Compressible() && c.compressAlgo != compress.AlgorithmNone {
		framed := compress.NewReader(c.reader.Raw())
		c.reader.EnableCompression(framed)
		defer c.reader.DisableCompression()
	}
	blk, err := proto.DecodeBlock(c.reader, proto.BuildOptions{Strings: c.opts.Strings}, withTableName)
	if err != nil {
		return nil, c.wireError(err)
	}
	return blk, nil
}

func extractProfileEvents(blk *proto.Block) []proto.ProfileEvent {
	host := blk.ColumnByName("host")
	name := blk.ColumnByName("name")
	value := blk.ColumnByName("value")
	if name == nil || value == nil {
		return nil
	}
	nameCol, ok := name.Data.(*proto.ColStr)
	if !ok {
		return nil
	}
	valueCol, ok := value.Data.(*proto.ColNum[int64])
	if !ok {
		return nil
	}
	out := make([]proto.ProfileEvent, blk.Rows())
	for i := range out {
		out[i].Name = nameCol.Row(i)
		out[i].Value = valueCol.Row(i)
		if host != nil {
			if hc, ok := host.Data.(*proto.ColStr); ok {
				out[i].Host = hc.Row(i)
			}
		}
	}
	return out
}

func (c *Client) handleResultPacket(ctx context.Context, code proto.ServerCode, q Query) error {
	switch code {
	case proto.ServerCodeProgress:
		p, err := proto.DecodeProgress(c.reader, c.protocolVersion)
		if err != nil {
			return c.wireError(err)
		}
		if q.OnProgress != nil {
			return q.OnProgress(ctx, p)
		}
		return nil
	case proto.ServerCodeProfileInfo:
		p, err := proto.DecodeProfile(c.reader)
		if err != nil {
			return c.wireError(err)
		}
		if q.OnProfile != nil {
			return q.OnProfile(ctx, p)
		}
		return nil
	case proto.ServerCodeTableColumns:
		if _, err := proto.DecodeTableColumns(c.reader); err != nil {
			return c.wireError(err)
		}
		return nil
	case proto.ServerCodeProfileEvents:
		blk, err := c.decodeResultBlock(code)
		if err != nil {
			return err
		}
		if q.OnProfileEvents != nil {
			return q.OnProfileEvents(ctx, extractProfileEvents(blk))
		}
		return nil
	case proto.ServerCodeLog:
		if _, err := c.decodeResultBlock(code); err != nil {
			return err
		}
		return nil
	default:
		return errors.Errorf("ch: unexpected packet %s", code)
	}
}

// cancelDrainTimeout bounds how long cancelQuery waits, after sending
// Cancel, for the server's already-buffered messages to reach a
// terminal EndOfStream/Exception. Exceeding it closes the connection
// rather than risking an unbounded wait on a stalled drain. A var, not
// a const, so tests can shrink it instead of waiting out the real
// timeout against an intentionally unresponsive fake server.
var cancelDrainTimeout = 5 * time.Second

// skipResultBlock advances past one Data/Totals/Extremes/ProfileEvents/
// Log block without materialising any column, toggling frame
// decompression the same way decodeResultBlock does for the
// materialising path.
func (c *Client) skipResultBlock(code proto.ServerCode) error {
	withTableName := proto.FeatureTempTables.In(c.protocolVersion)
	if code.Compressible() && c.compressAlgo != compress.AlgorithmNone {
		framed := compress.NewReader(c.reader.Raw())
		c.reader.EnableCompression(framed)
		defer c.reader.DisableCompression()
	}
	if err := proto.SkipBlock(c.reader, withTableName); err != nil {
		return c.wireError(err)
	}
	return nil
}

// cancelQuery sends a Cancel message, then drains the server's
// already-buffered in-flight messages (decoding them without exposing
// rows to the caller) until a terminal EndOfStream or Exception
// arrives, per the protocol's cancel contract. A clean drain leaves the
// connection usable; release restores it to Ready. A write failure, a
// decode failure, or an unterminated drain past cancelDrainTimeout
// closes the connection instead, since the wire is left in an unknown
// state.
func (c *Client) cancelQuery() error {
	b := proto.Buffer{}
	proto.ClientCodeCancel.Encode(&b)
	if _, err := c.conn.Write(b.Buf); err != nil {
		closeErr := c.Close()
		return multierr.Append(errors.Wrap(err, "write cancel"), closeErr)
	}

	deadline := time.Now().Add(cancelDrainTimeout)
	for {
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			closeErr := c.Close()
			return multierr.Append(errors.Wrap(err, "set drain deadline"), closeErr)
		}
		code, err := proto.DecodeServerCode(c.reader)
		if err != nil {
			closeErr := c.Close()
			return multierr.Append(errors.Wrap(err, "drain cancel"), closeErr)
		}
		switch code {
		case proto.ServerCodeData, proto.ServerCodeTotals, proto.ServerCodeExtremes, proto.ServerCodeProfileEvents, proto.ServerCodeLog:
			if err := c.skipResultBlock(code); err != nil {
				closeErr := c.Close()
				return multierr.Append(errors.Wrap(err, "drain block"), closeErr)
			}
		case proto.ServerCodeProgress:
			if _, err := proto.DecodeProgress(c.reader, c.protocolVersion); err != nil {
				closeErr := c.Close()
				return multierr.Append(c.wireError(err), closeErr)
			}
		case proto.ServerCodeProfileInfo:
			if _, err := proto.DecodeProfile(c.reader); err != nil {
				closeErr := c.Close()
				return multierr.Append(c.wireError(err), closeErr)
			}
		case proto.ServerCodeTableColumns:
			if _, err := proto.DecodeTableColumns(c.reader); err != nil {
				closeErr := c.Close()
				return multierr.Append(c.wireError(err), closeErr)
			}
		case proto.ServerCodeEndOfStream:
			return c.conn.SetReadDeadline(time.Time{})
		case proto.ServerCodeException:
			if _, err := proto.DecodeException(c.reader); err != nil {
				closeErr := c.Close()
				return multierr.Append(c.wireError(err), closeErr)
			}
			return c.conn.SetReadDeadline(time.Time{})
		default:
			closeErr := c.Close()
			return multierr.Append(errors.Errorf("ch: unexpected packet %s during cancel drain", code), closeErr)
		}
	}
}

// Do executes q on the server, streaming results into q's callbacks
// until EndOfStream. Do is not reentrant: a second call while one is in
// flight on the same Client returns ErrConcurrentQuery.
func (c *Client) Do(ctx context.Context, q Query) (err error) {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	if q.QueryID == "" {
		q.QueryID = uuid.New().String()
	}
	lg := c.lg
	if q.Logger != nil {
		lg = q.Logger
	} else {
		lg = lg.With(zap.String("query_id", q.QueryID))
	}

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	var gotException atomic.Bool

	g.Go(func() error {
		if err := c.sendQuery(gctx, q); err != nil {
			return errors.Wrap(err, "send query")
		}
		return nil
	})
	g.Go(func() error {
		defer close(done)
		defer c.conn.SetReadDeadline(time.Time{})
		for {
			if gctx.Err() != nil {
				// The cancel-watcher goroutine takes over from here: it
				// sends Cancel and drains the server's remaining
				// messages, surfacing an error only if that drain fails.
				return nil
			}
			_ = c.conn.SetReadDeadline(time.Now().Add(readPollInterval))
			code, err := proto.DecodeServerCode(c.reader)
			if err != nil {
				var netErr net.Error
				if errors.As(err, &netErr) && netErr.Timeout() {
					continue
				}
				return c.wireError(err)
			}
			switch code {
			case proto.ServerCodeData, proto.ServerCodeTotals, proto.ServerCodeExtremes:
				blk, err := c.decodeResultBlock(code)
				if err != nil {
					return err
				}
				if q.schemaCh != nil {
					select {
					case q.schemaCh <- blk:
					case <-gctx.Done():
						return nil
					}
					q.schemaCh = nil
					continue
				}
				if q.OnResult != nil && blk.Rows() > 0 {
					if err := q.OnResult(gctx, blk); err != nil {
						return errors.Wrap(err, "on result")
					}
				}
			case proto.ServerCodeEndOfStream:
				return nil
			case proto.ServerCodeException:
				exc, err := proto.DecodeException(c.reader)
				if err != nil {
					return c.wireError(err)
				}
				gotException.Store(true)
				return newOpError(KindServerError, exc)
			default:
				if err := c.handleResultPacket(gctx, code, q); err != nil {
					return errors.Wrap(err, "handle packet")
				}
			}
		}
	})
	g.Go(func() error {
		<-done
		if ctx.Err() != nil && !gotException.Load() {
			if err := c.cancelQuery(); err != nil {
				return multierr.Append(ctx.Err(), err)
			}
		}
		return nil
	})

	if werr := g.Wait(); werr != nil {
		lg.Debug("query failed", zap.Error(werr))
		// A server Exception is a clean terminal message, and a
		// parameter error never put anything on the wire; every other
		// failure leaves the connection's read/write position out of
		// sync with the server, so it can't be handed back to the pool.
		var op *OpError
		prewire := errors.As(werr, &op) && (op.Kind == KindMissingParameter || op.Kind == KindTypeInferenceFailure)
		if !gotException.Load() && !prewire {
			_ = c.Close()
		}
		return werr
	}
	return nil
}

package ch

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/chnative/ch/proto"
)

// handshake performs the initial ClientHello/ServerHello exchange and
// records the negotiated protocol revision. The discriminator of the
// first response disambiguates a successful ServerHello from an
// authentication-failure Exception.
func (c *Client) handshake(ctx context.Context) error {
	c.state.Store(int32(StateHandshaking))

	hello := proto.ClientHello{
		Name:            c.version.Name,
		Major:           c.version.Major,
		Minor:           c.version.Minor,
		ProtocolVersion: proto.ClientTCPProtocolVersion,
		Database:        c.opts.Database,
		User:            c.opts.User,
		Password:        c.opts.Password,
	}
	c.writer.ChainBuffer(func(b *proto.Buffer) {
		hello.Encode(b)
	})
	if _, err := c.writer.Flush(); err != nil {
		return newOpError(KindTransport, errors.Wrap(err, "flush hello"))
	}

	code, err := proto.DecodeServerCode(c.reader)
	if err != nil {
		return c.wireError(errors.Wrap(err, "handshake response"))
	}
	switch code {
	case proto.ServerCodeHello:
		sh, err := proto.DecodeServerHello(c.reader, proto.ClientTCPProtocolVersion)
		if err != nil {
			return c.wireError(errors.Wrap(err, "server hello"))
		}
		c.serverInfo = sh
		c.protocolVersion = sh.Revision
		if proto.ClientTCPProtocolVersion < c.protocolVersion {
			c.protocolVersion = proto.ClientTCPProtocolVersion
		}
		return nil
	case proto.ServerCodeException:
		exc, err := proto.DecodeException(c.reader)
		if err != nil {
			return c.wireError(errors.Wrap(err, "handshake exception"))
		}
		return newOpError(KindServerError, exc)
	default:
		return errors.Errorf("ch: unexpected packet %s during handshake", code)
	}
}

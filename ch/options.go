package ch

import (
	"time"

	"go.uber.org/zap"

	"github.com/chnative/ch/compress"
	"github.com/chnative/ch/proto"
)

// Options configures Dial.
type Options struct {
	// Address is the "host:port" of the server's native TCP endpoint.
	// Defaults to "localhost:9000".
	Address string
	// Database to use for the session. Defaults to "default".
	Database string
	// User to authenticate as. Defaults to "default".
	User string
	// Password to authenticate with. Optional.
	Password string

	// Compression selects the block compression algorithm. Defaults to
	// compress.AlgorithmNone.
	Compression compress.Algorithm
	// CompressionLevel is codec-specific; zero selects the codec default.
	CompressionLevel int

	// Strings selects how String columns materialise decoded rows.
	// Defaults to proto.StringEager.
	Strings proto.StringMode

	// Settings are sent with every query issued on this connection, in
	// addition to any query-scoped settings.
	Settings []Setting

	// DialTimeout bounds the initial TCP connect and handshake. Defaults
	// to 10s.
	DialTimeout time.Duration

	// ClientName overrides the name this client presents in its
	// ClientHello and every query's ClientInfo.
	ClientName string

	// Logger receives a structured debug entry for each failed query.
	// Defaults to a no-op logger.
	Logger *zap.Logger
}

func (o *Options) setDefaults() {
	if o.Address == "" {
		o.Address = "localhost:9000"
	}
	if o.Database == "" {
		o.Database = "default"
	}
	if o.User == "" {
		o.User = "default"
	}
	if o.DialTimeout == 0 {
		o.DialTimeout = 10 * time.Second
	}
	if o.ClientName == "" {
		o.ClientName = defaultVersion.Name
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

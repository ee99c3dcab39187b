package proto

import "github.com/go-faster/errors"

// Interface identifies the wire protocol a client connected over; this
// library only ever emits InterfaceTCP.
type Interface uint8

const (
	InterfaceTCP  Interface = 1
	InterfaceHTTP Interface = 2
)

// ClientQueryKind distinguishes an initial query from one forwarded by a
// distributed-query initiator.
type ClientQueryKind uint8

const (
	ClientQueryInitial      ClientQueryKind = 1
	ClientQuerySecondary    ClientQueryKind = 2
	ClientQueryNoQuery      ClientQueryKind = 0
)

// ClientInfo is serialised as part of every Query message, describing
// the issuing client to the server for logging/accounting.
type ClientInfo struct {
	ProtocolVersion int
	Major, Minor, Patch int

	Query          ClientQueryKind
	InitialUser    string
	InitialQueryID string
	InitialAddress string
	InitialTime    int64

	Interface Interface

	OSUser         string
	ClientHostname string
	ClientName     string

	QuotaKey string
}

// EncodeAware serialises ClientInfo, honoring the negotiated revision's
// feature gates.
func (c ClientInfo) EncodeAware(b *Buffer, revision int) {
	b.PutUInt8(uint8(c.Query))
	if c.Query == ClientQueryNoQuery {
		return
	}
	b.PutString(c.InitialUser)
	b.PutString(c.InitialQueryID)
	b.PutString(c.InitialAddress)
	if FeatureWithClientWriteInfo.In(revision) {
		b.PutInt64(c.InitialTime)
	}
	b.PutUInt8(uint8(c.Interface))
	b.PutString(c.OSUser)
	b.PutString(c.ClientHostname)
	b.PutString(c.ClientName)
	b.PutUVarInt(uint64(c.Major))
	b.PutUVarInt(uint64(c.Minor))
	b.PutUVarInt(uint64(c.ProtocolVersion))
	if FeatureWithTimezone.In(revision) {
		// quota_key is actually gated on WithQuotaKeyInClientInfo in
		// later revisions; this client always emits it once Timezone
		// support implies a modern-enough server.
		b.PutString(c.QuotaKey)
	}
	if FeatureWithVersionPatch.In(revision) {
		b.PutUVarInt(uint64(c.Patch))
	}
	if FeatureWithOpenTelemetry.In(revision) {
		b.PutUInt8(0) // no tracing span propagated
	}
	if FeatureWithParameters.In(revision) {
		b.PutUVarInt(0) // no nested distributed-depth counter tracked
	}
}

// DecodeAware is unused by this client (ClientInfo only ever flows
// client->server) but kept for symmetry with the wire description and
// for tests that round-trip the struct.
func (c *ClientInfo) DecodeAware(r *Reader, revision int) error {
	v, err := r.UInt8()
	if err != nil {
		return errors.Wrap(err, "client info query kind")
	}
	c.Query = ClientQueryKind(v)
	if c.Query == ClientQueryNoQuery {
		return nil
	}
	if c.InitialUser, err = r.Str(); err != nil {
		return errors.Wrap(err, "initial user")
	}
	if c.InitialQueryID, err = r.Str(); err != nil {
		return errors.Wrap(err, "initial query id")
	}
	if c.InitialAddress, err = r.Str(); err != nil {
		return errors.Wrap(err, "initial address")
	}
	if FeatureWithClientWriteInfo.In(revision) {
		if c.InitialTime, err = r.Int64(); err != nil {
			return errors.Wrap(err, "initial time")
		}
	}
	iface, err := r.UInt8()
	if err != nil {
		return errors.Wrap(err, "interface")
	}
	c.Interface = Interface(iface)
	if c.OSUser, err = r.Str(); err != nil {
		return errors.Wrap(err, "os user")
	}
	if c.ClientHostname, err = r.Str(); err != nil {
		return errors.Wrap(err, "client hostname")
	}
	if c.ClientName, err = r.Str(); err != nil {
		return errors.Wrap(err, "client name")
	}
	major, err := r.UVarInt()
	if err != nil {
		return errors.Wrap(err, "major")
	}
	c.Major = int(major)
	minor, err := r.UVarInt()
	if err != nil {
		return errors.Wrap(err, "minor")
	}
	c.Minor = int(minor)
	rev, err := r.UVarInt()
	if err != nil {
		return errors.Wrap(err, "protocol version")
	}
	c.ProtocolVersion = int(rev)
	if FeatureWithTimezone.In(revision) {
		if c.QuotaKey, err = r.Str(); err != nil {
			return errors.Wrap(err, "quota key")
		}
	}
	if FeatureWithVersionPatch.In(revision) {
		patch, err := r.UVarInt()
		if err != nil {
			return errors.Wrap(err, "patch")
		}
		c.Patch = int(patch)
	}
	if FeatureWithOpenTelemetry.In(revision) {
		if _, err := r.UInt8(); err != nil {
			return errors.Wrap(err, "otel flag")
		}
	}
	if FeatureWithParameters.In(revision) {
		if _, err := r.UVarInt(); err != nil {
			return errors.Wrap(err, "distributed depth")
		}
	}
	return nil
}

// Setting is one query- or connection-scoped server setting.
type Setting struct {
	Key       string
	Value     string
	Important bool
}

const (
	settingFlagImportant = 1
	settingFlagCustom    = 2
)

// EncodeSettings writes settings followed by the empty-string
// terminator.
func EncodeSettings(b *Buffer, settings []Setting) {
	for _, s := range settings {
		b.PutString(s.Key)
		flags := uint64(0)
		if s.Important {
			flags |= settingFlagImportant
		}
		b.PutUVarInt(flags)
		b.PutString(s.Value)
	}
	b.PutString("")
}

// Parameter is one query parameter in the parameters section of a Query
// message; Value is already in Field-dump form.
type Parameter struct {
	Key   string
	Value string
}

// EncodeParameters writes parameters (always flags=2, "custom") followed
// by the empty-string terminator.
func EncodeParameters(b *Buffer, params []Parameter) {
	for _, p := range params {
		b.PutString(p.Key)
		b.PutUVarInt(settingFlagCustom)
		b.PutString(p.Value)
	}
	b.PutString("")
}

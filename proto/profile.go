package proto

import "github.com/go-faster/errors"

// Profile carries per-block execution statistics (ProfileInfo message).
type Profile struct {
	Rows                      uint64
	Blocks                    uint64
	Bytes                     uint64
	AppliedLimit              bool
	RowsBeforeLimit           uint64
	CalculatedRowsBeforeLimit bool
}

// DecodeProfile reads a ProfileInfo payload (discriminator already
// consumed).
func DecodeProfile(r *Reader) (Profile, error) {
	var p Profile
	var err error
	if p.Rows, err = r.UVarInt(); err != nil {
		return p, errors.Wrap(err, "rows")
	}
	if p.Blocks, err = r.UVarInt(); err != nil {
		return p, errors.Wrap(err, "blocks")
	}
	if p.Bytes, err = r.UVarInt(); err != nil {
		return p, errors.Wrap(err, "bytes")
	}
	if p.AppliedLimit, err = r.Bool(); err != nil {
		return p, errors.Wrap(err, "applied limit")
	}
	if p.RowsBeforeLimit, err = r.UVarInt(); err != nil {
		return p, errors.Wrap(err, "rows before limit")
	}
	if p.CalculatedRowsBeforeLimit, err = r.Bool(); err != nil {
		return p, errors.Wrap(err, "calculated rows before limit")
	}
	return p, nil
}

// ProfileEvent is one named counter/gauge sample from the server's
// ProfileEvents block stream.
type ProfileEvent struct {
	Host  string
	Time  int64
	Name  string
	Value int64
	Type  int8
}

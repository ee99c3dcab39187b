package proto

import "github.com/go-faster/errors"

// Progress reports incremental work done by the server for the
// in-flight query; values are deltas, not cumulative totals.
type Progress struct {
	Rows                 uint64
	Bytes                uint64
	TotalRows            uint64
	WrittenRows          uint64
	WrittenBytes         uint64
	TotalBytesInProgress uint64
	ElapsedNS            uint64
}

// DecodeProgress reads a Progress payload (discriminator already
// consumed).
func DecodeProgress(r *Reader, revision int) (Progress, error) {
	var p Progress
	var err error
	if p.Rows, err = r.UVarInt(); err != nil {
		return p, errors.Wrap(err, "rows")
	}
	if p.Bytes, err = r.UVarInt(); err != nil {
		return p, errors.Wrap(err, "bytes")
	}
	if FeatureWithTotalBytesInProgress.In(revision) {
		if p.TotalRows, err = r.UVarInt(); err != nil {
			return p, errors.Wrap(err, "total rows")
		}
	}
	if FeatureWithClientWriteInfo.In(revision) {
		if p.WrittenRows, err = r.UVarInt(); err != nil {
			return p, errors.Wrap(err, "written rows")
		}
		if p.WrittenBytes, err = r.UVarInt(); err != nil {
			return p, errors.Wrap(err, "written bytes")
		}
	}
	if FeatureWithTotalBytesInProgress.In(revision) {
		if p.TotalBytesInProgress, err = r.UVarInt(); err != nil {
			return p, errors.Wrap(err, "total bytes in progress")
		}
	}
	if FeatureWithServerQueryTimeInProgress.In(revision) {
		if p.ElapsedNS, err = r.UVarInt(); err != nil {
			return p, errors.Wrap(err, "elapsed ns")
		}
	}
	return p, nil
}

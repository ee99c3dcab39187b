package proto

import "github.com/go-faster/errors"

// PasswordComplexityRule is one (pattern, message) pair a server may
// advertise during handshake for client-side password validation; this
// client has no interactive password entry and only retains the rules
// for callers that want to surface them.
type PasswordComplexityRule struct {
	Pattern string
	Message string
}

// ServerHello is the server's handshake response: name/version/revision,
// plus fields gated by the negotiated revision.
type ServerHello struct {
	Name                  string
	Major, Minor, Revision int
	Timezone              string
	DisplayName           string
	Patch                 int
	PasswordComplexityRules []PasswordComplexityRule
	Nonce                 uint64
}

// DecodeServerHello reads a ServerHello payload (the discriminator has
// already been consumed by the caller). clientRevision gates which
// optional fields are expected: the server encodes fields up to
// min(clientRevision, its own revision), so the client decodes by its
// own declared feature knowledge rather than by the server's raw
// revision number.
func DecodeServerHello(r *Reader, clientRevision int) (*ServerHello, error) {
	h := &ServerHello{}
	var err error
	if h.Name, err = r.Str(); err != nil {
		return nil, errors.Wrap(err, "name")
	}
	major, err := r.UVarInt()
	if err != nil {
		return nil, errors.Wrap(err, "major")
	}
	h.Major = int(major)
	minor, err := r.UVarInt()
	if err != nil {
		return nil, errors.Wrap(err, "minor")
	}
	h.Minor = int(minor)
	revision, err := r.UVarInt()
	if err != nil {
		return nil, errors.Wrap(err, "revision")
	}
	h.Revision = int(revision)

	negotiated := h.Revision
	if clientRevision < negotiated {
		negotiated = clientRevision
	}

	if FeatureWithTimezone.In(negotiated) {
		if h.Timezone, err = r.Str(); err != nil {
			return nil, errors.Wrap(err, "timezone")
		}
	}
	if FeatureWithServerDisplayName.In(negotiated) {
		if h.DisplayName, err = r.Str(); err != nil {
			return nil, errors.Wrap(err, "display name")
		}
	}
	if FeatureWithVersionPatch.In(negotiated) {
		patch, err := r.UVarInt()
		if err != nil {
			return nil, errors.Wrap(err, "patch")
		}
		h.Patch = int(patch)
	} else {
		h.Patch = h.Revision
	}
	if FeatureWithPasswordComplexityRules.In(negotiated) {
		count, err := r.UVarInt()
		if err != nil {
			return nil, errors.Wrap(err, "rules count")
		}
		h.PasswordComplexityRules = make([]PasswordComplexityRule, 0, count)
		for i := uint64(0); i < count; i++ {
			pattern, err := r.Str()
			if err != nil {
				return nil, errors.Wrapf(err, "rule[%d] pattern", i)
			}
			message, err := r.Str()
			if err != nil {
				return nil, errors.Wrapf(err, "rule[%d] message", i)
			}
			h.PasswordComplexityRules = append(h.PasswordComplexityRules, PasswordComplexityRule{
				Pattern: pattern, Message: message,
			})
		}
	}
	if FeatureWithInterServerSecretV2.In(negotiated) {
		nonce, err := r.UInt64()
		if err != nil {
			return nil, errors.Wrap(err, "nonce")
		}
		h.Nonce = nonce
	}
	return h, nil
}

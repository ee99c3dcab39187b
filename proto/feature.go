package proto

// Feature is a protocol revision threshold: a capability is present
// whenever the negotiated revision is at least the feature's value.
type Feature int

// Revision thresholds from the ClickHouse native protocol (not listed in
// numeric order). A client must never emit or expect a
// revision-gated field unless its declared revision is at least the
// threshold.
const (
	FeatureWithTimezone                  Feature = 54058
	FeatureWithServerDisplayName         Feature = 54372
	FeatureWithVersionPatch              Feature = 54401
	FeatureWithServerLogs                Feature = 54406
	FeatureWithClientWriteInfo           Feature = 54420
	FeatureWithSettingsSerializedAsStrings Feature = 54429
	FeatureWithInterServerSecret         Feature = 54441
	FeatureWithOpenTelemetry             Feature = 54442
	FeatureWithParameters                Feature = 54459
	FeatureWithCustomSerialization       Feature = 54454
	FeatureWithTotalBytesInProgress      Feature = 54451
	FeatureWithServerQueryTimeInProgress Feature = 54460
	FeatureWithPasswordComplexityRules   Feature = 54461
	FeatureWithInterServerSecretV2       Feature = 54462
	FeatureWithChunkedPackets            Feature = 54470

	// FeatureTempTables gates the table-name string that precedes every
	// Data block's body in both directions; every revision this client
	// negotiates satisfies it, but the gate is checked explicitly rather
	// than assumed.
	FeatureTempTables Feature = 50264
)

// In reports whether revision satisfies the feature gate.
func (f Feature) In(revision int) bool { return revision >= int(f) }

// ClientTCPProtocolVersion is the highest revision this client declares
// support for; the negotiated revision with any server is
// min(ClientTCPProtocolVersion, server revision).
const ClientTCPProtocolVersion = 54465

// DBMSVersionMajor/Minor identify this client to the server during Hello.
const (
	DBMSVersionMajor = 24
	DBMSVersionMinor = 8
)

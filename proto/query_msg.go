package proto

// QueryProcessingStage identifies how far the server should carry a
// query before returning results; this client always requests Complete.
type QueryProcessingStage uint64

const (
	StageFetchColumns      QueryProcessingStage = 0
	StageWithMergeableState QueryProcessingStage = 1
	StageComplete          QueryProcessingStage = 2
)

// Compression indicates whether block bodies are framed per §4.2.
type Compression uint8

const (
	CompressionDisabled Compression = 0
	CompressionEnabled  Compression = 1
)

// Query is the client's query-submission message.
type Query struct {
	ID          string
	Body        string
	Secret      string
	Stage       QueryProcessingStage
	Compression Compression
	Settings    []Setting
	Parameters  []Parameter
	Info        ClientInfo
}

// Encode writes the discriminator and payload in wire order: query_id,
// ClientInfo, settings, inter-server secret (when the revision supports
// it), stage, compression flag, query text, parameters.
func (q Query) Encode(b *Buffer, revision int) {
	ClientCodeQuery.Encode(b)
	b.PutString(q.ID)
	q.Info.EncodeAware(b, revision)
	EncodeSettings(b, q.Settings)
	if FeatureWithInterServerSecret.In(revision) {
		b.PutString(q.Secret)
	}
	b.PutUVarInt(uint64(q.Stage))
	b.PutUInt8(uint8(q.Compression))
	b.PutString(q.Body)
	if FeatureWithParameters.In(revision) {
		EncodeParameters(b, q.Parameters)
	}
}

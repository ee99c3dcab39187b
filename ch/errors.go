package ch

import "github.com/go-faster/errors"

// ErrorKind classifies a client-side failure into the categories a caller
// can usefully branch on, independent of the underlying wrapped error.
type ErrorKind string

const (
	KindMalformedWire                ErrorKind = "malformed_wire"
	KindChecksumMismatch             ErrorKind = "checksum_mismatch"
	KindUnsupportedAlgorithm         ErrorKind = "unsupported_algorithm"
	KindUnsupportedJSONSerialization ErrorKind = "unsupported_json_serialization"
	KindUnsupportedBulkInsertColumn  ErrorKind = "unsupported_bulk_insert_column"
	KindMalformedType                ErrorKind = "malformed_type"
	KindServerError                  ErrorKind = "server_error"
	KindConcurrentQuery              ErrorKind = "concurrent_query"
	KindMissingParameter             ErrorKind = "missing_parameter"
	KindTypeInferenceFailure         ErrorKind = "type_inference_failure"
	KindTimeout                      ErrorKind = "timeout"
	KindTransport                    ErrorKind = "transport"
)

// OpError wraps a failure with the ErrorKind a caller should match on.
type OpError struct {
	Kind ErrorKind
	Err  error
}

func (e *OpError) Error() string { return string(e.Kind) + ": " + e.Err.Error() }
func (e *OpError) Unwrap() error { return e.Err }

func newOpError(kind ErrorKind, err error) *OpError {
	return &OpError{Kind: kind, Err: err}
}

var (
	// ErrClosed is returned by any operation on a closed or not-yet-ready
	// connection.
	ErrClosed = errors.New("ch: connection closed")
	// ErrConcurrentQuery is returned when a second operation is attempted
	// on a connection that already has one in flight; a connection is
	// single-owner and non-reentrant.
	ErrConcurrentQuery = errors.New("ch: concurrent query on single connection")
	// ErrUnsupportedBulkInsertColumn is returned by an Inserter when a
	// target column's type has no append strategy in its block builder.
	ErrUnsupportedBulkInsertColumn = errors.New("ch: unsupported bulk insert column")
)

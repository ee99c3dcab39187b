package ch

// State is a connection's lifecycle stage. A connection is single-owner:
// only one query or insert may be active at a time, enforced by an
// atomic transition out of StateReady into StateQueryActive and back.
type State int32

const (
	StateClosed State = iota
	StateConnecting
	StateHandshaking
	StateReady
	StateQueryActive
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateQueryActive:
		return "query_active"
	default:
		return "unknown"
	}
}

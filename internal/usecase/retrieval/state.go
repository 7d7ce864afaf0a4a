package retrieval

// State is the gateway lifecycle state.
type State int32

const (
	// Uninitialized means no connection was attempted yet.
	Uninitialized State = iota
	// Connecting means a connection attempt is in flight.
	Connecting
	// Ready means the connection is established and retrievals are served.
	Ready
	// Failed means the connection attempt failed. Terminal.
	Failed
	// Closed means Close was called. Terminal.
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Connecting:
		return "connecting"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

package pubsub

type State int

const (
	StateConnecting State = iota
	StateSending
	StateListening
	StateDraining
	StateTimedOut
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateSending:
		return "sending"
	case StateListening:
		return "listening"
	case StateDraining:
		return "draining"
	case StateTimedOut:
		return "timed_out"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) Terminal() bool {
	return s == StateTimedOut || s == StateClosed || s == StateFailed
}

// Termination records why a session ended without error.
type Termination int

const (
	TerminationNone Termination = iota
	// TerminationClosed: the server closed the stream or sent an empty batch.
	TerminationClosed
	// TerminationTimedOut: the overall deadline expired.
	TerminationTimedOut
	// TerminationDrained: the consumer asked to stop.
	TerminationDrained
)

func (t Termination) String() string {
	switch t {
	case TerminationClosed:
		return "closed"
	case TerminationTimedOut:
		return "timed_out"
	case TerminationDrained:
		return "drained"
	default:
		return "none"
	}
}

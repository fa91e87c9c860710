package recommend

// State is the controller's position in the watch lifecycle.
type State int

const (
	StateIdle State = iota
	StateChecking
	StateGenerating
	StatePolling
	StateReady
	StateTimedOut
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChecking:
		return "checking"
	case StateGenerating:
		return "generating"
	case StatePolling:
		return "polling"
	case StateReady:
		return "ready"
	case StateTimedOut:
		return "timed_out"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further cycles run in this state.
func (s State) Terminal() bool {
	return s == StateReady || s == StateTimedOut || s == StateFailed
}

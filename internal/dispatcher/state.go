package dispatcher

// State is the phase a tree's in-flight dispatch is in.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateExecuting
	StateApplying
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateExecuting:
		return "executing"
	case StateApplying:
		return "applying"
	default:
		return "idle"
	}
}

package streams

type State int

const (
	StateWorking State = iota
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateWorking:
		return "working"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

package dispatch

import "fmt"

type State int32

const (
	StateOpen State = iota
	StateDegraded
	StateClosed
)

var stateNames = []string{"open", "degraded", "closed"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

package recorder

import "github.com/vsariola/autorec"

// Action is a lifecycle action for a recording session, decided by the mode
// state machine.
type Action int

const (
	NoAction Action = iota
	PunchIn
	PunchOut
	// PunchOutThenLatch punches out and switches the parameter to Latch, so
	// the next gesture continues overwriting without arming again.
	PunchOutThenLatch
)

func (a Action) String() string {
	switch a {
	case PunchIn:
		return "punch-in"
	case PunchOut:
		return "punch-out"
	case PunchOutThenLatch:
		return "punch-out-then-latch"
	}
	return "none"
}

// ResolveGestureEnd returns what to do when the user lets go of a control
// of a parameter in mode m.
func ResolveGestureEnd(m autorec.Mode) Action {
	switch m {
	case autorec.Touch:
		return PunchOut
	case autorec.Write:
		return PunchOutThenLatch
	default: // read records nothing, latch holds until the transport stops
		return NoAction
	}
}

// ResolveModeChange returns what to do when the user switches a parameter
// from mode old to mode new. Write punches in immediately when the transport
// plays; switching to read ends any recording.
func ResolveModeChange(old, new autorec.Mode, playing, recording bool) Action {
	switch {
	case old == new:
		return NoAction
	case new == autorec.Read && recording:
		return PunchOut
	case new == autorec.Write && playing && !recording:
		return PunchIn
	}
	return NoAction
}

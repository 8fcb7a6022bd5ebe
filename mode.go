package autorec

import (
	"fmt"
	"strings"
)

// Mode is the automation recording mode of a parameter.
//
//   - Read: the curve is played back, nothing is recorded.
//   - Touch: recording starts when the user touches the control and stops
//     when the gesture ends.
//   - Latch: recording starts when the user touches the control and keeps
//     holding the last value until playback stops.
//   - Write: recording starts as soon as playback starts; at the end of the
//     first gesture the parameter switches to Latch.
type Mode int

const (
	Read Mode = iota
	Touch
	Latch
	Write
)

var modeNames = [...]string{"read", "touch", "latch", "write"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Records returns true for the modes that can open a recording session.
func (m Mode) Records() bool { return m == Touch || m == Latch || m == Write }

// ParseMode parses the lower or upper case name of a mode.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(n, s) {
			return Mode(i), nil
		}
	}
	return Read, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
	}
	return []byte(modeNames[m]), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

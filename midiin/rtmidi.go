//go:build cgo

package midiin

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Input is an open MIDI input port feeding a Router.
type Input struct {
	driver *rtmididrv.Driver
	in     drivers.In
	stop   func()
}

// Ports lists the names of the available MIDI input ports.
func Ports() ([]string, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDriver, err)
	}
	defer driver.Close()
	ins, err := driver.Ins()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI inputs failed: %w", err)
	}
	ret := make([]string, len(ins))
	for i, in := range ins {
		ret[i] = in.String()
	}
	return ret, nil
}

// Open opens the first input port whose name starts with namePrefix (the
// first port at all if namePrefix is empty) and starts routing its messages
// to r.
func Open(namePrefix string, r *Router) (*Input, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDriver, err)
	}
	ins, err := driver.Ins()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("listing MIDI inputs failed: %w", err)
	}
	for _, in := range ins {
		if !strings.HasPrefix(in.String(), namePrefix) {
			continue
		}
		if err := in.Open(); err != nil {
			driver.Close()
			return nil, fmt.Errorf("opening MIDI input failed: %w", err)
		}
		stop, err := midi.ListenTo(in, r.HandleMessage)
		if err != nil {
			in.Close()
			driver.Close()
			return nil, fmt.Errorf("listening to MIDI input failed: %w", err)
		}
		r.log.WithField("port", in.String()).Info("midi input opened")
		return &Input{driver: driver, in: in, stop: stop}, nil
	}
	driver.Close()
	return nil, fmt.Errorf("could not find any MIDI input starting with %q", namePrefix)
}

func (i *Input) String() string { return i.in.String() }

func (i *Input) Close() error {
	i.stop()
	if i.in.IsOpen() {
		i.in.Close()
	}
	return i.driver.Close()
}

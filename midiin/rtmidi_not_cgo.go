//go:build !cgo

package midiin

// Input is a MIDI input port. Without cgo there is no driver, so no port can
// be opened.
type Input struct{}

func Ports() ([]string, error) { return nil, ErrNoDriver }

func Open(namePrefix string, r *Router) (*Input, error) { return nil, ErrNoDriver }

func (i *Input) String() string { return "" }

func (i *Input) Close() error { return nil }

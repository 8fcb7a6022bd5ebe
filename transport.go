package autorec

import (
	"math"
	"slices"
	"sync"
	"sync/atomic"
)

type (
	// Transport is the playback clock. The position is produced by the
	// real-time audio thread; readers only ever see a snapshot, which can
	// move backwards (when looping) or stay put (when paused) between two
	// reads.
	Transport interface {
		Position() float64
		IsPlaying() bool
		IsRecording() bool
		IsLooping() bool
		LoopRange() Range
		AddListener(l TransportListener)
	}

	// TransportListener is notified when playback starts or stops.
	TransportListener interface {
		PlaybackStateChanged(playing bool)
	}

	// TransportSnapshot is a consistent view of the transport at one moment.
	TransportSnapshot struct {
		Position float64
		Playing  bool
		Loop     Range // empty if not looping
	}

	// ManualTransport is a Transport whose state is set explicitly. It is
	// safe for concurrent use: the position can be advanced from an audio
	// thread while the control thread reads it.
	ManualTransport struct {
		position  atomic.Uint64 // float64 bits
		playing   atomic.Bool
		recording atomic.Bool

		mu        sync.Mutex
		loop      Range
		looping   bool
		listeners []TransportListener
	}
)

// TakeSnapshot reads the transport state once.
func TakeSnapshot(t Transport) TransportSnapshot {
	s := TransportSnapshot{Position: t.Position(), Playing: t.IsPlaying()}
	if t.IsLooping() {
		s.Loop = t.LoopRange()
	}
	return s
}

// Looping returns true if the snapshot has a non-empty loop range.
func (s TransportSnapshot) Looping() bool { return !s.Loop.IsEmpty() }

func (t *ManualTransport) Position() float64 {
	return math.Float64frombits(t.position.Load())
}

func (t *ManualTransport) SetPosition(pos float64) {
	t.position.Store(math.Float64bits(pos))
}

// Advance moves the position forward by delta seconds, wrapping around the
// loop range if looping. It returns the new position.
func (t *ManualTransport) Advance(delta float64) float64 {
	pos := t.Position() + delta
	t.mu.Lock()
	loop, looping := t.loop, t.looping
	t.mu.Unlock()
	if looping && !loop.IsEmpty() && pos >= loop.End {
		pos = loop.Start + math.Mod(pos-loop.Start, loop.Length())
	}
	t.SetPosition(pos)
	return pos
}

func (t *ManualTransport) IsPlaying() bool   { return t.playing.Load() }
func (t *ManualTransport) IsRecording() bool { return t.recording.Load() }

// SetPlaying starts or stops playback and notifies the listeners if the
// state changed.
func (t *ManualTransport) SetPlaying(v bool) {
	if t.playing.Swap(v) == v {
		return
	}
	t.mu.Lock()
	listeners := slices.Clone(t.listeners)
	t.mu.Unlock()
	for _, l := range listeners {
		l.PlaybackStateChanged(v)
	}
}

func (t *ManualTransport) SetRecording(v bool) { t.recording.Store(v) }

func (t *ManualTransport) IsLooping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.looping
}

func (t *ManualTransport) LoopRange() Range {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loop
}

// SetLoop sets the loop range; an empty range turns looping off.
func (t *ManualTransport) SetLoop(r Range) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loop = r
	t.looping = !r.IsEmpty()
}

func (t *ManualTransport) AddListener(l TransportListener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

package recorder

import (
	"fmt"
	"sync"
	"time"

	"github.com/vsariola/autorec"
)

type (
	// Broker is the message hub between the inputs (MIDI, OSC, scripts), the
	// control loop owning the Manager, and whatever monitors the recording
	// status. All communication is many-to-one, with one channel per
	// recipient.
	//
	// Closing the control loop uses two channels: CloseRecorder has a
	// capacity of 1, so an empty message can always be sent to it without
	// blocking (if it is full, closing was already requested). Nothing is
	// ever sent to FinishedRecorder; it is closed when the loop has exited.
	// Wait for it with a timeout:
	//    select {
	//      case <-FinishedRecorder:
	//      case <-time.After(3 * time.Second):
	//    }
	Broker struct {
		ToRecorder chan any
		ToMonitor  chan StatusMsg

		CloseRecorder    chan struct{}
		FinishedRecorder chan struct{}

		bufferPool sync.Pool
	}

	// ValueMsg sets the value of a parameter, as if the user moved its
	// control.
	ValueMsg struct {
		Param   *autorec.Parameter
		Value   float64
		Trigger autorec.Trigger
	}

	// GestureEndMsg tells that the user let go of the control of Param.
	GestureEndMsg struct {
		Param *autorec.Parameter
	}

	// ModeMsg switches the automation mode of Param.
	ModeMsg struct {
		Param *autorec.Parameter
		Mode  autorec.Mode
	}

	// DeleteMsg deletes Param; its open session is dropped.
	DeleteMsg struct {
		Param *autorec.Parameter
	}

	// PlayMsg starts or stops the transport.
	PlayMsg struct {
		Playing bool
	}

	// LoopMsg sets the loop range of the transport; an empty range turns
	// looping off.
	LoopMsg struct {
		Loop autorec.Range
	}

	// PositionMsg moves the play head.
	PositionMsg struct {
		Position float64
	}

	// FlushMsg forces a flush of all open sessions.
	FlushMsg struct{}

	// FuncMsg is executed in the control loop goroutine; it is a way to read
	// state owned by the loop.
	FuncMsg func()

	// StatusMsg is sent to the monitor when a parameter starts or stops
	// recording.
	StatusMsg struct {
		Param     *autorec.Parameter
		Recording bool
		Time      float64
	}

	// TransportControl is the part of a transport the control loop can
	// drive.
	TransportControl interface {
		autorec.Transport
		SetPlaying(bool)
		SetLoop(autorec.Range)
		SetPosition(float64)
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToRecorder:       make(chan any, 1024),
		ToMonitor:        make(chan StatusMsg, 1024),
		CloseRecorder:    make(chan struct{}, 1),
		FinishedRecorder: make(chan struct{}),
		bufferPool:       sync.Pool{New: func() any { return &[]float32{} }},
	}
}

// GetAudioBuffer returns an empty sample buffer from the pool. Return it with
// PutAudioBuffer after use.
func (b *Broker) GetAudioBuffer() *[]float32 {
	return b.bufferPool.Get().(*[]float32)
}

// PutAudioBuffer returns a buffer to the pool, truncated but keeping its
// capacity.
func (b *Broker) PutAudioBuffer(buf *[]float32) {
	if len(*buf) > 0 {
		*buf = (*buf)[:0]
	}
	b.bufferPool.Put(buf)
}

// Monitor returns a Listener forwarding recording status changes to
// ToMonitor. Messages are dropped if nobody reads them.
func (b *Broker) Monitor(t autorec.Transport) Listener {
	return monitor{b: b, t: t}
}

type monitor struct {
	b *Broker
	t autorec.Transport
}

func (m monitor) RecordingStatusChanged(p *autorec.Parameter, recording bool) {
	TrySend(m.b.ToMonitor, StatusMsg{Param: p, Recording: recording, Time: m.t.Position()})
}

// RunControlLoop processes the messages sent to b.ToRecorder until
// b.CloseRecorder receives a message. On exit, all sessions are punched out
// and b.FinishedRecorder is closed.
func RunControlLoop(b *Broker, m *Manager, t TransportControl) {
	defer close(b.FinishedRecorder)
	defer m.Close(3 * time.Second)
	for {
		select {
		case <-b.CloseRecorder:
			return
		case msg := <-b.ToRecorder:
			handleMessage(m, t, msg)
		}
	}
}

func handleMessage(m *Manager, t TransportControl, msg any) {
	switch e := msg.(type) {
	case ValueMsg:
		e.Param.SetValue(e.Value, e.Trigger)
	case GestureEndMsg:
		e.Param.EndGesture()
	case ModeMsg:
		e.Param.SetMode(e.Mode)
	case DeleteMsg:
		e.Param.Delete()
	case PlayMsg:
		t.SetPlaying(e.Playing)
	case LoopMsg:
		t.SetLoop(e.Loop)
	case PositionMsg:
		m.Relocate(e.Position)
		t.SetPosition(e.Position)
	case FlushMsg:
		m.FlushAutomation()
	case FuncMsg:
		e()
	default:
		m.log.WithField("type", fmt.Sprintf("%T", msg)).Warn("control loop: unknown message")
	}
}

// TrySend sends v to c unless c is full, without ever blocking. It reports
// whether v was sent.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive waits at most t for a value from c. ok is false on timeout
// and when c is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}

// Package oto drives the transport clock from an audio device. The position
// advances by the number of frames the device has pulled, so the recorded
// times follow what is heard. A sine tone follows the automated value of one
// parameter, to monitor the recording.
package oto

import (
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/vsariola/autorec"
	"github.com/vsariola/autorec/recorder"
)

const (
	SampleRate     = 44100
	channelCount   = 2
	bytesPerSample = 4

	// the monitor tone spans two octaves over the parameter range
	lowFrequency  = 220.0
	highFrequency = 880.0
	amplitude     = 0.2
)

type (
	// Clock is a transport advanced by an audio stream. It implements
	// io.Reader, producing interleaved stereo float32 samples; each Read
	// advances the position by the duration of the frames read, when
	// playing. The sample buffers are borrowed from the broker's pool.
	Clock struct {
		autorec.ManualTransport

		broker  *recorder.Broker
		mu      sync.Mutex
		monitor *autorec.Parameter
		phase   float64
	}

	// Context is an open audio device playing a Clock.
	Context struct {
		context *oto.Context
		player  *oto.Player
	}
)

// NewClock returns a stopped clock at position 0.
func NewClock(broker *recorder.Broker) *Clock {
	return &Clock{broker: broker}
}

// SetMonitor sets the parameter whose value the monitor tone follows; nil
// silences the tone.
func (c *Clock) SetMonitor(p *autorec.Parameter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.monitor = p
}

// Read fills buf with whole frames of audio and advances the position.
func (c *Clock) Read(buf []byte) (int, error) {
	frames := len(buf) / (channelCount * bytesPerSample)
	if frames == 0 {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	samples := c.broker.GetAudioBuffer()
	defer c.broker.PutAudioBuffer(samples)
	playing := c.IsPlaying()
	tone := playing && c.monitor != nil
	var freq float64
	if tone {
		// the pitch is sampled once per buffer
		lo, hi := c.monitor.ValueRange()
		x := (c.monitor.ValueAt(c.Position()) - lo) / (hi - lo)
		freq = lowFrequency * math.Pow(highFrequency/lowFrequency, x)
	}
	for i := 0; i < frames; i++ {
		var s float32
		if tone {
			c.phase = math.Mod(c.phase+freq/SampleRate, 1)
			s = float32(amplitude * math.Sin(2*math.Pi*c.phase))
		}
		*samples = append(*samples, s, s)
		if playing {
			c.Advance(1.0 / SampleRate)
		}
	}
	return len(FloatBufferToFloat32LE(*samples, buf[:0])), nil
}

// NewContext opens the default audio device and starts pulling audio from
// clock.
func NewContext(clock *Clock) (*Context, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	player := context.NewPlayer(clock)
	player.Play()
	return &Context{context: context, player: player}, nil
}

func (c *Context) Close() error {
	if err := c.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

package autorec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vsariola/autorec"
)

type playListener []bool

func (l *playListener) PlaybackStateChanged(playing bool) { *l = append(*l, playing) }

func TestManualTransportAdvanceWraps(t *testing.T) {
	var tr autorec.ManualTransport
	tr.SetLoop(autorec.Range{Start: 1, End: 3})
	tr.SetPosition(2.5)
	assert.InDelta(t, 1.5, tr.Advance(1), 1e-12)
	assert.True(t, tr.IsLooping())

	tr.SetLoop(autorec.Range{})
	assert.False(t, tr.IsLooping())
	assert.InDelta(t, 3.5, tr.Advance(2), 1e-12)
}

func TestManualTransportNotifiesOnChange(t *testing.T) {
	var tr autorec.ManualTransport
	var l playListener
	tr.AddListener(&l)
	tr.SetPlaying(true)
	tr.SetPlaying(true)
	tr.SetPlaying(false)
	assert.Equal(t, playListener{true, false}, l)
}

func TestTakeSnapshot(t *testing.T) {
	var tr autorec.ManualTransport
	tr.SetPosition(0.75)
	tr.SetPlaying(true)
	s := autorec.TakeSnapshot(&tr)
	assert.Equal(t, 0.75, s.Position)
	assert.True(t, s.Playing)
	assert.False(t, s.Looping())

	tr.SetLoop(autorec.Range{Start: 0, End: 4})
	assert.True(t, autorec.TakeSnapshot(&tr).Looping())
}

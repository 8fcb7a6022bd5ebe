package autorec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/autorec"
)

type recordingListener struct {
	values  [][2]float64
	gesture int
	modes   [][2]autorec.Mode
	deleted int
}

func (l *recordingListener) CurrentValueChanged(p *autorec.Parameter, old, new float64, trigger autorec.Trigger) {
	l.values = append(l.values, [2]float64{old, new})
}
func (l *recordingListener) GestureEnded(p *autorec.Parameter) { l.gesture++ }
func (l *recordingListener) ModeChanged(p *autorec.Parameter, old, new autorec.Mode) {
	l.modes = append(l.modes, [2]autorec.Mode{old, new})
}
func (l *recordingListener) ParameterDeleted(p *autorec.Parameter) { l.deleted++ }

func TestNewParameterRejectsEmptyRange(t *testing.T) {
	_, err := autorec.NewParameter(autorec.ParameterConfig{Name: "x", Min: 1, Max: 1})
	assert.ErrorIs(t, err, autorec.ErrInvalidRange)
}

func TestSnapToState(t *testing.T) {
	cont, err := autorec.NewParameter(autorec.ParameterConfig{Name: "gain", Min: -1, Max: 1})
	require.NoError(t, err)
	assert.False(t, cont.IsDiscrete())
	assert.Equal(t, 0.3, cont.SnapToState(0.3))
	assert.Equal(t, 1.0, cont.SnapToState(7))

	disc, err := autorec.NewParameter(autorec.ParameterConfig{Name: "wave", Min: 0, Max: 1, States: 5})
	require.NoError(t, err)
	assert.True(t, disc.IsDiscrete())
	assert.Equal(t, 0.25, disc.SnapToState(0.3))
	assert.Equal(t, 0.75, disc.SnapToState(0.8))
	assert.Equal(t, 0.0, disc.SnapToState(-3))

	one, err := autorec.NewParameter(autorec.ParameterConfig{Name: "one", Min: 0, Max: 1, States: 1})
	require.NoError(t, err)
	assert.False(t, one.IsDiscrete())
}

func TestParameterNotifications(t *testing.T) {
	p, err := autorec.NewParameter(autorec.ParameterConfig{Name: "cutoff", Min: 0, Max: 1, Value: 0.2})
	require.NoError(t, err)
	l := &recordingListener{}
	p.AddListener(l)
	p.AddListener(l) // added once only

	p.SetValue(0.4, autorec.GestureTrigger)
	p.SetValue(0.4, autorec.GestureTrigger)
	assert.Equal(t, [][2]float64{{0.2, 0.4}, {0.4, 0.4}}, l.values)

	p.EndGesture()
	assert.Equal(t, 1, l.gesture)

	p.SetMode(autorec.Touch)
	p.SetMode(autorec.Touch)
	assert.Equal(t, [][2]autorec.Mode{{autorec.Read, autorec.Touch}}, l.modes)

	p.Delete()
	p.Delete()
	assert.Equal(t, 1, l.deleted)
	assert.True(t, p.IsDeleted())

	// deleted parameters are inert
	p.SetValue(0.9, autorec.GestureTrigger)
	p.EndGesture()
	assert.Len(t, l.values, 2)
	assert.Equal(t, 1, l.gesture)

	p.RemoveListener(l)
	p.SetMode(autorec.Write)
	assert.Len(t, l.modes, 1)
}

func TestValueAtHonoursBypass(t *testing.T) {
	p, err := autorec.NewParameter(autorec.ParameterConfig{Name: "pan", Min: 0, Max: 1, Value: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 0.5, p.ValueAt(1))
	p.SetCurve(points(0, 0, 2, 1))
	assert.Equal(t, 0.5, p.ValueAt(1))
	p.SetBypassed(true)
	assert.Equal(t, 0.5, p.ValueAt(1.5))
	assert.True(t, p.IsBypassed())
}

func TestRecordingStatus(t *testing.T) {
	p, err := autorec.NewParameter(autorec.ParameterConfig{Name: "pan", Min: 0, Max: 1})
	require.NoError(t, err)
	p.SetRecordingStatus(true)
	assert.True(t, p.IsRecording())
	p.ResetRecordingStatus()
	assert.False(t, p.IsRecording())
}

package script_test

import (
	"os"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/autorec"
	"github.com/vsariola/autorec/script"
)

func load(t *testing.T, text string) *script.Script {
	t.Helper()
	s, err := script.Load(strings.NewReader(text))
	require.NoError(t, err)
	return s
}

func TestLoopScript(t *testing.T) {
	f, err := os.Open("testdata/loop.yaml")
	require.NoError(t, err)
	defer f.Close()
	s, err := script.Load(f)
	require.NoError(t, err)
	logger, _ := logtest.NewNullLogger()
	r, err := script.NewRunner(s, autorec.DefaultSettings(), logger)
	require.NoError(t, err)
	require.NoError(t, r.Run(s.Events))

	p, ok := r.Lookup("cutoff")
	require.True(t, ok)
	assert.Equal(t, autorec.Write, p.Mode())
	assert.False(t, r.Manager.IsRecording())
	want := []autorec.Point{
		{Time: 0, Value: 0.2}, {Time: 0, Value: 0.8}, {Time: 0.2, Value: 0.3}, {Time: 1, Value: 0.5},
		{Time: 3.9, Value: 0.8}, {Time: 4, Value: 0.8},
	}
	assert.Equal(t, want, autorec.CopyCurve(p.Curve()).Points)
}

func TestPreExistingCurve(t *testing.T) {
	s := load(t, `
parameters:
  - name: pan
    max: 1
    mode: touch
    curve: [{time: 0, value: 0.1}, {time: 10, value: 0.1}]
events:
  - play: true
  - {at: 2, param: pan, value: 0.7}
  - {at: 3, param: pan, release: true}
`)
	logger, _ := logtest.NewNullLogger()
	settings := autorec.DefaultSettings()
	settings.SimplifyAfterRecording = false
	r, err := script.NewRunner(s, settings, logger)
	require.NoError(t, err)
	require.NoError(t, r.Run(s.Events))

	p, _ := r.Lookup("pan")
	assert.InDelta(t, 0.7, p.ValueAt(2.5), 1e-9)
	assert.InDelta(t, 0.1, p.ValueAt(9), 1e-9)
}

func TestRunErrors(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	tests := []struct {
		name, text, err string
	}{
		{"unknown param", "events:\n  - {param: nope, value: 1}\n", "unknown parameter"},
		{"value without param", "events:\n  - {value: 1}\n", "needs a param"},
		{"bad trigger", "parameters: [{name: a, max: 1}]\nevents:\n  - {param: a, value: 1, trigger: sometimes}\n", "sometimes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := load(t, tt.text)
			r, err := script.NewRunner(s, autorec.DefaultSettings(), logger)
			require.NoError(t, err)
			err = r.Run(s.Events)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestNewRunnerRejectsDuplicates(t *testing.T) {
	s := load(t, "parameters: [{name: a, max: 1}, {name: a, max: 1}]\n")
	logger, _ := logtest.NewNullLogger()
	_, err := script.NewRunner(s, autorec.DefaultSettings(), logger)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := script.Load(strings.NewReader("event: []\n"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownSettings(t *testing.T) {
	_, err := script.Load(strings.NewReader("settings:\n  simplfy: false\n"))
	require.ErrorIs(t, err, autorec.ErrInvalidSetting)
	assert.Contains(t, err.Error(), "simplfy")
}

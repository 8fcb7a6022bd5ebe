package autorec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/autorec"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	assert.NoError(t, autorec.DefaultSettings().Validate())
}

func TestLoadSettings(t *testing.T) {
	s, err := autorec.LoadSettings(strings.NewReader(`
glide: 0.1
strategy: whole-session
flush-interval: 50ms
`))
	require.NoError(t, err)
	assert.Equal(t, 0.1, s.GlideLength)
	assert.Equal(t, autorec.WholeSession, s.Strategy)
	assert.Equal(t, 50*time.Millisecond, s.FlushInterval)
	// untouched fields keep their defaults
	assert.Equal(t, autorec.DefaultSettings().GestureTimeout, s.GestureTimeout)
	assert.True(t, s.SimplifyAfterRecording)
}

func TestLoadSettingsEmpty(t *testing.T) {
	s, err := autorec.LoadSettings(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, autorec.DefaultSettings(), s)
}

func TestValidateJoinsErrors(t *testing.T) {
	s := autorec.DefaultSettings()
	s.GlideLength = -1
	s.Strategy = "sometimes"
	err := s.Validate()
	require.ErrorIs(t, err, autorec.ErrInvalidSetting)
	assert.Contains(t, err.Error(), "glide")
	assert.Contains(t, err.Error(), "sometimes")

	_, err = autorec.LoadSettings(strings.NewReader("loop-wrap-tolerance: -0.5\n"))
	assert.ErrorIs(t, err, autorec.ErrInvalidSetting)
}

func TestLoadSettingsRejectsUnknownKeys(t *testing.T) {
	_, err := autorec.LoadSettings(strings.NewReader("glide: 0.1\nglid-length: 3\n"))
	require.ErrorIs(t, err, autorec.ErrInvalidSetting)
	assert.Contains(t, err.Error(), "glid-length")
}

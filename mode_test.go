package autorec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/autorec"
	"gopkg.in/yaml.v3"
)

func TestParseMode(t *testing.T) {
	for _, m := range []autorec.Mode{autorec.Read, autorec.Touch, autorec.Latch, autorec.Write} {
		got, err := autorec.ParseMode(strings.ToUpper(m.String()))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := autorec.ParseMode("trim")
	assert.ErrorIs(t, err, autorec.ErrInvalidMode)
}

func TestModeRecords(t *testing.T) {
	assert.False(t, autorec.Read.Records())
	assert.True(t, autorec.Touch.Records())
	assert.True(t, autorec.Latch.Records())
	assert.True(t, autorec.Write.Records())
	assert.Equal(t, "Mode(9)", autorec.Mode(9).String())
}

func TestModeYAML(t *testing.T) {
	var cfg autorec.ParameterConfig
	require.NoError(t, yaml.Unmarshal([]byte("name: cutoff\nmin: 0\nmax: 1\nmode: latch\n"), &cfg))
	assert.Equal(t, autorec.Latch, cfg.Mode)
	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "mode: latch")
	assert.Error(t, yaml.Unmarshal([]byte("mode: loud\n"), &cfg))
}

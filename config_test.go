package duplexer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/itohio/duplexer/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		bubbling bool
		hwm      int
		framed   bool
	}{
		{"empty", "", true, 0, false},
		{"disabled", "errorBubbling: false\n", false, 0, false},
		{"full", "errorBubbling: true\nhighWaterMark: 1024\nframed: true\n", true, 1024, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(strings.NewReader(tt.yaml))
			require.NoError(t, err)
			bubbling, err := cfg.errorBubbling()
			require.NoError(t, err)
			assert.Equal(t, tt.bubbling, bubbling)
			assert.Equal(t, tt.hwm, cfg.HighWaterMark)
			assert.Equal(t, tt.framed, cfg.Framed)
		})
	}
}

func TestLoadConfig_TypeError(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("errorBubbling: 1\n"))
	require.Error(t, err)
	assert.Equal(t, "1 is not a Boolean value. `errorBubbling` option must be Boolean (`true` by default).", err.Error())
	assert.ErrorIs(t, err, errors.ErrInvalidType)

	_, err = LoadConfig(strings.NewReader("errorBubbling: yes please\n"))
	assert.ErrorIs(t, err, errors.ErrInvalidType)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("errorBubbling: [\n"))
	assert.Error(t, err)

	_, err = LoadConfig(strings.NewReader("highWaterMark: -5\n"))
	assert.ErrorIs(t, err, errors.ErrBadArgument)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duplex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("errorBubbling: false\nhighWaterMark: 8\n"), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, false, cfg.ErrorBubbling)
	assert.Equal(t, 8, cfg.HighWaterMark)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWithConfig(t *testing.T) {
	o := defaultOptions()
	require.NoError(t, o.Config(WithConfig(Config{ErrorBubbling: false, HighWaterMark: 64, Framed: true})))
	assert.False(t, o.bubbling)
	assert.Equal(t, 64, o.highWaterMark)
	assert.True(t, o.framed)

	o = defaultOptions()
	require.NoError(t, o.Config(WithConfig(Config{})))
	assert.True(t, o.bubbling)
	assert.Greater(t, o.highWaterMark, 0)

	o = defaultOptions()
	require.NoError(t, o.Config(WithErrorBubbling(false), WithConfig(Config{HighWaterMark: 10})))
	assert.False(t, o.bubbling, "unset errorBubbling keeps the earlier option")
	assert.Equal(t, 10, o.highWaterMark)

	o = defaultOptions()
	err := o.Config(WithConfig(Config{ErrorBubbling: "false"}))
	var typeErr *errors.TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "errorBubbling", typeErr.Option)
}

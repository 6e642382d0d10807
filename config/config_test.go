package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/rhythmdrill/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MIDI_OUT_PORT", "2")
	t.Setenv("PORT", "9090")
	c, err := Load("")
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(model.DefaultParams(), c.Params)
	assert.Equal(2, c.Transport.MidiPort)
	assert.Equal(":9090", c.Transport.Listen)
	assert.Equal("info", c.Transport.LogLevel)
}

func TestLoadOverridesAndClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drill.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
params:
  measures: 99
  restPercent: 35
  timeSignatures: ["7/8", "9/8"]
  tempo: 10
  sticking: paradiddle
  leadHand: L
  figures:
    quintuplets: true
transport:
  midiPort: 1
  measuresPerLine: 0
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(32, c.Params.Measures)
	assert.Equal(35, c.Params.RestPercent)
	assert.Equal([]string{"7/8"}, c.Params.TimeSignatures)
	assert.Equal(40, c.Params.Tempo)
	assert.Equal(model.Paradiddle, c.Params.Sticking)
	assert.Equal(model.Left, c.Params.LeadHand)
	assert.True(c.Params.Quintuplets)
	assert.True(c.Params.Quarters, "unset keys keep their defaults")
	assert.True(c.Params.Metronome)
	assert.Equal(1, c.Transport.MidiPort)
	assert.Equal(4, c.Transport.Systems)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drill.yaml")
	c := Default()
	c.Params.Measures = 8
	c.Params.Seed = 42
	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.Params, loaded.Params)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("params: [1, 2"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

package config

import (
	"os"

	"github.com/jsphweid/rhythmdrill/constants"
	"github.com/jsphweid/rhythmdrill/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Transport struct {
	MidiPort int    `yaml:"midiPort"`
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"logLevel"`
	// Systems is the number of measures per line of text notation.
	Systems int `yaml:"measuresPerLine"`
}

type Config struct {
	Params    model.Params `yaml:"params"`
	Transport Transport    `yaml:"transport"`
}

func Default() *Config {
	return &Config{
		Params: model.DefaultParams(),
		Transport: Transport{
			MidiPort: constants.GetMidiOutPort(),
			Listen:   ":" + constants.GetPort(),
			LogLevel: constants.GetLogLevel(),
			Systems:  4,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults. Params are clamped after decoding.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	c.Params = c.Params.Clamp()
	if c.Transport.Systems < 1 {
		c.Transport.Systems = 4
	}
	return c, nil
}

// Save writes c as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "writing config")
}

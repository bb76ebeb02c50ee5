package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Limits applied by Normalize
const (
	MinSampleRate = 1000
	MaxSampleRate = 192000
	MinTempo      = 20
	MaxTempo      = 300
	MaxClockDelay = 10
)

// MIDIConfig selects the ports the sequencer talks to
type MIDIConfig struct {
	InputFilter string `json:"inputFilter,omitempty"` // substring of keyboard port names, empty = any
	OutputPort  string `json:"outputPort,omitempty"`
	Channel     int    `json:"channel,omitempty"` // 1-16
}

// ProjectsConfig says where and how projects are saved
type ProjectsConfig struct {
	Dir    string `json:"dir,omitempty"`
	Format string `json:"format,omitempty"` // json or yaml
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette     string `json:"palette,omitempty"` // path to a GIMP .gpl file
	LastProject string `json:"lastProject,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	SampleRate int            `json:"sampleRate,omitempty"`
	ClockDelay int            `json:"clockDelay,omitempty"`
	Tempo      int            `json:"tempo,omitempty"`
	MIDI       MIDIConfig     `json:"midi,omitempty"`
	Projects   ProjectsConfig `json:"projects,omitempty"`
	UI         UIConfig       `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		SampleRate: 48000,
		Tempo:      120,
		MIDI: MIDIConfig{
			Channel: 1,
		},
		Projects: ProjectsConfig{
			Format: "json",
		},
	}
}

// Normalize fills unset values with defaults and clamps the rest
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.SampleRate == 0 {
		c.SampleRate = d.SampleRate
	}
	if c.Tempo == 0 {
		c.Tempo = d.Tempo
	}
	if c.MIDI.Channel == 0 {
		c.MIDI.Channel = d.MIDI.Channel
	}
	if c.Projects.Format == "" {
		c.Projects.Format = d.Projects.Format
	}
	c.SampleRate = min(max(c.SampleRate, MinSampleRate), MaxSampleRate)
	c.Tempo = min(max(c.Tempo, MinTempo), MaxTempo)
	c.ClockDelay = min(max(c.ClockDelay, 0), MaxClockDelay)
	c.MIDI.Channel = min(max(c.MIDI.Channel, 1), 16)
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-pianoroll"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, or returns defaults if it does not exist
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ChannelIndex returns the output channel as gomidi numbers it, 0-15
func (c *Config) ChannelIndex() uint8 {
	return uint8(min(max(c.MIDI.Channel, 1), 16) - 1)
}

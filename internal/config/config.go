package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Pins struct {
	Data  string `yaml:"data"`  // e.g. GPIO12
	Clock string `yaml:"clock"` // e.g. GPIO4
	Latch string `yaml:"latch"` // e.g. GPIO0
}

type Preview struct {
	Console    bool   `yaml:"console"`
	Addr       string `yaml:"addr,omitempty"` // websocket listen address, "" disables
	ThrottleMs int    `yaml:"throttle_ms,omitempty"`
}

type Config struct {
	Driver     string `yaml:"driver"` // "gpio" | "sim"
	Pins       Pins   `yaml:"pins"`
	Bits       int    `yaml:"bits"`
	EdgeLength int    `yaml:"edge_length"`
	TickMS     uint32 `yaml:"tick_ms"`
	Program    string `yaml:"program,omitempty"` // playlist file, "" plays the built-in demo
	LogLevel   string `yaml:"log_level,omitempty"`

	Preview Preview `yaml:"preview"`
}

// Default matches a 5x5x5 snake cube on one chain of 30 registers.
func Default() *Config {
	return &Config{
		Driver:     "sim",
		Pins:       Pins{Data: "GPIO12", Clock: "GPIO4", Latch: "GPIO0"},
		Bits:       30,
		EdgeLength: 5,
		TickMS:     100,
		LogLevel:   "info",
		Preview:    Preview{Console: true, ThrottleMs: 50},
	}
}

// Load reads path over the defaults. It does not validate: callers apply
// their overrides first and then call Validate.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate catches settings that can never drive a cube.
func (c *Config) Validate() error {
	switch c.Driver {
	case "gpio", "sim":
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if c.EdgeLength < 2 {
		return fmt.Errorf("edge_length must be >= 2, got %d", c.EdgeLength)
	}
	if need := c.EdgeLength*c.EdgeLength + c.EdgeLength; c.Bits < need {
		return fmt.Errorf("bits %d too short for a %d cube (needs %d)", c.Bits, c.EdgeLength, need)
	}
	if c.Driver == "gpio" && (c.Pins.Data == "" || c.Pins.Clock == "" || c.Pins.Latch == "") {
		return errors.New("gpio driver needs data, clock and latch pins")
	}
	return nil
}

package sequence

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/shiftcube/internal/cube"
)

const Version = "seq.v1"

var (
	ErrNoClips = errors.New("program has no clips")
	ErrVersion = errors.New("unsupported program version")
)

// LoadProgram reads a YAML (or JSON) program file.
func LoadProgram(path string) (Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Program{}, err
	}
	return ParseProgram(b)
}

func ParseProgram(b []byte) (Program, error) {
	var p Program
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Program{}, err
	}
	if p.Version == "" {
		p.Version = Version
	}
	return p, nil
}

// Validate checks the program against the effects in reg.
func (p Program) Validate(reg *cube.Registry) error {
	if p.Version != Version {
		return fmt.Errorf("%w: %q", ErrVersion, p.Version)
	}
	if len(p.Clips) == 0 {
		return ErrNoClips
	}
	for i, c := range p.Clips {
		if _, ok := reg.Get(c.Effect); !ok {
			return fmt.Errorf("clip %d (%s): effect not found: %s", i, c.Name, c.Effect)
		}
		if c.Loops < 0 {
			return fmt.Errorf("clip %d (%s): negative loops %d", i, c.Name, c.Loops)
		}
	}
	return nil
}

// RainSeed expands Seed to the 32 byte seed used by random_rain.
func (p Program) RainSeed() [32]byte {
	if p.Seed == nil {
		return cube.DefaultRainSeed
	}
	var s [32]byte
	for i := range s {
		s[i] = *p.Seed
	}
	return s
}

// DefaultProgram plays every effect once, looping forever.
func DefaultProgram() Program {
	return Program{
		Version: Version,
		Loop:    true,
		Clips: []Clip{
			{Name: "all", Effect: "light_all", Loops: 1, TickMS: 500},
			{Name: "planes", Effect: "shift_planes", Loops: 3, TickMS: 120},
			{Name: "planes2", Effect: "shift_planes2", Loops: 3, TickMS: 120},
			{Name: "fill up", Effect: "shift_planes_fill_up", Loops: 2, TickMS: 150},
			{Name: "fill down", Effect: "shift_planes_fill_down", Loops: 2, TickMS: 150},
			{Name: "walls", Effect: "shift_walls", Loops: 3, TickMS: 120},
			{Name: "walls2", Effect: "shift_walls2", Loops: 3, TickMS: 120},
			{Name: "rain", Effect: "random_rain", Loops: 40, TickMS: 80},
			{Name: "snake", Effect: "snake_walk", Loops: 1, TickMS: 60},
			{Name: "scissors", Effect: "scissors", Loops: 4, TickMS: 100},
			{Name: "scissors fill", Effect: "scissors_fill", Loops: 2, TickMS: 100},
			{Name: "none", Effect: "light_none", Loops: 1, TickMS: 500},
		},
	}
}

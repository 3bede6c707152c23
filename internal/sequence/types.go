package sequence

// Clip plays one effect for a number of loops at a given frame period.
type Clip struct {
	Name   string `json:"name" yaml:"name"`
	Effect string `json:"effect" yaml:"effect"`
	Loops  int    `json:"loops" yaml:"loops"`
	TickMS uint32 `json:"tick_ms,omitempty" yaml:"tick_ms,omitempty"` // 0 keeps the cube's current period
}

// Program is a full playlist of clips.
type Program struct {
	Version string `json:"version" yaml:"version"` // e.g., "seq.v1"
	Loop    bool   `json:"loop,omitempty" yaml:"loop,omitempty"`
	// Seed is the fill byte of the 32 byte random_rain seed. Unset keeps the
	// default seed.
	Seed  *uint8 `json:"seed,omitempty" yaml:"seed,omitempty"`
	Clips []Clip `json:"clips" yaml:"clips"`
}

// PlayerState enumerates playlist states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
)

// Hooks are optional callbacks fired by the Player.
type Hooks struct {
	// OnClip fires before clip i starts.
	OnClip func(i int, c Clip)
	// OnDone fires after a full pass over the program.
	OnDone func(pass int)
}

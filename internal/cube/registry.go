package cube

import (
	"fmt"
	"sort"
)

// Effect is an animation over a cube and buffer that runs nLoops times.
type Effect func(c Cube, b Buffer, d Delay, nLoops int) error

// Registry names effects so playlists can refer to them.
type Registry struct{ m map[string]Effect }

func NewRegistry() *Registry { return &Registry{m: map[string]Effect{}} }

// DefaultRegistry holds every built-in effect.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("light_all", func(c Cube, b Buffer, d Delay, _ int) error { return c.LightAll(b, d) })
	r.Register("light_none", func(c Cube, b Buffer, d Delay, _ int) error { return c.LightNone(b, d) })
	r.Register("shift_planes", Cube.ShiftPlanes)
	r.Register("shift_planes2", Cube.ShiftPlanes2)
	r.Register("shift_planes_fill_up", Cube.ShiftPlanesFillUp)
	r.Register("shift_planes_fill_down", Cube.ShiftPlanesFillDown)
	r.Register("shift_walls", Cube.ShiftWalls)
	r.Register("shift_walls2", Cube.ShiftWalls2)
	r.Register("random_rain", Cube.RandomRain)
	r.Register("snake_walk", Cube.SnakeWalk)
	r.Register("scissors", Cube.Scissors)
	r.Register("scissors_fill", Cube.ScissorsFill)
	return r
}

// RandomRainEffect returns the rain effect bound to seed.
func RandomRainEffect(seed [32]byte) Effect {
	return func(c Cube, b Buffer, d Delay, nLoops int) error {
		return c.RandomRainSeeded(b, d, nLoops, seed)
	}
}

func (r *Registry) Register(name string, e Effect) {
	if e == nil {
		return
	}
	r.m[name] = e
}

func (r *Registry) Get(name string) (Effect, bool) {
	e, ok := r.m[name]
	return e, ok
}

// Run looks up name and plays it.
func (r *Registry) Run(name string, c Cube, b Buffer, d Delay, nLoops int) error {
	e, ok := r.m[name]
	if !ok {
		return fmt.Errorf("effect not found: %s", name)
	}
	return e(c, b, d, nLoops)
}

// With returns a copy of r with name bound to e.
func (r *Registry) With(name string, e Effect) *Registry {
	out := NewRegistry()
	for k, v := range r.m {
		out.m[k] = v
	}
	out.Register(name, e)
	return out
}

// List returns the effect names in sorted order.
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

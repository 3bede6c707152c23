package sequence

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/coreman2200/shiftcube/internal/cube"
)

// Player runs a Program's clips in order against one cube and buffer.
type Player struct {
	State PlayerState

	prog  Program
	base  *cube.Registry
	reg   *cube.Registry
	hooks Hooks
	log   zerolog.Logger
}

// NewPlayer constructs a Player over the effects in reg.
func NewPlayer(reg *cube.Registry, h Hooks, log zerolog.Logger) *Player {
	return &Player{
		State: Idle,
		base:  reg,
		reg:   reg,
		hooks: h,
		log:   log,
	}
}

// Load validates and installs prog. A program seed rebinds random_rain for
// that program only.
func (p *Player) Load(prog Program) error {
	if err := prog.Validate(p.base); err != nil {
		return err
	}
	p.prog = prog
	p.reg = p.base
	if prog.Seed != nil {
		p.reg = p.base.With("random_rain", cube.RandomRainEffect(prog.RainSeed()))
	}
	p.State = Idle
	return nil
}

// Program returns the loaded program.
func (p *Player) Program() Program { return p.prog }

// Run plays the program. A looping program repeats until ctx is done; ctx is
// only checked between clips, a started effect always runs to completion.
// Each clip's TickMS is stored on c before the effect starts.
func (p *Player) Run(ctx context.Context, c *cube.Cube, b cube.Buffer, d cube.Delay) error {
	if len(p.prog.Clips) == 0 {
		return ErrNoClips
	}
	if err := c.Validate(b); err != nil {
		return err
	}
	p.State = Running
	defer func() { p.State = Idle }()

	for pass := 1; ; pass++ {
		for i, clip := range p.prog.Clips {
			if err := ctx.Err(); err != nil {
				return err
			}
			if clip.TickMS != 0 {
				c.TickMS = clip.TickMS
			}
			if p.hooks.OnClip != nil {
				p.hooks.OnClip(i, clip)
			}
			p.log.Debug().
				Int("clip", i).
				Str("name", clip.Name).
				Str("effect", clip.Effect).
				Int("loops", clip.Loops).
				Uint32("tick_ms", c.TickMS).
				Msg("play")
			if err := p.reg.Run(clip.Effect, *c, b, d, clip.Loops); err != nil {
				p.log.Error().Err(err).Str("effect", clip.Effect).Msg("effect failed")
				return err
			}
		}
		if p.hooks.OnDone != nil {
			p.hooks.OnDone(pass)
		}
		if !p.prog.Loop {
			return nil
		}
	}
}

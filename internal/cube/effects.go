package cube

import "math/rand/v2"

// DefaultRainSeed seeds RandomRain when no other seed is configured.
var DefaultRainSeed = [32]byte{
	42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42,
	42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42, 42,
}

// rainBits is the width of one random draw; rain never reaches past it.
const rainBits = 32

func set(b Buffer, from, to int, bit bool) error {
	for i := from; i < to; i++ {
		if err := b.Set(i, bit); err != nil {
			return err
		}
	}
	return nil
}

// frame sets index to bit and flushes.
func frame(b Buffer, index int, bit bool) error {
	if err := b.Set(index, bit); err != nil {
		return err
	}
	return b.Update()
}

// LightAll turns on the grid and every plane.
func (c Cube) LightAll(b Buffer, _ Delay) error {
	if err := set(b, 0, c.Span(), true); err != nil {
		return err
	}
	return b.Update()
}

// LightNone lights everything, then clears the grid. The plane bits stay on.
func (c Cube) LightNone(b Buffer, d Delay) error {
	if err := c.LightAll(b, d); err != nil {
		return err
	}
	if err := set(b, 0, c.GridSize(), false); err != nil {
		return err
	}
	return b.Update()
}

// bounce steps pos over 2n-2 frames: forward for the first n-1, back after.
func (c Cube) bounce(pos *int, step, i int) {
	if i < c.EdgeLength {
		*pos += step
	} else {
		*pos -= step
	}
}

// ShiftPlanes switches one plane off at a time, sweeping up and back down.
func (c Cube) ShiftPlanes(b Buffer, d Delay, nLoops int) error {
	if err := c.LightAll(b, d); err != nil {
		return err
	}
	for l := 0; l < nLoops; l++ {
		pos := c.MarkerBase()
		for i := 1; i < 2*c.EdgeLength-1; i++ {
			if err := frame(b, pos, false); err != nil {
				return err
			}
			d.DelayMs(c.TickMS)
			if err := frame(b, pos, true); err != nil {
				return err
			}
			c.bounce(&pos, 1, i)
		}
	}
	return nil
}

// ShiftPlanes2 lights a single plane at a time, sweeping up and back down.
func (c Cube) ShiftPlanes2(b Buffer, d Delay, nLoops int) error {
	if err := c.LightAll(b, d); err != nil {
		return err
	}
	for l := 0; l < nLoops; l++ {
		pos := c.MarkerBase()
		if err := set(b, pos, pos+c.EdgeLength, false); err != nil {
			return err
		}
		for i := 1; i < 2*c.EdgeLength-1; i++ {
			if err := frame(b, pos, true); err != nil {
				return err
			}
			d.DelayMs(c.TickMS)
			if err := frame(b, pos, false); err != nil {
				return err
			}
			c.bounce(&pos, 1, i)
		}
	}
	return nil
}

// ShiftPlanesFillUp stacks planes from the bottom, then removes them in the
// same order.
func (c Cube) ShiftPlanesFillUp(b Buffer, d Delay, nLoops int) error {
	return c.fillPlanes(b, d, nLoops, func(i int) int { return c.MarkerBase() + i })
}

// ShiftPlanesFillDown stacks planes from the top, then removes them in the
// same order.
func (c Cube) ShiftPlanesFillDown(b Buffer, d Delay, nLoops int) error {
	return c.fillPlanes(b, d, nLoops, func(i int) int { return c.MarkerBase() + c.EdgeLength - 1 - i })
}

func (c Cube) fillPlanes(b Buffer, d Delay, nLoops int, plane func(i int) int) error {
	if err := c.LightAll(b, d); err != nil {
		return err
	}
	base := c.MarkerBase()
	for l := 0; l < nLoops; l++ {
		if err := set(b, base, base+c.EdgeLength, false); err != nil {
			return err
		}
		if err := b.Update(); err != nil {
			return err
		}
		for _, bit := range []bool{true, false} {
			for i := 0; i < c.EdgeLength; i++ {
				if err := frame(b, plane(i), bit); err != nil {
					return err
				}
				d.DelayMs(c.TickMS)
			}
		}
	}
	return nil
}

// wall sets the edge contiguous grid bits starting at pos.
func (c Cube) wall(b Buffer, pos int, bit bool) error {
	if err := set(b, pos, pos+c.EdgeLength, bit); err != nil {
		return err
	}
	return b.Update()
}

// ShiftWalls switches one row of columns off at a time, sweeping across the
// grid and back.
func (c Cube) ShiftWalls(b Buffer, d Delay, nLoops int) error {
	if err := c.LightAll(b, d); err != nil {
		return err
	}
	for l := 0; l < nLoops; l++ {
		pos := 0
		for n := 1; n < 2*c.EdgeLength-1; n++ {
			if err := c.wall(b, pos, false); err != nil {
				return err
			}
			d.DelayMs(c.TickMS)
			if err := c.wall(b, pos, true); err != nil {
				return err
			}
			c.bounce(&pos, c.EdgeLength, n)
		}
	}
	return nil
}

// ShiftWalls2 lights a single row of columns at a time, sweeping across the
// grid and back. The position carries over from one loop to the next.
func (c Cube) ShiftWalls2(b Buffer, d Delay, nLoops int) error {
	if err := c.LightNone(b, d); err != nil {
		return err
	}
	pos := 0
	for l := 0; l < nLoops; l++ {
		for n := 1; n < 2*c.EdgeLength-1; n++ {
			if err := c.wall(b, pos, true); err != nil {
				return err
			}
			d.DelayMs(c.TickMS)
			if err := c.wall(b, pos, false); err != nil {
				return err
			}
			c.bounce(&pos, c.EdgeLength, n)
		}
	}
	return nil
}

// RandomRain flickers the grid from DefaultRainSeed.
func (c Cube) RandomRain(b Buffer, d Delay, nLoops int) error {
	return c.RandomRainSeeded(b, d, nLoops, DefaultRainSeed)
}

// RandomRainSeeded sets grid bits from a deterministic random stream, one
// frame per loop. Each 32-bit draw covers addresses 0..31 only, so larger
// grids see the same 32 columns rewritten by later draws.
func (c Cube) RandomRainSeeded(b Buffer, d Delay, nLoops int, seed [32]byte) error {
	if err := c.LightNone(b, d); err != nil {
		return err
	}
	rng := rand.New(rand.NewChaCha8(seed))
	randint := rng.Uint32()
	for l := 0; l < nLoops; l++ {
		for bit := 0; bit < c.GridSize(); bit++ {
			if bit%rainBits == 0 {
				randint = rng.Uint32()
			}
			index := bit % rainBits
			if err := b.Set(index, randint&(1<<index) != 0); err != nil {
				return err
			}
		}
		if err := b.Update(); err != nil {
			return err
		}
		d.DelayMs(c.TickMS)
	}
	return nil
}

// SnakeWalk lights each column alone, in chain order.
func (c Cube) SnakeWalk(b Buffer, d Delay, nLoops int) error {
	if err := c.LightNone(b, d); err != nil {
		return err
	}
	for l := 0; l < nLoops; l++ {
		for i := 0; i < c.GridSize(); i++ {
			if err := frame(b, i, true); err != nil {
				return err
			}
			d.DelayMs(c.TickMS)
			if err := frame(b, i, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// bar sets address i+n·edge for every row n.
func (c Cube) bar(b Buffer, i int, bit bool) error {
	for n := 0; n < c.EdgeLength; n++ {
		if err := b.Set(i+n*c.EdgeLength, bit); err != nil {
			return err
		}
	}
	return nil
}

// Scissors moves a bar of columns across the grid.
func (c Cube) Scissors(b Buffer, d Delay, nLoops int) error {
	for l := 0; l < nLoops; l++ {
		if err := c.LightNone(b, d); err != nil {
			return err
		}
		for i := 0; i < c.EdgeLength; i++ {
			if err := c.bar(b, i, true); err != nil {
				return err
			}
			if i > 0 {
				if err := c.bar(b, i-1, false); err != nil {
					return err
				}
			}
			if err := b.Update(); err != nil {
				return err
			}
			d.DelayMs(c.TickMS)
		}
	}
	return nil
}

// ScissorsFill sweeps bars in until the grid is full, then out again.
func (c Cube) ScissorsFill(b Buffer, d Delay, nLoops int) error {
	for l := 0; l < nLoops; l++ {
		if err := c.LightNone(b, d); err != nil {
			return err
		}
		for _, bit := range []bool{true, false} {
			for i := 0; i < c.EdgeLength; i++ {
				if err := c.bar(b, i, bit); err != nil {
					return err
				}
				if err := b.Update(); err != nil {
					return err
				}
				d.DelayMs(c.TickMS)
			}
		}
	}
	return nil
}

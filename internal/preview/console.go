// Package preview shows decoded register frames on the console and streams
// them to websocket clients.
package preview

import (
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/shiftcube/internal/cube"
)

var (
	lit = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	off = color.NRGBA{A: 255}
	gap = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
)

// Width is the number of pixels Image produces for c: edge planes of edge²
// voxels each, with one gap pixel between planes.
func Width(c cube.Cube) int {
	if c.EdgeLength < 1 {
		return 0
	}
	return c.EdgeLength*c.GridSize() + c.EdgeLength - 1
}

// Image renders the voxels a frame lights as a single row of pixels. Plane z
// starts at z*(edge²+1); within a plane voxel (x, y) sits at y*edge+x.
func Image(c cube.Cube, frame []bool) *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, Width(c), 1))
	n := c.EdgeLength
	for z := 0; z < n; z++ {
		base := z * (c.GridSize() + 1)
		if z > 0 {
			im.SetNRGBA(base-1, 0, gap)
		}
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				px := off
				if c.Voxel(frame, x, y, z) {
					px = lit
				}
				im.SetNRGBA(base+y*n+x, 0, px)
			}
		}
	}
	return im
}

// Console draws frames with ANSI colors, at most once per throttle.
type Console struct {
	cube     cube.Cube
	drawer   *screen.Dev
	throttle time.Duration
	lastEmit time.Time
	log      zerolog.Logger
	mu       sync.Mutex
}

func NewConsole(c cube.Cube, throttle time.Duration, log zerolog.Logger) *Console {
	return &Console{
		cube:     c,
		drawer:   screen.New(Width(c)),
		throttle: throttle,
		log:      log,
	}
}

// Frame matches sim.Chain.OnFrame.
func (p *Console) Frame(id uint64, frame []bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if p.lastEmit.Add(p.throttle).After(now) {
		return
	}
	p.lastEmit = now
	if err := p.drawer.Draw(p.drawer.Bounds(), Image(p.cube, frame), image.Point{}); err != nil {
		p.log.Warn().Err(err).Uint64("frame_id", id).Msg("console draw")
	}
}

func (p *Console) Halt() error { return p.drawer.Halt() }

// Package sim emulates a daisy-chained 74HC595 register chain behind three
// GPIO pins, so a shiftreg.Driver can run without hardware.
package sim

import (
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/coreman2200/shiftcube/internal/shiftreg"
)

// Chain is a simulated register chain. A rising clock edge shifts the data
// line into stage 0; a rising latch edge copies the shift stages to the
// outputs.
type Chain struct {
	mu      sync.Mutex
	shift   []bool
	store   []bool
	data    gpio.Level
	clock   gpio.Level
	latch   gpio.Level
	clocks  int
	latches int
	frames  uint64

	pins shiftreg.Pins

	// OnFrame is called with a copy of the outputs, in buffer order, each time
	// as many latches as the chain has stages have been seen.
	OnFrame func(id uint64, frame []bool)
}

// NewChain returns a chain of n stages, all low.
func NewChain(n int) *Chain {
	c := &Chain{shift: make([]bool, n), store: make([]bool, n)}
	c.pins = shiftreg.Pins{
		Data:  &pin{Pin: gpiotest.Pin{N: "SIM_DATA", Num: 0}, out: c.onData},
		Clock: &pin{Pin: gpiotest.Pin{N: "SIM_CLK", Num: 1}, out: c.onClock},
		Latch: &pin{Pin: gpiotest.Pin{N: "SIM_LATCH", Num: 2}, out: c.onLatch},
	}
	return c
}

// Pins returns the pins to hand to shiftreg.New.
func (c *Chain) Pins() shiftreg.Pins { return c.pins }

// Len is the number of stages.
func (c *Chain) Len() int { return len(c.shift) }

// Frame returns the latched outputs in buffer order: element i is the bit
// that was at buffer index i when the last frame was shifted out.
func (c *Chain) Frame() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameLocked()
}

func (c *Chain) frameLocked() []bool {
	n := len(c.store)
	out := make([]bool, n)
	for i := range out {
		out[i] = c.store[n-1-i]
	}
	return out
}

// Clocks returns the number of rising clock edges seen.
func (c *Chain) Clocks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clocks
}

// Latches returns the number of rising latch edges seen.
func (c *Chain) Latches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latches
}

// Frames returns the number of complete frames seen.
func (c *Chain) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

func (c *Chain) onData(l gpio.Level) {
	c.mu.Lock()
	c.data = l
	c.mu.Unlock()
}

func (c *Chain) onClock(l gpio.Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rising := l == gpio.High && c.clock == gpio.Low
	c.clock = l
	if !rising || len(c.shift) == 0 {
		return
	}
	copy(c.shift[1:], c.shift[:len(c.shift)-1])
	c.shift[0] = bool(c.data)
	c.clocks++
}

func (c *Chain) onLatch(l gpio.Level) {
	c.mu.Lock()
	rising := l == gpio.High && c.latch == gpio.Low
	c.latch = l
	if !rising {
		c.mu.Unlock()
		return
	}
	copy(c.store, c.shift)
	c.latches++
	var (
		cb    func(uint64, []bool)
		frame []bool
		id    uint64
	)
	if len(c.store) > 0 && c.latches%len(c.store) == 0 {
		c.frames++
		cb, id, frame = c.OnFrame, c.frames, c.frameLocked()
	}
	c.mu.Unlock()
	if cb != nil {
		cb(id, frame)
	}
}

// pin is a gpiotest.Pin that reports every write to the chain.
type pin struct {
	gpiotest.Pin
	out func(gpio.Level)
}

func (p *pin) Out(l gpio.Level) error {
	if err := p.Pin.Out(l); err != nil {
		return err
	}
	p.out(l)
	return nil
}

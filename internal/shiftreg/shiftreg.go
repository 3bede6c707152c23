// Package shiftreg drives a chain of serial-in shift registers over three
// GPIO lines (data, clock, latch).
//
// The driver keeps a logical bit per register stage and only touches the
// pins on Update.
package shiftreg

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// MaxBits is the fixed capacity of the bit buffer. A chain must be strictly
// shorter than this.
const MaxBits = 2048

var (
	// ErrCapacityExceeded is returned by New when the requested chain length
	// does not fit in the buffer.
	ErrCapacityExceeded = errors.New("bits exceed MaxBits in shift register")
	// ErrIndexOutOfRange is returned when addressing a bit past the chain.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNoPin is returned by New when one of the pins is missing.
	ErrNoPin = errors.New("missing shift register pin")
)

// Pins are the three output lines of the chain.
type Pins struct {
	Data  gpio.PinOut
	Clock gpio.PinOut
	Latch gpio.PinOut
}

// Driver owns the bit buffer and the pins of one register chain.
type Driver struct {
	registers [MaxBits]bool
	pins      Pins
	bits      int
}

// New returns a Driver for a chain of bits stages with every bit cleared.
func New(pins Pins, bits int) (*Driver, error) {
	if bits < 0 || bits >= MaxBits {
		return nil, fmt.Errorf("%w: %d >= %d", ErrCapacityExceeded, bits, MaxBits)
	}
	if pins.Data == nil || pins.Clock == nil || pins.Latch == nil {
		return nil, ErrNoPin
	}
	return &Driver{pins: pins, bits: bits}, nil
}

// Len returns the active chain length.
func (d *Driver) Len() int { return d.bits }

// Set stores bit at index. Nothing is sent until Update.
func (d *Driver) Set(index int, bit bool) error {
	if index < 0 || index >= d.bits {
		return fmt.Errorf("%w: set %d (len %d)", ErrIndexOutOfRange, index, d.bits)
	}
	d.registers[index] = bit
	return nil
}

// Get returns the buffered bit at index.
func (d *Driver) Get(index int) (bool, error) {
	if index < 0 || index >= d.bits {
		return false, fmt.Errorf("%w: get %d (len %d)", ErrIndexOutOfRange, index, d.bits)
	}
	return d.registers[index], nil
}

// Fill sets every active bit to bit.
func (d *Driver) Fill(bit bool) {
	for i := 0; i < d.bits; i++ {
		d.registers[i] = bit
	}
}

// Clear switches every register off and shifts the blank frame out.
func (d *Driver) Clear() error {
	d.Fill(false)
	return d.Update()
}

// Update shifts the active bits out in ascending order.
//
// The latch is pulled low before and released after every single bit, not
// once per frame.
func (d *Driver) Update() error {
	for bit := 0; bit < d.bits; bit++ {
		if err := d.pins.Latch.Out(gpio.Low); err != nil {
			return fmt.Errorf("bit %d: latch low: %w", bit, err)
		}
		if err := d.pins.Data.Out(gpio.Level(d.registers[bit])); err != nil {
			return fmt.Errorf("bit %d: data: %w", bit, err)
		}
		if err := d.pins.Clock.Out(gpio.High); err != nil {
			return fmt.Errorf("bit %d: clock high: %w", bit, err)
		}
		if err := d.pins.Clock.Out(gpio.Low); err != nil {
			return fmt.Errorf("bit %d: clock low: %w", bit, err)
		}
		if err := d.pins.Latch.Out(gpio.High); err != nil {
			return fmt.Errorf("bit %d: latch high: %w", bit, err)
		}
	}
	return nil
}

// Halt drives all three lines low.
func (d *Driver) Halt() error {
	for _, p := range []gpio.PinOut{d.pins.Latch, d.pins.Clock, d.pins.Data} {
		if err := p.Out(gpio.Low); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) String() string {
	return fmt.Sprintf("shiftreg{%s,%s,%s bits=%d}", d.pins.Data, d.pins.Clock, d.pins.Latch, d.bits)
}

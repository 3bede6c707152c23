package cube

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOutOfRange = errors.New("index out of range")

// fakeBuffer records every Set and snapshots the bits on every Update.
type fakeBuffer struct {
	bits   []bool
	frames [][]bool
	sets   []int
}

func newFakeBuffer(n int) *fakeBuffer { return &fakeBuffer{bits: make([]bool, n)} }

func (f *fakeBuffer) Set(i int, b bool) error {
	if i < 0 || i >= len(f.bits) {
		return fmt.Errorf("%w: %d", errOutOfRange, i)
	}
	f.bits[i] = b
	f.sets = append(f.sets, i)
	return nil
}

func (f *fakeBuffer) Update() error {
	f.frames = append(f.frames, append([]bool(nil), f.bits...))
	return nil
}

func (f *fakeBuffer) Len() int { return len(f.bits) }

// fakeDelay remembers which frame was on display for each delay.
type fakeDelay struct {
	buf   *fakeBuffer
	ms    []uint32
	shown [][]bool
}

func (d *fakeDelay) DelayMs(ms uint32) {
	d.ms = append(d.ms, ms)
	d.shown = append(d.shown, d.buf.frames[len(d.buf.frames)-1])
}

func setup(edge, bits int) (Cube, *fakeBuffer, *fakeDelay) {
	b := newFakeBuffer(bits)
	return Cube{EdgeLength: edge, TickMS: 10}, b, &fakeDelay{buf: b}
}

// ones lists the set addresses in frame[from:to].
func ones(frame []bool, from, to int) []int {
	var out []int
	for i := from; i < to; i++ {
		if frame[i] {
			out = append(out, i)
		}
	}
	return out
}

func seq(from, to int) []int {
	var out []int
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func TestGeometry(t *testing.T) {
	c := Cube{EdgeLength: 5}
	assert.Equal(t, 25, c.GridSize())
	assert.Equal(t, 25, c.MarkerBase())
	assert.Equal(t, 30, c.Span())
	assert.Equal(t, 27, c.Plane(2))

	assert.NoError(t, c.Validate(newFakeBuffer(30)))
	assert.ErrorIs(t, c.Validate(newFakeBuffer(29)), ErrGeometry)
	assert.ErrorIs(t, Cube{EdgeLength: 1}.Validate(newFakeBuffer(30)), ErrGeometry)
}

func TestColumnSerpentine(t *testing.T) {
	c := Cube{EdgeLength: 5}
	assert.Equal(t, 0, c.Column(0, 0))
	assert.Equal(t, 4, c.Column(4, 0))
	assert.Equal(t, 9, c.Column(0, 1)) // row 1 runs backwards
	assert.Equal(t, 5, c.Column(4, 1))
	assert.Equal(t, 10, c.Column(0, 2))
	assert.Equal(t, 24, c.Column(4, 4))

	seen := map[int]bool{}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			seen[c.Column(x, y)] = true
		}
	}
	assert.Len(t, seen, 25, "every column maps to a distinct address")
}

func TestVoxel(t *testing.T) {
	c := Cube{EdgeLength: 3}
	frame := make([]bool, c.Span())
	frame[c.Column(1, 1)] = true
	frame[c.Plane(2)] = true
	assert.True(t, c.Voxel(frame, 1, 1, 2))
	assert.False(t, c.Voxel(frame, 1, 1, 0))
	assert.False(t, c.Voxel(frame, 0, 1, 2))
	assert.False(t, c.Voxel(frame[:4], 1, 1, 2))

	for _, v := range [][3]int{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}, {3, 0, 0}, {0, 3, 0}, {0, 0, 3}} {
		assert.NotPanics(t, func() {
			assert.False(t, c.Voxel(frame, v[0], v[1], v[2]), "%v", v)
		})
	}
	full := make([]bool, c.Span())
	for i := range full {
		full[i] = true
	}
	assert.False(t, c.Voxel(full, -1, 0, 0))
	assert.False(t, c.Voxel(full, 3, 0, 0), "x past the edge would alias the next row")
	assert.False(t, c.Voxel(full, 2, 2, 3), "z past the last plane reads no marker bit")
}

func TestLightAllAndNone(t *testing.T) {
	c, b, d := setup(5, 30)
	require.NoError(t, c.LightAll(b, d))
	assert.Equal(t, seq(0, 30), ones(b.bits, 0, 30))

	require.NoError(t, c.LightNone(b, d))
	assert.Equal(t, seq(25, 30), ones(b.bits, 0, 30), "marker span stays lit")
	assert.Len(t, b.frames, 3)
	assert.Empty(t, d.ms, "flood effects do not wait")
}

func TestShiftPlanesWalksMarker(t *testing.T) {
	c, b, d := setup(5, 30)
	require.NoError(t, c.ShiftPlanes(b, d, 2))

	var dark []int
	for _, f := range d.shown {
		assert.Equal(t, seq(0, 25), ones(f, 0, 25), "grid stays lit")
		require.Len(t, ones(f, 25, 30), 4)
		for p := 25; p < 30; p++ {
			if !f[p] {
				dark = append(dark, p)
			}
		}
	}
	loop := []int{25, 26, 27, 28, 29, 28, 27, 26}
	assert.Equal(t, append(append([]int{}, loop...), loop...), dark)
	assert.Len(t, d.ms, 16)
	assert.Equal(t, uint32(10), d.ms[0])
	assert.Equal(t, seq(25, 30), ones(b.bits, 25, 30), "every plane is back on")
}

func TestShiftPlanes2LightsOnePlane(t *testing.T) {
	c, b, d := setup(5, 30)
	require.NoError(t, c.ShiftPlanes2(b, d, 1))

	var lit []int
	for _, f := range d.shown {
		on := ones(f, 25, 30)
		require.Len(t, on, 1)
		lit = append(lit, on[0])
	}
	assert.Equal(t, []int{25, 26, 27, 28, 29, 28, 27, 26}, lit)
	assert.Empty(t, ones(b.bits, 25, 30))
}

func TestShiftPlanesFill(t *testing.T) {
	for _, tc := range []struct {
		name   string
		effect func(Cube, Buffer, Delay, int) error
		want   [][]int
	}{
		{
			name:   "up",
			effect: Cube.ShiftPlanesFillUp,
			want: [][]int{
				{9}, {9, 10}, {9, 10, 11},
				{10, 11}, {11}, nil,
			},
		},
		{
			name:   "down",
			effect: Cube.ShiftPlanesFillDown,
			want: [][]int{
				{11}, {10, 11}, {9, 10, 11},
				{9, 10}, {9}, nil,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// 3x3 grid at 0..8, marker span at 9..11
			c, b, d := setup(3, 12)
			require.NoError(t, tc.effect(c, b, d, 1))
			var got [][]int
			for _, f := range d.shown {
				got = append(got, ones(f, 9, 12))
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("marker frames (-want +got):\n%s", diff)
			}
		})
	}
}

func TestShiftWalls(t *testing.T) {
	c, b, d := setup(5, 30)
	require.NoError(t, c.ShiftWalls(b, d, 1))

	var walls []int
	for _, f := range d.shown {
		lit := ones(f, 0, 25)
		require.Len(t, lit, 20, "one row of five is dark")
		for p := 0; p < 25; p += 5 {
			if !f[p] {
				walls = append(walls, p)
				assert.Empty(t, ones(f, p, p+5))
			}
		}
	}
	assert.Equal(t, []int{0, 5, 10, 15, 20, 15, 10, 5}, walls)
	assert.Equal(t, seq(0, 30), ones(b.bits, 0, 30))
}

func TestShiftWalls2(t *testing.T) {
	c, b, d := setup(5, 30)
	require.NoError(t, c.ShiftWalls2(b, d, 2))

	var walls []int
	for _, f := range d.shown {
		lit := ones(f, 0, 25)
		require.Len(t, lit, 5)
		walls = append(walls, lit[0])
		assert.Equal(t, seq(lit[0], lit[0]+5), lit)
	}
	loop := []int{0, 5, 10, 15, 20, 15, 10, 5}
	assert.Equal(t, append(append([]int{}, loop...), loop...), walls)
	assert.Empty(t, ones(b.bits, 0, 25))
}

func TestSnakeWalk(t *testing.T) {
	c, b, d := setup(3, 12)
	require.NoError(t, c.SnakeWalk(b, d, 1))

	require.Len(t, d.shown, 9)
	for i, f := range d.shown {
		assert.Equal(t, []int{i}, ones(f, 0, 9))
	}
	// light all, light none, then an on and an off frame per column
	assert.Len(t, b.frames, 2+2*9)
	assert.Empty(t, ones(b.bits, 0, 9))
}

func TestScissors(t *testing.T) {
	c, b, d := setup(5, 30)
	require.NoError(t, c.Scissors(b, d, 2))

	require.Len(t, d.shown, 10)
	for k, f := range d.shown {
		i := k % 5
		assert.Equal(t, []int{i, i + 5, i + 10, i + 15, i + 20}, ones(f, 0, 25), "column %d", i)
	}
}

func TestScissorsFill(t *testing.T) {
	c, b, d := setup(5, 30)
	require.NoError(t, c.ScissorsFill(b, d, 1))

	require.Len(t, d.shown, 10)
	for k, f := range d.shown {
		on := ones(f, 0, 25)
		if k < 5 {
			assert.Len(t, on, 5*(k+1), "fill step %d", k)
		} else {
			assert.Len(t, on, 5*(9-k), "clear step %d", k)
		}
	}
	assert.Empty(t, ones(b.bits, 0, 25))
}

func TestEffectsStopAtFirstError(t *testing.T) {
	c, b, d := setup(5, 27)
	for _, e := range []Effect{
		Cube.ShiftPlanes, Cube.ShiftPlanes2, Cube.ShiftPlanesFillUp,
		Cube.ShiftWalls, Cube.RandomRain, Cube.SnakeWalk, Cube.Scissors,
	} {
		b.frames = nil
		err := e(c, b, d, 3)
		assert.ErrorIs(t, err, errOutOfRange)
		assert.Empty(t, b.frames, "no frame may be flushed after a bad address")
	}
	assert.Empty(t, d.ms)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/coreman2200/shiftcube/internal/config"
	"github.com/coreman2200/shiftcube/internal/cube"
	"github.com/coreman2200/shiftcube/internal/logging"
	"github.com/coreman2200/shiftcube/internal/preview"
	"github.com/coreman2200/shiftcube/internal/sequence"
	"github.com/coreman2200/shiftcube/internal/shiftreg"
	"github.com/coreman2200/shiftcube/internal/sim"
)

func main() {
	// ---- Flags (config.yaml provides the base, flags override) ----
	var (
		configPath = pflag.StringP("config", "c", "config.yaml", "path to config.yaml")
		driver     = pflag.String("driver", "", "driver: gpio | sim")
		bits       = pflag.Int("bits", 0, "shift register chain length")
		edge       = pflag.Int("edge", 0, "cube edge length in LEDs")
		tick       = pflag.Uint32("tick-ms", 0, "frame period in milliseconds")
		program    = pflag.StringP("program", "p", "", "playlist file (YAML or JSON)")
		addr       = pflag.StringP("addr", "a", "", "preview websocket listen address")
		level      = pflag.String("log-level", "", "log level")
		list       = pflag.Bool("list", false, "list effects and exit")
	)
	pflag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("read configuration")
	}
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *bits > 0 {
		cfg.Bits = *bits
	}
	if *edge > 0 {
		cfg.EdgeLength = *edge
	}
	if *tick > 0 {
		cfg.TickMS = *tick
	}
	if *program != "" {
		cfg.Program = *program
	}
	if *addr != "" {
		cfg.Preview.Addr = *addr
	}
	if *level != "" {
		cfg.LogLevel = *level
	}

	logger := logging.Setup(os.Stdout, cfg.LogLevel)

	if *list {
		for _, name := range cube.DefaultRegistry().List() {
			fmt.Println(name)
		}
		return
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("halted")
	}
	log.Info().Msg("shut down")
}

// loadConfig reads path. Only a missing file falls back to the defaults.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	c := &cube.Cube{EdgeLength: cfg.EdgeLength, TickMS: cfg.TickMS}

	var frameSinks []func(uint64, []bool)
	if cfg.Preview.Console {
		con := preview.NewConsole(*c, time.Duration(cfg.Preview.ThrottleMs)*time.Millisecond, logger)
		defer con.Halt()
		frameSinks = append(frameSinks, con.Frame)
	}
	var hub *preview.Hub
	if cfg.Preview.Addr != "" {
		hub = preview.NewHub(*c, cfg.Bits, logger)
		frameSinks = append(frameSinks, hub.Publish)
	}
	onFrame := func(id uint64, frame []bool) {
		for _, f := range frameSinks {
			f(id, frame)
		}
	}

	drv, buf, err := openDriver(cfg, onFrame)
	if err != nil {
		return err
	}
	defer func() {
		if err := drv.Clear(); err != nil {
			logger.Warn().Err(err).Msg("clear cube")
		}
		if err := drv.Halt(); err != nil {
			logger.Warn().Err(err).Msg("halt pins")
		}
	}()
	logger.Info().
		Str("driver", cfg.Driver).
		Stringer("chain", drv).
		Int("edge_length", c.EdgeLength).
		Msg("shift register ready")

	prog := sequence.DefaultProgram()
	if cfg.Program != "" {
		if prog, err = sequence.LoadProgram(cfg.Program); err != nil {
			return fmt.Errorf("load program %s: %w", cfg.Program, err)
		}
	}
	player := sequence.NewPlayer(cube.DefaultRegistry(), sequence.Hooks{
		OnClip: func(i int, clip sequence.Clip) {
			logger.Info().Int("clip", i).Str("name", clip.Name).Str("effect", clip.Effect).Msg("clip")
		},
		OnDone: func(pass int) {
			logger.Debug().Int("pass", pass).Msg("program pass complete")
		},
	}, logger)
	if err := player.Load(prog); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return player.Run(gctx, c, buf, cube.Sleeper{})
	})
	if hub != nil {
		srv := &http.Server{
			Addr:         cfg.Preview.Addr,
			Handler:      hub.Handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		g.Go(func() error {
			logger.Info().Str("addr", cfg.Preview.Addr).Msg("preview server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			hub.Close()
			return srv.Close()
		})
	}
	return g.Wait()
}

// openDriver builds the chain on real pins or on a simulated chain. The
// returned buffer reports every frame to onFrame.
func openDriver(cfg *config.Config, onFrame func(uint64, []bool)) (*shiftreg.Driver, cube.Buffer, error) {
	if cfg.Driver == "sim" {
		chain := sim.NewChain(cfg.Bits)
		chain.OnFrame = onFrame
		drv, err := shiftreg.New(chain.Pins(), cfg.Bits)
		return drv, drv, err
	}

	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	var pins shiftreg.Pins
	for _, p := range []struct {
		name string
		dst  *gpio.PinOut
	}{
		{cfg.Pins.Data, &pins.Data},
		{cfg.Pins.Clock, &pins.Clock},
		{cfg.Pins.Latch, &pins.Latch},
	} {
		pin := gpioreg.ByName(p.name)
		if pin == nil {
			return nil, nil, fmt.Errorf("invalid GPIO pin %q", p.name)
		}
		*p.dst = pin
	}
	drv, err := shiftreg.New(pins, cfg.Bits)
	if err != nil {
		return nil, nil, err
	}
	return drv, &tap{Driver: drv, onFrame: onFrame}, nil
}

// tap reports the buffer after each Update on real hardware, where nothing
// can be read back from the chain.
type tap struct {
	*shiftreg.Driver
	frames  uint64
	onFrame func(uint64, []bool)
}

func (t *tap) Update() error {
	if err := t.Driver.Update(); err != nil {
		return err
	}
	t.frames++
	frame := make([]bool, t.Len())
	for i := range frame {
		frame[i], _ = t.Get(i)
	}
	t.onFrame(t.frames, frame)
	return nil
}

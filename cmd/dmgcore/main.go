// Command dmgcore runs a cartridge image against the emulation core,
// presenting frames through a selectable backend. Grounded on
// valerio-go-jeebie's main.go: the urfave/cli app shape, the
// SIGINT/SIGTERM-driven shutdown (translated here to a
// context.Context, the idiomatic Go equivalent), and the ~60Hz frame
// ticker loop.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/kklx/dmgcore"
	"github.com/kklx/dmgcore/backend"
	"github.com/kklx/dmgcore/backend/headless"
	"github.com/kklx/dmgcore/backend/sdl2"
	"github.com/kklx/dmgcore/backend/terminal"
	"github.com/kklx/dmgcore/gberr"
)

const frameInterval = time.Second / 60

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Description = "A DMG-compatible handheld emulation core"
	app.Usage = "dmgcore [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "Path to the cartridge ROM"},
		cli.StringFlag{Name: "boot-rom", Usage: "Path to a 256-byte boot ROM (optional)"},
		cli.StringFlag{Name: "backend", Value: "terminal", Usage: "Rendering backend: terminal, sdl2, headless"},
		cli.IntFlag{Name: "frames", Value: 0, Usage: "Exit after N frames (headless backend only; 0 = run forever)"},
		cli.BoolFlag{Name: "debug", Usage: "Enable debug-level logging"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgcore exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("debug") {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	var bootROM []byte
	if p := c.String("boot-rom"); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			return &gberr.ErrCartridgeRead{Path: p, Err: err}
		}
		bootROM = data
	}

	be, err := selectBackend(c.String("backend"), c.Int("frames"))
	if err != nil {
		return err
	}

	machine, err := dmgcore.New(romPath, bootROM, nil)
	if err != nil {
		return err
	}

	if err := be.Init(machine.Header().Title); err != nil {
		return &gberr.ErrHostInit{Backend: c.String("backend"), Err: err}
	}
	defer be.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	return runLoop(ctx, machine, be)
}

func selectBackend(name string, maxFrames int) (backend.Backend, error) {
	switch name {
	case "terminal":
		return terminal.New(), nil
	case "sdl2":
		return sdl2.New(), nil
	case "headless":
		return headless.New(maxFrames), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func runLoop(ctx context.Context, m *dmgcore.Machine, be backend.Backend) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	done, hasDone := be.(interface{ Done() bool })

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.RunOneFrameForHost()
			events, err := be.Update(m.CurrentFrame())
			if err != nil {
				return err
			}
			for _, ev := range events {
				if ev.Pressed {
					m.PressKey(ev.Key)
				} else {
					m.ReleaseKey(ev.Key)
				}
			}
			if hasDone && done.Done() {
				return nil
			}
		}
	}
}

// Package headless provides a no-op Backend for tests and batch/CI
// runs, grounded on valerio-go-jeebie's backend/headless.go (minus its
// PNG-snapshot and test-pattern features, which this core's Non-goals
// exclude).
package headless

import (
	"log/slog"

	"github.com/kklx/dmgcore/backend"
	"github.com/kklx/dmgcore/ppu"
)

// Backend discards frames and reports no input; optionally it stops
// the caller after MaxFrames frames via Done.
type Backend struct {
	MaxFrames  int
	frameCount int
	logger     *slog.Logger
}

// New creates a headless backend. maxFrames of 0 means unbounded.
func New(maxFrames int) *Backend {
	return &Backend{MaxFrames: maxFrames, logger: slog.Default()}
}

func (b *Backend) Init(title string) error {
	b.logger.Info("headless backend started", "title", title, "max_frames", b.MaxFrames)
	return nil
}

func (b *Backend) Update(frame *ppu.FrameBuffer) ([]backend.InputEvent, error) {
	b.frameCount++
	return nil, nil
}

// Done reports whether MaxFrames has been reached (always false when
// MaxFrames is 0).
func (b *Backend) Done() bool {
	return b.MaxFrames > 0 && b.frameCount >= b.MaxFrames
}

func (b *Backend) Cleanup() error { return nil }

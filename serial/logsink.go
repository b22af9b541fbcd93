// Package serial provides a write-only serial port implementation that
// logs completed lines, grounded on valerio-go-jeebie's
// jeebie/serial/logsink.go almost verbatim: the pattern is exactly the
// external "serial sink" collaborator spec.md §6 describes.
package serial

import (
	"log/slog"

	"github.com/kklx/dmgcore/addr"
	"github.com/kklx/dmgcore/bit"
)

// Port is the minimal interface memory.Bus needs from a serial device.
// Implementations must only be asked about addr.SB and addr.SC.
type Port interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
}

// LogSink accumulates bytes written to SB while a transfer is active on
// SC and logs each completed line. Standard test ROMs (e.g. Blargg's
// cpu_instrs) use this to report progress.
type LogSink struct {
	irqHandler func()
	sb, sc     byte

	transferActive bool
	countdown      int
	immediate      bool

	line   []byte
	logger *slog.Logger
}

// Option configures a LogSink.
type Option func(*LogSink)

// WithFixedTiming makes transfers complete after a fixed countdown
// (~4096 CPU cycles per byte on DMG) instead of instantly.
func WithFixedTiming() Option { return func(s *LogSink) { s.immediate = false } }

// NewLogSink creates a serial sink. irq is invoked once a transfer
// completes and should request addr.Serial.
func NewLogSink(irq func(), opts ...Option) *LogSink {
	s := &LogSink{
		irqHandler: irq,
		immediate:  true,
		sb:         0xFF,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStartTransfer()
	}
}

func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc
	default:
		return 0xFF
	}
}

func (s *LogSink) Tick(cycles int) {
	if s.immediate || !s.transferActive {
		return
	}
	s.countdown -= cycles
	if s.countdown <= 0 {
		s.completeTransfer()
	}
}

func (s *LogSink) maybeStartTransfer() {
	if s.transferActive {
		return
	}
	// A transfer starts when bit 7 (start) and bit 0 (internal clock) of
	// SC are both set; external-clock transfers never complete without a
	// peer, so they are left pending (spec.md §6: serial is write-only
	// from the guest's point of view here).
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	b := s.sb
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			s.logger.Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
	} else {
		s.line = append(s.line, b)
	}

	if s.immediate {
		s.completeTransfer()
		return
	}

	s.transferActive = true
	s.countdown = 4096
}

func (s *LogSink) completeTransfer() {
	s.sb = 0xFF
	s.sc = bit.Reset(7, s.sc)
	s.transferActive = false
	if s.irqHandler != nil {
		s.irqHandler()
	}
}

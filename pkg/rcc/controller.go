package rcc

import (
	"time"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/mmio"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// Config carries the board facts the clock layer needs: register base
// addresses and the fixed oscillator frequencies. Zero bases default to
// the STM32L476 memory map.
type Config struct {
	// RCCBase is the RCC peripheral base address.
	RCCBase uint32

	// PWRBase is the PWR peripheral base address.
	PWRBase uint32

	// HSEHz is the external high-speed oscillator frequency, or zero when
	// the board has none fitted.
	HSEHz uint32

	// HSEBypass selects bypass mode for boards that feed HSE from an
	// external active source such as a TCXO.
	HSEBypass bool

	// LSEFitted reports whether the 32.768 kHz crystal is present.
	LSEFitted bool

	// LSEHz is the LSE frequency; 32768 on every supported board.
	LSEHz uint32

	// LSIHz is the nominal LSI frequency.
	LSIHz uint32
}

// Controller implements the clock driver sequences on top of a register
// file and a usage tracker: oscillator init/deinit, PLL configuration,
// system clock source selection, bus prescalers and RTC bring-up.
//
// Controller is not safe for concurrent use.
type Controller struct {
	regs    *RegisterFile
	tracker *Tracker
	cfg     Config
	logger  trace.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger wires a trace logger; the default discards events.
func WithLogger(l trace.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithTracker substitutes the usage tracker, for tests that pre-seed
// usage state.
func WithTracker(t *Tracker) Option {
	return func(c *Controller) {
		c.tracker = t
	}
}

// NewController returns a controller over bus for the given board facts.
func NewController(bus mmio.Bus, cfg Config, opts ...Option) *Controller {
	regs := NewRegisterFile(bus, cfg.RCCBase, cfg.PWRBase)
	c := &Controller{
		regs:    regs,
		tracker: NewTracker(regs),
		cfg:     cfg,
		logger:  trace.NoopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tracker returns the usage tracker.
func (c *Controller) Tracker() *Tracker {
	return c.tracker
}

// Registers returns the register file.
func (c *Controller) Registers() *RegisterFile {
	return c.regs
}

// Acquire takes a hold on a resource and traces the outcome.
func (c *Controller) Acquire(target Target) status.Code {
	return c.logOp(trace.OpAcquire, target, c.tracker.Acquire(target))
}

// Release drops a hold on a resource and traces the outcome.
func (c *Controller) Release(target Target) status.Code {
	return c.logOp(trace.OpRelease, target, c.tracker.Release(target))
}

// Reset zeroes the usage tables.
func (c *Controller) Reset() {
	c.tracker.Reset()
	c.logger.Log(trace.Event{
		Timestamp: time.Now(),
		Op:        trace.OpReset,
		Target:    "TRACKER",
		Status:    uint8(status.OK),
	})
}

// logOp records the outcome of an operation on target and passes the
// status through.
func (c *Controller) logOp(op trace.Op, target Target, st status.Code) status.Code {
	ev := trace.Event{
		Timestamp: time.Now(),
		Op:        op,
		Target:    target.String(),
		Status:    uint8(st),
	}
	if target.Kind() != KindRaw {
		ev.Usage = trace.U32(c.tracker.Usage(target))
	}
	c.logger.Log(ev)
	return st
}

// logFreq is logOp with the resulting frequency attached.
func (c *Controller) logFreq(op trace.Op, target Target, st status.Code, freqHz uint32) status.Code {
	ev := trace.Event{
		Timestamp: time.Now(),
		Op:        op,
		Target:    target.String(),
		Status:    uint8(st),
		FreqHz:    freqHz,
		Usage:     trace.U32(c.tracker.Usage(target)),
	}
	c.logger.Log(ev)
	return st
}

// waitForBits polls reg until all bits in mask are set (want true) or
// cleared (want false). The loop is bounded by budget iterations; each
// iteration performs exactly one register read, so the budget is measured
// in bus accesses, never wall-clock time.
func waitForBits(reg mmio.Reg, mask uint32, want bool, budget uint32) status.Code {
	for {
		if reg.HasBits(mask) == want {
			return status.OK
		}
		if budget == 0 {
			return status.Timeout
		}
		budget--
	}
}

// Package console provides the interactive command-line interface for
// the weather node clock tree.
package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/internal/simrcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/board"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/rcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// DefaultBudget is the ready poll budget used when none is configured.
const DefaultBudget = 64

// defaultTracePath receives events when "trace on" is given without a
// path and none was used before.
const defaultTracePath = "nodectl.ctrace"

// Sink is a trace logger whose destination can be swapped while the
// controller stays wired to it. The trace on/off commands switch the
// destination between a file and the discard logger.
type Sink struct {
	mu    sync.Mutex
	inner trace.Logger
}

// NewSink returns a sink that discards events until a destination is set.
func NewSink() *Sink {
	return &Sink{inner: trace.NoopLogger{}}
}

// Log forwards the event to the current destination.
func (s *Sink) Log(event trace.Event) {
	s.mu.Lock()
	inner := s.inner
	s.mu.Unlock()
	inner.Log(event)
}

// Set installs a new destination; nil means discard.
func (s *Sink) Set(inner trace.Logger) {
	if inner == nil {
		inner = trace.NoopLogger{}
	}
	s.mu.Lock()
	s.inner = inner
	s.mu.Unlock()
}

// Config wires the console to a controller and its simulated device.
type Config struct {
	Ctrl    *rcc.Controller
	Dev     *simrcc.Device
	Profile *board.Profile

	// Sink receives the controller's trace events; the trace command
	// swaps its destination. Optional, but required for trace on.
	Sink *Sink

	// Budget is the ready poll budget for init and select commands.
	// Zero means DefaultBudget.
	Budget uint32

	// TracePath starts event recording immediately when non-empty.
	TracePath string
}

// Console handles interactive mode for nodectl.
type Console struct {
	ctrl    *rcc.Controller
	dev     *simrcc.Device
	profile *board.Profile
	sink    *Sink
	rl      *readline.Instance
	out     io.Writer

	budget uint32

	// Trace recording state.
	traceFile *trace.FileLogger
	tracePath string

	// Faults armed through the fault command, kept for display; the
	// device itself has no readback for them.
	failReady   map[rcc.ClockID]bool
	stuckSwitch bool
}

// New creates a new console over the given controller and device.
func New(cfg Config) (*Console, error) {
	if cfg.Ctrl == nil || cfg.Dev == nil || cfg.Profile == nil {
		return nil, fmt.Errorf("console requires a controller, a device and a board profile")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "node> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := &Console{
		ctrl:      cfg.Ctrl,
		dev:       cfg.Dev,
		profile:   cfg.Profile,
		sink:      cfg.Sink,
		rl:        rl,
		out:       rl.Stdout(),
		budget:    cfg.Budget,
		failReady: make(map[rcc.ClockID]bool),
	}
	if c.budget == 0 {
		c.budget = DefaultBudget
	}
	if cfg.TracePath != "" {
		if err := c.startTrace(cfg.TracePath); err != nil {
			rl.Close()
			return nil, err
		}
	}
	return c, nil
}

// Stdout returns a writer that properly coordinates with the readline
// input. Use this for log output to avoid interfering with the prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline
// input.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()
	defer c.stopTrace()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if c.execute(input) {
			cancel()
			return
		}
	}
}

// execute dispatches a single command line and reports whether the
// console should exit.
func (c *Console) execute(input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "status", "st":
		c.cmdStatus()

	case "tree", "t":
		c.cmdTree()

	case "usage", "u":
		c.cmdUsage()

	case "init":
		c.cmdInit(args)

	case "deinit":
		c.cmdDeinit(args)

	case "sysclk", "sys":
		c.cmdSysclk(args)

	case "rtc":
		c.cmdRTC(args)

	case "drive":
		c.cmdDrive(args)

	case "acquire", "acq":
		c.cmdAcquire(args)

	case "release", "rel":
		c.cmdRelease(args)

	case "fault":
		c.cmdFault(args)

	case "budget":
		c.cmdBudget(args)

	case "peek":
		c.cmdPeek(args)

	case "poke":
		c.cmdPoke(args)

	case "reset":
		c.cmdReset()

	case "trace":
		c.cmdTrace(args)

	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Weather Node Clock Console:
  Inspection:
    status             - Show board, sysclk and RTC summary
    tree               - Show the full clock tree with usage counts
    usage              - Show usage counts for every tracked resource
    peek <reg>         - Read a register (name or 0x address)
    poke <reg> <val>   - Write a register, bypassing the driver

  Oscillators:
    init msi [range]   - Start MSI (range 0x0..0xB, default per board)
    init hse           - Start HSE (bypass per board profile)
    init lsi           - Start LSI
    init lse [drive]   - Start LSE (drive 0..3; backup domain handled)
    init pll <src> <m> <n> <r> - Start the PLL from msi or hse
    deinit <osc>       - Stop an oscillator (msi, hse, lsi, lse, pll)

  Clock Tree:
    sysclk <src>       - Switch the system clock to msi, hse or pll
    sysclk off         - Release the system clock selection
    rtc on <src>       - Clock the RTC from lse, lsi or hse
    rtc off            - Stop the RTC
    drive [0..3]       - Show or change the LSE drive strength
    acquire <target>   - Take a usage hold (clock, bus or peripheral)
    release <target>   - Drop a usage hold

  Simulation:
    fault ready <clock> on|off - Hold a clock's ready flag down
    fault switch on|off        - Hang the system clock switch
    budget [n]         - Show or set the ready poll budget
    reset              - Power-on reset the device and usage tables
    trace on [path]    - Record trace events to a file
    trace off          - Stop recording and close the file

  help, ?            - Show this help
  exit, quit, q      - Exit`)
}

// startTrace begins recording controller events to path, replacing any
// recording already in progress.
func (c *Console) startTrace(path string) error {
	if c.sink == nil {
		return fmt.Errorf("no trace sink wired")
	}
	c.stopTrace()
	file, err := trace.NewFileLogger(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	c.sink.Set(file)
	c.traceFile = file
	c.tracePath = path
	return nil
}

// stopTrace stops recording and closes the trace file, if any.
func (c *Console) stopTrace() {
	if c.traceFile == nil {
		return
	}
	c.sink.Set(nil)
	c.traceFile.Close()
	c.traceFile = nil
}

// withBackupAccess runs fn with backup domain write access open. The PWR
// block is brought up first if nothing holds it yet, and the DBP bit is
// cleared again afterwards either way.
func (c *Console) withBackupAccess(fn func() status.Code) status.Code {
	acquired := false
	if c.ctrl.Tracker().PeripheralUsage(rcc.PeriphPWR) == 0 {
		if st := c.ctrl.EnablePWR(); st.IsError() {
			return st
		}
		acquired = true
	}
	c.ctrl.Registers().PWRCR1().SetBits(rcc.PWR_CR1_DBP)
	st := fn()
	c.ctrl.Registers().PWRCR1().ClearBits(rcc.PWR_CR1_DBP)
	if acquired {
		if rel := c.ctrl.DisablePWR(); st.IsOK() && rel.IsError() {
			st = rel
		}
	}
	return st
}

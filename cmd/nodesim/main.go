// Command nodesim runs a scripted weather-node duty cycle against the
// simulated clock tree.
//
// The simulator walks the node through its power phases - boot, measure,
// transmit, sleep - switching the system clock root, the PLL and the RTC
// exactly as the firmware would, and writes every clock operation to a
// CBOR trace file for analysis with clocktrace.
//
// Usage:
//
//	nodesim [flags]
//
// Flags:
//
//	-board string     Board profile name (default "weathernode-v1")
//	-board-file string  Board profile YAML path (overrides -board)
//	-scenario string  Scenario TOML path (default: built-in duty cycle)
//	-cycles int       Override the scenario's cycle count
//	-trace string     Trace output path (default "node.ctrace")
//	-v                Log every clock operation to stderr
//	-list-boards      List embedded board profiles and exit
//
// Examples:
//
//	# Three duty cycles on the default board
//	nodesim
//
//	# A custom scenario on the Nucleo devboard, verbose
//	nodesim -board nucleo-l476rg -scenario docs/scenarios/duty-cycle.toml -v
//
//	# Inspect the resulting trace
//	clocktrace stats node.ctrace
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/internal/simrcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/board"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/rcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// Config holds the simulator configuration.
type Config struct {
	Board      string
	BoardFile  string
	Scenario   string
	Cycles     int
	TracePath  string
	Verbose    bool
	ListBoards bool
}

var config Config

func init() {
	flag.StringVar(&config.Board, "board", "weathernode-v1", "Board profile name")
	flag.StringVar(&config.BoardFile, "board-file", "", "Board profile YAML path (overrides -board)")
	flag.StringVar(&config.Scenario, "scenario", "", "Scenario TOML path (default: built-in duty cycle)")
	flag.IntVar(&config.Cycles, "cycles", 0, "Override the scenario's cycle count")
	flag.StringVar(&config.TracePath, "trace", "node.ctrace", "Trace output path")
	flag.BoolVar(&config.Verbose, "v", false, "Log every clock operation to stderr")
	flag.BoolVar(&config.ListBoards, "list-boards", false, "List embedded board profiles and exit")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	if config.ListBoards {
		names, err := board.Available()
		if err != nil {
			log.Fatalf("Failed to list boards: %v", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	// Board profile
	profile, err := loadProfile()
	if err != nil {
		log.Fatalf("Failed to load board profile: %v", err)
	}

	// Scenario
	scenario, err := loadScenario()
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}
	if config.Cycles > 0 {
		scenario.Cycles = config.Cycles
	}

	// Trace pipeline: file sink, plus stderr via slog. Failures always
	// show; -v shows successes too.
	fileLog, err := trace.NewFileLogger(config.TracePath)
	if err != nil {
		log.Fatalf("Failed to open trace file: %v", err)
	}

	level := slog.LevelWarn
	if config.Verbose {
		level = slog.LevelDebug
	}
	stderrLog := trace.NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	session := trace.NewSessionID()
	logger := trace.NewSessionLogger(trace.NewMultiLogger(fileLog, stderrLog), session, trace.NodeID())

	// Simulated device + controller
	dev := simrcc.NewDevice()
	ctrl := rcc.NewController(dev, profile.RCCConfig(), rcc.WithLogger(logger))

	log.Println("Weather node clock simulator")
	log.Printf("Board:    %s (%s)", profile.Name, profile.MCU)
	log.Printf("Scenario: %s (%d cycles, %d phases)", scenario.Name, scenario.Cycles, len(scenario.Phases))
	log.Printf("Trace:    %s (session %.8s)", config.TracePath, session)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner{
		ctrl:       ctrl,
		dev:        dev,
		logger:     logger,
		budget:     scenario.Budget,
		hseBypass:  profile.HSEBypass,
		msiDefault: profile.MSIDefaultRange,
	}

	runErr := r.Run(ctx, scenario)

	printSummary(ctrl, dev)

	if err := fileLog.Close(); err != nil {
		log.Printf("Warning: closing trace file: %v", err)
	}

	switch {
	case errors.Is(runErr, context.Canceled):
		log.Println("Interrupted")
	case runErr != nil:
		log.Fatalf("Scenario failed: %v", runErr)
	default:
		log.Println("Scenario complete")
	}
}

func loadProfile() (*board.Profile, error) {
	if config.BoardFile != "" {
		return board.LoadFile(config.BoardFile)
	}
	return board.Load(config.Board)
}

func loadScenario() (*Scenario, error) {
	if config.Scenario != "" {
		return LoadScenario(config.Scenario)
	}
	return DefaultScenario(), nil
}

func printSummary(ctrl *rcc.Controller, dev *simrcc.Device) {
	tree := ctrl.Snapshot()

	log.Printf("Bus accesses: %d", dev.Tick())
	if tree.SysclkKnown && tree.SysUsage > 0 {
		log.Printf("Final sysclk: %s at %d Hz", tree.SysclkSource, tree.SysclkHz)
	} else {
		log.Println("Final sysclk: released")
	}
	if tree.RTCEnabled {
		log.Printf("RTC: running from %s at %d Hz", tree.RTCSource, tree.RTCHz)
	} else {
		log.Println("RTC: off")
	}
	for _, osc := range tree.Oscillators {
		if osc.Usage > 0 {
			log.Printf("Held: %s (usage %d)", osc.Clock, osc.Usage)
		}
	}
}

// Command nodectl is an interactive console for the weather node clock
// tree. It drives the complete clock management layer against a simulated
// STM32L476 RCC block: bring oscillators up and down, configure the PLL,
// switch the system clock, gate buses, clock the RTC and watch the usage
// tracker refuse unsafe transitions, with hardware faults injectable at
// any point.
//
// Usage:
//
//	nodectl [flags]
//
// Flags:
//
//	-board string       Board profile name (default "weathernode-v1")
//	-board-file string  Board profile YAML file (overrides -board)
//	-budget uint        Ready poll budget for init and select commands (default 64)
//	-trace string       Record trace events to this file from startup
//	-list-boards        List built-in board profiles and exit
//
// Examples:
//
//	# Explore the clock tree interactively
//	nodectl
//
//	# Record every operation for later analysis
//	nodectl -trace session.ctrace
//	clocktrace view session.ctrace
//
//	# Drive the Nucleo development board profile
//	nodectl -board nucleo-l476rg
//
// Interactive Commands:
//
//	status             - Show board, sysclk and RTC summary
//	tree               - Show the full clock tree with usage counts
//	init msi           - Start an oscillator (also hse, lsi, lse, pll)
//	sysclk pll         - Switch the system clock
//	rtc on lse         - Clock the RTC
//	fault ready hse on - Arm a ready timeout fault
//	help               - Full command list
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/cmd/nodectl/console"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/internal/simrcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/board"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/rcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// Config holds the console configuration.
type Config struct {
	Board      string
	BoardFile  string
	Budget     uint
	TracePath  string
	ListBoards bool
}

var config Config

func init() {
	flag.StringVar(&config.Board, "board", "weathernode-v1", "Board profile name")
	flag.StringVar(&config.BoardFile, "board-file", "", "Board profile YAML file (overrides -board)")
	flag.UintVar(&config.Budget, "budget", console.DefaultBudget, "Ready poll budget for init and select commands")
	flag.StringVar(&config.TracePath, "trace", "", "Record trace events to this file from startup")
	flag.BoolVar(&config.ListBoards, "list-boards", false, "List built-in board profiles and exit")
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

	profile, err := loadProfile()
	if err != nil {
		log.Fatalf("Failed to load board profile: %v", err)
	}

	session := trace.NewSessionID()
	sink := console.NewSink()
	dev := simrcc.NewDevice()
	ctrl := rcc.NewController(dev, profile.RCCConfig(),
		rcc.WithLogger(trace.NewSessionLogger(sink, session, trace.NodeID())))

	con, err := console.New(console.Config{
		Ctrl:      ctrl,
		Dev:       dev,
		Profile:   profile,
		Sink:      sink,
		Budget:    uint32(config.Budget),
		TracePath: config.TracePath,
	})
	if err != nil {
		log.Fatalf("Failed to create console: %v", err)
	}

	// Redirect log output through readline to avoid interfering with the
	// prompt.
	log.SetOutput(con.Stdout())

	log.Printf("Weather node clock console")
	log.Printf("Board: %s (%s)", profile.Name, profile.MCU)
	log.Printf("Session: %.8s", session)
	if config.TracePath != "" {
		log.Printf("Trace: %s", config.TracePath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go con.Run(ctx, cancel)

	// Wait for shutdown signal or the exit command.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
	}

	log.Println("Goodbye!")
}

func loadProfile() (*board.Profile, error) {
	if config.BoardFile != "" {
		return board.LoadFile(config.BoardFile)
	}
	return board.Load(config.Board)
}

// Command clocktrace is a tool for viewing and analyzing clock trace files.
//
// Trace files are created by the clock layer's flight recorder when running
// nodesim or nodectl with the -trace flag.
//
// Usage:
//
//	clocktrace <command> [flags] <file.ctrace>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSON or CSV format
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	clocktrace view node.ctrace
//
//	# View only init sequences
//	clocktrace view --op init node.ctrace
//
//	# View only timeouts
//	clocktrace view --status timeout node.ctrace
//
//	# Export to JSONL
//	clocktrace export --format jsonl node.ctrace
//
//	# Filter by target and save to new file
//	clocktrace filter --target CLOCK:PLL -o pll.ctrace node.ctrace
//
//	# Show statistics
//	clocktrace stats node.ctrace
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/cmd/clocktrace/commands"
)

const usage = `clocktrace - Clock Trace Analyzer

Usage:
  clocktrace <command> [flags] <file.ctrace>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSON or CSV format
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "clocktrace <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `clocktrace view - View trace file in human-readable format

Usage:
  clocktrace view [flags] <file.ctrace>

Flags:
`)
		fs.PrintDefaults()
	}

	op := fs.String("op", "", "Filter by operation (acquire, release, init, deinit, select, drive-change, reset, phase)")
	st := fs.String("status", "", "Filter by status name (ok, timeout, already-acquired, ...)")
	target := fs.String("target", "", "Filter by target, e.g. CLOCK:PLL or BUS:APB1")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	// Build filter
	var filter commands.ViewFilter
	filter.Target = *target

	if *op != "" {
		o, err := commands.ParseOpFlag(*op)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Op = &o
	}

	if *st != "" {
		s, err := commands.ParseStatusFlag(*st)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Status = &s
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `clocktrace export - Export trace file to JSON or CSV format

Usage:
  clocktrace export [flags] <file.ctrace>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `clocktrace filter - Filter trace file and write to new file

Usage:
  clocktrace filter [flags] <file.ctrace>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	session := fs.String("session", "", "Filter by boot session ID")
	node := fs.String("node", "", "Filter by node ID")
	target := fs.String("target", "", "Filter by target, e.g. CLOCK:PLL or BUS:APB1")
	op := fs.String("op", "", "Filter by operation (acquire, release, init, deinit, select, drive-change, reset, phase)")
	st := fs.String("status", "", "Filter by status name (ok, timeout, already-acquired, ...)")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	opts := commands.FilterOptions{
		Output:    *output,
		Session:   *session,
		Node:      *node,
		Target:    *target,
		Op:        *op,
		Status:    *st,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
	}

	if err := commands.RunFilter(path, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `clocktrace stats - Show statistics about the trace file

Usage:
  clocktrace stats <file.ctrace>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

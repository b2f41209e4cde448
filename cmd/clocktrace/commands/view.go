// Package commands implements the clocktrace CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Op     *trace.Op
	Status *uint8
	Target string
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event trace.Event) {
	// Header line: timestamp [session] OPERATION TARGET STATUS
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	session := shortenSession(event.Session)

	fmt.Fprintf(w, "%s [%s] %-12s %-24s %s\n",
		ts, session, event.Op.String(), event.Target, status.Code(event.Status).String())

	if event.FreqHz != 0 {
		fmt.Fprintf(w, "  Freq: %s\n", formatHz(event.FreqHz))
	}
	if event.Usage != nil {
		fmt.Fprintf(w, "  Usage: %d\n", *event.Usage)
	}
	if event.Detail != "" {
		fmt.Fprintf(w, "  Detail: %s\n", event.Detail)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSession returns the first 8 characters of the session ID.
func shortenSession(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatHz formats a frequency for display.
func formatHz(hz uint32) string {
	switch {
	case hz == 0:
		return "0 Hz"
	case hz%1000000 == 0:
		return fmt.Sprintf("%d MHz", hz/1000000)
	case hz%1000 == 0:
		return fmt.Sprintf("%d kHz", hz/1000)
	case hz >= 1000:
		return fmt.Sprintf("%.3f kHz", float64(hz)/1000)
	default:
		return fmt.Sprintf("%d Hz", hz)
	}
}

// ParseOpFlag parses an operation name from a command-line flag
// (case-insensitive, "-" and "_" are interchangeable).
func ParseOpFlag(s string) (trace.Op, error) {
	return parseOp(s)
}

// parseOp parses an operation name.
func parseOp(s string) (trace.Op, error) {
	switch strings.ToUpper(strings.ReplaceAll(s, "-", "_")) {
	case "ACQUIRE":
		return trace.OpAcquire, nil
	case "RELEASE":
		return trace.OpRelease, nil
	case "INIT":
		return trace.OpInit, nil
	case "DEINIT":
		return trace.OpDeinit, nil
	case "SELECT":
		return trace.OpSelect, nil
	case "DRIVE_CHANGE":
		return trace.OpDriveChange, nil
	case "RESET":
		return trace.OpReset, nil
	case "PHASE":
		return trace.OpPhase, nil
	default:
		return 0, fmt.Errorf("invalid operation: %s (must be acquire, release, init, deinit, select, drive-change, reset, or phase)", s)
	}
}

// ParseStatusFlag parses a status name from a command-line flag
// (case-insensitive, "-" and "_" are interchangeable).
func ParseStatusFlag(s string) (uint8, error) {
	return parseStatus(s)
}

// parseStatus parses a status name.
func parseStatus(s string) (uint8, error) {
	want := strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
	for c := status.OK; c <= status.DependentClockNotConfigured; c++ {
		if c.String() == want {
			return uint8(c), nil
		}
	}
	return 0, fmt.Errorf("invalid status: %s (use a status name such as ok, timeout, or already-acquired)", s)
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := trace.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		// Apply filter
		if filter.Op != nil && event.Op != *filter.Op {
			continue
		}
		if filter.Status != nil && event.Status != *filter.Status {
			continue
		}
		if filter.Target != "" && event.Target != filter.Target {
			continue
		}

		formatEvent(output, event)
	}

	return nil
}

package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents    int
	EventsByOp     map[trace.Op]int
	EventsByStatus map[uint8]int
	Targets        map[string]*TargetStats
	Sessions       map[string]*SessionStats
	Failures       int
	TimeRange      struct {
		Start time.Time
		End   time.Time
	}
}

// TargetStats holds statistics for a single clock, bus or peripheral target.
type TargetStats struct {
	Events    int
	Failures  int
	LastUsage *uint32
}

// SessionStats holds statistics for a single boot session.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Node      string
	Failures  int
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := trace.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByOp:     make(map[trace.Op]int),
		EventsByStatus: make(map[uint8]int),
		Targets:        make(map[string]*TargetStats),
		Sessions:       make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByOp[event.Op]++
		stats.EventsByStatus[event.Status]++

		failed := status.Code(event.Status).IsError()
		if failed {
			stats.Failures++
		}

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		// Track target stats
		if event.Target != "" {
			target, ok := stats.Targets[event.Target]
			if !ok {
				target = &TargetStats{}
				stats.Targets[event.Target] = target
			}
			target.Events++
			if failed {
				target.Failures++
			}
			if event.Usage != nil {
				target.LastUsage = event.Usage
			}
		}

		// Track session stats
		if event.Session != "" {
			session, ok := stats.Sessions[event.Session]
			if !ok {
				session = &SessionStats{
					FirstSeen: event.Timestamp,
					LastSeen:  event.Timestamp,
				}
				stats.Sessions[event.Session] = session
			}
			session.Events++
			if event.Timestamp.After(session.LastSeen) {
				session.LastSeen = event.Timestamp
			}
			if event.Node != "" && session.Node == "" {
				session.Node = event.Node
			}
			if failed {
				session.Failures++
			}
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Clock Trace Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	// Total events
	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	// Events by operation
	fmt.Fprintln(w, "Events by Operation:")
	for _, op := range []trace.Op{
		trace.OpAcquire, trace.OpRelease, trace.OpInit, trace.OpDeinit,
		trace.OpSelect, trace.OpDriveChange, trace.OpReset, trace.OpPhase,
	} {
		if count := stats.EventsByOp[op]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", op.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Events by status, in code order
	fmt.Fprintln(w, "Events by Status:")
	codes := make([]int, 0, len(stats.EventsByStatus))
	for c := range stats.EventsByStatus {
		codes = append(codes, int(c))
	}
	sort.Ints(codes)
	for _, c := range codes {
		name := status.Code(c).String()
		fmt.Fprintf(w, "  %-32s %d\n", name+":", stats.EventsByStatus[uint8(c)])
	}
	fmt.Fprintln(w)

	// Targets
	fmt.Fprintf(w, "Targets: %d\n", len(stats.Targets))
	if len(stats.Targets) > 0 {
		names := make([]string, 0, len(stats.Targets))
		for name := range stats.Targets {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			ts := stats.Targets[name]
			fmt.Fprintf(w, "  %s: %d events", name, ts.Events)
			if ts.LastUsage != nil {
				fmt.Fprintf(w, ", usage now %d", *ts.LastUsage)
			}
			if ts.Failures > 0 {
				fmt.Fprintf(w, " (%d failed)", ts.Failures)
			}
			fmt.Fprintln(w)
		}
	}

	// Sessions
	if len(stats.Sessions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))

		type sessionInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessionInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessionInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenSession(s.id), s.stats.Events, duration)
			if s.stats.Node != "" {
				fmt.Fprintf(w, "           Node: %s\n", s.stats.Node)
			}
			if s.stats.Failures > 0 {
				fmt.Fprintf(w, "           Failures: %d\n", s.stats.Failures)
			}
		}
	}

	// Failures
	if stats.Failures > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Failures: %d\n", stats.Failures)
	}
}

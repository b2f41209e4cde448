package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

func createTestTraceFile(t *testing.T, events []trace.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ctrace")

	logger, err := trace.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func TestExportToJSONL(t *testing.T) {
	ts := time.Date(2026, 2, 11, 6, 15, 32, 123456000, time.UTC)
	events := []trace.Event{
		{
			Timestamp: ts,
			Session:   "boot-1",
			Op:        trace.OpInit,
			Target:    "CLOCK:MSI",
			Status:    0x00,
			FreqHz:    4000000,
			Usage:     trace.U32(1),
		},
		{
			Timestamp: ts.Add(time.Second),
			Session:   "boot-1",
			Op:        trace.OpSelect,
			Target:    "CLOCK:SYS",
			Status:    0x00,
			FreqHz:    4000000,
			Usage:     trace.U32(1),
		},
	}

	path := createTestTraceFile(t, events)

	output := filepath.Join(t.TempDir(), "out.jsonl")
	if err := RunExport(path, "jsonl", output); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data := readFile(t, output)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d JSONL lines, want 2", len(lines))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first line is not valid JSON: %v", err)
	}
	if first["Target"] != "CLOCK:MSI" {
		t.Errorf("Target = %v, want CLOCK:MSI", first["Target"])
	}
	if first["FreqHz"] != float64(4000000) {
		t.Errorf("FreqHz = %v, want 4000000", first["FreqHz"])
	}
}

func TestExportToCSV(t *testing.T) {
	ts := time.Date(2026, 2, 11, 6, 15, 32, 0, time.UTC)
	events := []trace.Event{
		{
			Timestamp: ts,
			Session:   "boot-1",
			Op:        trace.OpInit,
			Target:    "CLOCK:MSI",
			Status:    0x00,
			FreqHz:    4000000,
			Usage:     trace.U32(1),
		},
		{
			Timestamp: ts.Add(time.Second),
			Op:        trace.OpInit,
			Target:    "CLOCK:HSE",
			Status:    0x02,
		},
	}

	path := createTestTraceFile(t, events)

	output := filepath.Join(t.TempDir(), "out.csv")
	if err := RunExport(path, "csv", output); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(readFile(t, output))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d CSV records, want header + 2 rows", len(records))
	}
	if records[0][0] != "timestamp" || records[0][4] != "target" {
		t.Errorf("unexpected header: %v", records[0])
	}

	first := records[1]
	if first[3] != "INIT" || first[4] != "CLOCK:MSI" || first[5] != "OK" {
		t.Errorf("first row = %v", first)
	}
	if first[6] != "4000000" || first[7] != "1" {
		t.Errorf("freq/usage = %q/%q", first[6], first[7])
	}

	// Failed init has no frequency and no usage count.
	second := records[2]
	if second[5] != "TIMEOUT" {
		t.Errorf("second row status = %q, want TIMEOUT", second[5])
	}
	if second[6] != "" || second[7] != "" {
		t.Errorf("freq/usage = %q/%q, want empty", second[6], second[7])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestTraceFile(t, nil)

	err := RunExport(path, "xml", "")
	if err == nil {
		t.Fatal("expected an error for an unknown format")
	}
	if !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("error = %v", err)
	}
}

func TestExportMissingFile(t *testing.T) {
	err := RunExport(filepath.Join(t.TempDir(), "absent.ctrace"), "jsonl", "")
	if err == nil {
		t.Fatal("expected an error for a missing trace file")
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return data
}

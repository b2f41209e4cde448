package trace

import (
	"testing"
	"time"
)

func TestEventCBORRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	original := Event{
		Timestamp: ts,
		Session:   "f81d4fae-7dec-11d0-a765-00a0c91e6bf6",
		Node:      "bench-03",
		Op:        OpInit,
		Target:    "CLOCK:PLL",
		Status:    0x00,
		FreqHz:    80000000,
		Usage:     U32(1),
		Detail:    "boot",
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.Session != original.Session {
		t.Errorf("Session: got %q, want %q", decoded.Session, original.Session)
	}
	if decoded.Node != original.Node {
		t.Errorf("Node: got %q, want %q", decoded.Node, original.Node)
	}
	if decoded.Op != original.Op {
		t.Errorf("Op: got %v, want %v", decoded.Op, original.Op)
	}
	if decoded.Target != original.Target {
		t.Errorf("Target: got %q, want %q", decoded.Target, original.Target)
	}
	if decoded.Status != original.Status {
		t.Errorf("Status: got %#x, want %#x", decoded.Status, original.Status)
	}
	if decoded.FreqHz != original.FreqHz {
		t.Errorf("FreqHz: got %d, want %d", decoded.FreqHz, original.FreqHz)
	}
	if decoded.Usage == nil {
		t.Error("Usage is nil")
	} else if *decoded.Usage != *original.Usage {
		t.Errorf("Usage: got %d, want %d", *decoded.Usage, *original.Usage)
	}
	if decoded.Detail != original.Detail {
		t.Errorf("Detail: got %q, want %q", decoded.Detail, original.Detail)
	}
}

func TestEventCBOROmitsAbsentFields(t *testing.T) {
	// A raw register write carries no usage count and no frequency.
	original := Event{
		Timestamp: time.Now(),
		Op:        OpAcquire,
		Target:    "RAW:0x40021048/0x001000",
		Status:    0x00,
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Usage != nil {
		t.Errorf("Usage: got %d, want nil", *decoded.Usage)
	}
	if decoded.Session != "" || decoded.Node != "" || decoded.Detail != "" {
		t.Errorf("optional strings survived: %q/%q/%q", decoded.Session, decoded.Node, decoded.Detail)
	}
	if decoded.FreqHz != 0 {
		t.Errorf("FreqHz: got %d, want 0", decoded.FreqHz)
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0x00, 0x13}); err == nil {
		t.Fatal("expected an error for malformed CBOR")
	}
}

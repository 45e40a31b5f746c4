package parser

import (
	"errors"
	"testing"
	"time"
)

func TestParseLineFields(t *testing.T) {
	line := "2025-03-01T10:15:30+08:00 CONNECT PeerName='Alice' PeerKey=aBc123xyz= Endpoint=203.0.113.5:51820"
	rec, err := ParseLine(line)
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	want, _ := time.Parse(time.RFC3339, "2025-03-01T10:15:30+08:00")
	if !rec.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp, want)
	}
	// смещение таймзоны должно сохраниться как есть
	if _, off := rec.Timestamp.Zone(); off != 8*3600 {
		t.Errorf("zone offset = %d, want %d", off, 8*3600)
	}
	if got := rec.Timestamp.Format(time.RFC3339); got != "2025-03-01T10:15:30+08:00" {
		t.Errorf("timestamp round-trip = %q", got)
	}
	if rec.Event != "CONNECT" {
		t.Errorf("event = %q, want CONNECT", rec.Event)
	}
	if rec.PeerName != "Alice" {
		t.Errorf("peer name = %q, want Alice", rec.PeerName)
	}
	if rec.PeerKey != "aBc123xyz=" {
		t.Errorf("peer key = %q", rec.PeerKey)
	}
	if rec.Endpoint != "203.0.113.5:51820" {
		t.Errorf("endpoint = %q", rec.Endpoint)
	}
}

func TestParseLineQualifierDiscarded(t *testing.T) {
	cases := []struct {
		line  string
		event string
	}{
		{"2025-03-01T10:20:00+00:00 DISCONNECT (Timeout) PeerName='Bob' PeerKey=k1 Endpoint=198.51.100.2:51820", "DISCONNECT"},
		{"2025-03-01T10:21:00-05:00 DISCONNECT_TIMEOUT PeerName='Bob' PeerKey=k1 Endpoint=198.51.100.2:51820", "DISCONNECT_TIMEOUT"},
		{"2025-03-01T10:22:00+03:00 RECONNECT/UPDATE PeerName='Bob' PeerKey=k1 Endpoint=198.51.100.2:51820", "RECONNECT/UPDATE"},
	}
	for _, c := range cases {
		rec, err := ParseLine(c.line)
		if err != nil {
			t.Fatalf("ParseLine(%q) failed: %v", c.line, err)
		}
		if rec.Event != c.event {
			t.Errorf("event = %q, want %q", rec.Event, c.event)
		}
	}
}

func TestParseLineUnknownName(t *testing.T) {
	line := "2025-03-01T10:15:30+08:00 CONNECT PeerName='Unknown' PeerKey=k2 Endpoint=203.0.113.9:51820"
	rec, err := ParseLine(line)
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if rec.PeerName != "Unknown" {
		t.Errorf("peer name = %q, want Unknown", rec.PeerName)
	}
}

func TestParseLineBadTimestamp(t *testing.T) {
	line := "2025-13-45T99:99:99+08:00 CONNECT PeerName='A' PeerKey=k Endpoint=e:1"
	_, err := ParseLine(line)
	if !errors.Is(err, ErrBadTimestamp) {
		t.Fatalf("err = %v, want ErrBadTimestamp", err)
	}
}

func TestParseLineNoMatch(t *testing.T) {
	lines := []string{
		"",
		"garbage line without structure",
		// смещение "Z" грамматикой не допускается
		"2025-03-01T10:15:30Z CONNECT PeerName='A' PeerKey=k Endpoint=e:1",
		// пропущено поле PeerKey
		"2025-03-01T10:15:30+08:00 CONNECT PeerName='A' Endpoint=e:1",
	}
	for _, line := range lines {
		if _, err := ParseLine(line); !errors.Is(err, ErrNoMatch) {
			t.Errorf("ParseLine(%q) err = %v, want ErrNoMatch", line, err)
		}
	}
}

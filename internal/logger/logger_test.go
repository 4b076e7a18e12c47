package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestLogger_Log(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "page fetched",
			fields:  Fields{"url": "https://deetlist.com/"},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "debug message",
			want:    false, // won't log (below INFO)
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "fetch failed",
			err:     errors.New("status 500"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(LevelInfo, &buf)

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			logged := buf.Len() > 0
			if logged != tt.want {
				t.Fatalf("log() logged = %v, want %v", logged, tt.want)
			}
			if !logged {
				return
			}

			entries := decodeLines(t, &buf)
			if entries[0].Message != tt.message {
				t.Errorf("Message = %q, want %q", entries[0].Message, tt.message)
			}
			if tt.err != nil && entries[0].Error != tt.err.Error() {
				t.Errorf("Error = %q, want %q", entries[0].Error, tt.err.Error())
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	base := New(LevelDebug, &buf)
	child := base.With(Fields{"run_id": "abc", "kind": "race"})

	child.Info("extracting", Fields{"kind": "dragon", "url": "u"})
	base.Info("plain", nil)

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	f := entries[0].Fields
	if f["run_id"] != "abc" {
		t.Errorf("run_id = %v, want abc", f["run_id"])
	}
	if f["kind"] != "dragon" {
		t.Errorf("kind = %v, call fields should win", f["kind"])
	}
	if f["url"] != "u" {
		t.Errorf("url = %v, want u", f["url"])
	}
	if len(entries[1].Fields) != 0 {
		t.Errorf("parent logger picked up child fields: %v", entries[1].Fields)
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, LevelDebug, true},
		{"info logs at debug", LevelDebug, LevelInfo, true},
		{"debug doesn't log at info", LevelInfo, LevelDebug, false},
		{"warn doesn't log at error", LevelError, LevelWarn, false},
		{"error always logs", LevelDebug, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(tt.minLevel, &buf)

			logger.log(tt.logLevel, "test", nil, nil)

			if logged := buf.Len() > 0; logged != tt.shouldLog {
				t.Errorf("shouldLog = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"debug", "INFO", " warn ", "Error"} {
		if _, err := ParseLevel(name); err != nil {
			t.Errorf("ParseLevel(%q) error = %v", name, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(verbose) expected error")
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.With(Fields{"worker": i}).Info("done", nil)
		}(i)
	}
	wg.Wait()

	if got := len(decodeLines(t, &buf)); got != 20 {
		t.Errorf("got %d lines, want 20", got)
	}
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("fetch.requests")
	m.IncrCounter("fetch.requests")
	m.AddCounter("fetch.requests", 3)

	if got := m.GetSnapshot().Counters["fetch.requests"]; got != 5 {
		t.Errorf("Counter = %v, want 5", got)
	}
	if got := m.Counter("fetch.requests"); got != 5 {
		t.Errorf("Counter() = %v, want 5", got)
	}
}

func TestMetrics_Gauge(t *testing.T) {
	m := NewMetrics()

	m.SetGauge("batch.size", 3)
	m.SetGauge("batch.size", 7)

	if got := m.GetSnapshot().Gauges["batch.size"]; got != 7 {
		t.Errorf("Gauge = %v, want 7", got)
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("fetch.duration", 100*time.Millisecond)
	m.RecordTiming("fetch.duration", 200*time.Millisecond)
	m.RecordTiming("fetch.duration", 150*time.Millisecond)

	stats := m.GetSnapshot().Timings["fetch.duration"]
	if stats.Count != 3 {
		t.Errorf("Timing count = %v, want 3", stats.Count)
	}
	if stats.Min != "100ms" {
		t.Errorf("Min timing = %v, want 100ms", stats.Min)
	}
	if stats.Max != "200ms" {
		t.Errorf("Max timing = %v, want 200ms", stats.Max)
	}
	if stats.Average != "150ms" {
		t.Errorf("Average timing = %v, want 150ms", stats.Average)
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(New(LevelDebug, &buf))
	defer SetDefault(prev)

	Debug("test debug", nil)
	Info("test info", Fields{"key": "value"})
	Warn("test warning", nil)
	Error("test error", Fields{"component": "test"}, errors.New("test"))

	if got := len(decodeLines(t, &buf)); got != 4 {
		t.Errorf("got %d lines, want 4", got)
	}

	IncrCounter("test")
	SetGauge("test", 42.0)
	RecordTiming("test", time.Second)

	snapshot := GetMetricsSnapshot()
	if snapshot.Counters["test"] < 1 {
		t.Error("GetMetricsSnapshot() missing counter")
	}
}

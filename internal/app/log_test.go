package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestPWHandler_Handle(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 15, 30, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "project created",
			want:    "2025-03-01T09:15:30Z\tINFO\top-123\tproject created\n",
		},
		{
			name:    "warn level",
			opID:    "op-456",
			level:   slog.LevelWarn,
			message: "snapshot skipped",
			want:    "2025-03-01T09:15:30Z\tWARN\top-456\tsnapshot skipped\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelInfo,
			message: "artifact revision written",
			attrs:   []slog.Attr{slog.String("type", "freeform_note"), slog.Int("revision", 3)},
			want:    "2025-03-01T09:15:30Z\tINFO\top-789\tartifact revision written\ttype=freeform_note\trevision=3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := newPWHandler(&buf, tt.opID, slog.LevelDebug)

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			r.AddAttrs(tt.attrs...)

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() wrote %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPWHandler_Enabled(t *testing.T) {
	h := newPWHandler(&bytes.Buffer{}, "op", slog.LevelInfo)
	ctx := context.Background()

	if h.Enabled(ctx, slog.LevelDebug) {
		t.Error("Enabled(Debug) = true at Info level")
	}
	if !h.Enabled(ctx, slog.LevelInfo) || !h.Enabled(ctx, slog.LevelError) {
		t.Error("Enabled() = false for Info or above")
	}
}

func TestPWHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := newPWHandler(&buf, "op-1", slog.LevelDebug)
	h := base.WithAttrs([]slog.Attr{slog.String("store", "s1")})

	logger := slog.New(h)
	logger.Info("snapshot archived", "version", 4)

	line := buf.String()
	if !strings.HasSuffix(line, "\tsnapshot archived\tstore=s1\tversion=4\n") {
		t.Errorf("line = %q", line)
	}

	// The base handler is unchanged.
	buf.Reset()
	slog.New(base).Info("plain")
	if strings.Contains(buf.String(), "store=") {
		t.Errorf("base handler gained attrs: %q", buf.String())
	}
}

func TestPWHandler_ConcurrentLines(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newPWHandler(&buf, "op", slog.LevelInfo))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.With("worker", i).Info("tool call", "n", i)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	for _, l := range lines {
		if strings.Count(l, "\t") != 6 {
			t.Errorf("malformed line %q", l)
		}
	}
}

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")
	var console bytes.Buffer

	logger, f, err := newLogger(dir, "op-1", &console, slog.LevelInfo)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	logger.Info("hello", "k", "v")
	logger.Debug("hidden")
	f.Close()

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "\tINFO\top-1\thello\tk=v\n") {
		t.Errorf("log file = %q", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("debug line written at info level")
	}
	if console.String() != string(data) {
		t.Errorf("console = %q, want same as file", console.String())
	}
}

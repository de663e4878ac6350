package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithFormatter_Text(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithFormatter(slog.LevelInfo, &TextFormatter{}, &buf)
	l.Module("wasm").Info("hello", "score", 3)

	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "module=wasm") || !strings.Contains(out, "score=3") {
		t.Fatalf("unexpected text output: %q", out)
	}
}

func TestNewWithFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithFormatter(slog.LevelInfo, &JSONFormatter{}, &buf)
	l.Info("scored", "score", 9)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}
	if entry["msg"] != "scored" {
		t.Fatalf("msg = %v", entry["msg"])
	}
}

func TestNewWithFormatter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithFormatter(slog.LevelWarn, &TextFormatter{}, &buf)
	l.Info("should be dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below the configured level, got %q", buf.String())
	}
	l.Warn("should appear")
	if buf.Len() == 0 {
		t.Fatalf("expected output at or above the configured level")
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerWritesServiceAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "compliance-api", "warn")

	logger.Info("dropped")
	logger.Warn("subfolder_submitted", "subfolder_id", "sf-1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if record["service"] != "compliance-api" || record["msg"] != "subfolder_submitted" || record["subfolder_id"] != "sf-1" {
		t.Fatalf("unexpected record: %v", record)
	}
}

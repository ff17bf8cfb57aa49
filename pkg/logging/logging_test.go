package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, "JSON", slog.LevelInfo))
	logger.Debug("hidden")
	logger.Info("Order submitted", "total", 125)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "Order submitted" || entry["total"] != float64(125) {
		t.Errorf("unexpected entry: %v", entry)
	}

	buf.Reset()
	slog.New(NewHandler(&buf, "", slog.LevelInfo)).Info("plain")
	if !bytes.Contains(buf.Bytes(), []byte("plain")) || json.Valid(buf.Bytes()) {
		t.Errorf("expected text output, got %q", buf.String())
	}
}

func TestLevelFromEnv(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for v, want := range tests {
		t.Setenv("LOG_LEVEL", v)
		if got := levelFromEnv(); got != want {
			t.Errorf("LOG_LEVEL=%q: got %v, want %v", v, got, want)
		}
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("Text format with info level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(Config{Level: "info", Format: "text"}, &buf)

		log.Debug("hidden")
		log.Info("review finished", "tier", "structural")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Errorf("debug message should be filtered at info level, got: %s", out)
		}
		if !strings.Contains(out, "level=INFO") || !strings.Contains(out, "tier=structural") {
			t.Errorf("expected text log with info level and attrs, got: %s", out)
		}
	})

	t.Run("JSON format with debug level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(Config{Level: "debug", Format: "json"}, &buf)

		log.Debug("queueing job", "pr", 7)

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("failed to unmarshal JSON log: %v, output: %s", err, buf.String())
		}
		if entry["level"] != "DEBUG" || entry["msg"] != "queueing job" {
			t.Errorf("unexpected JSON log entry: %v", entry)
		}
	})

	t.Run("Unknown level defaults to info", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(Config{Level: "shout", Format: "text"}, &buf)

		log.Debug("hidden")
		if buf.Len() != 0 {
			t.Errorf("expected debug to be filtered under default info level, got: %s", buf.String())
		}
	})
}

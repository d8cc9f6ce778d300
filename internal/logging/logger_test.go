package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		env   string
		level string
		want  zerolog.Level
	}{
		{"production", "warn", zerolog.WarnLevel},
		{"production", "", zerolog.InfoLevel},
		{"development", "", zerolog.DebugLevel},
		{"production", "nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		logger := newLogger(&bytes.Buffer{}, tt.env, tt.level)
		if got := logger.GetLevel(); got != tt.want {
			t.Fatalf("level(%s, %q) = %s, want %s", tt.env, tt.level, got, tt.want)
		}
	}
}

func TestNewLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "info")
	logger.Info().Str("session_id", "abc").Msg("draft saved")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["session_id"] != "abc" || entry["message"] != "draft saved" {
		t.Fatalf("entry = %v", entry)
	}
	if entry["service"] != "satonic-storefront" {
		t.Fatalf("service field missing: %v", entry)
	}
}

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"debug", log.DebugLevel, false},
		{"info", log.InfoLevel, false},
		{"", log.InfoLevel, false},
		{"warn", log.WarnLevel, false},
		{"warning", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"verbose", log.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Formatter
		wantErr bool
	}{
		{"text", log.TextFormatter, false},
		{"", log.TextFormatter, false},
		{"json", log.JSONFormatter, false},
		{"logfmt", log.LogfmtFormatter, false},
		{"xml", log.TextFormatter, true},
	}
	for _, tt := range tests {
		got, err := ParseFormatter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormatter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseFormatter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Level = log.WarnLevel
	logger := New(&buf, opts)

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level:\n%s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn message missing:\n%s", out)
	}
}

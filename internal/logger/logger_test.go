package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"default config", Config{Level: "info", Format: "json"}},
		{"text format", Config{Level: "debug", Format: "text"}},
		{"invalid level", Config{Level: "invalid", Format: "json"}},
		{"invalid format", Config{Level: "warn", Format: "invalid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.config)
			if logger == nil || logger.Logger == nil {
				t.Fatal("Logger is nil")
			}
		})
	}
}

func TestComponentAddsField(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(Config{Level: "info", Format: "json"}, &buf)

	log.Component("checkout").WithField("order_id", "ORD-1").Info("order created")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["component"] != "checkout" {
		t.Errorf("Expected component=checkout, got %v", entry["component"])
	}
	if entry["order_id"] != "ORD-1" {
		t.Errorf("Expected order_id=ORD-1, got %v", entry["order_id"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(Config{Level: "warn", Format: "text"}, &buf)

	log.Info("hidden")
	log.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Info message should be filtered at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("Warn message should be written")
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Error("OrDiscard(nil) returned nil")
	}
	l := Default()
	if OrDiscard(l) != l {
		t.Error("OrDiscard should return the given logger")
	}
}

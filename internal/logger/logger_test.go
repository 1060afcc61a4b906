package logger

import (
	"path/filepath"
	"testing"

	"github.com/biograph/biograph/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string // String representation of zapcore.Level
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"", "info"}, // empty defaults to info
		{"warn", "warn"},
		{"error", "error"},
		{"unknown", "info"}, // unknown defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level := parseLevel(tt.input)
			if level.String() != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, level.String(), tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test-log.json")

	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name: "json format info level",
			cfg: &config.LoggingConfig{
				Level:  "info",
				Format: "json",
				Output: "stdout",
			},
			wantErr: false,
		},
		{
			name: "text format debug level",
			cfg: &config.LoggingConfig{
				Level:  "debug",
				Format: "text",
				Output: "stdout",
			},
			wantErr: false,
		},
		{
			name: "file output",
			cfg: &config.LoggingConfig{
				Level:  "warn",
				Format: "json",
				Output: logFile,
			},
			wantErr: false,
		},
		{
			name: "stderr output",
			cfg: &config.LoggingConfig{
				Level:  "error",
				Format: "text",
				Output: "stderr",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if logger == nil && !tt.wantErr {
				t.Error("New() returned nil logger without error")
			}
			if logger != nil {
				_ = logger.Sync()
			}
		})
	}
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	if logger == nil {
		t.Fatal("NewDefault() returned nil")
	}

	// Should be able to log without panic
	logger.Info("test message")
	_ = logger.Sync()
}

func TestWithRun(t *testing.T) {
	logger := NewDefault()

	runLogger := logger.WithRun("8b6c2a1e")
	if runLogger == nil {
		t.Fatal("WithRun() returned nil")
	}
	if runLogger == logger {
		t.Error("WithRun() should return a new logger instance")
	}

	runLogger.Info("test with run")
	_ = logger.Sync()
}

func TestWithSource(t *testing.T) {
	logger := NewDefault()

	srcLogger := logger.WithSource("ncbigene")
	if srcLogger == nil {
		t.Fatal("WithSource() returned nil")
	}

	srcLogger.Info("test with source")
	_ = logger.Sync()
}

func TestWithSet(t *testing.T) {
	logger := NewDefault()

	setLogger := logger.WithSet("NodeSet(Gene)")
	if setLogger == nil {
		t.Fatal("WithSet() returned nil")
	}

	setLogger.Info("test with set")
	_ = logger.Sync()
}

func TestWithBatch(t *testing.T) {
	logger := NewDefault()

	batchLogger := logger.WithBatch(42)
	if batchLogger == nil {
		t.Fatal("WithBatch() returned nil")
	}

	batchLogger.Info("test with batch")
	_ = logger.Sync()
}

func TestWithFields(t *testing.T) {
	logger := NewDefault()

	fields := map[string]interface{}{
		"custom_field": "value",
		"number":       123,
	}

	fieldLogger := logger.WithFields(fields)
	if fieldLogger == nil {
		t.Fatal("WithFields() returned nil")
	}

	fieldLogger.Info("test with fields")
	_ = logger.Sync()
}

package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"info level", "info", slog.LevelInfo},
		{"warn level", "warn", slog.LevelWarn},
		{"warning level", "warning", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"invalid level", "invalid", slog.LevelInfo},
		{"empty string", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := ParseLevel(tt.input); result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != slog.LevelInfo {
		t.Errorf("Default level = %v, want %v", cfg.Level, slog.LevelInfo)
	}
	if cfg.FilePath != "" {
		t.Errorf("Default FilePath = %q, want empty", cfg.FilePath)
	}
	if cfg.MaxSize != 10 || cfg.MaxBackups != 3 {
		t.Errorf("Default rotation = %d MB x %d, want 10 MB x 3", cfg.MaxSize, cfg.MaxBackups)
	}
	if !cfg.Console {
		t.Errorf("Default Console = %v, want true", cfg.Console)
	}
}

func TestNewLoggerConsole(t *testing.T) {
	logger, closer, err := NewLogger(Config{Level: slog.LevelInfo, Console: true})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if logger == nil || closer == nil {
		t.Fatal("NewLogger returned nil logger or closer")
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNewLoggerFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "nested", "harvest.log")

	logger, closer, err := NewLogger(Config{
		Level:      slog.LevelDebug,
		FilePath:   logFile,
		MaxSize:    1,
		MaxBackups: 1,
	})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Debug("Leaf fetched", "url", "https://example.com/home/1")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Log file was not created: %v", err)
	}

	line := strings.TrimSpace(string(data))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("Log line is not JSON: %v (%s)", err, line)
	}
	if entry["msg"] != "Leaf fetched" || entry["url"] != "https://example.com/home/1" {
		t.Errorf("Unexpected log entry %v", entry)
	}
}

func TestNewLoggerLevelFilter(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "harvest.log")

	logger, closer, err := NewLogger(Config{Level: slog.LevelWarn, FilePath: logFile, MaxSize: 1})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("kept")
	_ = closer.Close()

	data, _ := os.ReadFile(logFile)
	if strings.Contains(string(data), "dropped") || !strings.Contains(string(data), "kept") {
		t.Errorf("Level filter not applied: %s", data)
	}
}

func TestSetDefault(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	logFile := filepath.Join(t.TempDir(), "harvest.log")
	closer, err := SetDefault(Config{Level: slog.LevelDebug, FilePath: logFile, MaxSize: 1})
	if err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	defer func() { _ = closer.Close() }()

	slog.Info("test message from default logger")

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		t.Errorf("Log file was not created at %s", logFile)
	}
}

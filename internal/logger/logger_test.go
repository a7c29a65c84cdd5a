package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/altin/linesearch/internal/config"
)

func TestNewDisabledByDefault(t *testing.T) {
	log, closeLog, err := New(config.Default(), os.Stderr)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer closeLog()
	if log.Core().Enabled(zapcore.DebugLevel) || log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("default logger should be a no-op")
	}
}

func TestNewWritesJSONFile(t *testing.T) {
	cfg := config.Default()
	cfg.LogFile = filepath.Join(t.TempDir(), "logs", "linesearch.log")
	cfg.LogLevel = "debug"

	log, closeLog, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Debug("corpus loaded")
	closeLog()

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"corpus loaded"`) {
		t.Errorf("log file = %s, want JSON entry", data)
	}
}

func TestNewConsoleWriter(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "warn"
	var buf bytes.Buffer

	log, closeLog, err := New(cfg, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Info("hidden")
	log.Warn("cache eviction failed")
	closeLog()

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info entry written at warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "cache eviction failed") {
		t.Errorf("console output = %q, want warn entry", buf.String())
	}
}

func TestNewWithoutConsoleDiscards(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "debug"

	log, closeLog, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer closeLog()
	if log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("console logging without a console should be discarded")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "chatty"
	if _, _, err := New(cfg, nil); err == nil {
		t.Error("expected error for unknown level")
	}
}

package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/altin/linesearch/internal/config"
)

// New builds the diagnostic logger and the function that flushes it and
// releases its file. Logging stays off unless a level or a log file is
// configured. Without a log file, entries go to console; a nil console
// discards them, which keeps a full-screen prompt readable.
func New(cfg config.Config, console io.Writer) (*zap.Logger, func(), error) {
	nop := func() {}
	levelName := strings.ToLower(cfg.LogLevel)
	if levelName == "none" || levelName == "off" || (levelName == "" && cfg.LogFile == "") {
		return zap.NewNop(), nop, nil
	}
	if levelName == "" {
		levelName = "info"
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, nop, err
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, nop, err
		}
		file, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nop, err
		}

		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(file),
			level,
		)
		log := zap.New(core)
		return log, func() {
			_ = log.Sync()
			_ = file.Close()
		}, nil
	}

	if console == nil {
		return zap.NewNop(), nop, nil
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(console),
		level,
	)
	log := zap.New(core, zap.Development(), zap.AddCaller())
	return log, func() { _ = log.Sync() }, nil
}

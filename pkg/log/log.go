package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger, there are two modes possible. The very
// first one is debug or not, a debug mode is a fantastic way to print more
// information, and a logFile where the logs would be saved. The logger is
// returned to the caller instead of being installed globally so components
// receive it by reference from the entry point.
func New(debug bool, logFile string) (*zap.SugaredLogger, error) {

	// If the file doesn't exist, create it, or append to the file
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the log file: %s: %w", logFile, err)
	}

	var lvl zapcore.Level

	if debug {
		lvl = zap.DebugLevel
	} else {
		lvl = zap.InfoLevel
	}

	// Define log location
	consoleLogs := zapcore.Lock(os.Stderr)
	fileLogs := zapcore.Lock(f)

	// Create custom zap config
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(setCustomConfig()), consoleLogs, lvl),
		zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), fileLogs, zap.DebugLevel),
	)

	return zap.New(core, zap.AddCaller()).Sugar(), nil
}

func setCustomConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		LevelKey:    "level",
		TimeKey:     "ts",
		MessageKey:  "msg",
		EncodeLevel: zapcore.CapitalLevelEncoder,
		EncodeTime:  zapcore.ISO8601TimeEncoder,
	}
}

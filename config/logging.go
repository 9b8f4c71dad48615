package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Debug = false

// DebugLog is a no-op until InitDebugLog enables file logging.
var DebugLog = zap.NewNop().Sugar()

func CheckDebug() bool {
	debug := os.Getenv(EnvPrefix + "DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog points DebugLog at <dataDir>/debug.log when MAILCRAFT_DEBUG
// is set. The returned function flushes the logger.
func InitDebugLog(dataDir string) func() {
	if !CheckDebug() {
		return func() {}
	}

	logPath := filepath.Join(dataDir, "debug.log")

	// debug.log may contain prompts and template content
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return func() {}
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), zapcore.DebugLevel)
	logger := zap.New(core, zap.AddCaller())

	Debug = true
	DebugLog = logger.Sugar()
	DebugLog.Infow("debug logging started", "path", logPath)

	return func() {
		_ = logger.Sync()
		_ = f.Close()
	}
}

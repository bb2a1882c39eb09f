// Package obslog constructs the scoped, per-run logger used throughout the
// pipeline. There is no package-level global: Analyze builds one logger and
// passes named children to each analyzer, per design note 9.
package obslog

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a session-scoped *zap.SugaredLogger writing to w. verbose
// lowers the enabled level from Info to Debug. A nil w defaults to
// io.Discard (library callers that don't want log output on stderr/stdout).
func New(w io.Writer, verbose bool) *zap.SugaredLogger {
	if w == nil {
		w = io.Discard
	}
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "" // scans are short-lived; timestamps add noise to captured output
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core).Sugar()
}

// Noop returns a logger that discards everything, for tests and library
// callers that pass no writer.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

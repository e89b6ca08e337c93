//go:build !(rp2040 || rp2350)

package logx

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger on stdout at the given level.
func New(level Level) Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(os.Stdout),
		zapcore.Level(level),
	)
	return FromZap(zap.New(core))
}

// NewConsole returns a human-readable logger on stderr, for interactive runs.
func NewConsole(level Level) Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(os.Stderr), zapcore.Level(level))
	return FromZap(zap.New(core))
}

// FromZap adapts an existing zap logger.
func FromZap(l *zap.Logger) Logger { return zapLogger{s: l.Sugar()} }

type zapLogger struct{ s *zap.SugaredLogger }

func (z zapLogger) Debug(msg string, kv ...any) { z.s.Debugw(msg, kv...) }
func (z zapLogger) Info(msg string, kv ...any)  { z.s.Infow(msg, kv...) }
func (z zapLogger) Warn(msg string, kv ...any)  { z.s.Warnw(msg, kv...) }
func (z zapLogger) Error(msg string, kv ...any) { z.s.Errorw(msg, kv...) }
func (z zapLogger) With(kv ...any) Logger       { return zapLogger{s: z.s.With(kv...)} }

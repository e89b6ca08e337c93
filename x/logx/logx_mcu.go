//go:build rp2040 || rp2350

package logx

// New returns a println-backed logger filtering below level.
func New(level Level) Logger { return &printLogger{min: level} }

type printLogger struct {
	min Level
	kv  []any
}

func (l *printLogger) log(lv Level, msg string, kv []any) {
	if lv < l.min {
		return
	}
	if len(l.kv) > 0 {
		kv = append(append([]any(nil), l.kv...), kv...)
	}
	// per-call buffer: one logger is shared by every task goroutine
	line := AppendLine(make([]byte, 0, 96), lv, msg, kv)
	println(string(line))
}

func (l *printLogger) Debug(msg string, kv ...any) { l.log(LevelDebug, msg, kv) }
func (l *printLogger) Info(msg string, kv ...any)  { l.log(LevelInfo, msg, kv) }
func (l *printLogger) Warn(msg string, kv ...any)  { l.log(LevelWarn, msg, kv) }
func (l *printLogger) Error(msg string, kv ...any) { l.log(LevelError, msg, kv) }

func (l *printLogger) With(kv ...any) Logger {
	return &printLogger{min: l.min, kv: append(append([]any(nil), l.kv...), kv...)}
}

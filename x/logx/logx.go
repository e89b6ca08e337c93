// Package logx is the structured logger used across the firmware.
//
// Host builds log through zap; RP2 builds print "[level] msg k=v" lines via
// println. Callers pass alternating key/value pairs:
//
//	log.Info("render", "pm2_5", r.PM2_5Atm, "epoch", epoch)
package logx

import (
	"time"

	"atmo-monitor-go/x/strconvx"
)

type Level int8

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "level(" + strconvx.Itoa(int(l)) + ")"
	}
}

// ParseLevel maps a name to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	With(kv ...any) Logger
}

// Nop discards everything.
func Nop() Logger { return nop{} }

type nop struct{}

func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}
func (n nop) With(...any) Logger { return n }

// AppendLine formats one log line without fmt.
func AppendLine(buf []byte, lv Level, msg string, kv []any) []byte {
	buf = append(buf, '[')
	buf = append(buf, lv.String()...)
	buf = append(buf, "] "...)
	buf = append(buf, msg...)
	for i := 0; i < len(kv); i += 2 {
		buf = append(buf, ' ')
		if k, ok := kv[i].(string); ok {
			buf = append(buf, k...)
		} else {
			buf = append(buf, '?')
		}
		buf = append(buf, '=')
		if i+1 < len(kv) {
			buf = appendValue(buf, kv[i+1])
		} else {
			buf = append(buf, "<missing>"...)
		}
	}
	return buf
}

func appendValue(buf []byte, v any) []byte {
	switch x := v.(type) {
	case nil:
		return append(buf, "nil"...)
	case string:
		return append(buf, x...)
	case bool:
		return strconvx.AppendBool(buf, x)
	case int:
		return strconvx.AppendInt(buf, int64(x), 10)
	case int8:
		return strconvx.AppendInt(buf, int64(x), 10)
	case int16:
		return strconvx.AppendInt(buf, int64(x), 10)
	case int32:
		return strconvx.AppendInt(buf, int64(x), 10)
	case int64:
		return strconvx.AppendInt(buf, x, 10)
	case uint:
		return strconvx.AppendUint(buf, uint64(x), 10)
	case uint8:
		return strconvx.AppendUint(buf, uint64(x), 10)
	case uint16:
		return strconvx.AppendUint(buf, uint64(x), 10)
	case uint32:
		return strconvx.AppendUint(buf, uint64(x), 10)
	case uint64:
		return strconvx.AppendUint(buf, x, 10)
	case float32:
		return strconvx.AppendFloat(buf, float64(x), 'f', 2, 32)
	case float64:
		return strconvx.AppendFloat(buf, x, 'f', 2, 64)
	case time.Duration:
		return append(buf, x.String()...)
	case error:
		return append(buf, x.Error()...)
	case interface{ String() string }:
		return append(buf, x.String()...)
	default:
		return append(buf, '?')
	}
}

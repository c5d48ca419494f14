// Package logger is the JSON console logger shared by the frontend's packages.
//
// Lines carry datetime, level and message as fixed keys; request ids, list
// outcomes and the like are passed as Fields and land as top-level keys next to
// the service name.
package logger

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// DefaultService names this process in every structured line.
const DefaultService = "district-web"

// Logger is the minimal logging surface the frontend depends on.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields are top-level keys added to a structured log line.
type Fields map[string]any

// Options configure the process logger.
type Options struct {
	Level   string
	Service string
}

// Log is the process-wide logger. It logs at info until Init is called.
var Log Logger = NewLogger("info")

var service atomic.Value

func init() {
	service.Store(DefaultService)
}

// Init replaces the global logger. Empty options fall back to info and
// DefaultService.
func Init(opts Options) {
	level := strings.ToLower(strings.TrimSpace(opts.Level))
	if level == "" {
		level = "info"
	}
	name := strings.TrimSpace(opts.Service)
	if name == "" {
		name = DefaultService
	}
	service.Store(name)
	Log = NewLogger(level)
}

// InitFromEnv is Init for the time before configuration is loaded: the level
// comes from envKey, or fallback when unset.
func InitFromEnv(envKey, fallback string) {
	level := os.Getenv(envKey)
	if level == "" {
		level = fallback
	}
	Init(Options{Level: level})
}

// Service is the name stamped on structured lines.
func Service() string {
	return service.Load().(string)
}

// NewLogger builds a console logger writing one JSON object per line at level
// and above.
func NewLogger(level string) Logger {
	threshold := slog.LevelByName(level)
	levels := make(slog.Levels, 0, len(slog.AllLevels))
	for _, lv := range slog.AllLevels {
		if lv <= threshold {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	h.SetFormatter(slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{slog.FieldKeyDatetime, slog.FieldKeyLevel, slog.FieldKeyMessage}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05.000"
	}))
	return slog.NewWithHandlers(h)
}

// stamp copies fields and adds service_name unless the caller set one.
func stamp(fields Fields) Fields {
	out := make(Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	if _, ok := out["service_name"]; !ok {
		out["service_name"] = Service()
	}
	return out
}

func write(level slog.Level, msg string, fields Fields) {
	lg, ok := Log.(*slog.Logger)
	if !ok {
		Log.Info(msg)
		return
	}
	rec := lg.WithFields(slog.M(stamp(fields)))
	switch level {
	case slog.DebugLevel:
		rec.Debug(msg)
	case slog.WarnLevel:
		rec.Warn(msg)
	case slog.ErrorLevel:
		rec.Error(msg)
	default:
		rec.Info(msg)
	}
}

func DebugWithFields(msg string, fields Fields) { write(slog.DebugLevel, msg, fields) }

func InfoWithFields(msg string, fields Fields) { write(slog.InfoLevel, msg, fields) }

func WarnWithFields(msg string, fields Fields) { write(slog.WarnLevel, msg, fields) }

func ErrorWithFields(msg string, fields Fields) { write(slog.ErrorLevel, msg, fields) }

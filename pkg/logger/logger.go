package logger

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log *zap.Logger

	serviceName = "signal-bot"
	startedAt   = time.Now()
)

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

// Init builds the process-wide zap logger. level is one of debug/info/warn/error.
func Init(level string) error {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	log = l
	return nil
}

func get() *zap.Logger {
	if log == nil {
		log, _ = zap.NewDevelopment(zap.AddCallerSkip(1))
	}
	return log
}

func Debug(format string, args ...interface{}) {
	get().With(zap.String("service", serviceName)).Debug(fmt.Sprintf(format, args...))
}

func Info(format string, args ...interface{}) {
	get().With(zap.String("service", serviceName)).Info(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	get().With(zap.String("service", serviceName)).Warn(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	get().With(zap.String("service", serviceName)).Error(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	get().With(zap.String("service", serviceName)).Fatal(fmt.Sprintf(format, args...))
}

func UptimeSeconds() int64 {
	return int64(time.Since(startedAt).Seconds())
}

// UptimeFormatted renders uptime as "2d 3h 4m" style text for status replies.
func UptimeFormatted() string {
	s := UptimeSeconds()
	d := s / 86400
	h := (s % 86400) / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if d > 0 {
		return fmt.Sprintf("%dd %dh %dm", d, h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, sec)
	}
	return fmt.Sprintf("%dm %ds", m, sec)
}

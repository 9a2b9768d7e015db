package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config mirrors runtime.log. File "stdout" or "" writes to the terminal;
// anything else is a path rotated by lumberjack.
type Config struct {
	Level      string
	Format     string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// Logger is a logrus logger with the field helpers the bot uses everywhere.
type Logger struct {
	*logrus.Logger
}

func New(cfg Config) *Logger {
	base := logrus.New()
	base.SetFormatter(formatterFor(cfg))
	base.SetOutput(writerFor(cfg))

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	return &Logger{Logger: base}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{Logger: base}
}

func toTerminal(cfg Config) bool {
	return cfg.File == "" || cfg.File == "stdout"
}

func formatterFor(cfg Config) logrus.Formatter {
	if strings.EqualFold(cfg.Format, "json") {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
		ForceColors:     toTerminal(cfg),
	}
}

func writerFor(cfg Config) io.Writer {
	if toTerminal(cfg) {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}

// Base exposes the logrus logger for packages that take a logrus.FieldLogger.
func (l *Logger) Base() *logrus.Logger {
	return l.Logger
}

func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.WithField("component", component)
}

func (l *Logger) WithMarket(market string) *logrus.Entry {
	return l.WithField("market", market)
}

func (l *Logger) WithOrderID(orderID string) *logrus.Entry {
	return l.WithField("order_id", orderID)
}

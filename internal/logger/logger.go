package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger обертка над logrus
type Logger struct {
	*logrus.Logger
}

// Config конфигурация логгера
type Config struct {
	Level  string
	Format string
}

// New создает новый логгер, пишущий в stdout
func New(config Config) *Logger {
	return NewWithOutput(config, os.Stdout)
}

// NewWithOutput создает логгер с заданным выводом
func NewWithOutput(config Config, out io.Writer) *Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		logger.Warnf("Invalid log level %s, using info", config.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	switch strings.ToLower(config.Format) {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	logger.SetOutput(out)

	return &Logger{Logger: logger}
}

// Component возвращает запись с полем component
func (l *Logger) Component(name string) *logrus.Entry {
	return l.Logger.WithField("component", name)
}

// Default создает логгер с настройками по умолчанию
func Default() *Logger {
	return New(Config{
		Level:  "info",
		Format: "json",
	})
}

// Discard логгер без вывода, для тестов и CLI
func Discard() *Logger {
	return NewWithOutput(Config{Level: "panic", Format: "json"}, io.Discard)
}

// OrDiscard возвращает l или пустой логгер, если l == nil
func OrDiscard(l *Logger) *Logger {
	if l == nil {
		return Discard()
	}
	return l
}

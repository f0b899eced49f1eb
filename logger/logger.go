package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	globalLogger *zap.Logger
	once         sync.Once
)

// Logger is a wrapper around zap.Logger
type Logger struct {
	*zap.Logger
}

// InitProduction initializes the global logger with production configuration
func InitProduction() {
	once.Do(func() {
		logger, err := zap.NewProduction()
		if err != nil {
			fmt.Printf("Failed to initialize production logger: %v\n", err)
			os.Exit(1)
		}
		globalLogger = logger
	})
}

// InitNop initializes the global logger with a no-op logger, used in tests.
func InitNop() {
	once.Do(func() {
		globalLogger = zap.NewNop()
	})
}

// Get returns the global logger instance
func Get() *Logger {
	if globalLogger == nil {
		InitProduction()
	}
	return &Logger{globalLogger}
}

// With creates a child logger and adds structured context to it
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{l.Logger.With(fields...)}
}

// String constructs a zap.Field with a string value
func String(key, value string) zap.Field {
	return zap.String(key, value)
}

// Int constructs a zap.Field with an int value
func Int(key string, value int) zap.Field {
	return zap.Int(key, value)
}

// Error constructs a zap.Field from an error
func Error(err error) zap.Field {
	return zap.Error(err)
}

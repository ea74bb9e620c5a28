package logging

import (
	"errors"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLoggerName is the name of the logger built by the providers when
// no [LoggerName] is supplied.
const DefaultLoggerName LoggerName = "crafter"

// LoggerName selects the process-wide [Logger] returned by the providers.
type LoggerName string

// Verbose controls whether the providers attach a stream handler.
type Verbose bool

// Logger is a named, process-wide logger. Its handlers are teed together
// into one zap logger.
type Logger struct {
	name string

	mu       sync.Mutex
	handlers []Handler
	zap      *zap.Logger
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]*Logger)
)

// GetLogger returns the logger registered under name, creating it without
// handlers on first use.
func GetLogger(name string) *Logger {
	registryMu.Lock()
	defer registryMu.Unlock()

	if l, ok := registry[name]; ok {
		return l
	}
	l := &Logger{name: name, zap: zap.New(zapcore.NewNopCore()).Named(name)}
	registry[name] = l
	return l
}

// ResetLoggers forgets every registered logger and closes their handlers.
// Tests use it for isolation.
func ResetLoggers() error {
	registryMu.Lock()
	loggers := registry
	registry = make(map[string]*Logger)
	registryMu.Unlock()

	var errs []error
	for _, l := range loggers {
		errs = append(errs, l.close())
	}
	return errors.Join(errs...)
}

// Name returns the name the logger is registered under.
func (l *Logger) Name() string { return l.name }

// AddHandler attaches h to the logger.
func (l *Logger) AddHandler(h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.handlers = append(l.handlers, h)
	cores := make([]zapcore.Core, len(l.handlers))
	for i, h := range l.handlers {
		cores[i] = h.Core()
	}
	l.zap = zap.New(zapcore.NewTee(cores...)).Named(l.name)
}

// Handlers returns the attached handlers in order of attachment.
func (l *Logger) Handlers() []Handler {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Handler(nil), l.handlers...)
}

// FileHandlers returns the attached file handlers.
func (l *Logger) FileHandlers() []*FileHandler {
	var out []*FileHandler
	for _, h := range l.Handlers() {
		if fh, ok := h.(*FileHandler); ok {
			out = append(out, fh)
		}
	}
	return out
}

// Zap returns the zap logger writing to every attached handler.
func (l *Logger) Zap() *zap.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zap
}

// For returns the zap logger tagged with the component that writes to it,
// usually the name of the calling type.
func (l *Logger) For(component string) *zap.Logger {
	return l.Zap().With(zap.String("component", component))
}

func (l *Logger) close() error {
	l.mu.Lock()
	handlers := l.handlers
	l.handlers = nil
	l.zap = zap.New(zapcore.NewNopCore()).Named(l.name)
	l.mu.Unlock()

	var errs []error
	for _, h := range handlers {
		errs = append(errs, h.Close())
	}
	return errors.Join(errs...)
}

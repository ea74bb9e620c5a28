package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Handler is one output of a [Logger].
type Handler interface {
	Core() zapcore.Core
	Close() error
}

const consoleSeparator = " | "

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.ConsoleSeparator = consoleSeparator
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// StreamHandler writes human-readable records to a stream, stderr unless
// built with [NewStreamHandlerTo].
type StreamHandler struct {
	core zapcore.Core
}

// NewStreamHandler returns a handler writing records at level and above to
// stderr.
func NewStreamHandler(level zapcore.Level) *StreamHandler {
	return NewStreamHandlerTo(os.Stderr, level)
}

// NewStreamHandlerTo returns a handler writing records at level and above
// to w.
func NewStreamHandlerTo(w io.Writer, level zapcore.Level) *StreamHandler {
	cfg := encoderConfig()
	if w == os.Stderr {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return &StreamHandler{
		core: zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(zapcore.AddSync(w)), level),
	}
}

func (h *StreamHandler) Core() zapcore.Core { return h.core }

// Close flushes the handler. The stream itself stays open.
func (h *StreamHandler) Close() error {
	_ = h.core.Sync()
	return nil
}

// FileHandler appends records to a file.
type FileHandler struct {
	path string
	file *os.File
	core zapcore.Core
}

// NewFileHandler opens path for appending, creating it if needed.
func NewFileHandler(path FileHandlerBasePath, level zapcore.Level) (*FileHandler, error) {
	f, err := os.OpenFile(string(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	cfg := encoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return &FileHandler{
		path: string(path),
		file: f,
		core: zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(f), level),
	}, nil
}

// Path returns the file the handler writes to.
func (h *FileHandler) Path() string { return h.path }

func (h *FileHandler) Core() zapcore.Core { return h.core }

// Close syncs and closes the file. Closing twice is a no-op.
func (h *FileHandler) Close() error {
	if h.file == nil {
		return nil
	}
	_ = h.file.Sync()
	err := h.file.Close()
	h.file = nil
	return err
}

// exists reports whether the handler's file is still on disk.
func (h *FileHandler) exists() bool {
	_, err := os.Stat(h.path)
	return err == nil
}

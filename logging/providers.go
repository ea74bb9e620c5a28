package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ARTM2000/crafter"
)

// FileHandlerConfigured reports that the logger writes to a log file.
type FileHandlerConfigured bool

// NewLogger returns the logger registered under name. When verbose is set
// and the logger has no handlers yet, stream is attached, or a stderr
// handler if no stream handler is available.
func NewLogger(name LoggerName, stream crafter.Maybe[*StreamHandler], verbose Verbose) *Logger {
	l := GetLogger(string(name))
	if verbose && len(l.Handlers()) == 0 {
		h, ok := stream.Get()
		if !ok || h == nil {
			h = NewStreamHandler(zapcore.InfoLevel)
		}
		l.AddHandler(h)
	}
	return l
}

// ConfigureFileHandler attaches fh to l. If l already writes to a file,
// fh is closed and l is left unchanged. Attached file handlers whose file
// was removed make it fail with [ErrMissingLogFile].
func ConfigureFileHandler(l *Logger, fh *FileHandler) (FileHandlerConfigured, error) {
	existing := l.FileHandlers()
	for _, h := range existing {
		if !h.exists() {
			_ = fh.Close()
			return false, fmt.Errorf("%w: %s", ErrMissingLogFile, h.Path())
		}
	}

	if len(existing) > 0 {
		paths := make([]string, len(existing))
		for i, h := range existing {
			paths[i] = h.Path()
		}
		l.Zap().Warn("a file handler is already configured, keeping the logger unchanged",
			zap.Strings("paths", paths),
			zap.String("rejected", fh.Path()),
		)
		if err := fh.Close(); err != nil {
			return false, err
		}
		return true, nil
	}

	l.Zap().Info("start collecting logs", zap.String("path", fh.Path()))
	l.AddHandler(fh)
	return true, nil
}

// Providers returns the group of every logging provider. The logger name,
// level and verbosity have no providers; they fall back to
// [DefaultLoggerName], info and true unless a scope supplies them.
func Providers() *crafter.Group {
	return crafter.NewGroup(
		must(crafter.Provide(provideAppName)),
		must(crafter.Provide(provideLogFileExtension)),
		must(crafter.Provide(NewUTCTimeTag)),
		must(crafter.Provide(NewLogFileName, crafter.WithInputs(
			crafter.Required(LogFilePrefix),
			crafter.Required(crafter.KeyOf[UTCTimeTag]()),
			crafter.Required(crafter.KeyOf[LogFileExtension]()),
		))),
		must(crafter.Provide(provideLogDirectoryPath)),
		must(crafter.Provide(PrepareDirectory)),
		must(crafter.Provide(NewFileHandlerBasePath)),
		must(crafter.Provide(NewStreamHandler, crafter.WithDefault(0, zapcore.InfoLevel))),
		must(crafter.Provide(NewFileHandler, crafter.WithDefault(1, zapcore.InfoLevel))),
		must(crafter.Provide(NewLogger,
			crafter.WithDefault(0, DefaultLoggerName),
			crafter.WithDefault(2, Verbose(true)),
		)),
		must(crafter.Provide(ConfigureFileHandler)),
	)
}

func must(p *crafter.Provider, err error) *crafter.Provider {
	if err != nil {
		panic(err)
	}
	return p
}

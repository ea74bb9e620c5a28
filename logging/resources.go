package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ARTM2000/crafter"
)

var (
	// ErrInvalidPrefix is returned when a log file prefix contains the
	// separator used between prefix and time tag.
	ErrInvalidPrefix = errors.New("log file prefix should not contain any underscore")

	// ErrDirectoryNotReady is returned when a file path is requested for a
	// log directory that was not prepared.
	ErrDirectoryNotReady = errors.New("directory should be ready first")

	// ErrMissingLogFile is returned when the file of an attached file
	// handler no longer exists.
	ErrMissingLogFile = errors.New("log file is missing")
)

// AppName names the application. It is the default log file prefix.
type AppName string

// LogFilePrefix is the first part of a log file name. It resolves to
// [AppName] unless overridden.
var LogFilePrefix = crafter.Alias("log-file-prefix", crafter.KeyOf[AppName]())

// LogFileExtension is the extension of log files, without the dot.
type LogFileExtension string

// UTCTimeTag is the RFC 3339 time stamp embedded in log file names.
type UTCTimeTag string

// LogFileName is the base name of a log file.
type LogFileName string

// LogDirectoryPath is the directory log files are written to.
type LogDirectoryPath string

// DirectoryReady reports that [LogDirectoryPath] exists and is a directory.
type DirectoryReady bool

// FileHandlerBasePath is the full path of the log file.
type FileHandlerBasePath string

const (
	DefaultAppName      AppName          = "app-crafter"
	DefaultExtension    LogFileExtension = "log"
	DefaultDirectory    LogDirectoryPath = "logs"
	fileNameSeparator                    = "_"
	directoryPermission                  = 0o755
)

func provideAppName() AppName { return DefaultAppName }

func provideLogFileExtension() LogFileExtension { return DefaultExtension }

func provideLogDirectoryPath() LogDirectoryPath { return DefaultDirectory }

// NewUTCTimeTag returns the current UTC time without sub-second precision.
func NewUTCTimeTag() UTCTimeTag {
	return UTCTimeTag(time.Now().UTC().Truncate(time.Second).Format(time.RFC3339))
}

// NewLogFileName joins prefix, time tag and extension into
// <prefix>_<time>.<ext>.
func NewLogFileName(prefix AppName, tag UTCTimeTag, ext LogFileExtension) (LogFileName, error) {
	if strings.Contains(string(prefix), fileNameSeparator) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}
	return LogFileName(fmt.Sprintf("%s%s%s.%s", prefix, fileNameSeparator, tag, ext)), nil
}

// PrepareDirectory creates dir and its parents if needed. An existing
// file at dir is an error wrapping fs.ErrExist.
func PrepareDirectory(dir LogDirectoryPath) (DirectoryReady, error) {
	info, err := os.Stat(string(dir))
	switch {
	case err == nil && !info.IsDir():
		return false, fmt.Errorf("log directory %s: %w", dir, fs.ErrExist)
	case err == nil:
		return true, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("log directory %s: %w", dir, err)
	}

	if err := os.MkdirAll(string(dir), directoryPermission); err != nil {
		return false, fmt.Errorf("creating log directory %s: %w", dir, err)
	}
	return true, nil
}

// NewFileHandlerBasePath returns dir/name once dir is ready.
func NewFileHandlerBasePath(ready DirectoryReady, dir LogDirectoryPath, name LogFileName) (FileHandlerBasePath, error) {
	if !ready {
		return "", ErrDirectoryNotReady
	}
	return FileHandlerBasePath(filepath.Join(string(dir), string(name))), nil
}
